// internal/models/upload.go
package models

import "time"

// UploadedFileDescriptor describes a file received by the upload handler.
// Size and UploadedAt are metadata only and never affect scoring.
type UploadedFileDescriptor struct {
	OriginalName string    `json:"originalName" bson:"originalName"`
	MimeType     string    `json:"mimeType" bson:"mimeType"`
	Size         int64     `json:"size" bson:"size"`
	UploadedAt   time.Time `json:"uploadedAt" bson:"uploadedAt"`
}

type fileKey struct {
	name string
	size int64
}

// DedupeFiles drops later entries sharing (OriginalName, Size) with an earlier one.
func DedupeFiles(files []UploadedFileDescriptor) []UploadedFileDescriptor {
	out := make([]UploadedFileDescriptor, 0, len(files))
	seen := make(map[fileKey]struct{}, len(files))
	for _, f := range files {
		k := fileKey{name: f.OriginalName, size: f.Size}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	return out
}
