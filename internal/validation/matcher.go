// Package validation scores uploaded documents against a requirement checklist.
// Nothing in this package returns an error: an unmatched rule is recorded in
// the report, never thrown.
package validation

import (
	"strings"

	"visa-checker-backend/internal/models"
)

// Extension returns the lower-cased text after the last '.' in name, or ""
// when name has no dot.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// MimeSubtype returns the lower-cased subtype of a "type/subtype" content
// type, ignoring parameters.
func MimeSubtype(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	i := strings.IndexByte(mimeType, '/')
	if i < 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(mimeType[i+1:]))
}

// Matches reports whether file satisfies rule's accepted formats.
func Matches(file models.UploadedFileDescriptor, rule models.RequirementRule) bool {
	if len(rule.AcceptedFormats) == 0 {
		return true
	}

	ext := Extension(file.OriginalName)
	sub := MimeSubtype(file.MimeType)
	for _, f := range rule.AcceptedFormats {
		f = strings.ToLower(f)
		if (ext != "" && ext == f) || (sub != "" && sub == f) {
			return true
		}
	}
	return false
}
