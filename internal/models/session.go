// internal/models/session.go
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionStatus string

const (
	SessionCreated      SessionStatus = "created"
	SessionFilesUpdated SessionStatus = "files_updated"
	SessionValidated    SessionStatus = "validated"
)

type Selection struct {
	Country      string `json:"country" bson:"country"`
	VisaCategory string `json:"visaCategory" bson:"visaCategory"`
	VisaType     string `json:"visaType" bson:"visaType"`
}

type PersonalInfo struct {
	FirstName      string `json:"firstName" bson:"firstName"`
	LastName       string `json:"lastName" bson:"lastName"`
	Email          string `json:"email" bson:"email"`
	Nationality    string `json:"nationality" bson:"nationality"`
	PassportNumber string `json:"passportNumber" bson:"passportNumber"`
	DateOfBirth    string `json:"dateOfBirth" bson:"dateOfBirth"`
	TravelDate     string `json:"travelDate,omitempty" bson:"travelDate,omitempty"`
}

// ValidationSession is the server-side record addressed by SessionID.
type ValidationSession struct {
	ID               primitive.ObjectID       `bson:"_id,omitempty" json:"-"`
	SessionID        string                   `bson:"sessionId" json:"sessionId"`
	OwnerEmail       string                   `bson:"ownerEmail" json:"ownerEmail"`
	Selection        Selection                `bson:"selection" json:"selection"`
	PersonalInfo     PersonalInfo             `bson:"personalInfo" json:"personalInfo"`
	UploadedFiles    []UploadedFileDescriptor `bson:"uploadedFiles" json:"uploadedFiles"`
	CheckedDocuments map[string]bool          `bson:"checkedDocuments" json:"checkedDocuments"`
	Status           SessionStatus            `bson:"status" json:"status"`
	CreatedAt        time.Time                `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time                `bson:"updatedAt" json:"updatedAt"`
}

type CreateSessionRequest struct {
	OwnerEmail       string                   `json:"-"`
	Country          string                   `json:"country"`
	VisaCategory     string                   `json:"visaCategory"`
	VisaType         string                   `json:"visaType"`
	PersonalInfo     PersonalInfo             `json:"personalInfo"`
	UploadedFiles    []UploadedFileDescriptor `json:"uploadedFiles"`
	CheckedDocuments map[string]bool          `json:"checkedDocuments"`
}

func (r *CreateSessionRequest) Validate() error {
	if strings.TrimSpace(r.Country) == "" {
		return errors.New("country is required")
	}
	if strings.TrimSpace(r.VisaType) == "" {
		return errors.New("visaType is required")
	}
	for i, f := range r.UploadedFiles {
		if strings.TrimSpace(f.OriginalName) == "" {
			return fmt.Errorf("uploadedFiles[%d].originalName is required", i)
		}
		if f.Size < 0 {
			return fmt.Errorf("uploadedFiles[%d].size must not be negative", i)
		}
	}
	return nil
}

type CreateSessionResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type UpdateFilesRequest struct {
	UploadedFiles []UploadedFileDescriptor `json:"uploadedFiles"`
}
