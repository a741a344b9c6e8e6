// internal/services/workflow_remote.go
package services

import (
	"context"

	"visa-checker-backend/internal/models"
)

// WorkflowRemote lets a workflow call the validation service on behalf of
// one authenticated user.
type WorkflowRemote struct {
	validations ValidationService
	ownerEmail  string
}

func NewWorkflowRemote(validations ValidationService, ownerEmail string) *WorkflowRemote {
	return &WorkflowRemote{
		validations: validations,
		ownerEmail:  ownerEmail,
	}
}

func (r *WorkflowRemote) CreateValidationSession(ctx context.Context, req *models.CreateSessionRequest) (string, error) {
	req.OwnerEmail = r.ownerEmail
	return r.validations.CreateValidationSession(ctx, req)
}

func (r *WorkflowRemote) ValidateDocuments(ctx context.Context, sessionID string) (*models.ValidationReport, error) {
	return r.validations.ValidateDocuments(ctx, sessionID, r.ownerEmail)
}
