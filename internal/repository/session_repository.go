// internal/repository/session_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"visa-checker-backend/internal/models"
	apperrors "visa-checker-backend/pkg/errors"
)

type sessionRepository struct {
	collection *mongo.Collection
}

func NewSessionRepository(collection *mongo.Collection) SessionRepository {
	return &sessionRepository{
		collection: collection,
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.ValidationSession) error {
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewAppError(apperrors.ErrConflict, 409, "session already exists", session.SessionID)
		}
		return err
	}

	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		session.ID = id
	}
	return nil
}

func (r *sessionRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.ValidationSession, error) {
	var session models.ValidationSession
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFoundError("session")
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) UpdateFiles(ctx context.Context, sessionID string, files []models.UploadedFileDescriptor) error {
	return r.update(ctx, sessionID, bson.M{
		"uploadedFiles": files,
		"status":        models.SessionFilesUpdated,
	})
}

func (r *sessionRepository) UpdateStatus(ctx context.Context, sessionID string, status models.SessionStatus) error {
	return r.update(ctx, sessionID, bson.M{"status": status})
}

func (r *sessionRepository) update(ctx context.Context, sessionID string, set bson.M) error {
	set["updatedAt"] = time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, bson.M{"sessionId": sessionID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.NewNotFoundError("session")
	}
	return nil
}
