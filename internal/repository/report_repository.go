// internal/repository/report_repository.go
package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"visa-checker-backend/internal/models"
	apperrors "visa-checker-backend/pkg/errors"
)

type reportRepository struct {
	collection *mongo.Collection
}

func NewReportRepository(collection *mongo.Collection) ReportRepository {
	return &reportRepository{
		collection: collection,
	}
}

func (r *reportRepository) Upsert(ctx context.Context, report *models.ValidationReport) error {
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"sessionId": report.SessionID},
		report,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *reportRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.ValidationReport, error) {
	var report models.ValidationReport
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFoundError("validation report")
		}
		return nil, err
	}
	return &report, nil
}
