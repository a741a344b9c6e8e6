// internal/database/indexes.go
package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	m.logger.Debug("Creating database indexes")

	indexes := map[string][]mongo.IndexModel{
		SessionsCollection: {
			{
				Keys:    bson.D{{Key: "sessionId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "ownerEmail", Value: 1}, {Key: "createdAt", Value: -1}},
			},
		},
		ReportsCollection: {
			{
				Keys:    bson.D{{Key: "sessionId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		PaymentsCollection: {
			{
				Keys:    bson.D{{Key: "sessionId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "reference", Value: 1}},
			},
		},
	}

	for name, models := range indexes {
		if _, err := m.GetCollection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
		m.logger.Debug("Collection indexes created", zap.String("collection", name))
	}

	m.logger.Info("Database indexes created successfully")
	return nil
}
