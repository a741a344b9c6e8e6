// internal/repository/payment_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"visa-checker-backend/internal/models"
	apperrors "visa-checker-backend/pkg/errors"
)

type paymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(collection *mongo.Collection) PaymentRepository {
	return &paymentRepository{
		collection: collection,
	}
}

// Upsert keeps the original createdAt when the payment already exists.
func (r *paymentRepository) Upsert(ctx context.Context, payment *models.Payment) error {
	now := time.Now().UTC()
	payment.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"email":       payment.Email,
			"reference":   payment.Reference,
			"status":      payment.Status,
			"amountCents": payment.AmountCents,
			"currency":    payment.Currency,
			"checkoutUrl": payment.CheckoutURL,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"sessionId": payment.SessionID,
			"createdAt": now,
		},
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"sessionId": payment.SessionID},
		update,
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *paymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFoundError("payment")
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, sessionID string, status models.PaymentStatus) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"sessionId": sessionID},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.NewNotFoundError("payment")
	}
	return nil
}
