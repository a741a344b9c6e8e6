// internal/models/payment.go
package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentPaid       PaymentStatus = "paid"
	PaymentFailed     PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentProcessing, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

type Payment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	SessionID   string             `bson:"sessionId" json:"sessionId"`
	Email       string             `bson:"email" json:"email"`
	Reference   string             `bson:"reference" json:"reference"`
	Status      PaymentStatus      `bson:"status" json:"status"`
	AmountCents int64              `bson:"amountCents" json:"amountCents"`
	Currency    string             `bson:"currency" json:"currency"`
	CheckoutURL string             `bson:"checkoutUrl,omitempty" json:"checkoutUrl,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type CheckoutRequest struct {
	SessionID   string `json:"sessionId"`
	Reference   string `json:"reference"`
	Email       string `json:"email"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency"`
}

type CheckoutResult struct {
	CheckoutURL string `json:"checkoutUrl"`
	ProviderRef string `json:"providerRef,omitempty"`
}

type PaymentStatusResponse struct {
	SessionID   string        `json:"sessionId"`
	Status      PaymentStatus `json:"status"`
	CheckoutURL string        `json:"checkoutUrl,omitempty"`
}

// WebhookEvent is the payment provider callback payload.
type WebhookEvent struct {
	Reference string        `json:"reference"`
	SessionID string        `json:"sessionId"`
	Status    PaymentStatus `json:"status"`
}

func (e *WebhookEvent) Validate() error {
	if e.SessionID == "" {
		return errors.New("sessionId is required")
	}
	if e.Reference == "" {
		return errors.New("reference is required")
	}
	if e.Status != PaymentPaid && e.Status != PaymentFailed {
		return errors.New("status must be paid or failed")
	}
	return nil
}
