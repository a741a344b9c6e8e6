// internal/services/payment_provider_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"visa-checker-backend/internal/config"
	"visa-checker-backend/internal/models"
)

type PaymentProviderService interface {
	CreateCheckout(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResult, error)
}

type paymentProviderService struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	logger     *zap.Logger
}

func NewPaymentProviderService(cfg config.PaymentConfig, logger *zap.Logger) PaymentProviderService {
	return &paymentProviderService{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiURL: strings.TrimRight(cfg.ProviderURL, "/"),
		apiKey: cfg.ProviderAPIKey,
		logger: logger,
	}
}

func (s *paymentProviderService) CreateCheckout(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResult, error) {
	// Without a provider the checkout page is served locally.
	if s.apiURL == "" {
		s.logger.Debug("no payment provider configured, using local checkout", zap.String("session_id", req.SessionID))
		return &models.CheckoutResult{
			CheckoutURL: "/payments/local/" + req.SessionID,
			ProviderRef: req.Reference,
		}, nil
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/checkout", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	s.logger.Info("creating checkout",
		zap.String("session_id", req.SessionID),
		zap.String("reference", req.Reference),
	)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call payment provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var result models.CheckoutResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse provider response: %w", err)
	}
	if result.CheckoutURL == "" {
		return nil, fmt.Errorf("payment provider returned no checkout URL")
	}

	return &result, nil
}
