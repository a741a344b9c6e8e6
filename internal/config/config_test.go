package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "visacheck", cfg.Database.Database)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 72*time.Hour, cfg.Redis.WorkflowTTL)
	assert.Equal(t, int64(1999), cfg.Payment.PriceCents)
	assert.Equal(t, "USD", cfg.Payment.Currency)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("WORKFLOW_TTL_HOURS", "1")
	t.Setenv("REPORT_PRICE_CENTS", "500")
	t.Setenv("REPORT_CURRENCY", "EUR")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, time.Hour, cfg.Redis.WorkflowTTL)
	assert.Equal(t, int64(500), cfg.Payment.PriceCents)
	assert.Equal(t, "EUR", cfg.Payment.Currency)
}

func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		errMsg string
	}{
		{
			name:   "missing mongo uri",
			env:    map[string]string{"MONGODB_URI": "", "JWT_SECRET": "s"},
			errMsg: "MONGODB_URI is required",
		},
		{
			name:   "missing jwt secret",
			env:    map[string]string{"MONGODB_URI": "mongodb://x", "JWT_SECRET": ""},
			errMsg: "JWT_SECRET is required",
		},
		{
			name: "provider without webhook secret",
			env: map[string]string{
				"MONGODB_URI":            "mongodb://x",
				"JWT_SECRET":             "s",
				"PAYMENT_PROVIDER_URL":   "https://pay.example.com",
				"PAYMENT_WEBHOOK_SECRET": "",
			},
			errMsg: "PAYMENT_WEBHOOK_SECRET is required",
		},
		{
			name:   "non-positive price",
			env:    map[string]string{"MONGODB_URI": "mongodb://x", "JWT_SECRET": "s", "REPORT_PRICE_CENTS": "-5"},
			errMsg: "REPORT_PRICE_CENTS must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
