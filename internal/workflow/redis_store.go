// internal/workflow/redis_store.go
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"visa-checker-backend/internal/models"
)

const (
	workflowKeyPrefix = "visacheck:workflow:"
	paymentKeyPrefix  = "visacheck:payment:"

	fieldCurrentStep       = "currentStep"
	fieldValidationData    = "validationData"
	fieldValidationResults = "validationResults"
	fieldSessionID         = "sessionId"
)

// RedisStore keeps one hash per client with a field per logical part of the
// state, plus a payment status key per session. A zero ttl never expires.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func workflowKey(clientID string) string {
	return workflowKeyPrefix + clientID
}

func paymentKey(sessionID string) string {
	return paymentKeyPrefix + sessionID
}

func (s *RedisStore) Load(ctx context.Context, clientID string) (State, error) {
	state := Initial()

	fields, err := s.client.HGetAll(ctx, workflowKey(clientID)).Result()
	if err != nil {
		return state, err
	}

	if v := fields[fieldCurrentStep]; v != "" {
		if step, err := strconv.Atoi(v); err == nil {
			state.CurrentStep = Clamp(Step(step))
		}
	}
	if v := fields[fieldValidationData]; v != "" {
		if err := json.Unmarshal([]byte(v), &state.Data); err != nil {
			return Initial(), fmt.Errorf("corrupt %s: %w", fieldValidationData, err)
		}
		if state.Data.UploadedFiles == nil {
			state.Data.UploadedFiles = []models.UploadedFileDescriptor{}
		}
		if state.Data.CheckedDocuments == nil {
			state.Data.CheckedDocuments = map[string]bool{}
		}
	}
	if v := fields[fieldValidationResults]; v != "" {
		if err := json.Unmarshal([]byte(v), &state.Results); err != nil {
			return Initial(), fmt.Errorf("corrupt %s: %w", fieldValidationResults, err)
		}
	}
	state.SessionID = fields[fieldSessionID]

	if state.SessionID != "" {
		status, err := s.client.Get(ctx, paymentKey(state.SessionID)).Result()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return Initial(), err
		case models.PaymentStatus(status).Valid():
			state.PaymentStatus = models.PaymentStatus(status)
		}
	}

	return state, nil
}

// Save writes every part of the state in one MULTI/EXEC.
func (s *RedisStore) Save(ctx context.Context, clientID string, state State) error {
	data, err := json.Marshal(state.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", fieldValidationData, err)
	}
	results, err := json.Marshal(state.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", fieldValidationResults, err)
	}

	key := workflowKey(clientID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			fieldCurrentStep, strconv.Itoa(int(state.CurrentStep)),
			fieldValidationData, string(data),
			fieldValidationResults, string(results),
			fieldSessionID, state.SessionID,
		)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		if state.SessionID != "" {
			pipe.Set(ctx, paymentKey(state.SessionID), string(state.PaymentStatus), s.ttl)
		}
		return nil
	})
	return err
}

func (s *RedisStore) Delete(ctx context.Context, clientID string) error {
	key := workflowKey(clientID)

	sessionID, err := s.client.HGet(ctx, key, fieldSessionID).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if sessionID != "" {
			pipe.Del(ctx, paymentKey(sessionID))
		}
		return nil
	})
	return err
}
