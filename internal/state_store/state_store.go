package statestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SeakMengs/InstaPilot/internal/config"
	"github.com/SeakMengs/InstaPilot/internal/util"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PendingAuthorization is the server side record of an in-flight oauth
// authorization request, keyed by the anti forgery state token. UserID is
// empty for the login flow and holds the authenticated user for the link
// flow. Records are one-time use.
type PendingAuthorization struct {
	State     string    `json:"state"`
	UserID    string    `json:"userId,omitempty"`
	Next      string    `json:"next,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type StateStore struct {
	client *redis.Client
	logger *zap.SugaredLogger
}

func NewStateStore(cfg config.RedisConfig, logger *zap.SugaredLogger) *StateStore {
	// For unit test
	if logger == nil {
		logger = util.NewLogger()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &StateStore{client: client, logger: logger}
}

func (s *StateStore) GenerateState() (string, error) {
	return util.GenerateNChar(32)
}

func stateKey(state string) string {
	return fmt.Sprintf("oauth_state:%s", state)
}

func (s *StateStore) Save(ctx context.Context, pending PendingAuthorization, ttl time.Duration) error {
	pending.ExpiresAt = time.Now().Add(ttl)

	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to marshal pending authorization: %w", err)
	}

	return s.client.Set(ctx, stateKey(pending.State), data, ttl).Err()
}

// Consume looks up and deletes the record for the given state. It returns
// nil when the state is unknown or expired, so a replayed callback cannot
// pass validation twice.
func (s *StateStore) Consume(ctx context.Context, state string) (*PendingAuthorization, error) {
	if state == "" {
		return nil, nil
	}

	// GETDEL is atomic, so two concurrent callbacks with the same state
	// cannot both receive the record.
	data, err := s.client.GetDel(ctx, stateKey(state)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume pending authorization: %w", err)
	}

	var pending PendingAuthorization
	if err := json.Unmarshal([]byte(data), &pending); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending authorization: %w", err)
	}

	if time.Now().After(pending.ExpiresAt) {
		return nil, nil
	}

	return &pending, nil
}

func (s *StateStore) Close() error {
	return s.client.Close()
}
