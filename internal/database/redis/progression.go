// Package redis stores progression state as JSON documents in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/critiquest/critiquest/internal/domain"
	"github.com/critiquest/critiquest/internal/repository"
)

// KeyPrefix namespaces progression documents
const KeyPrefix = "critiquest:progression:"

// Config holds Redis connection settings
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns local development settings
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// NewClient creates a client and verifies the connection
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

type progressionRepository struct {
	client redis.UniversalClient
}

// NewProgressionRepository creates a Redis-backed progression repository.
// Each user is one key, so a commit is a single atomic SET.
func NewProgressionRepository(client redis.UniversalClient) repository.Progression {
	return &progressionRepository{client: client}
}

func key(userID string) string {
	return KeyPrefix + userID
}

func (r *progressionRepository) GetProgression(ctx context.Context, userID string) (*domain.ProgressionState, error) {
	data, err := r.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get progression: %w", err)
	}

	var state domain.ProgressionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode progression for user %s: %w", userID, err)
	}
	return &state, nil
}

func (r *progressionRepository) CommitProgression(ctx context.Context, state *domain.ProgressionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode progression for user %s: %w", state.UserID, err)
	}
	if err := r.client.Set(ctx, key(state.UserID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to commit progression for user %s: %w", state.UserID, err)
	}
	return nil
}

func (r *progressionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
