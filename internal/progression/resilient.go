package progression

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/critiquest/critiquest/internal/domain"
	"github.com/critiquest/critiquest/internal/logger"
	"github.com/critiquest/critiquest/internal/repository"
)

// ResilienceConfig tunes the store's timeout, retry and circuit breaker
type ResilienceConfig struct {
	Timeout          time.Duration
	MaxAttempts      int
	InitialDelay     time.Duration
	MaxDelay         time.Duration
	FailureThreshold int
	OpenTimeout      time.Duration
}

// DefaultResilienceConfig returns the defaults used when config leaves values unset
func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		Timeout:          DefaultStoreTimeout,
		MaxAttempts:      DefaultStoreMaxAttempts,
		InitialDelay:     DefaultStoreRetryDelay,
		MaxDelay:         DefaultStoreMaxRetryDelay,
		FailureThreshold: DefaultBreakerFailures,
		OpenTimeout:      DefaultBreakerOpenTimeout,
	}
}

// ResilientStore bounds every repository call with a timeout, retries transient
// failures and trips a circuit breaker when the backend keeps failing.
// Every failure it returns wraps domain.ErrStoreUnavailable.
type ResilientStore struct {
	inner   repository.Progression
	timeout time.Duration
	breaker circuitbreaker.CircuitBreaker[*domain.ProgressionState]
	retrier retry.Retry[*domain.ProgressionState]
}

// NewResilientStore wraps inner with fortify retry and circuit breaker policies
func NewResilientStore(inner repository.Progression, cfg ResilienceConfig) *ResilientStore {
	def := DefaultResilienceConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = def.InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}

	threshold := cfg.FailureThreshold
	return &ResilientStore{
		inner:   inner,
		timeout: cfg.Timeout,
		breaker: circuitbreaker.New[*domain.ProgressionState](circuitbreaker.Config{
			MaxRequests: DefaultBreakerHalfOpenReqs,
			Interval:    cfg.OpenTimeout,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return int(counts.ConsecutiveFailures) >= threshold
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				logger.Warn(LogMsgBreakerStateChange, "from", from.String(), "to", to.String())
			},
		}),
		retrier: retry.New[*domain.ProgressionState](retry.Config{
			MaxAttempts:   cfg.MaxAttempts,
			InitialDelay:  cfg.InitialDelay,
			MaxDelay:      cfg.MaxDelay,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
			IsRetryable:   isRetryableStoreError,
		}),
	}
}

func (r *ResilientStore) GetProgression(ctx context.Context, userID string) (*domain.ProgressionState, error) {
	state, err := r.execute(ctx, func(ctx context.Context) (*domain.ProgressionState, error) {
		return r.inner.GetProgression(ctx, userID)
	})
	if err != nil {
		return nil, unavailable("read", err)
	}
	return state, nil
}

func (r *ResilientStore) CommitProgression(ctx context.Context, state *domain.ProgressionState) error {
	_, err := r.execute(ctx, func(ctx context.Context) (*domain.ProgressionState, error) {
		return nil, r.inner.CommitProgression(ctx, state)
	})
	if err != nil {
		return unavailable("commit", err)
	}
	return nil
}

func (r *ResilientStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.inner.Ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// execute runs op through breaker and retry; each attempt gets its own timeout
func (r *ResilientStore) execute(ctx context.Context, op func(context.Context) (*domain.ProgressionState, error)) (*domain.ProgressionState, error) {
	attempt := func(ctx context.Context) (*domain.ProgressionState, error) {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		return op(ctx)
	}
	return r.breaker.Execute(ctx, func(ctx context.Context) (*domain.ProgressionState, error) {
		return r.retrier.Do(ctx, attempt)
	})
}

// isRetryableStoreError excludes caller cancellation; timeouts of a single attempt are retried
func isRetryableStoreError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled)
}
