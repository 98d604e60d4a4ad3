package progression

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/critiquest/critiquest/internal/activity"
	"github.com/critiquest/critiquest/internal/catalog"
	"github.com/critiquest/critiquest/internal/concurrency"
	"github.com/critiquest/critiquest/internal/domain"
	"github.com/critiquest/critiquest/internal/event"
	"github.com/critiquest/critiquest/internal/logger"
	"github.com/critiquest/critiquest/internal/metrics"
)

// Service defines the progression engine's caller API
type Service interface {
	// ApplyUpdate folds one activity report into the user's state and returns the
	// rewards it earned. Failures are reported in the result, never as panics.
	ApplyUpdate(ctx context.Context, userID string, update domain.ProgressionUpdate, immediate bool) *domain.UpdateResult

	// GetProgression returns nil for users that have never committed an update
	GetProgression(ctx context.Context, userID string) (*domain.ProgressionState, error)
	GetMilestones(ctx context.Context, userID string) ([]domain.ProgressionMilestone, error)
	GetLevelProgress(ctx context.Context, userID string) (*domain.LevelProgress, error)

	Catalog() *catalog.Catalog
	Ping(ctx context.Context) error

	// Shutdown waits for in-flight updates and rejects new ones
	Shutdown(ctx context.Context) error
}

// Option configures the service
type Option func(*service)

// WithPublisher publishes committed updates, level-ups and rewards to the event bus
func WithPublisher(p event.Publisher) Option {
	return func(s *service) {
		s.publisher = p
	}
}

// WithClock overrides the clock used for UpdatedAt
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

type service struct {
	store     *Store
	catalog   *catalog.Catalog
	resolver  *Resolver
	locks     *concurrency.LockManager
	publisher event.Publisher
	now       func() time.Time

	// gate orders inFlight.Add against Shutdown's Wait
	gate     sync.RWMutex
	closed   bool
	inFlight sync.WaitGroup
}

// errShuttingDown is retryable: the update was not applied
var errShuttingDown = fmt.Errorf("%w: service is shutting down", domain.ErrStoreUnavailable)

// NewService creates the progression coordinator. A missing catalog is fatal.
func NewService(store *Store, c *catalog.Catalog, opts ...Option) (Service, error) {
	if c == nil {
		return nil, domain.ErrCatalogUnloaded
	}
	if store == nil {
		return nil, errors.New("progression store is required")
	}

	s := &service{
		store:    store,
		catalog:  c,
		resolver: NewResolver(c),
		locks:    concurrency.NewLockManager(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type sourceKey struct{}

// WithSource tags updates applied with ctx so published events record where they came from
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

func sourceFromContext(ctx context.Context) string {
	if source, ok := ctx.Value(sourceKey{}).(string); ok && source != "" {
		return source
	}
	return SourceAPI
}

func (s *service) ApplyUpdate(ctx context.Context, userID string, update domain.ProgressionUpdate, immediate bool) *domain.UpdateResult {
	start := time.Now()
	ctx = logger.WithUserID(ctx, userID)
	log := logger.FromContext(ctx)

	result := &domain.UpdateResult{
		Phase:         domain.PhaseIdle,
		ActivityTitle: activity.DisplayName(ctx, update.ActivityType),
	}

	if !s.begin() {
		return s.fail(ctx, result, errShuttingDown)
	}
	defer s.inFlight.Done()

	if strings.TrimSpace(userID) == "" {
		return s.fail(ctx, result, fmt.Errorf("%w: user id is required", domain.ErrInvalidUpdate))
	}
	if err := update.Validate(); err != nil {
		return s.fail(ctx, result, err)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	result.Phase = domain.PhaseApplying
	state, err := s.store.Get(ctx, userID)
	if err != nil {
		return s.fail(ctx, result, err)
	}
	s.warnUnknownGrants(ctx, state)
	applyDeltas(state, update)
	transition := advanceLevel(state, s.catalog.Levels())

	result.Phase = domain.PhaseEvaluating
	qualified := Evaluate(state, s.catalog.Milestones())

	result.Phase = domain.PhaseResolving
	resolution := s.resolver.Resolve(state, qualified, transition)
	state.GrantedMilestoneIDs.Add(resolution.GrantedIDs...)
	if resolution.RewardedStreak > state.LastRewardedStreak {
		state.LastRewardedStreak = resolution.RewardedStreak
	}
	state.UpdatedAt = s.now().UTC()

	if err := s.store.Commit(ctx, state); err != nil {
		return s.fail(ctx, result, err)
	}
	unlock()

	result.Phase = domain.PhaseCommitted
	result.Success = true
	result.Rewards = resolution.Rewards
	result.NewLevel = state.Level
	result.State = state
	metrics.UpdateDuration.Observe(time.Since(start).Seconds())

	if transition != nil {
		log.Info(LogMsgLevelUp, "from", transition.From, "to", transition.To)
	}
	for _, id := range resolution.GrantedIDs {
		log.Info(LogMsgMilestoneGranted, "milestone_id", id)
	}
	log.Debug(LogMsgUpdateApplied,
		"level", state.Level,
		"experience", state.Experience,
		"rewards", len(resolution.Rewards),
		"immediate", immediate)

	s.publishCommitted(ctx, state, transition, resolution.Rewards, update.ActivityType)
	return result
}

// fail marks result as failed at its current phase
func (s *service) fail(ctx context.Context, result *domain.UpdateResult, err error) *domain.UpdateResult {
	result.Success = false
	result.FailedAt = result.Phase
	result.Phase = domain.PhaseFailed
	result.Error = err
	result.ErrorMessage = err.Error()

	metrics.UpdatesFailed.WithLabelValues(metrics.FailureReason(err)).Inc()

	log := logger.FromContext(ctx)
	if errors.Is(err, domain.ErrInvalidUpdate) || errors.Is(err, errShuttingDown) {
		log.Warn(LogMsgUpdateRejected, "error", err)
	} else {
		log.Error(LogMsgUpdateFailed, "failed_at", result.FailedAt, "error", err)
	}
	return result
}

// begin registers an in-flight update unless Shutdown has started
func (s *service) begin() bool {
	s.gate.RLock()
	defer s.gate.RUnlock()
	if s.closed {
		return false
	}
	s.inFlight.Add(1)
	return true
}

// warnUnknownGrants flags granted ids whose milestone was dropped from the catalog.
// They stay granted so re-adding the milestone cannot pay it out twice.
func (s *service) warnUnknownGrants(ctx context.Context, state *domain.ProgressionState) {
	for _, id := range state.GrantedMilestoneIDs.Sorted() {
		if _, ok := s.catalog.Milestone(id); !ok {
			logger.FromContext(ctx).Warn(LogMsgUnknownMilestoneRef, "milestone_id", id, "catalog_version", s.catalog.Version())
		}
	}
}

func (s *service) GetProgression(ctx context.Context, userID string) (*domain.ProgressionState, error) {
	return s.store.Peek(ctx, userID)
}

func (s *service) GetMilestones(ctx context.Context, userID string) ([]domain.ProgressionMilestone, error) {
	state, err := s.stateOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Annotate(state, s.catalog.Milestones()), nil
}

func (s *service) GetLevelProgress(ctx context.Context, userID string) (*domain.LevelProgress, error) {
	state, err := s.stateOrDefault(ctx, userID)
	if err != nil {
		return nil, err
	}

	levels := s.catalog.Levels()
	progress := &domain.LevelProgress{
		UserID:     userID,
		Level:      state.Level,
		Experience: state.Experience,
	}
	if threshold, ok := levels.Threshold(state.Level); ok {
		progress.LevelThreshold = threshold
	}
	next, ok := levels.Threshold(state.Level + 1)
	if !ok {
		progress.MaxLevel = true
		return progress, nil
	}
	progress.NextThreshold = &next
	if remaining := next - state.Experience; remaining > 0 {
		progress.ExperienceToNext = remaining
	}
	return progress, nil
}

// stateOrDefault reads without creating; unknown users are reported as the default state
func (s *service) stateOrDefault(ctx context.Context, userID string) (*domain.ProgressionState, error) {
	state, err := s.store.Peek(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = domain.NewProgressionState(userID)
	}
	return state, nil
}

func (s *service) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *service) Shutdown(ctx context.Context) error {
	s.gate.Lock()
	s.closed = true
	s.gate.Unlock()

	done := make(chan struct{})
	go func() {
		s.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("progression service shutdown: %w", ctx.Err())
	}
}
