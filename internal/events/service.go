package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ErrEmptyFeed is returned when a refresh produced no events; the previous
// cache is kept rather than replaced with an empty map.
var ErrEmptyFeed = errors.New("calendar feed produced no events")

// Provider fetches raw calendar feed text.
type Provider interface {
	// FetchCalendar fetches the raw iCalendar payload.
	FetchCalendar(ctx context.Context) (string, error)

	// Name returns the provider name for logging.
	Name() string
}

// ServiceConfig holds configuration for the events service.
type ServiceConfig struct {
	// Provider is the calendar feed source.
	Provider Provider

	// Repository persists the last successful event map. Optional; without
	// it the service is memory-only.
	Repository Repository

	// StaticEvents is the bundled last-resort data set served until a
	// cached or fresh map is available.
	StaticEvents EventMap

	// Logger for service operations.
	Logger zerolog.Logger

	// Metrics records refresh and read metrics. Optional.
	Metrics *FeedMetrics
}

// Service serves the event map with two-phase semantics: reads are always
// answered immediately from the in-memory snapshot (cached, else bundled
// static data), while refreshes replace the snapshot atomically on success
// and leave it untouched on failure. Concurrent refreshes are collapsed into
// a single feed fetch.
type Service struct {
	provider Provider
	repo     Repository
	static   EventMap
	logger   zerolog.Logger
	metrics  *FeedMetrics

	group singleflight.Group

	mu            sync.RWMutex
	cached        EventMap
	lastRefreshAt time.Time
	lastError     error
}

// NewService creates a new events service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		repo:     cfg.Repository,
		static:   cfg.StaticEvents,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}
}

// Prime loads the persisted event map into memory. Missing or unreadable
// cache data is not an error; the service falls back to bundled static data.
func (s *Service) Prime(ctx context.Context) {
	if s.repo == nil {
		return
	}

	cached, err := s.repo.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoCachedEvents) {
			s.logger.Warn().Err(err).Msg("failed to load cached events, serving bundled data")
		}
		return
	}

	s.mu.Lock()
	s.cached = cached
	s.mu.Unlock()

	s.logger.Info().Int("dates", len(cached)).Msg("event cache primed")
}

// Events returns the current snapshot. IsRemote reports whether the data came
// from a feed refresh (directly or via the persisted cache) rather than the
// bundled defaults.
func (s *Service) Events(_ context.Context) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cached != nil {
		s.metrics.RecordRead(true)
		return Snapshot{Data: s.cached, IsRemote: true}
	}
	s.metrics.RecordRead(false)
	return Snapshot{Data: s.static, IsRemote: false}
}

// EventsForDate returns the events bucketed under an M/D/YYYY key, in feed
// encounter order.
func (s *Service) EventsForDate(ctx context.Context, key string) []Event {
	return s.Events(ctx).Data[key]
}

// Refresh fetches and normalizes the feed, then atomically replaces the
// cached map. On any failure the previous map stays authoritative and the
// error is returned. Concurrent callers share a single in-flight refresh.
func (s *Service) Refresh(ctx context.Context) (EventMap, error) {
	result, err, _ := s.group.Do("refresh", func() (interface{}, error) {
		return s.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(EventMap), nil
}

func (s *Service) refresh(ctx context.Context) (EventMap, error) {
	start := time.Now()

	raw, err := s.provider.FetchCalendar(ctx)
	s.metrics.RecordRefresh(s.provider.Name(), time.Since(start), err)
	if err != nil {
		s.recordError(err)
		return nil, fmt.Errorf("fetching calendar feed: %w", err)
	}

	normalized, err := Normalize(raw)
	if err != nil {
		s.recordError(err)
		return nil, err
	}

	if len(normalized) == 0 {
		s.recordError(ErrEmptyFeed)
		return nil, ErrEmptyFeed
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, normalized); err != nil {
			// Persistence failure is non-fatal: the fresh map still
			// replaces the in-memory snapshot.
			s.logger.Error().Err(err).Msg("failed to persist event cache")
		}
	}

	s.mu.Lock()
	s.cached = normalized
	s.lastRefreshAt = time.Now()
	s.lastError = nil
	s.mu.Unlock()

	s.logger.Info().
		Str("provider", s.provider.Name()).
		Int("dates", len(normalized)).
		Msg("event cache refreshed")

	return normalized, nil
}

func (s *Service) recordError(err error) {
	s.mu.Lock()
	s.lastError = err
	s.mu.Unlock()
}

// Status describes the refresh state for the ops surface.
type Status struct {
	Provider      string     `json:"provider"`
	IsRemote      bool       `json:"isRemote"`
	Dates         int        `json:"dates"`
	LastRefreshAt *time.Time `json:"lastRefreshAt,omitempty"`
	LastError     string     `json:"lastError,omitempty"`
}

// Status returns the current refresh state.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		Provider: s.provider.Name(),
		IsRemote: s.cached != nil,
	}
	if s.cached != nil {
		status.Dates = len(s.cached)
	} else {
		status.Dates = len(s.static)
	}
	if !s.lastRefreshAt.IsZero() {
		t := s.lastRefreshAt
		status.LastRefreshAt = &t
	}
	if s.lastError != nil {
		status.LastError = s.lastError.Error()
	}
	return status
}
