// Package app provides the core business service that implements
// the dependencies required by the HTTP API.
package app

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/undrgrnd/hype/internal/adapters/auth"
	"github.com/undrgrnd/hype/internal/adapters/geocode"
	"github.com/undrgrnd/hype/internal/adapters/mq/queue"
	"github.com/undrgrnd/hype/internal/adapters/mq/worker"
	"github.com/undrgrnd/hype/internal/adapters/repository"
	"github.com/undrgrnd/hype/internal/domain/feed"
	"github.com/undrgrnd/hype/internal/domain/geo"
	"github.com/undrgrnd/hype/internal/domain/hype"
	"github.com/undrgrnd/hype/internal/domain/model"
	"github.com/undrgrnd/hype/pkg/logger"
	"github.com/undrgrnd/hype/pkg/metrics"
)

// Service wires the feed pipeline, the hype ledger and their collaborators
// behind the methods the HTTP layer consumes.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	processor  feed.Ranker
	ledger     *hype.Ledger
	toggleQ    queue.Queue
	workerPool *worker.Pool
	accounts   *auth.Registry
	tokens     *auth.Tokens
	geocoder   geocode.Geocoder
	clock      clockwork.Clock

	// Configuration
	workerCount       int
	queueSize         int
	proximityWindowKM float64
	jwtSecret         string
	tokenTTL          time.Duration

	// State
	started bool

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:       runtime.NumCPU() * 2,
		queueSize:         1024,
		proximityWindowKM: 10,
		jwtSecret:         "devsecret",
		tokenTTL:          24 * time.Hour,
		clock:             clockwork.NewRealClock(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting hype feed service...")

	if s.store == nil {
		s.store = repository.NewMemStore()
	}
	s.processor = feed.New(feed.WithProximityWindow(s.proximityWindowKM))
	s.ledger = hype.NewLedger(s.store, hype.WithLogger(s.logger.Named("hype")))
	s.toggleQ = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.accounts = auth.NewRegistry()
	s.tokens = auth.NewTokens(s.jwtSecret, auth.WithTTL(s.tokenTTL))
	if s.geocoder == nil {
		s.geocoder = geocode.NewClient()
	}

	s.workerPool = worker.NewPool(s.workerCount, s.toggleQ, s.ledger)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "hype feed service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Float64("proximityWindowKM", s.proximityWindowKM),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping hype feed service...")

	if s.toggleQ != nil {
		_ = s.toggleQ.Close()
	}
	if s.workerPool != nil {
		s.workerPool.Stop()
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "hype feed service stopped")
}

// Register creates an account and returns a session token for it.
func (s *Service) Register(ctx context.Context, email, password, username string, role model.Role) (string, error) {
	userID, err := s.accounts.Register(ctx, email, password, username, role)
	if err != nil {
		metrics.RecordErrorByComponent("auth", "register")
		return "", err
	}
	return s.tokens.Issue(userID)
}

// Login checks credentials and returns a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	userID, err := s.accounts.Login(ctx, email, password)
	if err != nil {
		metrics.RecordErrorByComponent("auth", "login")
		return "", err
	}
	return s.tokens.Issue(userID)
}

// CurrentUser resolves a session token to a user id, or "" when the token
// is absent or invalid (the unauthenticated viewer).
func (s *Service) CurrentUser(token string) string {
	if token == "" {
		return ""
	}
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return ""
	}
	return userID
}

// Profile returns the stored profile for a user id.
func (s *Service) Profile(ctx context.Context, userID string) (model.UserProfile, error) {
	return s.accounts.Profile(ctx, userID)
}

// SetGenres replaces a user's preferred genres.
func (s *Service) SetGenres(ctx context.Context, userID string, genres []string) error {
	return s.accounts.SetGenres(ctx, userID, genres)
}

// SetCity updates a user's home city.
func (s *Service) SetCity(ctx context.Context, userID, city string) error {
	return s.accounts.SetCity(ctx, userID, city)
}

// SetCityFromPosition reverse-geocodes the given coordinates and stores the
// resolved place name as the user's home city. Unlike event creation, the
// lookup here is the whole point of the call, so failure surfaces to the
// caller instead of being swallowed.
func (s *Service) SetCityFromPosition(ctx context.Context, userID string, lat, lng float64) error {
	place, err := s.geocoder.Reverse(ctx, lat, lng)
	if err != nil {
		s.logger.Warn(ctx, "reverse geocoding failed",
			logger.Float64("lat", lat),
			logger.Float64("lng", lng),
			logger.Error(err),
		)
		return fmt.Errorf("resolve city: %w", err)
	}
	return s.accounts.SetCity(ctx, userID, place.DisplayName)
}

// Feed returns the ranked, filtered event list for the given viewer context.
func (s *Service) Feed(ctx context.Context, genreFilter string, viewer *geo.Point) []model.Event {
	return s.rank(ctx, s.store.List(ctx), genreFilter, viewer)
}

// Markers returns the ranked feed narrowed to events that can be mapped.
func (s *Service) Markers(ctx context.Context, genreFilter string, viewer *geo.Point) []model.Event {
	return feed.Markers(s.Feed(ctx, genreFilter, viewer))
}

// Search returns the ranked feed narrowed to title/location matches.
func (s *Service) Search(ctx context.Context, query string) []model.Event {
	return feed.Search(s.rank(ctx, s.store.List(ctx), feed.Wildcard, nil), query)
}

// Event returns a single event by id.
func (s *Service) Event(ctx context.Context, id string) (model.Event, error) {
	return s.store.Get(ctx, id)
}

// CreateEvent stores a new event on behalf of an organizer. The id, hype
// state and organizer are assigned here regardless of what the caller sent.
// A missing position is resolved best-effort from the free-text location;
// geocoding failure never blocks creation.
func (s *Service) CreateEvent(ctx context.Context, organizerID string, e model.Event) (model.Event, error) {
	role, err := s.accounts.Role(ctx, organizerID)
	if err != nil {
		return model.Event{}, err
	}
	if role != model.RoleOrganizer {
		return model.Event{}, ErrNotOrganizer
	}

	e.ID = uuid.NewString()
	e.OrganizerID = organizerID
	e.Hype = 0
	e.HypedBy = nil

	if !e.HasCoordinates() && e.Location != "" {
		if places, err := s.geocoder.Search(ctx, e.Location); err != nil {
			s.logger.Warn(ctx, "geocoding failed, storing event without position",
				logger.String("location", e.Location),
				logger.Error(err),
			)
		} else if len(places) > 0 {
			e.Lat = places[0].Lat
			e.Lng = places[0].Lng
		}
	}

	if err := s.store.Put(ctx, e); err != nil {
		return model.Event{}, fmt.Errorf("store event: %w", err)
	}
	s.logger.Info(ctx, "event created",
		logger.String("eventID", e.ID),
		logger.String("genre", e.Genre),
	)
	return e, nil
}

// ToggleHype submits a toggle for asynchronous processing and returns the
// result future. It fails fast, with no side effect, for unauthenticated
// callers and on queue backpressure.
func (s *Service) ToggleHype(ctx context.Context, eventID, userID string) (<-chan hype.Result, error) {
	if userID == "" {
		return nil, hype.ErrUnauthenticated
	}

	result := make(chan hype.Result, 1)
	job := queue.Job{
		Toggle: hype.Toggle{EventID: eventID, UserID: userID},
		Result: result,
	}
	if !s.toggleQ.Enqueue(ctx, job) {
		return nil, hype.ErrBackpressure
	}
	return result, nil
}

// WatchFeed subscribes to store snapshots and re-ranks each one for the
// given viewer context. A slow consumer only ever sees the newest snapshot.
func (s *Service) WatchFeed(ctx context.Context, genreFilter string, viewer *geo.Point) <-chan []model.Event {
	out := make(chan []model.Event, 1)
	snapshots := s.store.Watch(ctx)

	go func() {
		defer close(out)
		for snapshot := range snapshots {
			ranked := s.rank(ctx, snapshot, genreFilter, viewer)
			select {
			case out <- ranked:
			default:
				select {
				case <-out: // supersede the unconsumed ranking
				default:
				}
				select {
				case out <- ranked:
				default:
				}
			}
		}
	}()
	return out
}

// rank runs the processor over a snapshot and records feed metrics.
func (s *Service) rank(ctx context.Context, events []model.Event, genreFilter string, viewer *geo.Point) []model.Event {
	start := time.Now()
	ranked := s.processor.Process(ctx, events, genreFilter, viewer, s.clock.Now())

	metrics.RecordFeedRecompute()
	metrics.RecordFeedLatency(float64(time.Since(start).Milliseconds()))
	metrics.UpdateFeedSize(len(ranked))
	return ranked
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}
	if s.started {
		stats["events"] = s.store.Count(ctx)
		stats["toggleQueueLength"] = s.toggleQ.Len(ctx)
	}
	return stats
}
