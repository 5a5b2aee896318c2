// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/undrgrnd/hype/internal/adapters/repository"
	"github.com/undrgrnd/hype/internal/domain/feed"
	"github.com/undrgrnd/hype/internal/domain/geo"
	"github.com/undrgrnd/hype/internal/domain/hype"
	"github.com/undrgrnd/hype/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Identity
	Register(ctx context.Context, email, password, username string, role model.Role) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	CurrentUser(token string) string
	Profile(ctx context.Context, userID string) (model.UserProfile, error)
	SetGenres(ctx context.Context, userID string, genres []string) error
	SetCity(ctx context.Context, userID, city string) error
	SetCityFromPosition(ctx context.Context, userID string, lat, lng float64) error

	// Feed reads
	Feed(ctx context.Context, genreFilter string, viewer *geo.Point) []model.Event
	Markers(ctx context.Context, genreFilter string, viewer *geo.Point) []model.Event
	Search(ctx context.Context, query string) []model.Event
	Event(ctx context.Context, id string) (model.Event, error)

	// Writes
	CreateEvent(ctx context.Context, organizerID string, e model.Event) (model.Event, error)
	ToggleHype(ctx context.Context, eventID, userID string) (<-chan hype.Result, error)

	// Live updates
	WatchFeed(ctx context.Context, genreFilter string, viewer *geo.Point) <-chan []model.Event
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	authHandler   *AuthHandler
	feedHandler   *FeedHandler
	eventsHandler *EventsHandler
	searchHandler *SearchHandler
	wsHandler     *WSHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		authHandler:   NewAuthHandler(deps),
		feedHandler:   NewFeedHandler(deps),
		eventsHandler: NewEventsHandler(deps),
		searchHandler: NewSearchHandler(deps),
		wsHandler:     NewWSHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/register", MetricsMiddleware(s.authHandler.HandleRegister, "register"))
	mux.HandleFunc("/login", MetricsMiddleware(s.authHandler.HandleLogin, "login"))
	mux.HandleFunc("/profile", MetricsMiddleware(s.authHandler.HandleProfile, "profile"))
	mux.HandleFunc("/feed", MetricsMiddleware(s.feedHandler.HandleGetFeed, "feed"))
	mux.HandleFunc("/feed/markers", MetricsMiddleware(s.feedHandler.HandleGetMarkers, "feed_markers"))
	mux.HandleFunc("/search", MetricsMiddleware(s.searchHandler.HandleSearch, "search"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/events/", MetricsMiddleware(s.eventsHandler.HandleEventSubtree, "event"))
	mux.HandleFunc("/ws/feed", s.wsHandler.HandleFeedSocket)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// bearerToken extracts a "Bearer x" Authorization header, or "".
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

// viewerPosition reads optional lat/lng query parameters into an optional
// point; both must be present and parseable for a position to exist.
func viewerPosition(r *http.Request) *geo.Point {
	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")
	if latStr == "" || lngStr == "" {
		return nil
	}
	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		return nil
	}
	return geo.NewPoint(lat, lng)
}

// genreFilter reads the genre query parameter; absent means wildcard.
func genreFilter(r *http.Request) string {
	g := strings.TrimSpace(r.URL.Query().Get("genre"))
	if strings.EqualFold(g, "all") {
		return feed.Wildcard
	}
	return g
}

// isNotFound allows the API to translate upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
