// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/undrgrnd/hype/internal/adapters/auth"
	"github.com/undrgrnd/hype/internal/app"
	"github.com/undrgrnd/hype/internal/domain/hype"
	"github.com/undrgrnd/hype/internal/domain/model"
)

// EventsHandler handles event creation, lookup and hype toggles.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventResponse is the wire shape of an event. The membership set stays
// server-side; clients only learn its size and their own state.
type eventResponse struct {
	ID          string  `json:"id"`
	OrganizerID string  `json:"organizer_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Location    string  `json:"location"`
	Date        string  `json:"date"`
	Time        string  `json:"time,omitempty"`
	Genre       string  `json:"genre"`
	ImageURL    string  `json:"image_url,omitempty"`
	Hype        int     `json:"hype"`
	Hyped       bool    `json:"hyped"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

func toEventResponse(e model.Event, viewerID string) eventResponse {
	return eventResponse{
		ID:          e.ID,
		OrganizerID: e.OrganizerID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		Date:        e.Date,
		Time:        e.Time,
		Genre:       e.Genre,
		ImageURL:    e.ImageURL,
		Hype:        e.Hype,
		Hyped:       viewerID != "" && e.HypedByUser(viewerID),
		Lat:         e.Lat,
		Lng:         e.Lng,
	}
}

func toEventResponses(events []model.Event, viewerID string) []eventResponse {
	out := make([]eventResponse, len(events))
	for i := range events {
		out[i] = toEventResponse(events[i], viewerID)
	}
	return out
}

type createEventRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Genre       string  `json:"genre"`
	ImageURL    string  `json:"image_url"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

func (req createEventRequest) validate() error {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return errors.New("missing title")
	case strings.TrimSpace(req.Date) == "":
		return errors.New("missing date")
	case strings.TrimSpace(req.Genre) == "":
		return errors.New("missing genre")
	}
	return nil
}

// HandlePostEvent handles POST /events requests (organizer only).
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	userID := h.deps.CurrentUser(bearerToken(r))
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated", auth.ErrInvalidToken)
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	created, err := h.deps.CreateEvent(r.Context(), userID, model.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Date:        req.Date,
		Time:        req.Time,
		Genre:       req.Genre,
		ImageURL:    req.ImageURL,
		Lat:         req.Lat,
		Lng:         req.Lng,
	})
	if err != nil {
		if errors.Is(err, app.ErrNotOrganizer) {
			writeError(w, http.StatusForbidden, "forbidden", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventResponse(created, userID))
}

// HandleEventSubtree routes GET /events/{id} and POST /events/{id}/hype.
func (h *EventsHandler) HandleEventSubtree(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/events/")
	if path == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	if id, ok := strings.CutSuffix(path, "/hype"); ok && !strings.Contains(id, "/") {
		h.handleToggleHype(w, r, id)
		return
	}
	if strings.Contains(path, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	h.handleGetEvent(w, r, path)
}

func (h *EventsHandler) handleGetEvent(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	event, err := h.deps.Event(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(event, h.deps.CurrentUser(bearerToken(r))))
}

// handleToggleHype handles POST /events/{id}/hype. The toggle is applied
// asynchronously; the handler awaits the result future so the client gets a
// definitive outcome, never a speculative count.
func (h *EventsHandler) handleToggleHype(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	userID := h.deps.CurrentUser(bearerToken(r))

	future, err := h.deps.ToggleHype(r.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, hype.ErrUnauthenticated):
			writeError(w, http.StatusUnauthorized, "unauthenticated", err)
		case errors.Is(err, hype.ErrBackpressure):
			writeError(w, http.StatusTooManyRequests, "backpressure", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}

	select {
	case res := <-future:
		if res.Err != nil {
			if isNotFound(res.Err) {
				writeError(w, http.StatusNotFound, "not_found", res.Err)
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", res.Err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(res.Event, userID))
	case <-r.Context().Done():
		writeError(w, http.StatusGatewayTimeout, "timeout", r.Context().Err())
	}
}
