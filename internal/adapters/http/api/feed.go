// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// FeedHandler handles ranked feed requests.
type FeedHandler struct {
	deps Dependencies
}

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(deps Dependencies) *FeedHandler {
	return &FeedHandler{deps: deps}
}

type feedResponse struct {
	Events []eventResponse `json:"events"`
}

// HandleGetFeed handles GET /feed?genre=&lat=&lng= requests. An empty feed
// is a valid result, not an error.
func (h *FeedHandler) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	viewer := h.deps.CurrentUser(bearerToken(r))
	events := h.deps.Feed(r.Context(), genreFilter(r), viewerPosition(r))
	writeJSON(w, http.StatusOK, feedResponse{Events: toEventResponses(events, viewer)})
}

// HandleGetMarkers handles GET /feed/markers requests: the same ranked feed
// narrowed to events with usable coordinates.
func (h *FeedHandler) HandleGetMarkers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	viewer := h.deps.CurrentUser(bearerToken(r))
	events := h.deps.Markers(r.Context(), genreFilter(r), viewerPosition(r))
	writeJSON(w, http.StatusOK, feedResponse{Events: toEventResponses(events, viewer)})
}
