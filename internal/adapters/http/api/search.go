// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// SearchHandler handles title/location search requests.
type SearchHandler struct {
	deps Dependencies
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(deps Dependencies) *SearchHandler {
	return &SearchHandler{deps: deps}
}

// HandleSearch handles GET /search?q= requests.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	viewer := h.deps.CurrentUser(bearerToken(r))
	events := h.deps.Search(r.Context(), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, feedResponse{Events: toEventResponses(events, viewer)})
}
