// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/undrgrnd/hype/internal/adapters/auth"
	"github.com/undrgrnd/hype/internal/domain/model"
)

// AuthHandler handles registration, login and profile requests.
type AuthHandler struct {
	deps Dependencies
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(deps Dependencies) *AuthHandler {
	return &AuthHandler{deps: deps}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (req registerRequest) validate() error {
	switch {
	case strings.TrimSpace(req.Email) == "":
		return errors.New("missing email")
	case req.Password == "":
		return errors.New("missing password")
	case strings.TrimSpace(req.Username) == "":
		return errors.New("missing username")
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// HandleRegister handles POST /register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	token, err := h.deps.Register(r.Context(), req.Email, req.Password, req.Username, model.Role(strings.ToUpper(req.Role)))
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email_taken", err)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

// HandleLogin handles POST /login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	token, err := h.deps.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", auth.ErrInvalidCredentials)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

type profileUpdateRequest struct {
	Genres *[]string `json:"genres,omitempty"`
	City   *string   `json:"city,omitempty"`
	Lat    *float64  `json:"lat,omitempty"`
	Lng    *float64  `json:"lng,omitempty"`
}

// HandleProfile handles GET and PATCH /profile requests.
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID := h.deps.CurrentUser(bearerToken(r))
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthenticated", auth.ErrInvalidToken)
		return
	}

	switch r.Method {
	case http.MethodGet:
		profile, err := h.deps.Profile(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeJSON(w, http.StatusOK, profile)

	case http.MethodPatch:
		var req profileUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		if req.Genres != nil {
			if err := h.deps.SetGenres(r.Context(), userID, *req.Genres); err != nil {
				writeError(w, http.StatusInternalServerError, "internal_error", err)
				return
			}
		}
		switch {
		case req.City != nil:
			if err := h.deps.SetCity(r.Context(), userID, *req.City); err != nil {
				writeError(w, http.StatusInternalServerError, "internal_error", err)
				return
			}
		case req.Lat != nil && req.Lng != nil:
			// No explicit city, but the client sent its position; resolve
			// the city from it.
			if err := h.deps.SetCityFromPosition(r.Context(), userID, *req.Lat, *req.Lng); err != nil {
				writeError(w, http.StatusBadGateway, "geocode_failed", err)
				return
			}
		}
		profile, err := h.deps.Profile(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err)
			return
		}
		writeJSON(w, http.StatusOK, profile)

	default:
		http.NotFound(w, r)
	}
}
