// Package auth provides the identity collaborators: an account registry
// with hashed credentials and JWT session tokens.
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/undrgrnd/hype/internal/domain/model"
)

// account couples credentials with the profile stored next to them.
type account struct {
	id      string
	email   string
	hash    []byte
	profile model.UserProfile
}

// Registry is an in-memory account store. It stands in for the remote user
// collection; all access goes through its lock.
type Registry struct {
	mu      sync.RWMutex
	byEmail map[string]*account
	byID    map[string]*account
}

// NewRegistry creates an empty account registry.
func NewRegistry() *Registry {
	return &Registry{
		byEmail: make(map[string]*account),
		byID:    make(map[string]*account),
	}
}

// Register creates an account and returns its user id.
func (r *Registry) Register(_ context.Context, email, password, username string, role model.Role) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	if role != model.RoleFan && role != model.RoleOrganizer {
		role = model.RoleFan
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return "", ErrEmailTaken
	}

	a := &account{
		id:    uuid.NewString(),
		email: email,
		hash:  hash,
		profile: model.UserProfile{
			Username: username,
			Email:    email,
			Role:     role,
		},
	}
	r.byEmail[email] = a
	r.byID[a.id] = a
	return a.id, nil
}

// Login checks credentials and returns the account's user id.
func (r *Registry) Login(_ context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	r.mu.RLock()
	a, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return a.id, nil
}

// Profile returns the stored profile for a user id.
func (r *Registry) Profile(_ context.Context, userID string) (model.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[userID]
	if !ok {
		return model.UserProfile{}, ErrUnknownUser
	}
	p := a.profile
	if len(p.Genres) > 0 {
		genres := make([]string, len(p.Genres))
		copy(genres, p.Genres)
		p.Genres = genres
	}
	return p, nil
}

// Role returns the stored role for a user id.
func (r *Registry) Role(ctx context.Context, userID string) (model.Role, error) {
	p, err := r.Profile(ctx, userID)
	if err != nil {
		return "", err
	}
	return p.Role, nil
}

// SetGenres replaces a user's preferred genres.
func (r *Registry) SetGenres(_ context.Context, userID string, genres []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[userID]
	if !ok {
		return ErrUnknownUser
	}
	a.profile.Genres = append([]string(nil), genres...)
	return nil
}

// SetCity updates a user's home city.
func (r *Registry) SetCity(_ context.Context, userID, city string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[userID]
	if !ok {
		return ErrUnknownUser
	}
	a.profile.City = city
	return nil
}
