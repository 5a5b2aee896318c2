// Package model contains domain models passed between layers.
package model

// Role classifies an account: fans browse and hype, organizers also create.
type Role string

// Known account roles.
const (
	RoleFan       Role = "FAN"
	RoleOrganizer Role = "ORGANIZER"
)

// Event represents one user-created happening.
//
// Date holds a day/month/year string as entered by the organizer and Time an
// HH:MM string; both stay verbatim because the authoritative store is
// schemaless and older records carry whatever the client wrote.
type Event struct {
	ID          string   `json:"id"`
	OrganizerID string   `json:"organizer_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"` // free-text display string
	Date        string   `json:"date"`     // d/m/yyyy
	Time        string   `json:"time"`     // HH:MM, 24h
	Genre       string   `json:"genre"`
	ImageURL    string   `json:"image_url,omitempty"`
	Hype        int      `json:"hype"`
	HypedBy     []string `json:"hyped_by,omitempty"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
}

// HasCoordinates reports whether the event carries a usable position.
// (0,0) is the legacy "location unknown" marker written by old clients and
// never a real venue, so it counts as absent.
func (e *Event) HasCoordinates() bool {
	return e.Lat != 0 || e.Lng != 0
}

// HypedByUser reports whether userID currently has an active hype reaction.
func (e *Event) HypedByUser(userID string) bool {
	for _, id := range e.HypedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// UserProfile captures the account data kept next to credentials.
type UserProfile struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Role     Role     `json:"role"`
	Genres   []string `json:"genres,omitempty"` // preferred genres, drives the filter chips
	City     string   `json:"city,omitempty"`
}

// Genres is the seed vocabulary for the genre filter. The vocabulary is
// extensible: events may carry labels outside this list.
var Genres = []string{
	"Pop", "Indie", "Jazz", "Classica", "Hip Hop",
	"Rock classico", "Hard rock", "Alternative rock", "Metal",
	"Heavy metal", "Punk rock", "Hardcore punk", "Grunge",
	"Post-punk", "Stoner rock", "Metalcore", "Garage rock",
	"Noise rock", "Post-hardcore", "Thrash metal", "Elettronica", "Techno",
}
