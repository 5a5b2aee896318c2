// Package feed implements the rank/filter pipeline that turns the raw event
// snapshot into the ordered list shown to a viewer.
package feed

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/undrgrnd/hype/internal/domain/geo"
	"github.com/undrgrnd/hype/internal/domain/model"
)

// Default pipeline configuration constants.
const (
	// defaultProximityWindowKM is the hysteresis band for the proximity tier.
	// Two events whose distances from the viewer differ by less than this are
	// considered equally near and fall through to the date tier, which keeps
	// nearly-equidistant events from swapping places on every location fix.
	defaultProximityWindowKM = 10.0

	// eventDay is how long an event stays listed past its date's midnight.
	eventDay = 24 * time.Hour
)

// Wildcard is the genre filter value meaning "show all".
const Wildcard = ""

// defaultDateLayouts parse the day/month/year strings organizers enter.
// Go's numeric parsing accepts zero-padded components against these layouts.
var defaultDateLayouts = []string{"2/1/2006", "2-1-2006"}

// Ranker produces a filtered, deterministically ordered view of an event
// snapshot. Implementations must be pure: identical inputs (including now)
// yield identical output.
type Ranker interface {
	Process(ctx context.Context, events []model.Event, genreFilter string, viewer *geo.Point, now time.Time) []model.Event
}

// Processor implements Ranker. It holds only configuration, never state
// between invocations, so a single instance is safe for concurrent use.
type Processor struct {
	proximityWindowKM float64
	dateLayouts       []string
}

// New creates a Processor with configuration options.
func New(opts ...Option) *Processor {
	p := &Processor{
		proximityWindowKM: defaultProximityWindowKM,
		dateLayouts:       defaultDateLayouts,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// ranked carries an event with its precomputed sort keys so the comparator
// never re-parses dates or recomputes distances mid-sort.
type ranked struct {
	event  model.Event
	date   time.Time
	dateOK bool
	dist   float64
	hasPos bool
}

// Process filters the snapshot by genre and expiry, then orders it with the
// two-tier comparator: proximity when decisive, chronology otherwise.
func (p *Processor) Process(_ context.Context, events []model.Event, genreFilter string, viewer *geo.Point, now time.Time) []model.Event {
	kept := make([]ranked, 0, len(events))
	for i := range events {
		e := events[i]
		if !genreMatches(e.Genre, genreFilter) {
			continue
		}

		date, dateOK := p.parseDate(e.Date)
		// Expiry is fail-open: a date we cannot read must never hide an event.
		if dateOK && !date.Add(eventDay).After(now) {
			continue
		}

		r := ranked{event: e, date: date, dateOK: dateOK}
		if viewer != nil && e.HasCoordinates() {
			r.dist = geo.DistanceKM(*viewer, geo.Point{Lat: e.Lat, Lng: e.Lng})
			r.hasPos = true
		}
		kept = append(kept, r)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return p.before(&kept[i], &kept[j])
	})

	out := make([]model.Event, len(kept))
	for i := range kept {
		out[i] = kept[i].event
	}
	return out
}

// before is the two-tier comparator.
//
// Tier A (proximity) decides only when both sides have a distance from the
// viewer and those distances differ by more than the hysteresis window.
// Tier B (chronology) orders the rest by date ascending; an event whose date
// did not parse sorts after every parseable one. Note the asymmetry with the
// expiry filter above, where an unparseable date keeps the event: both rules
// are deliberate and independent.
func (p *Processor) before(a, b *ranked) bool {
	if a.hasPos && b.hasPos {
		gap := a.dist - b.dist
		if gap < -p.proximityWindowKM {
			return true
		}
		if gap > p.proximityWindowKM {
			return false
		}
	}

	switch {
	case a.dateOK && b.dateOK:
		return a.date.Before(b.date)
	case a.dateOK:
		return true
	default:
		return false
	}
}

// parseDate reads an organizer-entered day/month/year string.
func (p *Processor) parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range p.dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// genreMatches applies the wildcard-or-exact genre filter, ignoring case.
func genreMatches(genre, filter string) bool {
	if filter == Wildcard {
		return true
	}
	return strings.EqualFold(genre, filter)
}

// Markers narrows an ordered feed to the events that can be placed on a map,
// dropping anything without usable coordinates.
func Markers(events []model.Event) []model.Event {
	out := make([]model.Event, 0, len(events))
	for i := range events {
		if events[i].HasCoordinates() {
			out = append(out, events[i])
		}
	}
	return out
}

// Search returns the events whose title or location contains query,
// ignoring case. An empty query matches everything.
func Search(events []model.Event, query string) []model.Event {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return events
	}
	out := make([]model.Event, 0, len(events))
	for i := range events {
		if strings.Contains(strings.ToLower(events[i].Title), query) ||
			strings.Contains(strings.ToLower(events[i].Location), query) {
			out = append(out, events[i])
		}
	}
	return out
}
