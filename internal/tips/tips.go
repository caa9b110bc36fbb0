// Package tips selects the day's coaching messages. Selection is a pure
// function of the calendar date, so every rendering on the same day
// shows the same set without any shared state.
package tips

import (
	"time"

	"github.com/anjaylytics/plandesk/internal/content"
)

// fallbackSeed replaces a zero fold result so the generator never locks
// onto the all-zero state.
const fallbackSeed = 0x9E3779B9

// Source is a 32-bit xorshift generator.
type Source struct {
	state uint32
}

// NewSource returns a generator seeded with the given value.
func NewSource(seed uint32) *Source {
	if seed == 0 {
		seed = fallbackSeed
	}
	return &Source{state: seed}
}

// Next advances the generator one step and returns the new state.
func (s *Source) Next() uint32 {
	x := s.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	s.state = x
	return x
}

// Float returns the next draw, normalized to [0,1).
func (s *Source) Float() float64 {
	return float64(s.Next()) / (1 << 32)
}

// SeedForDate folds the local calendar date, formatted YYYY-MM-DD, into
// a 32-bit seed with a polynomial hash (multiply by 31, add character
// code, unsigned wraparound).
func SeedForDate(d time.Time) uint32 {
	var acc uint32
	for _, c := range d.Format("2006-01-02") {
		acc = acc*31 + uint32(c)
	}
	return acc
}

// Pick is one selected tip with its group's category label.
type Pick struct {
	Category string
	Text     string
}

// ForDate returns one tip per group, in group order, for the given
// local date. The same date and groups always yield the same picks.
func ForDate(d time.Time, groups []content.Group) []Pick {
	return draw(NewSource(SeedForDate(d)), groups)
}

// Shuffled returns a fresh selection from a time-based seed. It serves
// the manual reshuffle action only; the seed is never stored, so the
// next ForDate call is unaffected.
func Shuffled(groups []content.Group) []Pick {
	return draw(NewSource(uint32(time.Now().UnixNano())), groups)
}

// draw consumes exactly one generator output per group, whether or not
// the group yields a pick.
func draw(src *Source, groups []content.Group) []Pick {
	picks := make([]Pick, 0, len(groups))
	for _, g := range groups {
		v := src.Float()
		if len(g.Tips) == 0 {
			continue
		}
		idx := int(v * float64(len(g.Tips)))
		picks = append(picks, Pick{Category: g.Category, Text: g.Tips[idx]})
	}
	return picks
}
