// Package risk maps the user-facing risk slider onto the request
// category and the presentation threshold the rest of the client shares.
package risk

import (
	"github.com/anjaylytics/plandesk/internal/models"
)

// Profile pairs a request category with the minimum win probability an
// idea should carry before the views flag it as below appetite.
type Profile struct {
	Category       models.RiskCategory
	MinProbability float64
}

// band is one slider range. Floor is inclusive; the next band's floor
// is the exclusive ceiling.
type band struct {
	floor   float64
	profile Profile
}

// bands are ordered by floor. Thresholds must strictly decrease from
// top to bottom of the table as appetite rises.
var bands = []band{
	{0.00, Profile{models.RiskConservative, 0.60}},
	{0.34, Profile{models.RiskBalanced, 0.56}},
	{0.67, Profile{models.RiskAggressive, 0.53}},
}

// Derive maps a slider value to its profile. Values outside [0,1] fall
// into the nearest band.
func Derive(r float64) Profile {
	p := bands[0].profile
	for _, b := range bands[1:] {
		if r >= b.floor {
			p = b.profile
		}
	}
	return p
}

// Categories returns the request categories in ascending appetite order.
func Categories() []models.RiskCategory {
	out := make([]models.RiskCategory, len(bands))
	for i, b := range bands {
		out[i] = b.profile.Category
	}
	return out
}
