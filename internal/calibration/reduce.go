// Package calibration turns raw reliability bins from the scoring
// service into the bars the views chart.
package calibration

import (
	"github.com/anjaylytics/plandesk/internal/models"
)

// MinBins is the smallest raw bin count that still yields bars after
// the edge bins are dropped.
const MinBins = 3

// Bar is one charted calibration bucket, in percentage points.
type Bar struct {
	PredictedPct float64
	ObservedPct  float64
	N            int
}

// Reduce drops the first and last bin, which hug the axes and carry
// little signal, and rescales the rest to [0,100].
func Reduce(bins []models.ReliabilityBin) []Bar {
	if len(bins) < MinBins {
		return nil
	}
	inner := bins[1 : len(bins)-1]
	bars := make([]Bar, 0, len(inner))
	for _, b := range inner {
		bars = append(bars, Bar{
			PredictedPct: ClampPct(b.PAvg * 100),
			ObservedPct:  ClampPct(b.YRate * 100),
			N:            b.N,
		})
	}
	return bars
}

// ClampPct bounds a percentage to [0,100].
func ClampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
