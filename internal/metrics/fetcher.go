// Package metrics retrieves the model-quality figures: the Brier score
// and the reliability bins. The two retrievals are independent of each
// other and of the plan cycle; failures degrade to a placeholder
// instead of surfacing.
package metrics

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/anjaylytics/plandesk/internal/models"
)

// QualityService is the slice of the scoring-service client the
// fetcher needs.
type QualityService interface {
	Brier(ctx context.Context) (*models.BrierResponse, error)
	Reliability(ctx context.Context) (*models.ReliabilityResponse, error)
}

// Snapshot is a copy of the two result slots. A nil Brier renders as
// the placeholder; nil Bins render as "no calibration data yet".
type Snapshot struct {
	Brier *float64
	Bins  []models.ReliabilityBin
}

// Fetcher holds the two result slots.
type Fetcher struct {
	service QualityService
	logger  zerolog.Logger

	mu        sync.Mutex
	brier     *float64
	bins      []models.ReliabilityBin
	listeners []func()
}

// New creates a fetcher with both slots empty.
func New(service QualityService, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		service: service,
		logger:  logger,
	}
}

// Subscribe registers fn to run after a slot changes.
func (f *Fetcher) Subscribe(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

// Snapshot returns a copy of the current slots.
func (f *Fetcher) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := Snapshot{Brier: f.brier}
	if f.bins != nil {
		snap.Bins = make([]models.ReliabilityBin, len(f.bins))
		copy(snap.Bins, f.bins)
	}
	return snap
}

// Fetch runs both retrievals concurrently and returns when both have
// settled. A failed retrieval is logged and leaves its slot as it was;
// the other slot fills regardless. There is no retry.
func (f *Fetcher) Fetch(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		resp, err := f.service.Brier(ctx)
		if err != nil {
			f.logger.Warn().Err(err).Msg("Brier fetch failed, keeping prior value")
			return
		}
		f.mu.Lock()
		f.brier = resp.Brier
		f.mu.Unlock()
		f.notify()
	}()

	go func() {
		defer wg.Done()
		resp, err := f.service.Reliability(ctx)
		if err != nil {
			f.logger.Warn().Err(err).Msg("Reliability fetch failed, keeping prior value")
			return
		}
		f.mu.Lock()
		f.bins = resp.Calibration
		f.mu.Unlock()
		f.notify()
	}()

	wg.Wait()
}

func (f *Fetcher) notify() {
	f.mu.Lock()
	listeners := make([]func(), len(f.listeners))
	copy(listeners, f.listeners)
	f.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
