package metrics

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/anjaylytics/plandesk/internal/models"
)

type stubQuality struct {
	brier       func() (*models.BrierResponse, error)
	reliability func() (*models.ReliabilityResponse, error)
}

func (s *stubQuality) Brier(ctx context.Context) (*models.BrierResponse, error) {
	return s.brier()
}

func (s *stubQuality) Reliability(ctx context.Context) (*models.ReliabilityResponse, error) {
	return s.reliability()
}

func floatPtr(v float64) *float64 { return &v }

func TestFetchFillsBothSlots(t *testing.T) {
	stub := &stubQuality{
		brier: func() (*models.BrierResponse, error) {
			return &models.BrierResponse{Brier: floatPtr(0.18)}, nil
		},
		reliability: func() (*models.ReliabilityResponse, error) {
			return &models.ReliabilityResponse{Calibration: []models.ReliabilityBin{
				{PAvg: 0.3, YRate: 0.28, N: 12},
			}}, nil
		},
	}
	f := New(stub, zerolog.Nop())
	f.Fetch(context.Background())

	snap := f.Snapshot()
	if snap.Brier == nil || *snap.Brier != 0.18 {
		t.Errorf("Brier = %v, want 0.18", snap.Brier)
	}
	if len(snap.Bins) != 1 || snap.Bins[0].N != 12 {
		t.Errorf("Bins = %+v, want the one stubbed bin", snap.Bins)
	}
}

func TestFetchFailureIsIndependent(t *testing.T) {
	stub := &stubQuality{
		brier: func() (*models.BrierResponse, error) {
			return nil, errors.New("timeout")
		},
		reliability: func() (*models.ReliabilityResponse, error) {
			return &models.ReliabilityResponse{Calibration: []models.ReliabilityBin{
				{PAvg: 0.5, YRate: 0.52, N: 30},
			}}, nil
		},
	}
	f := New(stub, zerolog.Nop())
	f.Fetch(context.Background())

	snap := f.Snapshot()
	if snap.Brier != nil {
		t.Errorf("Brier = %v, want nil after a failed fetch with no prior value", *snap.Brier)
	}
	if len(snap.Bins) != 1 {
		t.Errorf("got %d bins, want 1; one failure must not block the other slot", len(snap.Bins))
	}
}

func TestFetchFailureKeepsPriorValue(t *testing.T) {
	var fail atomic.Bool
	stub := &stubQuality{
		brier: func() (*models.BrierResponse, error) {
			if fail.Load() {
				return nil, errors.New("503")
			}
			return &models.BrierResponse{Brier: floatPtr(0.21)}, nil
		},
		reliability: func() (*models.ReliabilityResponse, error) {
			if fail.Load() {
				return nil, errors.New("503")
			}
			return &models.ReliabilityResponse{Calibration: []models.ReliabilityBin{
				{PAvg: 0.4, YRate: 0.38, N: 9},
			}}, nil
		},
	}
	f := New(stub, zerolog.Nop())
	f.Fetch(context.Background())

	fail.Store(true)
	f.Fetch(context.Background())

	snap := f.Snapshot()
	if snap.Brier == nil || *snap.Brier != 0.21 {
		t.Errorf("Brier = %v, want prior 0.21 kept after failure", snap.Brier)
	}
	if len(snap.Bins) != 1 {
		t.Errorf("got %d bins, want prior bin kept after failure", len(snap.Bins))
	}
}

func TestFetchNullBrierReplacesValue(t *testing.T) {
	var resolved atomic.Bool
	resolved.Store(true)
	stub := &stubQuality{
		brier: func() (*models.BrierResponse, error) {
			if resolved.Load() {
				return &models.BrierResponse{Brier: floatPtr(0.18)}, nil
			}
			return &models.BrierResponse{}, nil
		},
		reliability: func() (*models.ReliabilityResponse, error) {
			return &models.ReliabilityResponse{}, nil
		},
	}
	f := New(stub, zerolog.Nop())
	f.Fetch(context.Background())

	// The service can stop reporting a score; a successful null
	// response replaces the old value, unlike a failure.
	resolved.Store(false)
	f.Fetch(context.Background())

	if snap := f.Snapshot(); snap.Brier != nil {
		t.Errorf("Brier = %v, want nil after the service reported null", *snap.Brier)
	}
}

func TestSnapshotCopiesBins(t *testing.T) {
	stub := &stubQuality{
		brier: func() (*models.BrierResponse, error) { return &models.BrierResponse{}, nil },
		reliability: func() (*models.ReliabilityResponse, error) {
			return &models.ReliabilityResponse{Calibration: []models.ReliabilityBin{
				{PAvg: 0.5, YRate: 0.5, N: 5},
			}}, nil
		},
	}
	f := New(stub, zerolog.Nop())
	f.Fetch(context.Background())

	snap := f.Snapshot()
	snap.Bins[0].N = 999
	if f.Snapshot().Bins[0].N == 999 {
		t.Error("mutating a snapshot changed the fetcher's slot")
	}
}

func TestSubscribeNotified(t *testing.T) {
	stub := &stubQuality{
		brier: func() (*models.BrierResponse, error) { return &models.BrierResponse{}, nil },
		reliability: func() (*models.ReliabilityResponse, error) {
			return &models.ReliabilityResponse{}, nil
		},
	}
	f := New(stub, zerolog.Nop())

	var notifications atomic.Int32
	f.Subscribe(func() { notifications.Add(1) })
	f.Fetch(context.Background())

	if notifications.Load() == 0 {
		t.Error("no notifications delivered for a completed fetch")
	}
}
