// Package planner owns the plan request/response cycle. It turns
// parameter changes into scoring-service calls and reconciles the
// asynchronous responses so that the newest request always wins.
package planner

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/anjaylytics/plandesk/internal/models"
	"github.com/anjaylytics/plandesk/internal/risk"
)

// ErrPlanUnavailable is the single user-facing message for transport,
// protocol, and decode failures on the plan path.
const ErrPlanUnavailable = "plan unavailable"

// PlanService is the slice of the scoring-service client the planner
// needs.
type PlanService interface {
	PlanToday(ctx context.Context, req models.PlanRequest) (*models.Plan, error)
}

// Params is the raw user input before derivation.
type Params struct {
	DailyBudgetPula float64
	BankrollPula    float64
	RiskValue       float64
	Preset          models.Preset
}

// Snapshot is a copy of the visible state for a view to render.
type Snapshot struct {
	Params  Params
	Profile risk.Profile
	Request models.PlanRequest
	Plan    *models.Plan
	Loading bool
	Err     string
}

// Planner is the last-request-wins orchestrator. In-flight requests
// superseded by a newer tuple are not cancelled at the transport level;
// their responses are discarded on arrival.
type Planner struct {
	ctx     context.Context
	service PlanService
	logger  zerolog.Logger

	mu         sync.Mutex
	generation uint64
	currentKey string
	params     Params
	profile    risk.Profile
	request    models.PlanRequest
	plan       *models.Plan
	loading    bool
	errMsg     string
	listeners  []func()
}

// New creates a planner bound to ctx for the life of the process.
func New(ctx context.Context, service PlanService, logger zerolog.Logger) *Planner {
	return &Planner{
		ctx:     ctx,
		service: service,
		logger:  logger,
	}
}

// Subscribe registers fn to run after every committed state change.
func (p *Planner) Subscribe(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Snapshot returns a copy of the current visible state.
func (p *Planner) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Params:  p.params,
		Profile: p.profile,
		Request: p.request,
		Plan:    p.plan,
		Loading: p.loading,
		Err:     p.errMsg,
	}
}

// AwaitIdle polls until no request is in flight or the timeout elapses,
// and returns the last snapshot it observed. A hung request never stops
// loading on its own, so callers can still receive a loading snapshot.
func (p *Planner) AwaitIdle(timeout time.Duration) Snapshot {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		snap := p.Snapshot()
		if !snap.Loading {
			return snap
		}
		time.Sleep(50 * time.Millisecond)
	}
	return p.Snapshot()
}

// Apply derives the request tuple from params and issues a fetch when
// the tuple differs from the one already current. Equal tuples issue
// nothing: dragging a slider through values inside one band coalesces
// into a single request. The floors and enums are checked here so every
// view rejects bad input with the same message.
func (p *Planner) Apply(params Params) error {
	profile := risk.Derive(params.RiskValue)
	req := models.PlanRequest{
		DailyBudgetPula: params.DailyBudgetPula,
		BankrollPula:    params.BankrollPula,
		Risk:            profile.Category,
		Preset:          params.Preset,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	key := req.Key()
	if key == p.currentKey {
		// Same tuple as the one in flight or already committed.
		p.params = params
		p.profile = profile
		p.mu.Unlock()
		p.notify()
		return nil
	}
	p.params = params
	p.profile = profile
	p.request = req
	p.currentKey = key
	gen := p.issueLocked()
	p.mu.Unlock()

	p.notify()
	go p.fetch(gen, req)
	return nil
}

// Refresh re-issues the current tuple unconditionally.
func (p *Planner) Refresh() {
	p.mu.Lock()
	if p.currentKey == "" {
		p.mu.Unlock()
		return
	}
	req := p.request
	gen := p.issueLocked()
	p.mu.Unlock()

	p.notify()
	go p.fetch(gen, req)
}

// issueLocked bumps the generation and enters the loading state. The
// caller holds the lock.
func (p *Planner) issueLocked() uint64 {
	p.generation++
	p.loading = true
	p.errMsg = ""
	return p.generation
}

func (p *Planner) fetch(gen uint64, req models.PlanRequest) {
	plan, err := p.service.PlanToday(p.ctx, req)
	p.commit(gen, plan, err)
}

// commit applies a response if its generation is still the current
// one. Stale responses are discarded silently; a failed current
// response records the error and keeps the previous plan visible.
func (p *Planner) commit(gen uint64, plan *models.Plan, err error) {
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		p.logger.Debug().
			Uint64("generation", gen).
			Msg("Discarding stale plan response")
		return
	}
	p.loading = false
	if err != nil {
		p.errMsg = ErrPlanUnavailable
		p.mu.Unlock()
		p.logger.Warn().Err(err).Msg("Plan fetch failed")
		p.notify()
		return
	}
	p.plan = plan
	p.errMsg = ""
	p.mu.Unlock()

	p.logger.Debug().
		Uint64("generation", gen).
		Int("ideas", len(plan.Ideas)).
		Msg("Plan committed")
	p.notify()
}

// notify runs the listeners outside the lock so they may call back in.
func (p *Planner) notify() {
	p.mu.Lock()
	listeners := make([]func(), len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
