// Package anjaylytics is the HTTP client for the anjaylytics scoring
// service, the only source of plans and model-quality figures.
package anjaylytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/anjaylytics/plandesk/internal/models"
)

// DefaultBaseURL is the fallback when configuration names no service.
const DefaultBaseURL = "http://localhost:8000"

// StatusError reports a non-2xx response from the service.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("service returned status %d", e.Code)
}

// Config carries the client settings. A zero Timeout leaves requests
// unbounded; a superseded request is discarded on arrival instead.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client provides access to the anjaylytics scoring service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// New creates a scoring-service client.
func New(cfg Config, logger zerolog.Logger) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 4
	}
	burst := int(rps)
	if burst < 2 {
		burst = 2
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		logger:     logger,
	}
}

// PlanToday retrieves the daily plan for the parameter tuple. There is
// no retry: callers own the failure semantics.
func (c *Client) PlanToday(ctx context.Context, req models.PlanRequest) (*models.Plan, error) {
	var plan models.Plan
	if err := c.getJSON(ctx, "/plan/today", planQuery(req), &plan); err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		c.logger.Warn().Err(err).Msg("Plan failed validation, presenting as received")
	}
	return &plan, nil
}

// Brier retrieves the model's Brier score. The score is nil while the
// service has nothing resolved to grade.
func (c *Client) Brier(ctx context.Context) (*models.BrierResponse, error) {
	var out models.BrierResponse
	if err := c.getJSON(ctx, "/metrics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reliability retrieves the calibration bins.
func (c *Client) Reliability(ctx context.Context) (*models.ReliabilityResponse, error) {
	var out models.ReliabilityResponse
	if err := c.getJSON(ctx, "/reliability", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportURL returns the service-side export link for the tuple. The
// link is handed to the user as-is, never fetched by the client.
func (c *Client) ExportURL(req models.PlanRequest) string {
	return c.baseURL + "/trade/export?" + planQuery(req).Encode()
}

func planQuery(req models.PlanRequest) url.Values {
	q := url.Values{}
	q.Set("daily_budget_pula", strconv.FormatFloat(req.DailyBudgetPula, 'f', -1, 64))
	q.Set("bankroll_pula", strconv.FormatFloat(req.BankrollPula, 'f', -1, 64))
	q.Set("risk", string(req.Risk))
	q.Set("preset", string(req.Preset))
	return q
}

// getJSON performs one GET against the service and decodes the body.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("request_id", requestID).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Service call completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
