package anjaylytics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/anjaylytics/plandesk/internal/models"
)

func testRequest() models.PlanRequest {
	return models.PlanRequest{
		DailyBudgetPula: 500,
		BankrollPula:    10000,
		Risk:            models.RiskBalanced,
		Preset:          models.PresetGlobal,
	}
}

func newTestClient(baseURL string) *Client {
	return New(Config{BaseURL: baseURL, RequestsPerSecond: 1000}, zerolog.Nop())
}

func TestPlanToday(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/plan/today" {
			t.Errorf("path = %q, want /plan/today", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("daily_budget_pula") != "500" {
			t.Errorf("daily_budget_pula = %q, want 500", q.Get("daily_budget_pula"))
		}
		if q.Get("bankroll_pula") != "10000" {
			t.Errorf("bankroll_pula = %q, want 10000", q.Get("bankroll_pula"))
		}
		if q.Get("risk") != "balanced" {
			t.Errorf("risk = %q, want balanced", q.Get("risk"))
		}
		if q.Get("preset") != "Global" {
			t.Errorf("preset = %q, want Global", q.Get("preset"))
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"asof": "2025-11-03",
			"preset": "Global",
			"ideas": [
				{"symbol":"AAA","name":"Alpha Corp","market":"NYSE","price":10.4,"p":0.61,"ev":0.042,"entry":10.5,"stop":9.8,"take":12.0,"size_bwp":200,"rationale":"momentum","headlines":["alpha beats"]},
				{"symbol":"BBB","name":"Beta Ltd","market":"BSE","price":1.3,"p":0.58,"ev":0.031,"entry":1.33,"stop":1.21,"take":1.58,"size_bwp":150,"rationale":"value","headlines":[]}
			],
			"cash": {"suggested": 350, "reason": "thin news day"}
		}`))
	}))
	defer server.Close()

	plan, err := newTestClient(server.URL).PlanToday(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("PlanToday() error = %v", err)
	}
	if plan.AsOf != "2025-11-03" {
		t.Errorf("AsOf = %q, want 2025-11-03", plan.AsOf)
	}
	if len(plan.Ideas) != 2 {
		t.Fatalf("got %d ideas, want 2", len(plan.Ideas))
	}
	if plan.Ideas[0].Symbol != "AAA" || plan.Ideas[1].Symbol != "BBB" {
		t.Errorf("idea order = %q, %q; want AAA, BBB", plan.Ideas[0].Symbol, plan.Ideas[1].Symbol)
	}
	if plan.Cash.Suggested != 350 {
		t.Errorf("Cash.Suggested = %v, want 350", plan.Cash.Suggested)
	}
	if len(plan.Ideas[0].Headlines) != 1 {
		t.Errorf("got %d headlines, want 1", len(plan.Ideas[0].Headlines))
	}
}

func TestPlanTodayStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).PlanToday(context.Background(), testRequest())
	if err == nil {
		t.Fatal("PlanToday() error = nil, want status error")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error type = %T, want *StatusError", err)
	}
	if statusErr.Code != http.StatusServiceUnavailable {
		t.Errorf("Code = %d, want %d", statusErr.Code, http.StatusServiceUnavailable)
	}
}

func TestPlanTodayMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).PlanToday(context.Background(), testRequest()); err == nil {
		t.Fatal("PlanToday() error = nil, want decode error")
	}
}

func TestBrier(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantNil bool
		wantVal float64
	}{
		{"score present", `{"brier": 0.18}`, false, 0.18},
		{"score null", `{"brier": null}`, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/metrics" {
					t.Errorf("path = %q, want /metrics", r.URL.Path)
				}
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			resp, err := newTestClient(server.URL).Brier(context.Background())
			if err != nil {
				t.Fatalf("Brier() error = %v", err)
			}
			if tt.wantNil {
				if resp.Brier != nil {
					t.Errorf("Brier = %v, want nil", *resp.Brier)
				}
				return
			}
			if resp.Brier == nil || *resp.Brier != tt.wantVal {
				t.Errorf("Brier = %v, want %v", resp.Brier, tt.wantVal)
			}
		})
	}
}

func TestReliability(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reliability" {
			t.Errorf("path = %q, want /reliability", r.URL.Path)
		}
		w.Write([]byte(`{"calibration": [
			{"p_avg": 0.05, "y_rate": 0.02, "n": 40},
			{"p_avg": 0.35, "y_rate": 0.30, "n": 25}
		]}`))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).Reliability(context.Background())
	if err != nil {
		t.Fatalf("Reliability() error = %v", err)
	}
	if len(resp.Calibration) != 2 {
		t.Fatalf("got %d bins, want 2", len(resp.Calibration))
	}
	if resp.Calibration[1].PAvg != 0.35 || resp.Calibration[1].N != 25 {
		t.Errorf("bin[1] = %+v, want {0.35 0.3 25}", resp.Calibration[1])
	}
}

func TestExportURL(t *testing.T) {
	c := newTestClient("http://example.test")
	u := c.ExportURL(testRequest())

	if !strings.HasPrefix(u, "http://example.test/trade/export?") {
		t.Errorf("ExportURL() = %q, want /trade/export link on the base URL", u)
	}
	for _, param := range []string{"daily_budget_pula=500", "bankroll_pula=10000", "risk=balanced", "preset=Global"} {
		if !strings.Contains(u, param) {
			t.Errorf("ExportURL() = %q, missing %q", u, param)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	c := New(Config{}, zerolog.Nop())
	if !strings.HasPrefix(c.ExportURL(testRequest()), DefaultBaseURL) {
		t.Errorf("empty BaseURL did not fall back to %s", DefaultBaseURL)
	}
}
