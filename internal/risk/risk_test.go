package risk

import (
	"testing"

	"github.com/anjaylytics/plandesk/internal/models"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name          string
		r             float64
		wantCategory  models.RiskCategory
		wantThreshold float64
	}{
		{"slider at zero", 0.0, models.RiskConservative, 0.60},
		{"just below balanced floor", 0.33, models.RiskConservative, 0.60},
		{"balanced floor is inclusive", 0.34, models.RiskBalanced, 0.56},
		{"slider midpoint", 0.5, models.RiskBalanced, 0.56},
		{"just below aggressive floor", 0.66, models.RiskBalanced, 0.56},
		{"aggressive floor is inclusive", 0.67, models.RiskAggressive, 0.53},
		{"slider at one", 1.0, models.RiskAggressive, 0.53},
		{"below range falls into lowest band", -0.2, models.RiskConservative, 0.60},
		{"above range falls into highest band", 1.5, models.RiskAggressive, 0.53},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(tt.r)
			if got.Category != tt.wantCategory {
				t.Errorf("Derive(%v).Category = %v, want %v", tt.r, got.Category, tt.wantCategory)
			}
			if got.MinProbability != tt.wantThreshold {
				t.Errorf("Derive(%v).MinProbability = %v, want %v", tt.r, got.MinProbability, tt.wantThreshold)
			}
		})
	}
}

func TestThresholdsStrictlyDecrease(t *testing.T) {
	prev := 1.0
	for _, b := range bands {
		if b.profile.MinProbability >= prev {
			t.Errorf("threshold %v for %s does not decrease below %v",
				b.profile.MinProbability, b.profile.Category, prev)
		}
		prev = b.profile.MinProbability
	}
}

func TestCategoriesOrder(t *testing.T) {
	got := Categories()
	want := []models.RiskCategory{models.RiskConservative, models.RiskBalanced, models.RiskAggressive}
	if len(got) != len(want) {
		t.Fatalf("Categories() returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Categories()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
