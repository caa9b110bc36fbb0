package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/anjaylytics/plandesk/internal/models"
)

func samplePlan() *models.Plan {
	return &models.Plan{
		AsOf:   "2025-11-03",
		Preset: models.PresetGlobal,
		Ideas: []models.Idea{
			{Symbol: "AAA", Name: "Alpha Corp", Market: "NYSE", Entry: 10.50, Stop: 9.80, Take: 12.00, P: 0.61, EV: 0.042, SizeBWP: 200},
			{Symbol: "BBB", Name: "Beta Ltd", Market: "BSE", Entry: 1.33, Stop: 1.21, Take: 1.58, P: 0.58, EV: 0.031, SizeBWP: 150},
		},
		Cash: models.CashAdvice{Suggested: 350, Reason: "keep powder dry"},
	}
}

func TestWritePlanRowCount(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePlan(&buf, samplePlan()); err != nil {
		t.Fatalf("WritePlan() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Errorf("got %d lines, want 3 (header + 2 ideas)", len(lines))
	}
	wantHeader := "date,preset,symbol,name,market,entry,stop,take,p_pct,ev_pct,size_bwp"
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}
}

func TestWritePlanFormatting(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePlan(&buf, samplePlan()); err != nil {
		t.Fatalf("WritePlan() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back CSV: %v", err)
	}
	first := records[1]
	tests := []struct {
		col  int
		want string
	}{
		{0, "2025-11-03"}, // date
		{1, "Global"},     // preset
		{2, "AAA"},        // symbol
		{5, "10.50"},      // entry
		{8, "61.0"},       // p as pct, one decimal
		{9, "4.20"},       // ev as pct, two decimals
		{10, "200.00"},    // size
	}
	for _, tt := range tests {
		if first[tt.col] != tt.want {
			t.Errorf("row[%d] = %q, want %q", tt.col, first[tt.col], tt.want)
		}
	}

	// Ideas keep their order and the allocation sums to the plan total.
	if records[2][2] != "BBB" {
		t.Errorf("second idea symbol = %q, want BBB", records[2][2])
	}
	var total float64
	for _, rec := range records[1:] {
		size, err := strconv.ParseFloat(rec[10], 64)
		if err != nil {
			t.Fatalf("parsing size %q: %v", rec[10], err)
		}
		total += size
	}
	if total != 350 {
		t.Errorf("total allocation = %v, want 350", total)
	}
}

func TestWritePlanEscapesFreeText(t *testing.T) {
	plan := samplePlan()
	plan.Ideas[0].Name = `Alpha, "The Brand", Corp`

	var buf bytes.Buffer
	if err := WritePlan(&buf, plan); err != nil {
		t.Fatalf("WritePlan() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back CSV: %v", err)
	}
	if got := records[1][3]; got != plan.Ideas[0].Name {
		t.Errorf("name after round trip = %q, want %q", got, plan.Ideas[0].Name)
	}
	if len(records) != 3 {
		t.Errorf("embedded commas changed the record count: got %d, want 3", len(records))
	}
}

func TestRenderEmptyPlan(t *testing.T) {
	out, err := Render(&models.Plan{AsOf: "2025-11-03", Preset: models.PresetGlobal})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != nil {
		t.Errorf("Render() on empty plan = %q, want nil", out)
	}

	out, err = Render(nil)
	if err != nil || out != nil {
		t.Errorf("Render(nil) = (%q, %v), want (nil, nil)", out, err)
	}
}

func TestSaveToDir(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveToDir(dir, samplePlan())
	if err != nil {
		t.Fatalf("SaveToDir() error = %v", err)
	}
	want := filepath.Join(dir, "anjaylytics_plan_2025-11-03.csv")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Errorf("exported file has %d lines, want 3", len(lines))
	}
}

func TestSaveToDirNoIdeasIsNoOp(t *testing.T) {
	dir := t.TempDir()
	plan := &models.Plan{AsOf: "2025-11-03", Preset: models.PresetBotswana}

	path, err := SaveToDir(dir, plan)
	if err != nil {
		t.Fatalf("SaveToDir() error = %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want empty for a plan without ideas", path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("export dir has %d entries, want 0", len(entries))
	}
}

func TestFilename(t *testing.T) {
	plan := &models.Plan{AsOf: "2026-01-15"}
	if got := Filename(plan); got != "anjaylytics_plan_2026-01-15.csv" {
		t.Errorf("Filename() = %q, want anjaylytics_plan_2026-01-15.csv", got)
	}
}
