// Package export renders a plan as a CSV artifact the user can take to
// a broker. Exporting is the only disk write in the program, and only
// on explicit request.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/anjaylytics/plandesk/internal/models"
)

// Header is the fixed column set. Order is stable across calls.
var Header = []string{
	"date", "preset", "symbol", "name", "market",
	"entry", "stop", "take", "p_pct", "ev_pct", "size_bwp",
}

// Filename returns the artifact name for a plan.
func Filename(plan *models.Plan) string {
	return fmt.Sprintf("anjaylytics_plan_%s.csv", plan.AsOf)
}

// WritePlan writes the header row plus one row per idea, preserving
// idea order. encoding/csv quotes free-text fields, so names and
// rationales with embedded commas survive a round trip.
func WritePlan(w io.Writer, plan *models.Plan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range plan.Ideas {
		if err := cw.Write(row(plan, &plan.Ideas[i])); err != nil {
			return fmt.Errorf("failed to write idea %s: %w", plan.Ideas[i].Symbol, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(plan *models.Plan, idea *models.Idea) []string {
	return []string{
		plan.AsOf,
		string(plan.Preset),
		idea.Symbol,
		idea.Name,
		idea.Market,
		fmt.Sprintf("%.2f", idea.Entry),
		fmt.Sprintf("%.2f", idea.Stop),
		fmt.Sprintf("%.2f", idea.Take),
		fmt.Sprintf("%.1f", idea.P*100),
		fmt.Sprintf("%.2f", idea.EV*100),
		fmt.Sprintf("%.2f", idea.SizeBWP),
	}
}

// Render returns the CSV as bytes, for callers that send the artifact
// somewhere other than disk. A plan with no ideas yields nil.
func Render(plan *models.Plan) ([]byte, error) {
	if plan == nil || len(plan.Ideas) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := WritePlan(&buf, plan); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveToDir writes the plan's CSV into dir, creating the directory if
// needed. A plan with no ideas is a no-op and returns an empty path.
// An empty dir defaults to $TMPDIR/plandesk.
func SaveToDir(dir string, plan *models.Plan) (string, error) {
	if plan == nil || len(plan.Ideas) == 0 {
		return "", nil
	}
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "plandesk")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, Filename(plan))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := WritePlan(f, plan); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}
	return path, nil
}
