// Package ui is the terminal view: an interactive menu over the plan
// orchestration core for daily use from a shell.
package ui

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/anjaylytics/plandesk/internal/anjaylytics"
	"github.com/anjaylytics/plandesk/internal/calibration"
	"github.com/anjaylytics/plandesk/internal/content"
	"github.com/anjaylytics/plandesk/internal/export"
	"github.com/anjaylytics/plandesk/internal/metrics"
	"github.com/anjaylytics/plandesk/internal/models"
	"github.com/anjaylytics/plandesk/internal/planner"
	"github.com/anjaylytics/plandesk/internal/risk"
	"github.com/anjaylytics/plandesk/internal/tips"
)

// settleTimeout bounds how long the menu waits for an in-flight plan
// before rendering the loading state as-is.
const settleTimeout = 15 * time.Second

// MenuOption represents a menu choice.
type MenuOption struct {
	Number      int
	Title       string
	Description string
	Handler     func(ctx context.Context) error
	Exit        bool
}

// Options wires the dashboard to the orchestration core.
type Options struct {
	Planner   *planner.Planner
	Quality   *metrics.Fetcher
	Service   *anjaylytics.Client
	Library   *content.Library
	ExportDir string
	Logger    zerolog.Logger
}

// Dashboard provides the interactive menu-based interface.
type Dashboard struct {
	scanner   *bufio.Scanner
	options   []MenuOption
	planner   *planner.Planner
	quality   *metrics.Fetcher
	service   *anjaylytics.Client
	library   *content.Library
	exportDir string
	logger    zerolog.Logger
}

// NewDashboard creates the terminal view.
func NewDashboard(opts Options) *Dashboard {
	d := &Dashboard{
		scanner:   bufio.NewScanner(os.Stdin),
		planner:   opts.Planner,
		quality:   opts.Quality,
		service:   opts.Service,
		library:   opts.Library,
		exportDir: opts.ExportDir,
		logger:    opts.Logger,
	}

	d.options = []MenuOption{
		{
			Number:      1,
			Title:       "Show plan",
			Description: "Render the current trade plan and cash advice",
			Handler:     d.handleShowPlan,
		},
		{
			Number:      2,
			Title:       "Set daily budget",
			Description: "Change the pula amount available to trade today",
			Handler:     d.handleSetBudget,
		},
		{
			Number:      3,
			Title:       "Set bankroll",
			Description: "Change the total bankroll used for sizing",
			Handler:     d.handleSetBankroll,
		},
		{
			Number:      4,
			Title:       "Set risk appetite",
			Description: "Move the 0..1 slider that picks the risk mode",
			Handler:     d.handleSetRisk,
		},
		{
			Number:      5,
			Title:       "Switch preset",
			Description: "Toggle between the Botswana and Global universes",
			Handler:     d.handleSwitchPreset,
		},
		{
			Number:      6,
			Title:       "Refresh",
			Description: "Refetch today's plan from the scoring service",
			Handler:     d.handleRefresh,
		},
		{
			Number:      7,
			Title:       "Export CSV",
			Description: "Write the plan to a broker-ready CSV file",
			Handler:     d.handleExport,
		},
		{
			Number:      8,
			Title:       "Model quality",
			Description: "Fetch the Brier score and calibration history",
			Handler:     d.handleQuality,
		},
		{
			Number:      9,
			Title:       "Coaching tips",
			Description: "Show today's tips, with an optional reshuffle",
			Handler:     d.handleTips,
		},
		{
			Number:      10,
			Title:       "Brokers & documents",
			Description: "Local broker directory and account checklist",
			Handler:     d.handleBrokers,
		},
		{
			Number:      11,
			Title:       "Exit",
			Description: "Leave the dashboard",
			Handler:     d.handleExit,
			Exit:        true,
		},
	}

	return d
}

// Run starts the interactive menu loop.
func (d *Dashboard) Run(ctx context.Context) error {
	d.printWelcome()
	PrintPlan(d.planner.AwaitIdle(settleTimeout))
	fmt.Println()
	PrintTips(tips.ForDate(time.Now(), d.library.TipGroups()))

	for {
		fmt.Println()
		d.printMenu()

		fmt.Printf("Choose an option (1-%d): ", len(d.options))
		if !d.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(d.scanner.Text())
		if input == "" {
			continue
		}

		choice, err := strconv.Atoi(input)
		if err != nil || choice < 1 || choice > len(d.options) {
			fmt.Printf("Invalid choice: %s. Please enter a number between 1-%d.\n", input, len(d.options))
			continue
		}

		option := d.options[choice-1]
		fmt.Printf("\n=== %s ===\n", option.Title)

		if err := option.Handler(ctx); err != nil {
			fmt.Printf("Error: %v\n", err)
			d.logger.Error().Err(err).Str("menu_option", option.Title).Msg("Menu handler failed")
		}

		if option.Exit {
			break
		}
	}

	return nil
}

func (d *Dashboard) printWelcome() {
	fmt.Println("📒 plandesk - Daily Trade Plan Desk")
	fmt.Println("====================================")
	fmt.Println("Risk-gated ideas for the Botswana and global universes")
	fmt.Println("Explicit refresh • Deterministic coaching • CSV export")
	fmt.Println()
}

func (d *Dashboard) printMenu() {
	fmt.Println("📊 Main Menu:")
	fmt.Println("─────────────")

	for _, option := range d.options {
		fmt.Printf("%2d. %s\n    %s\n\n", option.Number, option.Title, option.Description)
	}
}

// PrintPlan renders a plan snapshot to stdout. The headless subcommands
// share it with the menu.
func PrintPlan(snap planner.Snapshot) {
	if snap.Plan == nil {
		switch {
		case snap.Loading:
			fmt.Println("⏳ Fetching today's plan...")
		case snap.Err != "":
			fmt.Printf("⚠️  %s. Change a parameter or refresh to retry.\n", snap.Err)
		default:
			fmt.Println("No plan yet. Refresh to fetch one.")
		}
		return
	}

	plan := snap.Plan
	fmt.Printf("📋 Trade plan %s (%s preset)\n", plan.AsOf, plan.Preset)
	if snap.Loading {
		fmt.Println("⏳ Updating, showing the last good plan")
	}
	if snap.Err != "" {
		fmt.Printf("⚠️  %s, showing the last good plan\n", snap.Err)
	}
	fmt.Printf("Risk %s (min p %.2f) • Budget P%s • Bankroll P%s\n\n",
		snap.Profile.Category,
		snap.Profile.MinProbability,
		strconv.FormatFloat(snap.Params.DailyBudgetPula, 'f', -1, 64),
		strconv.FormatFloat(snap.Params.BankrollPula, 'f', -1, 64))

	if len(plan.Ideas) == 0 {
		fmt.Println("No ideas passed the gates today.")
	} else {
		fmt.Printf("%-9s %-9s %9s %9s %9s %9s %6s %7s %9s\n",
			"Symbol", "Market", "Price", "Entry", "Stop", "Take", "p%", "EV%", "Size(P)")
		fmt.Println("───────── ───────── ───────── ───────── ───────── ───────── ────── ─────── ─────────")
		for _, idea := range plan.Ideas {
			fmt.Printf("%-9s %-9s %9.2f %9.2f %9.2f %9.2f %6.1f %7.2f %9.2f\n",
				idea.Symbol, idea.Market, idea.Price,
				idea.Entry, idea.Stop, idea.Take,
				idea.P*100, idea.EV*100, idea.SizeBWP)
			if idea.Rationale != "" {
				fmt.Printf("          %s\n", idea.Rationale)
			}
			for _, h := range idea.Headlines {
				fmt.Printf("          • %s\n", h)
			}
		}
	}

	fmt.Printf("\n💰 Keep P%.2f in cash", plan.Cash.Suggested)
	if plan.Cash.Reason != "" {
		fmt.Printf(": %s", plan.Cash.Reason)
	}
	fmt.Println()
}

// PrintQuality renders the model-quality snapshot to stdout.
func PrintQuality(snap metrics.Snapshot) {
	fmt.Println("📈 Model quality")
	if snap.Brier != nil {
		fmt.Printf("• Brier score: %.3f (lower is better)\n", *snap.Brier)
	} else {
		fmt.Println("• Brier score: —")
	}

	bars := calibration.Reduce(snap.Bins)
	if len(bars) == 0 {
		fmt.Println("• No calibration data yet")
		return
	}

	fmt.Println("\nCalibration (predicted vs observed):")
	for _, bar := range bars {
		fmt.Printf("%4.0f%% %s %4.0f%% (n=%d)\n",
			bar.PredictedPct, gauge(bar.ObservedPct), bar.ObservedPct, bar.N)
	}
}

// gauge renders a 20-cell bar for a 0..100 percentage. The string is
// always 20 runes so rows stay aligned.
func gauge(pct float64) string {
	filled := int(pct/5 + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > 20 {
		filled = 20
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
}

// PrintTips renders a coaching draw to stdout.
func PrintTips(picks []tips.Pick) {
	fmt.Println("💡 Coaching")
	for _, p := range picks {
		fmt.Printf("• %s: %s\n", p.Category, p.Text)
	}
}

func (d *Dashboard) promptFloat(label string) (float64, bool) {
	fmt.Printf("%s: ", label)
	if !d.scanner.Scan() {
		return 0, false
	}
	input := strings.TrimSpace(d.scanner.Text())
	if input == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(input, 64)
	if err != nil {
		fmt.Printf("Invalid number: %s\n", input)
		return 0, false
	}
	return v, true
}

func (d *Dashboard) applyParams(params planner.Params) {
	if err := d.planner.Apply(params); err != nil {
		fmt.Printf("⚠️  %v\n", err)
		return
	}
	PrintPlan(d.planner.AwaitIdle(settleTimeout))
}

func (d *Dashboard) handleShowPlan(ctx context.Context) error {
	PrintPlan(d.planner.AwaitIdle(settleTimeout))
	return nil
}

func (d *Dashboard) handleSetBudget(ctx context.Context) error {
	v, ok := d.promptFloat("Daily budget (pula)")
	if !ok {
		return nil
	}
	params := d.planner.Snapshot().Params
	params.DailyBudgetPula = v
	d.applyParams(params)
	return nil
}

func (d *Dashboard) handleSetBankroll(ctx context.Context) error {
	v, ok := d.promptFloat("Bankroll (pula)")
	if !ok {
		return nil
	}
	params := d.planner.Snapshot().Params
	params.BankrollPula = v
	d.applyParams(params)
	return nil
}

func (d *Dashboard) handleSetRisk(ctx context.Context) error {
	cats := make([]string, 0, 3)
	for _, c := range risk.Categories() {
		cats = append(cats, string(c))
	}
	fmt.Printf("Modes, low to high appetite: %s\n", strings.Join(cats, ", "))

	v, ok := d.promptFloat("Risk appetite (0..1)")
	if !ok {
		return nil
	}
	params := d.planner.Snapshot().Params
	params.RiskValue = v
	d.applyParams(params)

	profile := d.planner.Snapshot().Profile
	fmt.Printf("Risk mode: %s (min win probability %.2f)\n", profile.Category, profile.MinProbability)
	return nil
}

func (d *Dashboard) handleSwitchPreset(ctx context.Context) error {
	params := d.planner.Snapshot().Params
	fmt.Printf("Current preset: %s\n", params.Preset)
	fmt.Println("1. Botswana")
	fmt.Println("2. Global")
	fmt.Print("Select preset (1-2): ")

	if !d.scanner.Scan() {
		return nil
	}
	switch strings.TrimSpace(d.scanner.Text()) {
	case "1":
		params.Preset = models.PresetBotswana
	case "2":
		params.Preset = models.PresetGlobal
	default:
		fmt.Println("Preset unchanged.")
		return nil
	}

	d.applyParams(params)
	return nil
}

func (d *Dashboard) handleRefresh(ctx context.Context) error {
	d.planner.Refresh()
	PrintPlan(d.planner.AwaitIdle(settleTimeout))
	return nil
}

func (d *Dashboard) handleExport(ctx context.Context) error {
	snap := d.planner.Snapshot()
	path, err := export.SaveToDir(d.exportDir, snap.Plan)
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println("Nothing to export: the plan has no ideas.")
		return nil
	}

	fmt.Printf("✅ Saved %s\n", path)
	fmt.Printf("• Service-side export: %s\n", d.service.ExportURL(snap.Request))
	return nil
}

func (d *Dashboard) handleQuality(ctx context.Context) error {
	fmt.Println("Fetching model quality from the scoring service...")
	d.quality.Fetch(ctx)
	PrintQuality(d.quality.Snapshot())
	return nil
}

func (d *Dashboard) handleTips(ctx context.Context) error {
	PrintTips(tips.ForDate(time.Now(), d.library.TipGroups()))

	for {
		fmt.Print("\nShuffle for a fresh set? (y/N): ")
		if !d.scanner.Scan() {
			return nil
		}
		if !strings.EqualFold(strings.TrimSpace(d.scanner.Text()), "y") {
			return nil
		}
		fmt.Println()
		PrintTips(tips.Shuffled(d.library.TipGroups()))
	}
}

func (d *Dashboard) handleBrokers(ctx context.Context) error {
	fmt.Println("🏦 Broker directory")
	for _, b := range d.library.Brokers() {
		fmt.Printf("• %s - %s", b.Name, b.URL)
		if b.Note != "" {
			fmt.Printf(" (%s)", b.Note)
		}
		fmt.Println()
	}

	fmt.Println("\n📄 Account opening checklist")
	for _, doc := range d.library.Documents() {
		fmt.Printf("• %s\n", doc)
	}
	return nil
}

func (d *Dashboard) handleExit(ctx context.Context) error {
	fmt.Println("👋 Trade the plan, not the moment.")
	return nil
}
