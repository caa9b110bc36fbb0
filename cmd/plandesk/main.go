package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/anjaylytics/plandesk/internal/anjaylytics"
	"github.com/anjaylytics/plandesk/internal/config"
	"github.com/anjaylytics/plandesk/internal/content"
	"github.com/anjaylytics/plandesk/internal/export"
	"github.com/anjaylytics/plandesk/internal/logger"
	"github.com/anjaylytics/plandesk/internal/metrics"
	"github.com/anjaylytics/plandesk/internal/models"
	"github.com/anjaylytics/plandesk/internal/planner"
	"github.com/anjaylytics/plandesk/internal/telegram"
	"github.com/anjaylytics/plandesk/internal/tips"
	"github.com/anjaylytics/plandesk/internal/ui"
)

const (
	appName = "plandesk"
	version = "v1.0.0"

	// settleTimeout bounds how long headless commands wait for the
	// plan fetch before giving up.
	settleTimeout = 15 * time.Second
)

var (
	configPath   string
	flagBudget   float64
	flagBankroll float64
	flagRisk     float64
	flagPreset   string
	exportOut    string
	tipsShuffle  bool
)

var rootCmd = &cobra.Command{
	Use:     appName,
	Short:   "Daily trade-plan dashboard for the anjaylytics scoring service",
	Version: version,
	Long: `plandesk renders the daily trade plan served by the anjaylytics
scoring service: risk-gated ideas, position sizes in pula, cash advice,
and model-quality figures.

Run 'plandesk' in a terminal for the interactive dashboard. The
subcommands are shims for non-interactive automation.`,
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Fetch and print today's plan",
	Long:  "Fetches the plan for the configured parameters and prints it once",
	RunE:  runPlan,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch today's plan and write the CSV artifact",
	Long:  "Fetches the plan for the configured parameters and saves the broker-ready CSV",
	RunE:  runExport,
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print model-quality figures",
	Long:  "Fetches the Brier score and calibration history and prints them once",
	RunE:  runMetrics,
}

var tipsCmd = &cobra.Command{
	Use:   "tips",
	Short: "Print coaching tips",
	Long:  "Prints the deterministic tips for today's date, or a fresh draw with --shuffle",
	RunE:  runTips,
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Long:  "Serves the dashboard as Telegram commands until interrupted",
	RunE:  runBot,
}

func init() {
	// Assigned here rather than in the literal to avoid an
	// initialization cycle: runDefaultEntry reads rootCmd's flags.
	rootCmd.Run = runDefaultEntry

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file (default: search ./configs)")
	rootCmd.PersistentFlags().Float64Var(&flagBudget, "budget", 0, "Daily budget in pula (overrides config)")
	rootCmd.PersistentFlags().Float64Var(&flagBankroll, "bankroll", 0, "Bankroll in pula (overrides config)")
	rootCmd.PersistentFlags().Float64Var(&flagRisk, "risk", 0, "Risk appetite 0..1 (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagPreset, "preset", "", "Market preset, Botswana or Global (overrides config)")

	exportCmd.Flags().StringVar(&exportOut, "out", "", "Directory for the CSV artifact (overrides config)")
	tipsCmd.Flags().BoolVar(&tipsShuffle, "shuffle", false, "Draw a fresh set instead of today's deterministic one")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(tipsCmd)
	rootCmd.AddCommand(botCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the orchestration core shared by every view.
type app struct {
	cfg     *config.Config
	service *anjaylytics.Client
	planner *planner.Planner
	quality *metrics.Fetcher
	library *content.Library
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	service := anjaylytics.New(anjaylytics.Config{
		BaseURL:           cfg.Service.BaseURL,
		Timeout:           cfg.Service.Timeout,
		RequestsPerSecond: cfg.Service.RequestsPerSecond,
	}, logger.Component("anjaylytics"))

	return &app{
		cfg:     cfg,
		service: service,
		planner: planner.New(ctx, service, logger.Component("planner")),
		quality: metrics.New(service, logger.Component("metrics")),
		library: content.NewLibrary(cfg.Content),
	}, nil
}

// startupParams merges the configured defaults with any flags the user
// set explicitly.
func (a *app) startupParams() planner.Params {
	params := planner.Params{
		DailyBudgetPula: a.cfg.Defaults.DailyBudgetPula,
		BankrollPula:    a.cfg.Defaults.BankrollPula,
		RiskValue:       a.cfg.Defaults.Risk,
		Preset:          models.Preset(a.cfg.Defaults.Preset),
	}
	flags := rootCmd.PersistentFlags()
	if flags.Changed("budget") {
		params.DailyBudgetPula = flagBudget
	}
	if flags.Changed("bankroll") {
		params.BankrollPula = flagBankroll
	}
	if flags.Changed("risk") {
		params.RiskValue = flagRisk
	}
	if flags.Changed("preset") {
		params.Preset = models.Preset(flagPreset)
	}
	return params
}

// settledPlan applies the startup parameters and waits for the fetch to
// resolve.
func settledPlan(a *app) (planner.Snapshot, error) {
	if err := a.planner.Apply(a.startupParams()); err != nil {
		return planner.Snapshot{}, err
	}
	snap := a.planner.AwaitIdle(settleTimeout)
	if snap.Plan == nil {
		if snap.Err != "" {
			return snap, errors.New(snap.Err)
		}
		return snap, errors.New("timed out waiting for the plan")
	}
	return snap, nil
}

// runDefaultEntry implements TTY detection and routing to the dashboard.
func runDefaultEntry(cmd *cobra.Command, args []string) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "❌ The dashboard requires a TTY terminal.\n")
		fmt.Fprintf(os.Stderr, "   Use subcommands for non-interactive automation:\n\n")
		fmt.Fprintf(os.Stderr, "   plandesk plan --risk 0.7 --preset Botswana\n")
		fmt.Fprintf(os.Stderr, "   plandesk export --out ./exports\n")
		fmt.Fprintf(os.Stderr, "   plandesk --help\n")
		os.Exit(2)
	}

	if err := runDashboard(); err != nil {
		log.Error().Err(err).Msg("Dashboard failed")
		os.Exit(1)
	}
}

func runDashboard() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	if err := a.planner.Apply(a.startupParams()); err != nil {
		return err
	}

	dash := ui.NewDashboard(ui.Options{
		Planner:   a.planner,
		Quality:   a.quality,
		Service:   a.service,
		Library:   a.library,
		ExportDir: a.cfg.Export.Directory,
		Logger:    logger.Component("ui"),
	})
	return dash.Run(ctx)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	snap, err := settledPlan(a)
	if err != nil {
		return err
	}
	ui.PrintPlan(snap)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	snap, err := settledPlan(a)
	if err != nil {
		return err
	}

	dir := a.cfg.Export.Directory
	if exportOut != "" {
		dir = exportOut
	}
	path, err := export.SaveToDir(dir, snap.Plan)
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println("Nothing to export: the plan has no ideas.")
		return nil
	}

	fmt.Printf("Saved %s\n", path)
	fmt.Printf("Service-side export: %s\n", a.service.ExportURL(snap.Request))
	return nil
}

func runMetrics(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	a.quality.Fetch(ctx)
	ui.PrintQuality(a.quality.Snapshot())
	return nil
}

func runTips(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	picks := tips.ForDate(time.Now(), a.library.TipGroups())
	if tipsShuffle {
		picks = tips.Shuffled(a.library.TipGroups())
	}
	ui.PrintTips(picks)
	return nil
}

func runBot(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	if !a.cfg.Telegram.Enabled {
		return errors.New("telegram is disabled in configuration")
	}

	if err := a.planner.Apply(a.startupParams()); err != nil {
		return err
	}

	bot, err := telegram.NewClient(telegram.Options{
		BotToken:       a.cfg.Telegram.BotToken,
		ChatID:         a.cfg.Telegram.ChatID,
		MaxRetries:     a.cfg.Telegram.MaxRetries,
		RetryDelayBase: a.cfg.Telegram.RetryDelayBase,
		Planner:        a.planner,
		Quality:        a.quality,
		Service:        a.service,
		Library:        a.library,
		Logger:         logger.Component("telegram"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram client: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received, cleaning up...")
		cancel()
	}()

	bot.ListenForCommands(ctx)
	log.Info().Str("chat_id", a.cfg.Telegram.ChatID).Msg("Telegram bot listening for commands")

	<-ctx.Done()
	log.Info().Msg("Service stopped")
	return nil
}
