// Package telegram is the bot view: the same plan dashboard, exposed as
// Telegram commands for use away from a terminal.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/anjaylytics/plandesk/internal/anjaylytics"
	"github.com/anjaylytics/plandesk/internal/calibration"
	"github.com/anjaylytics/plandesk/internal/content"
	"github.com/anjaylytics/plandesk/internal/export"
	"github.com/anjaylytics/plandesk/internal/metrics"
	"github.com/anjaylytics/plandesk/internal/models"
	"github.com/anjaylytics/plandesk/internal/planner"
	"github.com/anjaylytics/plandesk/internal/tips"
)

// settleTimeout bounds how long a command waits for an in-flight plan
// before telling the user to check back.
const settleTimeout = 15 * time.Second

// Options wires the bot to the orchestration core.
type Options struct {
	BotToken       string
	ChatID         string
	MaxRetries     int
	RetryDelayBase time.Duration
	Planner        *planner.Planner
	Quality        *metrics.Fetcher
	Service        *anjaylytics.Client
	Library        *content.Library
	Logger         zerolog.Logger
}

// Client handles the Telegram side of the dashboard.
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
	planner        *planner.Planner
	quality        *metrics.Fetcher
	service        *anjaylytics.Client
	library        *content.Library
	logger         zerolog.Logger
}

// NewClient creates the bot view.
func NewClient(opts Options) (*Client, error) {
	chatID, err := strconv.ParseInt(opts.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(opts.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelayBase := opts.RetryDelayBase
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatID,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
		planner:        opts.Planner,
		quality:        opts.Quality,
		service:        opts.Service,
		library:        opts.Library,
		logger:         opts.Logger,
	}, nil
}

// ListenForCommands starts a goroutine that polls for Telegram updates
// and handles bot commands. It returns immediately; the goroutine stops
// when ctx is cancelled.
func (c *Client) ListenForCommands(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message == nil || !update.Message.IsCommand() {
					continue
				}
				if update.Message.Chat.ID != c.chatID {
					c.logger.Debug().
						Int64("chat_id", update.Message.Chat.ID).
						Msg("Ignoring command from unknown chat")
					continue
				}
				// Handlers may block on the scoring service, so each
				// command runs on its own goroutine.
				go c.handleCommand(ctx, update.Message)
			}
		}
	}()
}

func (c *Client) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		c.reply(helpText())
	case "plan":
		c.reply(formatPlan(c.waitSettled()))
	case "budget":
		c.applyParam(args, func(p *planner.Params, v float64) { p.DailyBudgetPula = v })
	case "bankroll":
		c.applyParam(args, func(p *planner.Params, v float64) { p.BankrollPula = v })
	case "risk":
		c.applyParam(args, func(p *planner.Params, v float64) { p.RiskValue = v })
	case "preset":
		c.handlePreset(args)
	case "refresh":
		c.planner.Refresh()
		c.reply(formatPlan(c.waitSettled()))
	case "export":
		c.handleExport()
	case "metrics":
		c.quality.Fetch(ctx)
		c.reply(formatMetrics(c.quality.Snapshot()))
	case "tips":
		c.reply(formatTips(tips.ForDate(time.Now(), c.library.TipGroups())))
	case "shuffletips":
		c.reply(formatTips(tips.Shuffled(c.library.TipGroups())))
	case "brokers":
		c.reply(formatBrokers(c.library.Brokers()))
	case "docs":
		c.reply(formatDocuments(c.library.Documents()))
	case "ping":
		c.reply("Pong")
	default:
		c.reply("Unknown command\\. Send /help for the list\\.")
	}
}

// applyParam parses a numeric argument, applies it to a copy of the
// current parameters, and replies with the resulting plan.
func (c *Client) applyParam(arg string, set func(*planner.Params, float64)) {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		c.reply("Send a number, like `/budget 500`\\.")
		return
	}

	params := c.planner.Snapshot().Params
	set(&params, v)
	if err := c.planner.Apply(params); err != nil {
		c.reply(fmt.Sprintf("⚠️ %s", escapeMarkdownV2(err.Error())))
		return
	}
	c.reply(formatPlan(c.waitSettled()))
}

func (c *Client) handlePreset(arg string) {
	params := c.planner.Snapshot().Params
	params.Preset = models.Preset(arg)
	if err := c.planner.Apply(params); err != nil {
		c.reply(fmt.Sprintf("⚠️ %s", escapeMarkdownV2(err.Error())))
		return
	}
	c.reply(formatPlan(c.waitSettled()))
}

func (c *Client) handleExport() {
	snap := c.planner.Snapshot()
	if snap.Plan == nil || len(snap.Plan.Ideas) == 0 {
		c.reply("Nothing to export: the plan has no ideas\\.")
		return
	}

	data, err := export.Render(snap.Plan)
	if err != nil {
		c.reply(fmt.Sprintf("⚠️ Export failed: %s", escapeMarkdownV2(err.Error())))
		return
	}

	doc := tgbotapi.NewDocument(c.chatID, tgbotapi.FileBytes{
		Name:  export.Filename(snap.Plan),
		Bytes: data,
	})
	if _, err := c.bot.Send(doc); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to send export document")
		c.reply("⚠️ Could not send the CSV document\\.")
		return
	}

	link := escapeMarkdownV2(c.service.ExportURL(snap.Request))
	c.reply(fmt.Sprintf("Service\\-side export link:\n%s", link))
}

func (c *Client) waitSettled() planner.Snapshot {
	return c.planner.AwaitIdle(settleTimeout)
}

func (c *Client) reply(text string) {
	if err := c.sendMarkdownV2(text); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to send reply")
	}
}

// sendMarkdownV2 sends a MarkdownV2 message, retrying transient
// Telegram failures with backoff.
func (c *Client) sendMarkdownV2(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = "MarkdownV2"

	operation := func() error {
		_, err := c.bot.Send(msg)
		return err
	}
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryDelayBase

	if err := backoff.Retry(operation, backoff.WithMaxRetries(policy, uint64(c.maxRetries))); err != nil {
		return fmt.Errorf("failed after %d retries: %w", c.maxRetries, err)
	}
	return nil
}

func formatPlan(snap planner.Snapshot) string {
	if snap.Plan == nil {
		if snap.Err != "" {
			return fmt.Sprintf("⚠️ *%s*\nChange a parameter or send /refresh to retry\\.", escapeMarkdownV2(snap.Err))
		}
		if snap.Loading {
			return "⏳ Still fetching the plan, send /plan in a moment\\."
		}
		return "No plan yet\\. Send /refresh to fetch one\\."
	}

	plan := snap.Plan
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📋 *Trade plan %s* \\(%s\\)\n",
		escapeMarkdownV2(plan.AsOf), escapeMarkdownV2(string(plan.Preset))))
	if snap.Loading {
		b.WriteString("⏳ Updating, showing the last good plan\n")
	}
	if snap.Err != "" {
		b.WriteString(fmt.Sprintf("⚠️ %s, showing the last good plan\n", escapeMarkdownV2(snap.Err)))
	}
	b.WriteString(fmt.Sprintf("Risk %s \\(min p %s\\) · Budget P%s · Bankroll P%s\n\n",
		escapeMarkdownV2(string(snap.Profile.Category)),
		escapeMarkdownV2(fmt.Sprintf("%.2f", snap.Profile.MinProbability)),
		escapeMarkdownV2(strconv.FormatFloat(snap.Params.DailyBudgetPula, 'f', -1, 64)),
		escapeMarkdownV2(strconv.FormatFloat(snap.Params.BankrollPula, 'f', -1, 64))))

	if len(plan.Ideas) == 0 {
		b.WriteString("No ideas passed the gates today\\.\n")
	}
	for i, idea := range plan.Ideas {
		b.WriteString(fmt.Sprintf("%d\\. *%s* %s\n", i+1,
			escapeMarkdownV2(idea.Symbol), escapeMarkdownV2(idea.Market)))
		b.WriteString(fmt.Sprintf("   p %s · EV %s · size P%s\n",
			escapeMarkdownV2(fmt.Sprintf("%.1f%%", idea.P*100)),
			escapeMarkdownV2(fmt.Sprintf("%.2f%%", idea.EV*100)),
			escapeMarkdownV2(fmt.Sprintf("%.2f", idea.SizeBWP))))
		b.WriteString(fmt.Sprintf("   entry %s · stop %s · take %s\n",
			escapeMarkdownV2(fmt.Sprintf("%.2f", idea.Entry)),
			escapeMarkdownV2(fmt.Sprintf("%.2f", idea.Stop)),
			escapeMarkdownV2(fmt.Sprintf("%.2f", idea.Take))))
		if idea.Rationale != "" {
			b.WriteString(fmt.Sprintf("   _%s_\n", escapeMarkdownV2(idea.Rationale)))
		}
		for _, h := range idea.Headlines {
			b.WriteString(fmt.Sprintf("   • %s\n", escapeMarkdownV2(h)))
		}
	}

	b.WriteString(fmt.Sprintf("\n💰 Keep P%s in cash",
		escapeMarkdownV2(fmt.Sprintf("%.2f", plan.Cash.Suggested))))
	if plan.Cash.Reason != "" {
		b.WriteString(fmt.Sprintf(": %s", escapeMarkdownV2(plan.Cash.Reason)))
	}
	b.WriteString("\n")

	return b.String()
}

func formatMetrics(snap metrics.Snapshot) string {
	var b strings.Builder

	b.WriteString("📈 *Model quality*\n")
	if snap.Brier != nil {
		b.WriteString(fmt.Sprintf("Brier score: %s\n", escapeMarkdownV2(fmt.Sprintf("%.3f", *snap.Brier))))
	} else {
		b.WriteString("Brier score: —\n")
	}

	bars := calibration.Reduce(snap.Bins)
	if len(bars) == 0 {
		b.WriteString("No calibration data yet\\.\n")
		return b.String()
	}

	b.WriteString("Calibration \\(predicted vs observed\\):\n")
	for _, bar := range bars {
		b.WriteString(fmt.Sprintf("  %s → %s \\(n\\=%d\\)\n",
			escapeMarkdownV2(fmt.Sprintf("%.0f%%", bar.PredictedPct)),
			escapeMarkdownV2(fmt.Sprintf("%.0f%%", bar.ObservedPct)),
			bar.N))
	}
	return b.String()
}

func formatTips(picks []tips.Pick) string {
	var b strings.Builder
	b.WriteString("💡 *Today's coaching*\n")
	for _, p := range picks {
		b.WriteString(fmt.Sprintf("*%s:* %s\n",
			escapeMarkdownV2(p.Category), escapeMarkdownV2(p.Text)))
	}
	return b.String()
}

func formatBrokers(brokers []content.Broker) string {
	var b strings.Builder
	b.WriteString("🏦 *Broker directory*\n")
	for _, broker := range brokers {
		b.WriteString(fmt.Sprintf("[%s](%s)", escapeMarkdownV2(broker.Name), broker.URL))
		if broker.Note != "" {
			b.WriteString(fmt.Sprintf(" · %s", escapeMarkdownV2(broker.Note)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatDocuments(docs []string) string {
	var b strings.Builder
	b.WriteString("📄 *Account opening checklist*\n")
	for _, d := range docs {
		b.WriteString(fmt.Sprintf("• %s\n", escapeMarkdownV2(d)))
	}
	return b.String()
}

func helpText() string {
	return strings.Join([]string{
		"*plandesk commands*",
		"/plan · show the current plan",
		"/budget `<pula>` · set the daily budget",
		"/bankroll `<pula>` · set the bankroll",
		"/risk `<0..1>` · set the risk appetite",
		"/preset `<Botswana|Global>` · switch the market universe",
		"/refresh · refetch the plan",
		"/export · get the plan as CSV",
		"/metrics · model quality figures",
		"/tips · today's coaching",
		"/shuffletips · reshuffle the coaching",
		"/brokers · broker directory",
		"/docs · account opening checklist",
	}, "\n")
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4) // pre-allocate with room for escapes
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
