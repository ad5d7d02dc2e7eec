package slackbot

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"shiftscan/internal/domain"
	"shiftscan/internal/report"
	"shiftscan/internal/storage/sqlite"
)

const historyLimit = 10

// settingsUpdate is a partial update parsed from "/shifts set".
type settingsUpdate struct {
	Name  *string
	Wage  *float64
	Month *string
}

func (b *Bot) handleSlashCommand(ctx context.Context, cmd slack.SlashCommand) {
	if cmd.Command != commandName {
		return
	}
	sub, rest := splitSubcommand(cmd.Text)
	switch sub {
	case "set":
		b.handleSet(ctx, cmd, rest)
	case "show", "":
		b.handleShow(ctx, cmd)
	case "history":
		b.handleHistory(cmd)
	case "help":
		b.postEphemeral(cmd, helpText())
	default:
		b.postEphemeral(cmd, fmt.Sprintf("Unknown subcommand %q.\n\n%s", sub, helpText()))
	}
}

func splitSubcommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	sub, rest, _ := strings.Cut(text, " ")
	return strings.ToLower(sub), strings.TrimSpace(rest)
}

// parseSettingsArgs reads "name=<name> wage=<n> month=<YYYY-MM>" in any order.
// A name may contain spaces; it runs until the next key.
func parseSettingsArgs(text string) (settingsUpdate, error) {
	var upd settingsUpdate
	values := map[string]string{}
	var current string
	for _, tok := range strings.Fields(text) {
		key, val, found := strings.Cut(tok, "=")
		key = strings.ToLower(key)
		if found && (key == "name" || key == "wage" || key == "month") {
			if _, dup := values[key]; dup {
				return upd, fmt.Errorf("%s given more than once", key)
			}
			current = key
			values[key] = val
			continue
		}
		if current != "name" {
			return upd, fmt.Errorf("unexpected argument %q", tok)
		}
		values["name"] += " " + tok
	}
	if len(values) == 0 {
		return upd, fmt.Errorf("nothing to set; use name=, wage= or month=")
	}

	if v, ok := values["name"]; ok {
		name := strings.TrimSpace(v)
		if name == "" {
			return upd, fmt.Errorf("name must not be empty")
		}
		upd.Name = &name
	}
	if v, ok := values["wage"]; ok {
		wage, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		if err != nil || wage < 0 || math.IsNaN(wage) || math.IsInf(wage, 0) {
			return upd, fmt.Errorf("wage must be a non-negative number, got %q", v)
		}
		upd.Wage = &wage
	}
	if v, ok := values["month"]; ok {
		if !domain.ValidYearMonth(v) {
			return upd, fmt.Errorf("month must be YYYY-MM, got %q", v)
		}
		upd.Month = &v
	}
	return upd, nil
}

func (u settingsUpdate) apply(s domain.UserSettings) domain.UserSettings {
	if u.Name != nil {
		s.TargetName = *u.Name
	}
	if u.Wage != nil {
		s.HourlyWage = *u.Wage
		s.WageSet = true
	}
	if u.Month != nil {
		s.YearMonth = *u.Month
	}
	return s
}

// resolveSettings fills whatever the user has not stored from the defaults.
func resolveSettings(defaults domain.AnalysisSettings, stored domain.UserSettings, ok bool) domain.AnalysisSettings {
	out := defaults
	if !ok {
		return out
	}
	if strings.TrimSpace(stored.TargetName) != "" {
		out.TargetName = stored.TargetName
	}
	if stored.WageSet {
		out.HourlyWage = stored.HourlyWage
	}
	if stored.YearMonth != "" {
		out.YearMonth = stored.YearMonth
	}
	return out
}

func (b *Bot) handleSet(ctx context.Context, cmd slack.SlashCommand, args string) {
	upd, err := parseSettingsArgs(args)
	if err != nil {
		b.postEphemeral(cmd, fmt.Sprintf("Could not update settings: %v", err))
		return
	}
	stored, _, err := sqlite.GetUserSettings(b.db, cmd.UserID)
	if err != nil {
		zap.S().Errorf("shifts set load error user=%s: %v", cmd.UserID, err)
		b.postEphemeral(cmd, "Error loading your settings.")
		return
	}
	stored.UserID = cmd.UserID
	stored = upd.apply(stored)
	if err := sqlite.SaveUserSettings(b.db, stored); err != nil {
		zap.S().Errorf("shifts set save error user=%s: %v", cmd.UserID, err)
		b.postEphemeral(cmd, "Error saving your settings.")
		return
	}
	zap.S().Infof("shifts set user=%s name=%t wage=%t month=%t", cmd.UserID, upd.Name != nil, upd.Wage != nil, upd.Month != nil)
	b.handleShow(ctx, cmd)
}

func (b *Bot) settingsFor(ctx context.Context, userID string) (domain.AnalysisSettings, error) {
	stored, ok, err := sqlite.GetUserSettings(b.db, userID)
	if err != nil {
		return domain.AnalysisSettings{}, err
	}
	settings := resolveSettings(b.cfg.DefaultSettings(), stored, ok)
	if strings.TrimSpace(settings.TargetName) == "" {
		settings.TargetName = b.users.displayName(ctx, b.api, userID)
	}
	return settings, nil
}

func (b *Bot) handleShow(ctx context.Context, cmd slack.SlashCommand) {
	settings, err := b.settingsFor(ctx, cmd.UserID)
	if err != nil {
		zap.S().Errorf("shifts show error user=%s: %v", cmd.UserID, err)
		b.postEphemeral(cmd, "Error loading your settings.")
		return
	}
	lines := []string{
		"*Your shift settings*",
		fmt.Sprintf("• Name: %s", orDash(settings.TargetName)),
		fmt.Sprintf("• Hourly wage: %s", report.Money(int64(settings.HourlyWage), b.cfg.CurrencySymbol, b.cfg.Locale)),
		fmt.Sprintf("• Month: %s", orDash(settings.YearMonth)),
	}
	if err := settings.Validate(); err != nil {
		lines = append(lines, "", fmt.Sprintf("_Not ready to analyze: %v_", err))
	} else {
		lines = append(lines, "", "Upload a photo of the schedule in this channel to analyze it.")
	}
	b.postEphemeral(cmd, strings.Join(lines, "\n"))
}

func (b *Bot) handleHistory(cmd slack.SlashCommand) {
	runs, err := sqlite.ListRuns(b.db, cmd.UserID, historyLimit)
	if err != nil {
		zap.S().Errorf("shifts history error user=%s: %v", cmd.UserID, err)
		b.postEphemeral(cmd, "Error loading history.")
		return
	}
	b.postEphemeral(cmd, formatHistory(runs, b.cfg.CurrencySymbol, b.cfg.Locale))
}

func formatHistory(runs []domain.RunRecord, symbol, locale string) string {
	if len(runs) == 0 {
		return "No analyses yet."
	}
	lines := []string{"*Recent analyses*"}
	for _, r := range runs {
		if r.Malformed {
			lines = append(lines, fmt.Sprintf("• %s %s %s: unreadable response (%s)",
				r.CreatedAt.Format("2006-01-02 15:04"), r.TargetName, r.YearMonth, r.Provider))
			continue
		}
		line := fmt.Sprintf("• %s %s %s: %d shifts, %s",
			r.CreatedAt.Format("2006-01-02 15:04"), r.TargetName, r.YearMonth, r.Accepted,
			report.Money(r.TotalPayFloor, symbol, locale))
		if r.Rejected > 0 {
			line += fmt.Sprintf(", %d rejected (%s)", r.Rejected, r.ReasonBreakdown)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func helpText() string {
	return strings.Join([]string{
		"*shiftscan commands*",
		"",
		"`/shifts set name=<name> wage=<hourly wage> month=<YYYY-MM>`: save your settings (any subset).",
		">*Example:* `/shifts set name=Sato Hanako wage=1200 month=2026-01`",
		"`/shifts show`: show your settings.",
		"`/shifts history`: list your recent analyses.",
		"`/shifts help`: show this help.",
		"",
		"Upload a photo of a shift schedule in a channel I am in and I will reply with your shifts, pay and calendar links.",
	}, "\n")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
