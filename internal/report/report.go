// Package report renders an analysis for people: Slack mrkdwn or plain text.
package report

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"shiftscan/internal/analysis"
	"shiftscan/internal/calendar"
)

type Format int

const (
	FormatPlain Format = iota
	FormatSlack
)

type Options struct {
	Format         Format
	CurrencySymbol string
	Locale         string
	Location       *time.Location
	// Calendar adds an "add to calendar" link to every shift line.
	Calendar bool
}

// Money formats a floored amount with the locale's digit grouping.
func Money(amount int64, symbol, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Japanese
	}
	return message.NewPrinter(tag).Sprintf("%s%d", symbol, amount)
}

func formatHours(h float64) string {
	return strings.TrimSuffix(strings.TrimSuffix(fmt.Sprintf("%.2f", h), "0"), ".0") + "h"
}

// Render produces the reply for one analysis: one line per accepted shift, the
// total, then the diagnostics summary.
func Render(a analysis.Analysis, opts Options) string {
	var b strings.Builder
	slack := opts.Format == FormatSlack

	header := fmt.Sprintf("%s %s @ %s/h", a.Settings.TargetName, a.Settings.YearMonth,
		Money(int64(a.Settings.HourlyWage), opts.CurrencySymbol, opts.Locale))
	if slack {
		header = "*" + header + "*"
	}
	b.WriteString(header + "\n")

	if a.Malformed() {
		b.WriteString(a.Report.String())
		return b.String()
	}

	if len(a.Result.Shifts) == 0 {
		b.WriteString("No shifts found.\n")
	}
	for i, shift := range a.Result.Shifts {
		pay := ""
		if i < len(a.Result.Pay) {
			pay = Money(a.Result.Pay[i].PayFloor, opts.CurrencySymbol, opts.Locale)
		}
		line := fmt.Sprintf("%s %s-%s %s %s", shift.Date, shift.Start, shift.End,
			formatHours(float64(shift.DurationMinutes())/60), pay)
		if opts.Calendar {
			link, err := calendar.Link(calendar.Title(a.Settings.TargetName, shift), shift, opts.Location)
			if err == nil {
				if slack {
					line += " <" + link + "|add to calendar>"
				} else {
					line += " " + link
				}
			}
		}
		if slack {
			b.WriteString("• " + line + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	total := fmt.Sprintf("Total: %s %s", formatHours(a.Result.Totals.Hours),
		Money(a.Result.Totals.PayFloor, opts.CurrencySymbol, opts.Locale))
	if slack {
		total = "*" + total + "*"
	}
	b.WriteString(total + "\n")

	diag := a.Report.String()
	if slack && (a.Report.Rejected > 0 || len(a.Report.Duplicates) > 0 || a.Report.OutsideAnchor > 0) {
		diag = "```\n" + strings.TrimRight(diag, "\n") + "\n```\n"
	}
	b.WriteString(diag)
	return b.String()
}
