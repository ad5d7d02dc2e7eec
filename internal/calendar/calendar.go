// Package calendar builds Google Calendar "add event" links for accepted shifts.
package calendar

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"shiftscan/internal/domain"
)

const templateURL = "https://www.google.com/calendar/render"

const stamp = "20060102T1504"

// Title is the event title shown in the calendar.
func Title(targetName string, shift domain.ValidatedShift) string {
	name := strings.TrimSpace(targetName)
	if name == "" {
		return fmt.Sprintf("Shift (%s-%s)", shift.Start, shift.End)
	}
	return fmt.Sprintf("%s shift (%s-%s)", name, shift.Start, shift.End)
}

// Window returns the start and end instants of the shift in loc. The times are
// wall-clock values on the shift date, so a DST change that day does not move them.
func Window(shift domain.ValidatedShift, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation("2006-01-02", shift.Date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse shift date %q: %w", shift.Date, err)
	}
	return wallClock(day, shift.StartMinute, loc), wallClock(day, shift.EndMinute, loc), nil
}

func wallClock(day time.Time, minute int, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, minute/60, minute%60, 0, 0, loc)
}

// Link returns a template URL that pre-fills a calendar event for the shift.
// Times are wall-clock values without a zone suffix.
func Link(title string, shift domain.ValidatedShift, loc *time.Location) (string, error) {
	start, end, err := Window(shift, loc)
	if err != nil {
		return "", err
	}
	text := strings.ReplaceAll(url.QueryEscape(title), "+", "%20")
	dates := start.Format(stamp) + "00/" + end.Format(stamp) + "00"
	return templateURL + "?action=TEMPLATE&text=" + text + "&dates=" + dates, nil
}
