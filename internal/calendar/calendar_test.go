package calendar

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftscan/internal/domain"
)

func shift(date, start, end string, sm, em int) domain.ValidatedShift {
	return domain.ValidatedShift{Date: date, Start: start, End: end, StartMinute: sm, EndMinute: em}
}

func TestTitle(t *testing.T) {
	s := shift("2026-01-05", "09:00", "17:30", 540, 1050)
	assert.Equal(t, "後藤 shift (09:00-17:30)", Title(" 後藤 ", s))
	assert.Equal(t, "Shift (09:00-17:30)", Title("", s))
}

func TestLink(t *testing.T) {
	s := shift("2026-01-05", "09:00", "17:30", 540, 1050)
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	link, err := Link("Sato shift (09:00-17:30)", s, tokyo)
	require.NoError(t, err)
	assert.Equal(t,
		"https://www.google.com/calendar/render?action=TEMPLATE&text=Sato%20shift%20%2809%3A00-17%3A30%29&dates=20260105T090000/20260105T173000",
		link)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Sato shift (09:00-17:30)", u.Query().Get("text"))
	assert.Equal(t, "TEMPLATE", u.Query().Get("action"))
}

func TestLink_KeepsWallClockOnDSTDay(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Clocks jump from 02:00 to 03:00 on 2026-03-08.
	s := shift("2026-03-08", "09:00", "17:00", 540, 1020)
	link, err := Link("Shift (09:00-17:00)", s, newYork)
	require.NoError(t, err)
	assert.Contains(t, link, "&dates=20260308T090000/20260308T170000")

	start, end, err := Window(s, newYork)
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, end.Sub(start))
	assert.Equal(t, 9, start.Hour())
}

func TestLinkEscapesAmpersand(t *testing.T) {
	s := shift("2026-02-01", "08:05", "09:00", 485, 540)
	link, err := Link("A&B", s, time.UTC)
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "A&B", u.Query().Get("text"))
	assert.Equal(t, "20260201T080500/20260201T090000", u.Query().Get("dates"))
}

func TestLinkRejectsBadDate(t *testing.T) {
	_, err := Link("x", shift("2026-13-01", "09:00", "10:00", 540, 600), nil)
	assert.Error(t, err)
}
