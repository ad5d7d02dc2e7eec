// Package reminder posts a monthly "upload your schedule" nudge on a cron schedule.
package reminder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// Poster is the part of *slack.Client the reminder needs.
type Poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

type Scheduler struct {
	schedule  cron.Schedule
	spec      string
	channelID string
	loc       *time.Location
	poster    Poster
	now       func() time.Time
}

// ParseSchedule accepts a standard 5-field cron expression
// (minute hour day-of-month month day-of-week), e.g. "0 9 25 * *".
func ParseSchedule(spec string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(strings.TrimSpace(spec))
	if err != nil {
		return nil, fmt.Errorf("invalid reminder_schedule %q: %w", spec, err)
	}
	return sched, nil
}

func New(spec, channelID string, loc *time.Location, poster Poster) (*Scheduler, error) {
	sched, err := ParseSchedule(spec)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		schedule:  sched,
		spec:      strings.TrimSpace(spec),
		channelID: channelID,
		loc:       loc,
		poster:    poster,
		now:       time.Now,
	}, nil
}

// NextMonth returns the YYYY-MM anchor following t's month.
func NextMonth(t time.Time) string {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, 1, 0).Format("2006-01")
}

func Message(anchor string) string {
	return fmt.Sprintf("Reminder: next month's shift schedule (%s) should be out soon.\n"+
		"Run `/shifts set month=%s` and upload a photo of the schedule here to get your shifts, pay and calendar links.",
		anchor, anchor)
}

// Run blocks until ctx is cancelled, posting at every tick.
func (s *Scheduler) Run(ctx context.Context) {
	zap.S().Infof("reminder scheduled (cron: %s) channel=%s", s.spec, s.channelID)
	for {
		now := s.now().In(s.loc)
		next := s.schedule.Next(now)
		wait := next.Sub(now)
		zap.S().Infof("next reminder at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		s.Post(ctx, next)
	}
}

// Post sends the reminder for a tick at the given time.
func (s *Scheduler) Post(ctx context.Context, at time.Time) error {
	anchor := NextMonth(at.In(s.loc))
	_, _, err := s.poster.PostMessageContext(ctx, s.channelID, slack.MsgOptionText(Message(anchor), false))
	if err != nil {
		zap.S().Warnf("reminder post error channel=%s: %v", s.channelID, err)
		return err
	}
	zap.S().Infof("reminder posted channel=%s anchor=%s", s.channelID, anchor)
	return nil
}
