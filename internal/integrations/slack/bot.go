package slackbot

import (
	"context"
	"database/sql"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"

	"shiftscan/internal/analysis"
	"shiftscan/internal/config"
)

const commandName = "/shifts"

type Bot struct {
	cfg      config.Config
	db       *sql.DB
	api      *slack.Client
	analyzer *analysis.Analyzer
	botID    string
	users    *userCache
	limiter  *userLimiter
}

func New(cfg config.Config, db *sql.DB, api *slack.Client, analyzer *analysis.Analyzer) *Bot {
	return &Bot{
		cfg:      cfg,
		db:       db,
		api:      api,
		analyzer: analyzer,
		users:    newUserCache(userCacheTTL),
		limiter:  newUserLimiter(uploadsPerUser, uploadBurst),
	}
}

// Run connects over Socket Mode and serves events until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if auth, err := b.api.AuthTestContext(ctx); err == nil {
		b.botID = auth.UserID
	} else {
		zap.S().Warnf("slack auth test failed: %v", err)
	}

	client := socketmode.New(b.api)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-client.Events:
				if !ok {
					return
				}
				b.dispatch(ctx, client, evt)
			}
		}
	}()

	zap.S().Infof("slack bot connecting via Socket Mode bot_user=%s", b.botID)
	return client.RunContext(ctx)
}

func (b *Bot) dispatch(ctx context.Context, client *socketmode.Client, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnected:
		zap.S().Infof("slack bot connected")
	case socketmode.EventTypeSlashCommand:
		client.Ack(*evt.Request)
		cmd, ok := evt.Data.(slack.SlashCommand)
		if !ok {
			return
		}
		zap.S().Infof("slash command received: %s from user=%s channel=%s", cmd.Command, cmd.UserID, cmd.ChannelID)
		go b.handleSlashCommand(ctx, cmd)
	case socketmode.EventTypeEventsAPI:
		client.Ack(*evt.Request)
		eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		go b.handleEventsAPI(ctx, eventsAPIEvent)
	}
}

func (b *Bot) handleEventsAPI(ctx context.Context, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}
	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.FileSharedEvent:
		b.handleFileShared(ctx, ev)
	}
}

func (b *Bot) postEphemeral(cmd slack.SlashCommand, text string) {
	_, err := b.api.PostEphemeral(cmd.ChannelID, cmd.UserID, slack.MsgOptionText(text, false))
	if err != nil {
		zap.S().Warnf("error posting ephemeral: %v", err)
	}
}

func (b *Bot) postMessage(ctx context.Context, channelID, text string) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	_, _, err := b.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		zap.S().Warnf("error posting message channel=%s: %v", channelID, err)
	}
}
