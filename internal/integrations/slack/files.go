package slackbot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"

	"shiftscan/internal/analysis"
	"shiftscan/internal/integrations/recognizer"
	"shiftscan/internal/report"
	"shiftscan/internal/shifts"
	"shiftscan/internal/storage/sqlite"
)

var errImageTooLarge = errors.New("image too large")

// cappedBuffer fails once more than max bytes are written.
type cappedBuffer struct {
	buf bytes.Buffer
	max int64
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if int64(c.buf.Len())+int64(len(p)) > c.max {
		return 0, errImageTooLarge
	}
	return c.buf.Write(p)
}

func (b *Bot) handleFileShared(ctx context.Context, ev *slackevents.FileSharedEvent) {
	if ev.UserID != "" && ev.UserID == b.botID {
		return
	}
	file, _, _, err := b.api.GetFileInfoContext(ctx, ev.FileID, 0, 0)
	if err != nil {
		zap.S().Warnf("file-shared info error file=%s: %v", ev.FileID, err)
		return
	}
	if !strings.HasPrefix(file.Mimetype, "image/") {
		zap.S().Debugf("file-shared skip file=%s mimetype=%s", ev.FileID, file.Mimetype)
		return
	}
	channelID := ev.ChannelID
	if channelID == "" && len(file.Channels) > 0 {
		channelID = file.Channels[0]
	}
	if channelID == "" {
		zap.S().Warnf("file-shared no channel file=%s", ev.FileID)
		return
	}
	if int64(file.Size) > b.cfg.MaxImageBytes {
		b.postMessage(ctx, channelID, fmt.Sprintf("That image is too large (%d bytes, limit %d).", file.Size, b.cfg.MaxImageBytes))
		return
	}

	data := &cappedBuffer{max: b.cfg.MaxImageBytes}
	if err := b.api.GetFileContext(ctx, file.URLPrivateDownload, data); err != nil {
		zap.S().Warnf("file-shared download error file=%s: %v", ev.FileID, err)
		if errors.Is(err, errImageTooLarge) {
			b.postMessage(ctx, channelID, fmt.Sprintf("That image is larger than the %d byte limit.", b.cfg.MaxImageBytes))
		}
		return
	}
	mimeType, err := recognizer.DetectImageType(data.buf.Bytes())
	if err != nil {
		b.postMessage(ctx, channelID, fmt.Sprintf("I could not read that file as an image: %v", err))
		return
	}

	settings, err := b.settingsFor(ctx, ev.UserID)
	if err != nil {
		zap.S().Errorf("file-shared settings error user=%s: %v", ev.UserID, err)
		b.postMessage(ctx, channelID, "Error loading your settings.")
		return
	}
	if err := settings.Validate(); err != nil {
		b.postMessage(ctx, channelID, fmt.Sprintf("<@%s> set up your details first with `/shifts set`: %v", ev.UserID, err))
		return
	}

	if !b.limiter.allow(ev.UserID) {
		zap.S().Infof("file-shared throttled user=%s file=%s", ev.UserID, ev.FileID)
		b.postMessage(ctx, channelID, fmt.Sprintf("<@%s> too many images at once. Please wait a minute and upload again.", ev.UserID))
		return
	}

	zap.S().Infof("file-shared analyze user=%s file=%s size=%d mime=%s", ev.UserID, ev.FileID, data.buf.Len(), mimeType)
	result, err := b.analyzer.Analyze(ctx, recognizer.Image{Data: data.buf.Bytes(), MIMEType: mimeType}, settings, analysis.Options{})
	switch {
	case err == nil, errors.Is(err, shifts.ErrMalformedBatch):
		b.postMessage(ctx, channelID, report.Render(result, report.Options{
			Format:         report.FormatSlack,
			CurrencySymbol: b.cfg.CurrencySymbol,
			Locale:         b.cfg.Locale,
			Location:       b.cfg.Location,
			Calendar:       true,
		}))
		if err := sqlite.InsertRun(b.db, result.RunRecord(ev.UserID)); err != nil {
			zap.S().Errorf("file-shared record run error run=%s: %v", result.RunID, err)
		}
	case errors.Is(err, recognizer.ErrUpstreamFailure):
		b.postMessage(ctx, channelID, "The image recognizer is unavailable right now. Please try again later.")
	default:
		zap.S().Errorf("file-shared analyze error user=%s: %v", ev.UserID, err)
		b.postMessage(ctx, channelID, fmt.Sprintf("Analysis failed: %v", err))
	}
}
