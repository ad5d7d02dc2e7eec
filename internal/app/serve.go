package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"shiftscan/internal/analysis"
	"shiftscan/internal/httpx"
	"shiftscan/internal/integrations/recognizer"
	slackbot "shiftscan/internal/integrations/slack"
	"shiftscan/internal/metrics"
	"shiftscan/internal/reminder"
	"shiftscan/internal/storage/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Slack bot, the reminder and the metrics endpoint",
	Long: `Connects to Slack over Socket Mode and analyzes schedule photos uploaded to
channels the bot is in. Runs until SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateForBot(); err != nil {
		return err
	}
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	zap.S().Infof("database initialized at %s", cfg.DBPath)

	rec, err := recognizer.New(ctx, cfg)
	if err != nil {
		return err
	}

	api := slack.New(
		cfg.SlackBotToken,
		slack.OptionAppLevelToken(cfg.SlackAppToken),
		slack.OptionHTTPClient(httpx.ExternalHTTPClient()),
	)

	var sched *reminder.Scheduler
	if cfg.ReminderSchedule != "" {
		sched, err = reminder.New(cfg.ReminderSchedule, cfg.ReminderChannelID, cfg.Location, api)
		if err != nil {
			return err
		}
	}

	bot := slackbot.New(cfg, db, api, analysis.NewAnalyzer(rec))
	eg, egCtx := errgroup.WithContext(ctx)

	if cfg.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer := &http.Server{
			Addr:         cfg.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		eg.Go(func() error {
			zap.S().Infof("metrics server listening address=%s", cfg.MetricsAddress)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		eg.Go(func() error {
			<-egCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				zap.S().Warnf("metrics server shutdown: %v", err)
			}
			return nil
		})
	}

	if sched != nil {
		eg.Go(func() error {
			sched.Run(egCtx)
			return nil
		})
	} else {
		zap.S().Infof("reminder disabled (reminder_schedule not set)")
	}

	eg.Go(func() error {
		zap.S().Infof("starting shiftscan bot provider=%s model=%s", rec.Provider(), rec.Model())
		if err := bot.Run(egCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("slack bot: %w", err)
		}
		// The bot only returns on its own when the connection is gone for good.
		stop()
		return nil
	})

	if err := eg.Wait(); err != nil {
		return err
	}
	zap.S().Infof("shiftscan stopped")
	return nil
}
