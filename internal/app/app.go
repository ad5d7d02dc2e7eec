package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shiftscan/internal/config"
	"shiftscan/internal/httpx"
	"shiftscan/internal/logging"
)

var (
	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "shiftscan",
	Short: "Read shift schedules from photos and work out pay",
	Long: `shiftscan sends a photo of a shift schedule to a vision model, keeps the
shifts that belong to one person, checks every record, and totals the pay.

Configuration comes from the YAML file at CONFIG_PATH (default config.yaml)
with environment overrides.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.LogLevel, cfg.LogJSON)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		applied := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
		zap.S().Infof("config loaded provider=%s model=%s timezone=%s db=%s external_http_timeout=%s",
			cfg.RecognizerProvider, cfg.RecognizerModel, cfg.Timezone, cfg.DBPath, applied)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd, historyCmd, serveCmd)
}

func Main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
