package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shiftscan/internal/analysis"
	"shiftscan/internal/domain"
	"shiftscan/internal/integrations/recognizer"
	"shiftscan/internal/report"
	"shiftscan/internal/shifts"
	"shiftscan/internal/storage/sqlite"
)

var (
	analyzeImage          string
	analyzeName           string
	analyzeWage           float64
	analyzeMonth          string
	analyzeShowCandidates bool
	analyzeNoCalendar     bool
	analyzeNoRecord       bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one schedule photo and print shifts and pay",
	Long: `Sends the image to the configured recognizer, validates every returned
record, and prints the accepted shifts with pay, the total, and a summary of
rejected records.

Example:
  shiftscan analyze --image schedule.jpg --name Sato --wage 1200 --month 2026-01`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeImage, "image", "", "path to the schedule image (PNG, JPEG, WebP or GIF)")
	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "name of the person whose shifts to extract (default from config)")
	analyzeCmd.Flags().Float64Var(&analyzeWage, "wage", 0, "hourly wage (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeMonth, "month", "", "schedule month as YYYY-MM (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeShowCandidates, "show-candidates", false, "print the raw text of rejected records")
	analyzeCmd.Flags().BoolVar(&analyzeNoCalendar, "no-calendar", false, "omit calendar links")
	analyzeCmd.Flags().BoolVar(&analyzeNoRecord, "no-record", false, "do not write the run to the audit log")
	_ = analyzeCmd.MarkFlagRequired("image")
}

// settingsFromFlags overlays whichever flags were given on the defaults.
func settingsFromFlags(defaults domain.AnalysisSettings, name string, wage float64, wageSet bool, month string) domain.AnalysisSettings {
	out := defaults
	if name != "" {
		out.TargetName = name
	}
	if wageSet {
		out.HourlyWage = wage
	}
	if month != "" {
		out.YearMonth = month
	}
	return out
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(analyzeImage)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > cfg.MaxImageBytes {
		return fmt.Errorf("image is %d bytes, limit is %d", len(data), cfg.MaxImageBytes)
	}
	mimeType, err := recognizer.DetectImageType(data)
	if err != nil {
		return err
	}

	settings := settingsFromFlags(cfg.DefaultSettings(), analyzeName, analyzeWage, cmd.Flags().Changed("wage"), analyzeMonth)
	if err := settings.Validate(); err != nil {
		return err
	}

	rec, err := recognizer.New(ctx, cfg)
	if err != nil {
		return err
	}
	result, err := analysis.NewAnalyzer(rec).Analyze(ctx,
		recognizer.Image{Data: data, MIMEType: mimeType},
		settings,
		analysis.Options{IncludeCandidates: analyzeShowCandidates},
	)
	if err != nil && !errors.Is(err, shifts.ErrMalformedBatch) {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), report.Render(result, report.Options{
		Format:         report.FormatPlain,
		CurrencySymbol: cfg.CurrencySymbol,
		Locale:         cfg.Locale,
		Location:       cfg.Location,
		Calendar:       !analyzeNoCalendar,
	}))

	if !analyzeNoRecord {
		recordRun(result)
	}
	return err
}

func recordRun(result analysis.Analysis) {
	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		zap.S().Warnf("audit log unavailable path=%s: %v", cfg.DBPath, err)
		return
	}
	defer db.Close()
	if err := sqlite.InsertRun(db, result.RunRecord(currentUser())); err != nil {
		zap.S().Warnf("record run error run=%s: %v", result.RunID, err)
	}
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return "cli:" + u
	}
	return "cli"
}
