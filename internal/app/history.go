package app

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"shiftscan/internal/report"
	"shiftscan/internal/storage/sqlite"
)

var (
	historyUser  string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent analysis runs from the audit log",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyUser, "user", "", "only runs by this user id (Slack id or cli:<name>)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs")
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	runs, err := sqlite.ListRuns(db, historyUser, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tUSER\tNAME\tMONTH\tACCEPTED\tREJECTED\tTOTAL\tPROVIDER\tNOTES")
	for _, r := range runs {
		notes := r.ReasonBreakdown
		if r.Malformed {
			notes = "malformed response"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			r.CreatedAt.In(cfg.Location).Format("2006-01-02 15:04"), r.UserID, r.TargetName, r.YearMonth,
			r.Accepted, r.Rejected, report.Money(r.TotalPayFloor, cfg.CurrencySymbol, cfg.Locale),
			r.Provider+"/"+r.Model, notes)
	}
	return w.Flush()
}
