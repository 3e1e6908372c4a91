package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/taxlots/internal/id"
	"github.com/rustyeddy/taxlots/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query journaled runs",
	Long: `Query disposals and positions recorded in a SQLite journal.

Subcommands:
  run       - Show a run summary (latest run by default)
  disposals - List the disposals of a run
  positions - List the end-of-run positions of a run
  day       - List disposals on a specific day

Examples:
  taxlots journal run
  taxlots journal disposals 01HV3K...
  taxlots journal day 2017-12-17`,
}

var journalRunCmd = &cobra.Command{
	Use:   "run [run-id]",
	Short: "Show a run summary",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJournalRun,
}

var journalDisposalsCmd = &cobra.Command{
	Use:   "disposals [run-id]",
	Short: "List the disposals of a run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJournalDisposals,
}

var journalPositionsCmd = &cobra.Command{
	Use:   "positions [run-id]",
	Short: "List the positions of a run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJournalPositions,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List disposals on a specific day (UTC)",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalDisposalsCmd)
	journalCmd.AddCommand(journalPositionsCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./taxlots.sqlite", "path to SQLite journal DB")
}

func openRun(args []string) (*journal.SQLite, string, error) {
	if len(args) == 1 {
		// Run ids are ULIDs; catch a typo before it reads as "no rows".
		if _, err := id.Time(args[0]); err != nil {
			return nil, "", fmt.Errorf("run id %q: %w", args[0], err)
		}
	}

	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return nil, "", fmt.Errorf("open db: %w", err)
	}
	if len(args) == 1 {
		return j, args[0], nil
	}
	runID, err := j.LatestRunID()
	if err != nil {
		j.Close()
		return nil, "", err
	}
	return j, runID, nil
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, runID, err := openRun(args)
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetRun(runID)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s\n", rec.RunID)
	fmt.Fprintf(out, "  Started: %s\n", rec.Started.UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "  Finished: %s\n", rec.Finished.UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "  Transactions: %d (%d issues)\n", rec.Transactions, rec.Issues)
	fmt.Fprintf(out, "  Total obligation: %s %s\n", rec.TotalObligation.StringFixed(2), rec.Fiat)
	return nil
}

func runJournalDisposals(cmd *cobra.Command, args []string) error {
	j, runID, err := openRun(args)
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListDisposalsByRun(runID)
	if err != nil {
		return fmt.Errorf("query disposals: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), journal.FormatDisposalsOrg(recs))
	return nil
}

func runJournalPositions(cmd *cobra.Command, args []string) error {
	j, runID, err := openRun(args)
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListPositionsByRun(runID)
	if err != nil {
		return fmt.Errorf("query positions: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), journal.FormatPositionsOrg(recs))
	return nil
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end, err := dayBounds(time.UTC, args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListDisposalsBetween(start, end)
	if err != nil {
		return fmt.Errorf("query disposals: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), journal.FormatDisposalsOrg(recs))
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
