package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rustyeddy/taxlots/accounting"
	"github.com/rustyeddy/taxlots/config"
	"github.com/rustyeddy/taxlots/internal/id"
	"github.com/rustyeddy/taxlots/internal/logging"
	"github.com/rustyeddy/taxlots/journal"
	"github.com/rustyeddy/taxlots/ledger"
	"github.com/rustyeddy/taxlots/report"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [table files...]",
	Short: "Compute cost basis and realized gains",
	Long: `Read exchange account tables, replay every transaction in time order
and print per-asset balances, open lots and realized obligation.

Tables come from the positional arguments, else ledger.files in the config,
else every file matching ledger.pattern in ledger.dir.

Examples:
  taxlots run table_usd table_btc table_eth
  taxlots run -f taxlots.yaml --db lots.sqlite`,
	RunE: runRun,
}

var (
	runConfigPath string
	runFiat       string
	runDir        string
	runPattern    string
	runDBPath     string
	runStrict     bool
	runShowLots   bool
	runMetricsOut string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().StringVar(&runFiat, "fiat", "", "fiat asset cost basis is measured in (overrides config)")
	runCmd.Flags().StringVar(&runDir, "dir", "", "directory to search for tables (overrides config)")
	runCmd.Flags().StringVar(&runPattern, "pattern", "", "table file glob (overrides config)")
	runCmd.Flags().StringVarP(&runDBPath, "db", "d", "", "journal to this SQLite database (overrides config)")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "stop at the first unclassifiable transaction")
	runCmd.Flags().BoolVar(&runShowLots, "lots", false, "also list every open lot")
	runCmd.Flags().StringVar(&runMetricsOut, "metrics-out", "", "write prometheus text metrics to this file")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())

	files, err := tableFiles(cfg, args)
	if err != nil {
		return err
	}
	logger.Info("loading ledger", "tables", len(files))

	txs, err := ledger.Load(files...)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	runID := id.New()
	reg := prometheus.NewRegistry()

	engine := accounting.NewEngine(accounting.NewAccount(cfg.Account.Fiat), j)
	engine.SetLogger(logger.With("run", runID))
	engine.SetMetrics(accounting.NewMetrics(reg))
	engine.SetStrict(cfg.Engine.Strict)
	engine.SetRunID(runID)

	res, err := engine.Run(cmd.Context(), txs)
	if err != nil {
		var ie *accounting.IntegrityError
		if errors.As(err, &ie) {
			logger.Error("ledger is inconsistent", "tx", ie.TxID, "asset", ie.Asset, "balance", ie.Balance.String())
		}
		return fmt.Errorf("run %s: %w", runID, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%d transactions from %d tables)\n\n", runID, len(txs), len(files))
	if err := report.Write(out, cfg.Account.Fiat, res); err != nil {
		return err
	}
	if runShowLots {
		fmt.Fprintln(out)
		if err := report.WriteLots(out, res); err != nil {
			return err
		}
	}

	if runMetricsOut != "" {
		if err := writeMetrics(runMetricsOut, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	switch cfg.Journal.Type {
	case "csv":
		fmt.Fprintf(out, "\nResults saved to:\n  - %s\n  - %s\n", cfg.Journal.DisposalsFile, cfg.Journal.PositionsFile)
	case "sqlite":
		fmt.Fprintf(out, "\nResults saved to: %s\n", cfg.Journal.DBPath)
	}
	return nil
}

func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if runConfigPath != "" {
		var err error
		cfg, err = config.LoadFromFile(runConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("fiat") {
		cfg.Account.Fiat = runFiat
	}
	if flags.Changed("dir") {
		cfg.Ledger.Dir = runDir
		cfg.Ledger.Files = nil
	}
	if flags.Changed("pattern") {
		cfg.Ledger.Pattern = runPattern
	}
	if flags.Changed("db") {
		cfg.Journal = config.JournalConfig{Type: "sqlite", DBPath: runDBPath}
	}
	if flags.Changed("strict") {
		cfg.Engine.Strict = runStrict
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func tableFiles(cfg *config.Config, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(cfg.Ledger.Files) > 0 {
		return cfg.Ledger.Files, nil
	}
	files, err := ledger.DiscoverTables(cfg.Ledger.Dir, cfg.Ledger.Pattern)
	if err != nil {
		return nil, fmt.Errorf("find tables: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no tables matching %q in %s", cfg.Ledger.Pattern, cfg.Ledger.Dir)
	}
	return files, nil
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		return journal.NewCSV(jc.DisposalsFile, jc.PositionsFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	}
	return journal.Nop{}, nil
}

func writeMetrics(path string, reg *prometheus.Registry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := accounting.WriteText(f, reg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
