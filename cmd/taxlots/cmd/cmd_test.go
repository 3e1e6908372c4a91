package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/rustyeddy/taxlots/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTables = []string{
	filepath.Join("..", "..", "..", "ledger", "testdata", "table_usd"),
	filepath.Join("..", "..", "..", "ledger", "testdata", "table_btc"),
}

// execute runs the root command with fresh flag state and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestRunAndQueryJournal(t *testing.T) {
	db := filepath.Join(t.TempDir(), "lots.sqlite")

	args := append([]string{"run", "--db", db, "--lots", "--log-level", "error"}, testTables...)
	out, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "3 transactions from 2 tables")
	assert.Contains(t, out, "Total obligation: 100.00 USD")
	assert.Contains(t, out, "Results saved to: "+db)

	out, err = execute(t, "journal", "disposals", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "** Disposal: 0.5 BTC (t-0003)")
	assert.Contains(t, out, ":GAIN: 100.00")

	out, err = execute(t, "journal", "positions", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "| BTC | 0.5 | 1 |")

	out, err = execute(t, "journal", "run", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Transactions: 3 (0 issues)")

	out, err = execute(t, "journal", "day", "2017-02-10", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, ":TX_ID: t-0003")

	out, err = execute(t, "journal", "day", "2017-02-11", "--db", db)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = execute(t, "journal", "disposals", "not-a-run", "--db", db)
	assert.ErrorContains(t, err, `run id "not-a-run"`)
}

func TestJournalByExplicitRunID(t *testing.T) {
	db := filepath.Join(t.TempDir(), "lots.sqlite")

	args := append([]string{"run", "--db", db, "--log-level", "error"}, testTables...)
	out, err := execute(t, args...)
	require.NoError(t, err)

	m := regexp.MustCompile(`Run ([0-9A-Z]{26}) `).FindStringSubmatch(out)
	require.Len(t, m, 2, "no run id in:\n%s", out)

	out, err = execute(t, "journal", "run", m[1], "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Run "+m[1])
}

func TestRunWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Ledger.Files = testTables
	cfg.Journal = config.JournalConfig{
		Type:          "csv",
		DisposalsFile: filepath.Join(dir, "disposals.csv"),
		PositionsFile: filepath.Join(dir, "positions.csv"),
	}
	cfg.Log.Level = "error"
	path := filepath.Join(dir, "taxlots.yaml")
	require.NoError(t, cfg.SaveToFile(path))

	out, err := execute(t, "run", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Total obligation: 100.00 USD")

	data, err := os.ReadFile(cfg.Journal.DisposalsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "t-0003")
}

func TestRunDiscoversTables(t *testing.T) {
	dir := filepath.Join("..", "..", "..", "ledger", "testdata")
	metrics := filepath.Join(t.TempDir(), "metrics.prom")

	out, err := execute(t, "run", "--dir", dir, "--metrics-out", metrics, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "from 2 tables")

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "taxlots_disposals_total 1")
}

func TestRunErrors(t *testing.T) {
	_, err := execute(t, "run", "--dir", t.TempDir(), "--log-level", "error")
	assert.ErrorContains(t, err, "no tables matching")

	_, err = execute(t, "run", "--fiat", "", "--log-level", "error")
	assert.ErrorContains(t, err, "account.fiat is required")

	_, err = execute(t, "run", "--log-level", "error", "no-such-table")
	assert.ErrorContains(t, err, "load ledger")
}

func TestDayBounds(t *testing.T) {
	start, end, err := dayBounds(time.UTC, "2017-12-17")
	require.NoError(t, err)
	assert.Equal(t, "2017-12-17T00:00:00Z", start.Format(time.RFC3339))
	assert.Equal(t, "2017-12-18T00:00:00Z", end.Format(time.RFC3339))

	_, _, err = dayBounds(time.UTC, "17/12/2017")
	assert.Error(t, err)
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxlots.yaml")

	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")

	out, err = execute(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Fiat: USD")
	assert.Contains(t, out, "Journal: none")

	_, err = execute(t, "config", "validate")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "taxlots version "+version+"\n", out)
}
