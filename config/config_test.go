package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "USD", cfg.Account.Fiat)
	assert.Equal(t, "table_*", cfg.Ledger.Pattern)
	assert.Equal(t, "none", cfg.Journal.Type)
	assert.False(t, cfg.Engine.Strict)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing fiat",
			mutate:  func(c *Config) { c.Account.Fiat = "" },
			wantErr: true,
			errMsg:  "account.fiat is required",
		},
		{
			name:    "fiat with space",
			mutate:  func(c *Config) { c.Account.Fiat = "US D" },
			wantErr: true,
			errMsg:  "single symbol",
		},
		{
			name:    "unknown journal",
			mutate:  func(c *Config) { c.Journal.Type = "postgres" },
			wantErr: true,
			errMsg:  "journal.type must be",
		},
		{
			name:    "csv without files",
			mutate:  func(c *Config) { c.Journal.Type = "csv"; c.Journal.DisposalsFile = "d.csv" },
			wantErr: true,
			errMsg:  "positions_file required",
		},
		{
			name: "csv with files",
			mutate: func(c *Config) {
				c.Journal = JournalConfig{Type: "csv", DisposalsFile: "d.csv", PositionsFile: "p.csv"}
			},
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Journal.Type = "sqlite" },
			wantErr: true,
			errMsg:  "db_path required",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
			errMsg:  "log.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
			errMsg:  "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Account.Fiat = "EUR"
			cfg.Ledger.Files = []string{"table_eur", "table_btc"}
			cfg.Engine.Strict = true
			cfg.Journal = JournalConfig{Type: "sqlite", DBPath: "lots.sqlite"}
			path := filepath.Join(tmpDir, "test"+tt.ext)

			err := cfg.SaveToFile(path)
			require.NoError(t, err)

			_, err = os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg.Account.Fiat, loaded.Account.Fiat)
			assert.Equal(t, cfg.Ledger.Files, loaded.Ledger.Files)
			assert.True(t, loaded.Engine.Strict)
			assert.Equal(t, cfg.Journal, loaded.Journal)
		})
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "min.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  fiat: gbp\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "GBP", cfg.Account.Fiat)
	assert.Equal(t, "table_*", cfg.Ledger.Pattern)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("journal:\n  type: sqlite\n"), 0o644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
