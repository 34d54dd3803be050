package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, 100000.0, cfg.Account.TotalCapital)
	assert.Equal(t, 5, cfg.Allocation.MaxOpenOrders)
	assert.Equal(t, 0.8, cfg.Allocation.MaxCapitalUtilization)
	assert.True(t, cfg.Allocation.TwoLayer)
	assert.Equal(t, 0.02, cfg.Risk.DailyLossPct)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config { return Default() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero capital",
			mutate:  func(c *Config) { c.Account.TotalCapital = 0 },
			wantErr: true,
			errMsg:  "total_capital must be positive",
		},
		{
			name:    "zero open orders",
			mutate:  func(c *Config) { c.Allocation.MaxOpenOrders = 0 },
			wantErr: true,
			errMsg:  "max_open_orders must be positive",
		},
		{
			name:    "utilization over one",
			mutate:  func(c *Config) { c.Allocation.MaxCapitalUtilization = 1.5 },
			wantErr: true,
			errMsg:  "max_capital_utilization",
		},
		{
			name:    "risk per trade over one",
			mutate:  func(c *Config) { c.Risk.MaxRiskPerTrade = 2 },
			wantErr: true,
			errMsg:  "max_risk_per_trade",
		},
		{
			name: "loss limits not widening",
			mutate: func(c *Config) {
				c.Risk.DailyLossPct = 0.10
				c.Risk.WeeklyLossPct = 0.05
			},
			wantErr: true,
			errMsg:  "must widen with the window",
		},
		{
			name:    "single trade exceeds total exposure",
			mutate:  func(c *Config) { c.Risk.SingleTradePct = 0.9 },
			wantErr: true,
			errMsg:  "single_trade_pct",
		},
		{
			name:    "unknown journal type",
			mutate:  func(c *Config) { c.Journal.Type = "redis" },
			wantErr: true,
			errMsg:  "journal.type must be",
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Journal.Type = "sqlite"
				c.Journal.DBPath = ""
			},
			wantErr: true,
			errMsg:  "db_path required",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveLoadRoundTripYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")

	cfg := Default()
	cfg.Account.ID = "EXEC-TEST"
	cfg.Allocation.MaxOpenOrders = 7
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "EXEC-TEST", loaded.Account.ID)
	assert.Equal(t, 7, loaded.Allocation.MaxOpenOrders)
	assert.Equal(t, cfg.Risk.WeeklyLossPct, loaded.Risk.WeeklyLossPct)
}

func TestSaveLoadRoundTripJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")

	cfg := Default()
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Account.TotalCapital, loaded.Account.TotalCapital)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  total_capital: -5\n"), 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}
