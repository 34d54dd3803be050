// Package config holds the complete configuration surface of the execution
// core. Files load as YAML first with a JSON fallback, and every loaded
// config is validated before use.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/execution/risk"
	"github.com/rustyeddy/execution/scoring"
)

// Config is the full session configuration.
type Config struct {
	Account    AccountConfig    `json:"account" yaml:"account"`
	Allocation AllocationConfig `json:"allocation" yaml:"allocation"`
	Scoring    ScoringConfig    `json:"scoring" yaml:"scoring"`
	Risk       risk.Limits      `json:"risk" yaml:"risk"`
	Execution  ExecutionConfig  `json:"execution" yaml:"execution"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
}

// AccountConfig identifies the trading account and its capital base.
type AccountConfig struct {
	ID           string  `json:"id" yaml:"id"`
	TotalCapital float64 `json:"total_capital" yaml:"total_capital"`

	// SimulationEquity is used as account equity only when no live equity
	// source is wired, so a simulated session does not trip the
	// invalid-equity halt. It is never a fallback for a failing live source.
	SimulationEquity float64 `json:"simulation_equity,omitempty" yaml:"simulation_equity,omitempty"`
}

// AllocationConfig caps the execution plan.
type AllocationConfig struct {
	MaxOpenOrders         int     `json:"max_open_orders" yaml:"max_open_orders"`
	MaxCapitalUtilization float64 `json:"max_capital_utilization" yaml:"max_capital_utilization"`

	// TwoLayer enables the quality-score ranking where fill probability
	// never gates eligibility. Legacy mode remains behind this flag.
	TwoLayer bool `json:"two_layer" yaml:"two_layer"`
}

// ScoringConfig collects the feature weights and thresholds.
type ScoringConfig struct {
	Weights                scoring.Weights        `json:"weights" yaml:"weights"`
	QualityWeights         scoring.QualityWeights `json:"quality_weights" yaml:"quality_weights"`
	Thresholds             scoring.Thresholds     `json:"setup_thresholds" yaml:"setup_thresholds"`
	EnableAdvancedFeatures bool                   `json:"enable_advanced_features" yaml:"enable_advanced_features"`

	// TimeframeCompatibility maps a candidate timeframe to the dominant
	// timeframes it is considered compatible with.
	TimeframeCompatibility map[string][]string `json:"timeframe_compatibility,omitempty" yaml:"timeframe_compatibility,omitempty"`
}

// ExecutionConfig tunes the bracket protocol.
type ExecutionConfig struct {
	TransmissionTimeout             time.Duration `json:"transmission_timeout" yaml:"transmission_timeout"`
	RequireTransmissionVerification bool          `json:"require_transmission_verification" yaml:"require_transmission_verification"`
	RapidRetryWindow                time.Duration `json:"rapid_retry_window" yaml:"rapid_retry_window"`
	DryRun                          bool          `json:"dry_run" yaml:"dry_run"`
}

// JournalConfig selects the persistence backend.
type JournalConfig struct {
	Type       string  `json:"type" yaml:"type"` // "sqlite" or "memory"
	DBPath     string  `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	FreeMargin float64 `json:"free_margin" yaml:"free_margin"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if (len(path) > 5 && path[len(path)-5:] == ".yaml") || (len(path) > 4 && path[len(path)-4:] == ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.TotalCapital <= 0 {
		return fmt.Errorf("account.total_capital must be positive")
	}
	if c.Allocation.MaxOpenOrders <= 0 {
		return fmt.Errorf("allocation.max_open_orders must be positive")
	}
	if c.Allocation.MaxCapitalUtilization <= 0 || c.Allocation.MaxCapitalUtilization > 1 {
		return fmt.Errorf("allocation.max_capital_utilization must be in (0, 1]")
	}
	if c.Risk.MaxRiskPerTrade <= 0 || c.Risk.MaxRiskPerTrade > 1 {
		return fmt.Errorf("risk.max_risk_per_trade must be in (0, 1]")
	}
	if c.Risk.DailyLossPct <= 0 || c.Risk.WeeklyLossPct <= 0 || c.Risk.MonthlyLossPct <= 0 {
		return fmt.Errorf("risk loss limits must be positive")
	}
	if c.Risk.DailyLossPct > c.Risk.WeeklyLossPct || c.Risk.WeeklyLossPct > c.Risk.MonthlyLossPct {
		return fmt.Errorf("risk loss limits must widen with the window (daily <= weekly <= monthly)")
	}
	if c.Risk.SingleTradePct <= 0 || c.Risk.SingleTradePct > c.Risk.TotalExposurePct {
		return fmt.Errorf("risk.single_trade_pct must be positive and not exceed total_exposure_pct")
	}
	if c.Execution.TransmissionTimeout < 0 {
		return fmt.Errorf("execution.transmission_timeout must not be negative")
	}
	if c.Journal.Type != "sqlite" && c.Journal.Type != "memory" {
		return fmt.Errorf("journal.type must be 'sqlite' or 'memory'")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path required for sqlite type")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:               "EXEC-001",
			TotalCapital:     100000,
			SimulationEquity: 100000,
		},
		Allocation: AllocationConfig{
			MaxOpenOrders:         5,
			MaxCapitalUtilization: 0.8,
			TwoLayer:              true,
		},
		Scoring: ScoringConfig{
			Weights:        scoring.DefaultWeights(),
			QualityWeights: scoring.DefaultQualityWeights(),
			Thresholds:     scoring.DefaultThresholds(),
			TimeframeCompatibility: map[string][]string{
				"15m": {"1h"},
				"1h":  {"15m", "4h"},
				"4h":  {"1h", "1d"},
				"1d":  {"4h"},
			},
		},
		Risk: risk.DefaultLimits(),
		Execution: ExecutionConfig{
			TransmissionTimeout: 15 * time.Second,
			RapidRetryWindow:    5 * time.Minute,
		},
		Journal: JournalConfig{
			Type:       "memory",
			FreeMargin: 100000,
		},
	}
}
