package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/execution/allocate"
	"github.com/rustyeddy/execution/config"
	"github.com/rustyeddy/execution/executor"
	"github.com/rustyeddy/execution/journal"
	"github.com/rustyeddy/execution/orchestrator"
	"github.com/rustyeddy/execution/order"
	"github.com/rustyeddy/execution/risk"
	"github.com/rustyeddy/execution/scoring"
	"github.com/rustyeddy/execution/venue/sim"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulated execution cycle from a config file",
	Long: `Run one execution cycle against the in-memory venue using settings
from a configuration file. A small pool of demo candidates is scored,
allocated and placed as bracket orders.

Example:
  execd run -f session.yaml`,
	RunE: runRun,
}

var (
	runConfigPath string
	runVerbose    bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "enable debug logging")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := zap.NewNop()
	if runVerbose {
		log, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer log.Sync()
	}

	var j journal.Journal
	if cfg.Journal.Type == "sqlite" {
		j, err = journal.NewSQLite(cfg.Journal.DBPath, cfg.Journal.FreeMargin)
		if err != nil {
			return fmt.Errorf("create journal: %w", err)
		}
	} else {
		j = journal.NewMem(cfg.Journal.FreeMargin)
	}
	defer j.Close()

	v := sim.NewEngine(log)

	equity := func() (float64, error) { return cfg.Account.SimulationEquity, nil }
	riskEngine := risk.NewEngine(cfg.Risk, j, equity, log)

	scorer := scoring.NewScorer(cfg.Scoring.Weights, cfg.Scoring.QualityWeights,
		cfg.Scoring.Thresholds, cfg.Scoring.TimeframeCompatibility,
		cfg.Scoring.EnableAdvancedFeatures, nil, log)
	alloc := allocate.New(scorer, cfg.Allocation.MaxOpenOrders,
		cfg.Allocation.MaxCapitalUtilization, cfg.Allocation.TwoLayer, log)

	exec := executor.New(v, j, executor.NewBook(), executor.Config{
		TransmissionTimeout:             cfg.Execution.TransmissionTimeout,
		RequireTransmissionVerification: cfg.Execution.RequireTransmissionVerification,
		RapidRetryWindow:                cfg.Execution.RapidRetryWindow,
		DryRun:                          cfg.Execution.DryRun,
	}, log)

	orch := orchestrator.New(riskEngine, alloc, exec, cfg.Account.ID, log)

	cands := demoCandidates()
	fmt.Printf("Running execution cycle: %d candidates, $%.2f capital, %d slots\n\n",
		len(cands), cfg.Account.TotalCapital, cfg.Allocation.MaxOpenOrders)

	report := orch.Cycle(context.Background(), cands, cfg.Account.TotalCapital)
	if report.Halted {
		fmt.Printf("✗ Cycle vetoed by risk halt: %s\n", report.HaltReason)
		return nil
	}

	for _, c := range report.Plan.Candidates {
		status := c.Reason
		if c.Allocated {
			status = "allocated"
		}
		fmt.Printf("  %-6s score=%.3f qty=%.0f commit=$%.2f  %s\n",
			c.Order.Symbol, c.Score, c.Quantity, c.Commitment, status)
	}

	fmt.Printf("\nExecuted: %d  Failed: %d  Rejected: %d  Committed: $%.2f\n",
		report.Executed, report.Failed, report.Rejected, report.Plan.TotalCommitted)
	return nil
}

func demoCandidates() []allocate.Candidate {
	plans := []struct {
		symbol   string
		entry    float64
		stop     float64
		rr       float64
		priority int
		prob     float64
	}{
		{"AAPL", 190.00, 186.20, 2.0, 2, 0.82},
		{"MSFT", 415.00, 406.70, 1.8, 1, 0.74},
		{"NVDA", 118.00, 114.46, 2.5, 3, 0.61},
		{"AMD", 162.50, 159.25, 1.5, 4, 0.88},
	}

	var out []allocate.Candidate
	for _, p := range plans {
		out = append(out, allocate.Candidate{
			Order: order.PlannedOrder{
				Symbol:       p.symbol,
				Action:       order.Buy,
				OrderType:    order.TypeLimit,
				SecurityType: "STK",
				EntryPrice:   p.entry,
				StopLoss:     p.stop,
				RiskPerTrade: 0.01,
				RiskReward:   p.rr,
				Priority:     p.priority,
				Strategy:     order.StrategyCore,
			},
			FillProbability: p.prob,
		})
	}
	return out
}
