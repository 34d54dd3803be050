package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/execution/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the attempt journal of a past session",
	Long: `List the execution attempts recorded for a symbol in a SQLite journal.

Example:
  execd journal -d session.db -s AAPL`,
	RunE: runJournal,
}

var (
	journalDBPath string
	journalSymbol string
)

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal (required)")
	journalCmd.Flags().StringVarP(&journalSymbol, "symbol", "s", "", "symbol to list attempts for (required)")
	journalCmd.MarkFlagRequired("db")
	journalCmd.MarkFlagRequired("symbol")
}

func runJournal(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath, 0)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	attempts, err := j.Attempts(journalSymbol)
	if err != nil {
		return fmt.Errorf("list attempts: %w", err)
	}
	if len(attempts) == 0 {
		fmt.Printf("No attempts recorded for %s\n", journalSymbol)
		return nil
	}

	for _, a := range attempts {
		fmt.Printf("%s  %-12s %-10s qty=%.0f ids=%v  %s\n",
			a.Time.Format("2006-01-02 15:04:05"), a.Type, a.Status, a.Quantity, a.OrderIDs, a.Details)
	}
	return nil
}
