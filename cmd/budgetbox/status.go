package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Jayasuryanarayana/BudgetBox/internal/cli"
	"github.com/Jayasuryanarayana/BudgetBox/internal/status"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the budget and its sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, kv, err := openLocalStore(cfg)
		if err != nil {
			return err
		}
		defer kv.Close()

		monitor, err := newMonitor(cfg)
		if err != nil {
			return err
		}

		// One live probe; the background loop is not needed for a
		// one-shot status read.
		online := monitor.IsOnline()
		label := status.Classify(online, st.IsSynced(), st.HasEverSynced())

		fmt.Println()
		fmt.Println(cli.RenderSummary(st.Record(), label))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
