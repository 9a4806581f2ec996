package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jayasuryanarayana/BudgetBox/internal/auth"
	"github.com/Jayasuryanarayana/BudgetBox/internal/logging"
	"github.com/Jayasuryanarayana/BudgetBox/internal/syncer"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push the local budget to the server",
	Long: `Push the local budget record to the sync server.

Requires a login session and a working connection. If the server holds
newer data, the local copy is replaced with the server copy; this counts
as a successful sync.`,
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

		identity := auth.NewFileIdentity(cfg.Client.SessionPath)
		sync := syncer.New(st, monitor, identity, newSyncClient(cfg), logging.New("sync"))

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		outcome, err := sync.Sync(ctx)
		if err != nil {
			return describeSyncError(err)
		}

		fmt.Println(outcome.Message)
		return nil
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch the server's latest budget and adopt it locally",
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

		identity := auth.NewFileIdentity(cfg.Client.SessionPath)
		sync := syncer.New(st, monitor, identity, newSyncClient(cfg), logging.New("sync"))

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		outcome, err := sync.Pull(ctx)
		if errors.Is(err, syncer.ErrNotFound) {
			fmt.Println("No budget on the server yet. Run 'budgetbox sync' to push yours.")
			return nil
		}
		if err != nil {
			return describeSyncError(err)
		}

		fmt.Println(outcome.Message)
		return nil
	},
}

// describeSyncError turns sentinel errors into actionable messages.
func describeSyncError(err error) error {
	switch {
	case errors.Is(err, syncer.ErrAuthRequired):
		return errors.New("please log in first: budgetbox login <email>")
	case errors.Is(err, syncer.ErrOffline):
		return errors.New("you're offline; changes will sync when the connection is restored")
	case errors.Is(err, syncer.ErrConnectionLost):
		return errors.New("connection lost during sync; try again")
	}
	return err
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(pullCmd)
}
