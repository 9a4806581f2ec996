package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jayasuryanarayana/BudgetBox/internal/config"
	"github.com/Jayasuryanarayana/BudgetBox/internal/connectivity"
	"github.com/Jayasuryanarayana/BudgetBox/internal/logging"
	"github.com/Jayasuryanarayana/BudgetBox/internal/store"
	"github.com/Jayasuryanarayana/BudgetBox/internal/syncer"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "budgetbox",
	Short: "Offline-first personal budget tracker",
	Long: `BudgetBox tracks a monthly budget (income and five expense
categories) in a local database and synchronizes it with a sync server
using last-write-wins conflict resolution.

All edits work offline. When a connection is available, 'budgetbox sync'
pushes the local record; if the server holds newer data, the local copy
is replaced with it. The 'agent' daemon automates this: it watches
connectivity and syncs whenever the connection is restored.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"config file (default "+config.ConfigPath()+")")
}

func loadConfig() (config.Config, error) {
	return config.Load(flagConfig)
}

// openLocalStore opens the local budget database. The caller must close
// the returned KV.
func openLocalStore(cfg config.Config) (*store.Store, *store.SQLiteKV, error) {
	path := filepath.Join(cfg.Client.DataDir, "local.db")
	kv, err := store.OpenKV(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open local database: %w", err)
	}

	st, err := store.Open(kv, logging.New("store"))
	if err != nil {
		kv.Close()
		return nil, nil, err
	}
	return st, kv, nil
}

// newMonitor builds a connectivity monitor probing the sync server.
func newMonitor(cfg config.Config) (*connectivity.Monitor, error) {
	prober, err := connectivity.NewDialProber(cfg.Client.ServerURL, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", cfg.Client.ServerURL, err)
	}
	return connectivity.New(prober, &connectivity.Config{
		ProbeInterval: cfg.Client.ProbeInterval.Std(),
		ProbeTimeout:  2 * time.Second,
		Logger:        logging.New("connectivity"),
	}), nil
}

// newSyncClient builds the HTTP client for the sync endpoint.
func newSyncClient(cfg config.Config) *syncer.Client {
	return syncer.NewClient(cfg.Client.ServerURL, 30*time.Second)
}
