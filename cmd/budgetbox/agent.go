package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Jayasuryanarayana/BudgetBox/internal/agent"
	"github.com/Jayasuryanarayana/BudgetBox/internal/auth"
	"github.com/Jayasuryanarayana/BudgetBox/internal/dashboard"
	"github.com/Jayasuryanarayana/BudgetBox/internal/logging"
	"github.com/Jayasuryanarayana/BudgetBox/internal/notify"
	"github.com/Jayasuryanarayana/BudgetBox/internal/syncer"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the background sync agent",
	Long: `Run the client-side daemon.

The agent probes connectivity to the sync server, posts an offline
notice when the connection drops, and automatically pushes unsynced
local changes shortly after the connection is restored. With a
dashboard port configured it also serves a WebSocket feed of status
changes at ws://localhost:<port>/ws.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger := logging.ForDaemon("agent", cfg.Client.LogFile)

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
		banner := notify.NewOfflineBanner(notify.NewLogNotifier(logger))

		// Dashboard is optional; events stay nil without it.
		var events agent.Events
		var dash *dashboard.Server
		if port, _ := cmd.Flags().GetInt("dashboard-port"); port != 0 {
			cfg.Client.DashboardPort = port
		}
		if cfg.Client.DashboardPort != 0 {
			dash = dashboard.NewServer(&dashboard.Config{
				Port:   cfg.Client.DashboardPort,
				Logger: logging.New("dashboard"),
			})
			if err := dash.Start(); err != nil {
				return err
			}
			defer dash.Stop()
			events = dashboard.NewHandler(dash, logging.New("dashboard"))
			fmt.Printf("Dashboard: ws://localhost:%d/ws\n", cfg.Client.DashboardPort)
		}

		a := agent.New(st, sync, monitor, identity, banner, events, &agent.Config{
			SyncDebounce: cfg.Client.SyncDebounce.Std(),
			Logger:       logger,
		})
		a.Start()
		defer a.Stop()

		// React to login/logout without polling.
		watcher, err := auth.NewSessionWatcher(cfg.Client.SessionPath, a.OnSessionChange)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Client.SessionPath), 0o755); err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			logger.Printf("Session watcher disabled: %v", err)
		} else {
			defer watcher.Stop()
		}

		fmt.Printf("Agent running (server: %s)\n", cfg.Client.ServerURL)
		fmt.Println("Press Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		<-ctx.Done()

		fmt.Println("\nShutting down...")
		return nil
	},
}

func init() {
	agentCmd.Flags().Int("dashboard-port", 0, "serve the WebSocket dashboard on this port")
	rootCmd.AddCommand(agentCmd)
}
