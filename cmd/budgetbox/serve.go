package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Jayasuryanarayana/BudgetBox/internal/logging"
	"github.com/Jayasuryanarayana/BudgetBox/internal/server"
	"github.com/Jayasuryanarayana/BudgetBox/internal/server/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sync server",
	Long: `Run the HTTP sync endpoint.

The server holds the authoritative budget copy per user and resolves
concurrent pushes with last-write-wins on the record timestamp. Storage
backends: memory, sqlite (default), postgres.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if v, _ := cmd.Flags().GetString("addr"); v != "" {
			cfg.Server.Addr = v
		}
		if v, _ := cmd.Flags().GetString("backend"); v != "" {
			cfg.Server.Backend = v
		}

		logger := logging.ForDaemon("server", cfg.Server.LogFile)

		st, err := storage.Open(cfg.Server.Backend, storage.Options{
			SQLitePath:  cfg.Server.SQLitePath,
			PostgresURL: cfg.Server.PostgresURL,
		})
		if err != nil {
			return fmt.Errorf("failed to open %s backend: %w", cfg.Server.Backend, err)
		}
		defer st.Close()

		srv := server.New(st, &server.Config{
			Addr:   cfg.Server.Addr,
			Logger: logger,
		})
		if err := srv.Start(); err != nil {
			return err
		}

		fmt.Printf("Sync server listening on %s (backend: %s)\n", srv.Addr(), cfg.Server.Backend)
		fmt.Println("Press Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		<-ctx.Done()

		fmt.Println("\nShutting down...")
		return srv.Stop()
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides config)")
	serveCmd.Flags().String("backend", "", "storage backend: memory, sqlite, postgres")
	rootCmd.AddCommand(serveCmd)
}
