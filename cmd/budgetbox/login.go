package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Jayasuryanarayana/BudgetBox/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Create a login session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := auth.Login(cfg.Client.SessionPath, args[0]); err != nil {
			return err
		}

		fmt.Printf("Logged in as %s\n", args[0])
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the login session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := auth.Logout(cfg.Client.SessionPath); err != nil {
			return err
		}

		fmt.Println("Logged out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
