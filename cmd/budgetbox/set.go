package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jayasuryanarayana/BudgetBox/internal/budget"
	"github.com/Jayasuryanarayana/BudgetBox/internal/cli"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Edit the local budget",
}

var setIncomeCmd = &cobra.Command{
	Use:   "income <amount>",
	Short: "Set monthly income",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := budget.ParseAmount(args[0])
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, kv, err := openLocalStore(cfg)
		if err != nil {
			return err
		}
		defer kv.Close()

		if err := st.SetIncome(amount); err != nil {
			return err
		}

		fmt.Printf("Income set to %s\n", cli.FormatAmount(amount))
		return nil
	},
}

var setExpenseCmd = &cobra.Command{
	Use:   "expense <category> <amount>",
	Short: "Set an expense category amount",
	Long: fmt.Sprintf(`Set the amount for one expense category.

Categories: %s`, categoryList()),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		category := budget.Category(strings.ToLower(args[0]))
		if !category.Valid() {
			return fmt.Errorf("unknown category %q (choose from: %s)", args[0], categoryList())
		}

		amount, err := budget.ParseAmount(args[1])
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, kv, err := openLocalStore(cfg)
		if err != nil {
			return err
		}
		defer kv.Close()

		if err := st.SetExpense(category, amount); err != nil {
			return err
		}

		fmt.Printf("%s set to %s\n", category, cli.FormatAmount(amount))
		return nil
	},
}

func categoryList() string {
	names := make([]string, 0, 5)
	for _, c := range budget.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func init() {
	setCmd.AddCommand(setIncomeCmd)
	setCmd.AddCommand(setExpenseCmd)
	rootCmd.AddCommand(setCmd)
}
