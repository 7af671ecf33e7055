package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tally/internal/stats"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show budget progress per category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.close(ctx)

			overview := stats.BudgetOverview(
				app.ledger.Transactions(),
				app.ledger.Categories(),
				app.ledger.Budgets(),
			)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tSPENT\tBUDGET\tPROGRESS")
			for _, status := range overview {
				marker := ""
				if status.Progress > 0.9 {
					marker = " !"
				}
				fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.0f%%%s\n",
					status.Category, status.Spent, status.Ceiling, status.Progress*100, marker)
			}
			w.Flush()
			return nil
		},
	}

	cmd.AddCommand(setBudgetCmd())
	return cmd
}

func setBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <category> <amount>",
		Short: "Set the budget ceiling for a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.close(ctx)

			app.ledger.SetBudget(args[0], amount)
			fmt.Printf("Budget for %s set to %.2f\n", args[0], amount)
			return nil
		},
	}
}
