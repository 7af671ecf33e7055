package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tally/internal/model"
	"tally/internal/stats"
)

func addCmd() *cobra.Command {
	var (
		description string
		amountStr   string
		category    string
		income      bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record an income or expense transaction. Expenses are stored with a
negative amount, income with a positive one; pass --income for income,
otherwise the amount is treated as an expense.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// Form-boundary validation: the ledger itself accepts
			// whatever it is given.
			if description == "" {
				return fmt.Errorf("description cannot be empty")
			}
			magnitude, err := strconv.ParseFloat(amountStr, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amountStr, err)
			}
			if magnitude == 0 {
				return fmt.Errorf("amount cannot be zero")
			}

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.close(ctx)

			if !app.ledger.Bound() {
				return fmt.Errorf("not signed in; run 'tally login' first")
			}

			amount := magnitude
			if !income {
				amount = -magnitude
			}
			if category == "" {
				category = app.ledger.Categories()[0]
			}

			id := app.ledger.Add(model.NewTransaction{
				Description: description,
				Amount:      amount,
				Category:    category,
			})

			fmt.Printf("Recorded %s (%s)\n", description, id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "transaction description")
	cmd.Flags().StringVarP(&amountStr, "amount", "a", "", "amount (positive number)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category (default: first category)")
	cmd.Flags().BoolVar(&income, "income", false, "record as income instead of expense")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func listCmd() *cobra.Command {
	var filter stats.Filter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.close(ctx)

			list := stats.Apply(app.ledger.Transactions(), filter)
			if len(list) == 0 {
				fmt.Println("No transactions.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tDESCRIPTION\tCATEGORY\tTYPE\tAMOUNT\tID")
			for _, txn := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\n",
					txn.Date.Format("2006-01-02"),
					txn.Description,
					txn.Category,
					txn.Type(),
					txn.Amount,
					txn.ID)
			}
			w.Flush()

			fmt.Printf("\nIncome: %.2f  Expenses: %.2f\n",
				stats.TotalIncome(list), stats.TotalExpense(list))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Search, "search", "", "case-insensitive substring match on description")
	cmd.Flags().StringVar(&filter.Category, "category", "all", "restrict to a category")
	cmd.Flags().StringVar(&filter.Type, "type", "all", "restrict to income or expense")

	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transaction-id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.close(ctx)

			// Idempotent: deleting an unknown id succeeds quietly.
			app.ledger.Delete(args[0])

			fmt.Println("Deleted")
			return nil
		},
	}
}
