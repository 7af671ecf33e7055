package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tally/internal/stats"
)

func dashboardCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals, budgets, and spending charts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.close(ctx)

			list := app.ledger.Transactions()

			fmt.Printf("Income:   %10.2f\n", stats.TotalIncome(list))
			fmt.Printf("Expenses: %10.2f\n\n", stats.TotalExpense(list))

			fmt.Println("Budget Overview")
			overview := stats.BudgetOverview(list, app.ledger.Categories(), app.ledger.Budgets())
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, status := range overview {
				fmt.Fprintf(w, "  %s\t%.2f / %.2f\t%s\n",
					status.Category, status.Spent, status.Ceiling, progressBar(status.Progress))
			}
			w.Flush()

			fmt.Println("\nSpending by Category")
			for _, total := range stats.CategoryBreakdown(list, app.ledger.Categories()) {
				if total.Amount > 0 {
					fmt.Printf("  %-15s %10.2f\n", total.Category, total.Amount)
				}
			}

			fmt.Printf("\nDaily Spending (last %d buckets)\n", days)
			daily := stats.DailySpending(list)
			dates := make([]string, 0, len(daily))
			for date := range daily {
				dates = append(dates, date)
			}
			sort.Strings(dates)
			if len(dates) > days {
				dates = dates[len(dates)-days:]
			}
			for _, date := range dates {
				fmt.Printf("  %s %10.2f\n", date, daily[date])
			}

			fmt.Println("\nMonthly Trend")
			for _, month := range stats.MonthlySpending(list) {
				fmt.Printf("  %s %d %10.2f\n", month.Label, month.Year, month.Amount)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "how many daily buckets to show")

	return cmd
}

// progressBar renders budget progress as a fixed-width bar, marking
// anything past 90% the way the mobile view turns the bar red.
func progressBar(progress float64) string {
	const width = 20

	filled := int(progress * width)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "#"
		} else {
			bar += "-"
		}
	}
	if progress > 0.9 {
		return "[" + bar + "] !"
	}
	return "[" + bar + "]"
}
