package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.close(ctx)

			for _, cat := range app.ledger.Categories() {
				fmt.Println(cat)
			}
			return nil
		},
	}

	cmd.AddCommand(addCategoryCmd())
	return cmd
}

func addCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.close(ctx)

			app.ledger.AddCategory(args[0])
			fmt.Printf("Added category %s\n", args[0])
			return nil
		},
	}
}
