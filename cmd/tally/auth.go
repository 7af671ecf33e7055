package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tally/internal/auth"
)

func registerCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.close(ctx)

			identity, err := app.provider.SignUp(ctx, email, password)
			if errors.Is(err, auth.ErrEmailInUse) {
				return fmt.Errorf("email already registered")
			}
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}

			fmt.Printf("Registered and signed in as %s\n", identity.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.close(ctx)

			identity, err := app.provider.SignIn(ctx, email, password)
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return fmt.Errorf("invalid email or password")
			}
			if err != nil {
				return fmt.Errorf("sign-in failed: %w", err)
			}

			fmt.Printf("Signed in as %s (%d transactions)\n", identity.Email, len(app.ledger.Transactions()))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.close(ctx)

			if err := app.provider.SignOut(ctx); err != nil {
				return fmt.Errorf("sign-out failed: %w", err)
			}

			fmt.Println("Signed out")
			return nil
		},
	}
}
