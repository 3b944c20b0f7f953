package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Belphemur/titlovi/internal/models"
	"github.com/spf13/cobra"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the cached catalog token",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the cached token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				token, err := a.tokens.Cached(cmd.Context())
				if err != nil {
					return err
				}
				if token == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "No cached token")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderToken(*token, time.Now()))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Request a new token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				token, err := a.tokens.Refresh(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderToken(token, time.Now()))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "invalidate",
		Short: "Drop the cached token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				if err := a.tokens.Invalidate(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Token invalidated")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check the stored credentials against Titlovi.com",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				if err := a.tokens.ValidateLogin(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Credentials are valid")
				return nil
			})
		},
	})

	return cmd
}

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var creds models.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Validate and store Titlovi.com credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if creds.IsZero() {
				return fmt.Errorf("both --username and --password are required")
			}
			return ctx.withApp(func(a *app) error {
				if err := a.client.ValidateLogin(cmd.Context(), creds); err != nil {
					return fmt.Errorf("credentials rejected: %w", err)
				}
				if err := a.store.SaveCredentials(cmd.Context(), creds); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", creds.Username)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "Titlovi.com username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Titlovi.com password")
	return cmd
}

func renderToken(token models.Token, now time.Time) string {
	status := "valid"
	if !token.Valid(now) {
		status = "expired"
	}
	rows := [][]string{
		{"User", token.UserName},
		{"User ID", strconv.Itoa(token.UserID)},
		{"Expires", token.ExpirationDate.Local().Format(time.RFC3339)},
		{"Status", status},
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}
