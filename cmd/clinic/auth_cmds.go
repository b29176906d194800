package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/otcheredev/clinic-desk/internal/navigation"
)

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = os.Getenv("CLINIC_PASSWORD")
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.require(ctx, navigation.Login); err != nil {
					return err
				}
				sess, err := a.session.Login(ctx, a.auth, email, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", sess.User.Email)
				return nil
			})
		},
	}
	cmd.Flags().String("email", "", "Staff email")
	cmd.Flags().String("password", "", "Password (defaults to $CLINIC_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.session.ClearAuth(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in staff member",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				user, ok := a.session.User()
				if !ok || !a.session.IsAuthenticated() {
					fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
					return nil
				}
				if wantJSON(cmd) {
					return printJSON(cmd.OutOrStdout(), user)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", user.Email, user.ID)
				return nil
			})
		},
	}
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.dashboardSvc.CheckConnection(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Backend %s is reachable\n", a.cfg.API.BaseURL)
				return nil
			})
		},
	}
}
