package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/otcheredev/clinic-desk/internal/config"
	"github.com/otcheredev/clinic-desk/pkg/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "clinic",
		Short:         "Front-desk client for the clinic appointment backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(healthCmd())
	rootCmd.AddCommand(appointmentsCmd())
	rootCmd.AddCommand(patientsCmd())
	rootCmd.AddCommand(doctorsCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(auditCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// withApp loads configuration, builds the client and runs fn with it
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	return fn(ctx, a)
}
