package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/otcheredev/clinic-desk/internal/handlers"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the local front-desk console",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, runServer)
		},
	}
}

func runServer(ctx context.Context, a *app) error {
	cfg := a.cfg
	log.Info().Str("backend", cfg.API.BaseURL).Msg("Starting clinic console")

	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		gatherer = a.registry
	}

	router := handlers.NewRouter(handlers.Console{
		Health:       handlers.NewHealthHandler(a.dashboardSvc, a.db),
		Auth:         handlers.NewAuthHandler(a.session, a.auth),
		Appointments: handlers.NewAppointmentsHandler(a.appointments),
		Patients:     handlers.NewPatientsHandler(a.patients),
		Doctors:      handlers.NewDoctorsHandler(a.doctors),
		Dashboard:    handlers.NewDashboardHandler(a.dashboard),
		Guard:        a.guard,
		Gatherer:     gatherer,
	}, cfg.CORS)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
