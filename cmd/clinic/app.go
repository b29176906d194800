package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/otcheredev/clinic-desk/internal/cache"
	"github.com/otcheredev/clinic-desk/internal/config"
	"github.com/otcheredev/clinic-desk/internal/database"
	"github.com/otcheredev/clinic-desk/internal/gateway"
	"github.com/otcheredev/clinic-desk/internal/navigation"
	"github.com/otcheredev/clinic-desk/internal/repository"
	"github.com/otcheredev/clinic-desk/internal/services"
	"github.com/otcheredev/clinic-desk/internal/session"
	"github.com/otcheredev/clinic-desk/internal/stores"
	"github.com/otcheredev/clinic-desk/pkg/metrics"
)

// app holds every component of one client process
type app struct {
	cfg *config.Config

	storage cache.Cache
	session *session.Store
	api     *gateway.Client

	auth         *services.AuthService
	dashboardSvc *services.DashboardService

	appointments *stores.AppointmentsStore
	patients     *stores.PatientsStore
	doctors      *stores.DoctorsStore
	dashboard    *stores.DashboardStore

	guard *navigation.Guard

	registry *prometheus.Registry
	db       *gorm.DB
	audit    *repository.AuditRepository
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(a.registry)

	storage, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.storage = storage

	a.session = session.NewStore(storage, cache.Key(cfg.Session.Namespace, cfg.Session.Key))
	if err := a.session.Load(ctx); err != nil {
		a.close()
		return nil, err
	}

	a.api, err = gateway.New(gateway.Config{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
		Metrics:           m,
	}, a.session)
	if err != nil {
		a.close()
		return nil, err
	}

	opts := []stores.Option{
		stores.WithMetrics(m),
		stores.WithActor(a.session.UserEmail),
		stores.WithSampleData(cfg.IsDevelopment()),
	}

	if cfg.Audit.Enabled {
		a.db, err = database.Connect(cfg.Database)
		if err != nil {
			a.close()
			return nil, err
		}
		a.audit = repository.NewAuditRepository(a.db)
		opts = append(opts, stores.WithAuditor(a.audit))
	}

	a.auth = services.NewAuthService(a.api)
	a.dashboardSvc = services.NewDashboardService(a.api,
		services.WithDashboardTimeouts(cfg.API.DashboardTimeout, cfg.API.HealthTimeout),
		services.WithHealthPrecheck(cfg.API.HealthPrecheck),
	)

	a.appointments = stores.NewAppointmentsStore(services.NewAppointmentService(a.api), opts...)
	a.patients = stores.NewPatientsStore(services.NewPatientService(a.api), opts...)
	a.doctors = stores.NewDoctorsStore(services.NewDoctorService(a.api), opts...)
	a.dashboard = stores.NewDashboardStore(a.dashboardSvc, opts...)

	a.guard = navigation.NewGuard(a.session)
	return a, nil
}

func newStorage(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Session.Store {
	case "redis":
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		c, err := cache.NewRedisCache(ctx, addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Debug().Str("addr", addr).Msg("Redis session storage initialized")
		return c, nil
	case "memory":
		return cache.NewMemoryCache(), nil
	default:
		c, err := cache.NewFileCache(cfg.Session.File)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("path", cfg.Session.File).Msg("File session storage initialized")
		return c, nil
	}
}

// require checks that the current session may open route
func (a *app) require(ctx context.Context, route navigation.Route) error {
	d := a.guard.Check(ctx, route)
	if d.Allow {
		return nil
	}
	if d.Redirect == navigation.Login.Path {
		return fmt.Errorf("not logged in, run `clinic login` first")
	}
	return fmt.Errorf("already logged in as %s, run `clinic logout` first", a.session.UserEmail())
}

func (a *app) close() {
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close session storage")
		}
	}
}
