package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/otcheredev/clinic-desk/internal/config"
	"github.com/otcheredev/clinic-desk/internal/middleware"
)

// Console bundles the handlers served by the local console
type Console struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	Appointments *AppointmentsHandler
	Patients     *PatientsHandler
	Doctors      *DoctorsHandler
	Dashboard    *DashboardHandler
	Guard        middleware.Checker
	// Gatherer serves /metrics when set
	Gatherer prometheus.Gatherer
}

// NewRouter wires the console routes
func NewRouter(c Console, corsCfg config.CORSConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsCfg.AllowedOrigins,
		AllowedMethods:   corsCfg.AllowedMethods,
		AllowedHeaders:   corsCfg.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", c.Health.Health)
	r.Get("/ready", c.Health.Ready)

	if c.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(c.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Post("/logout", c.Auth.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Guard(c.Guard))

		r.Get("/login", c.Auth.LoginPage)
		r.Post("/login", c.Auth.Login)

		r.Get("/", c.Appointments.List)
		r.Post("/appointments", c.Appointments.Create)
		r.Put("/appointments/{id}", c.Appointments.Update)
		r.Patch("/appointments/{id}/status", c.Appointments.UpdateStatus)
		r.Delete("/appointments/{id}", c.Appointments.Delete)

		r.Get("/doctors", c.Doctors.List)

		r.Get("/patients", c.Patients.List)
		r.Post("/patients", c.Patients.Create)
		r.Put("/patients/{id}", c.Patients.Update)
		r.Delete("/patients/{id}", c.Patients.Delete)

		r.Get("/dashboard", c.Dashboard.Overview)
	})

	return r
}
