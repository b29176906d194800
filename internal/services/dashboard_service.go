package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/otcheredev/clinic-desk/internal/apperr"
	"github.com/otcheredev/clinic-desk/internal/gateway"
	"github.com/otcheredev/clinic-desk/internal/models"
)

const (
	// DashboardTimeout bounds the aggregate endpoints, which scan a whole month
	DashboardTimeout = 10 * time.Second
	// HealthTimeout bounds the liveness probe
	HealthTimeout = 5 * time.Second
)

// DashboardService reads the monthly aggregates under /dashboard
type DashboardService struct {
	api            Doer
	timeout        time.Duration
	healthTimeout  time.Duration
	healthPrecheck bool
}

// DashboardOption configures a DashboardService
type DashboardOption func(*DashboardService)

// WithDashboardTimeouts overrides the aggregate and health timeouts
func WithDashboardTimeouts(aggregate, health time.Duration) DashboardOption {
	return func(s *DashboardService) {
		if aggregate > 0 {
			s.timeout = aggregate
		}
		if health > 0 {
			s.healthTimeout = health
		}
	}
}

// WithHealthPrecheck makes every aggregate call except appointments-by-day
// probe /health first, so an unreachable backend fails fast.
func WithHealthPrecheck(enabled bool) DashboardOption {
	return func(s *DashboardService) {
		s.healthPrecheck = enabled
	}
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(api Doer, opts ...DashboardOption) *DashboardService {
	s := &DashboardService{
		api:           api,
		timeout:       DashboardTimeout,
		healthTimeout: HealthTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckConnection probes the backend liveness endpoint
func (s *DashboardService) CheckConnection(ctx context.Context) error {
	err := s.api.Do(ctx, gateway.Request{
		Method:    http.MethodGet,
		Path:      "/health",
		Timeout:   s.healthTimeout,
		Anonymous: true,
	}, nil)
	return normalize(err, "The server is not reachable.")
}

// Stats returns the monthly totals and averages
func (s *DashboardService) Stats(ctx context.Context, month, year int) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := s.get(ctx, "stats", month, year, true, &stats, "Failed to load dashboard statistics."); err != nil {
		return nil, err
	}
	return &stats, nil
}

// WaitTimeByDay returns the average wait per day of the month
func (s *DashboardService) WaitTimeByDay(ctx context.Context, month, year int) ([]models.DailyWaitTime, error) {
	var out []models.DailyWaitTime
	if err := s.get(ctx, "wait-time", month, year, true, &out, "Failed to load wait times."); err != nil {
		return nil, err
	}
	return out, nil
}

// ConsultTimeByDay returns the average consultation length per day of the month
func (s *DashboardService) ConsultTimeByDay(ctx context.Context, month, year int) ([]models.DailyConsultTime, error) {
	var out []models.DailyConsultTime
	if err := s.get(ctx, "consult-time", month, year, true, &out, "Failed to load consultation times."); err != nil {
		return nil, err
	}
	return out, nil
}

// AppointmentsByDoctor returns the number of appointments per doctor
func (s *DashboardService) AppointmentsByDoctor(ctx context.Context, month, year int) ([]models.DoctorAppointmentCount, error) {
	var out []models.DoctorAppointmentCount
	if err := s.get(ctx, "appointments-by-doctor", month, year, true, &out, "Failed to load appointments by doctor."); err != nil {
		return nil, err
	}
	return out, nil
}

// AppointmentsByDay returns the number of appointments per day of the month
func (s *DashboardService) AppointmentsByDay(ctx context.Context, month, year int) ([]models.DailyAppointmentCount, error) {
	var out []models.DailyAppointmentCount
	if err := s.get(ctx, "appointments-by-day", month, year, false, &out, "Failed to load appointments by day."); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DashboardService) get(ctx context.Context, resource string, month, year int, precheck bool, out any, fallback string) error {
	if err := ValidatePeriod(month, year); err != nil {
		return err
	}
	if precheck && s.healthPrecheck {
		if err := s.CheckConnection(ctx); err != nil {
			return err
		}
	}

	err := s.api.Do(ctx, gateway.Request{
		Method:  http.MethodGet,
		Path:    "/dashboard/" + resource,
		Params:  url.Values{"month": {strconv.Itoa(month)}, "year": {strconv.Itoa(year)}},
		Timeout: s.timeout,
	}, out)
	return normalize(err, fallback)
}

// ValidatePeriod checks a (month, year) pair before it is sent
func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return apperr.New(apperr.KindValidation, fmt.Sprintf("Month must be between 1 and 12, got %d.", month))
	}
	if year < 1 {
		return apperr.New(apperr.KindValidation, fmt.Sprintf("Invalid year %d.", year))
	}
	return nil
}
