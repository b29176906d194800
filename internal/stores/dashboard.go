package stores

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/otcheredev/clinic-desk/internal/models"
)

// DashboardAPI is the backend surface the dashboard store needs
type DashboardAPI interface {
	Stats(ctx context.Context, month, year int) (*models.DashboardStats, error)
	WaitTimeByDay(ctx context.Context, month, year int) ([]models.DailyWaitTime, error)
	ConsultTimeByDay(ctx context.Context, month, year int) ([]models.DailyConsultTime, error)
	AppointmentsByDoctor(ctx context.Context, month, year int) ([]models.DoctorAppointmentCount, error)
	AppointmentsByDay(ctx context.Context, month, year int) ([]models.DailyAppointmentCount, error)
}

// DashboardStore holds the monthly summary. The per-day series are returned
// to the caller rather than kept.
type DashboardStore struct {
	base
	api   DashboardAPI
	stats models.DashboardStats
}

// NewDashboardStore creates a dashboard store with zeroed stats
func NewDashboardStore(api DashboardAPI, opts ...Option) *DashboardStore {
	s := &DashboardStore{
		api:   api,
		stats: models.DashboardStats{AppointmentsByDoctor: []models.DoctorAppointmentCount{}},
	}
	s.init("dashboard", opts)
	return s
}

// Stats returns a copy of the last loaded summary
func (s *DashboardStore) Stats() models.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.stats
	out.AppointmentsByDoctor = clone(s.stats.AppointmentsByDoctor)
	return out
}

// FetchDashboardStats loads the monthly totals together with the
// per-doctor breakdown.
func (s *DashboardStore) FetchDashboardStats(ctx context.Context, month, year int) error {
	s.mu.Lock()
	gen := s.beginFetch()
	s.mu.Unlock()

	stats, err := s.api.Stats(ctx, month, year)
	if err == nil {
		var byDoctor []models.DoctorAppointmentCount
		byDoctor, err = s.api.AppointmentsByDoctor(ctx, month, year)
		stats.AppointmentsByDoctor = clone(byDoctor)
	}
	return s.applyStats(gen, stats, err)
}

func (s *DashboardStore) applyStats(gen uint64, stats *models.DashboardStats, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finishFetch(gen, err, "Failed to load dashboard statistics.") {
		return err
	}
	if err != nil {
		if !s.sampleData {
			return err
		}
		s.log.Warn().Err(err).Msg("Using sample dashboard statistics")
		s.errMsg = ""
		s.stats = sampleStats()
		return nil
	}
	s.stats = *stats
	return nil
}

// FetchWaitTimeData returns the average wait per day
func (s *DashboardStore) FetchWaitTimeData(ctx context.Context, month, year int) ([]models.DailyWaitTime, error) {
	data, err := s.api.WaitTimeByDay(ctx, month, year)
	if err != nil && s.sampleData {
		s.log.Warn().Err(err).Msg("Using sample wait times")
		return sampleWaitTimes(), nil
	}
	return data, err
}

// FetchConsultTimeData returns the average consultation length per day
func (s *DashboardStore) FetchConsultTimeData(ctx context.Context, month, year int) ([]models.DailyConsultTime, error) {
	data, err := s.api.ConsultTimeByDay(ctx, month, year)
	if err != nil && s.sampleData {
		s.log.Warn().Err(err).Msg("Using sample consultation times")
		return sampleConsultTimes(), nil
	}
	return data, err
}

// FetchAppointmentsByDoctor returns the appointment count per doctor
func (s *DashboardStore) FetchAppointmentsByDoctor(ctx context.Context, month, year int) ([]models.DoctorAppointmentCount, error) {
	data, err := s.api.AppointmentsByDoctor(ctx, month, year)
	return s.doctorCounts(data, err)
}

func (s *DashboardStore) doctorCounts(data []models.DoctorAppointmentCount, err error) ([]models.DoctorAppointmentCount, error) {
	if err != nil && s.sampleData {
		s.log.Warn().Err(err).Msg("Using sample appointments by doctor")
		return sampleStats().AppointmentsByDoctor, nil
	}
	return data, err
}

// FetchAppointmentsByDay returns the appointment count per day
func (s *DashboardStore) FetchAppointmentsByDay(ctx context.Context, month, year int) ([]models.DailyAppointmentCount, error) {
	data, err := s.api.AppointmentsByDay(ctx, month, year)
	if err != nil && s.sampleData {
		s.log.Warn().Err(err).Msg("Using sample appointments by day")
		return sampleAppointmentsByDay(month, year), nil
	}
	return data, err
}

// Overview is everything the dashboard shows for one month. Each part fails
// on its own; a nil error means the matching field is loaded.
type Overview struct {
	Stats        models.DashboardStats           `json:"stats"`
	WaitTimes    []models.DailyWaitTime          `json:"waitTimes"`
	ConsultTimes []models.DailyConsultTime       `json:"consultTimes"`
	ByDoctor     []models.DoctorAppointmentCount `json:"appointmentsByDoctor"`
	ByDay        []models.DailyAppointmentCount  `json:"appointmentsByDay"`

	StatsErr        error `json:"-"`
	WaitTimesErr    error `json:"-"`
	ConsultTimesErr error `json:"-"`
	ByDoctorErr     error `json:"-"`
	ByDayErr        error `json:"-"`
}

// LoadOverview fetches every dashboard part in parallel. The per-doctor
// counts are requested once and feed both the stats and ByDoctor.
func (s *DashboardStore) LoadOverview(ctx context.Context, month, year int) *Overview {
	var (
		out         Overview
		g           errgroup.Group
		stats       *models.DashboardStats
		byDoctor    []models.DoctorAppointmentCount
		statsErr    error
		byDoctorErr error
	)

	s.mu.Lock()
	gen := s.beginFetch()
	s.mu.Unlock()

	// Every task reports into its own field and returns nil, so one failure
	// never cancels its siblings.
	g.Go(func() error {
		stats, statsErr = s.api.Stats(ctx, month, year)
		return nil
	})
	g.Go(func() error {
		byDoctor, byDoctorErr = s.api.AppointmentsByDoctor(ctx, month, year)
		return nil
	})
	g.Go(func() error {
		out.WaitTimes, out.WaitTimesErr = s.FetchWaitTimeData(ctx, month, year)
		return nil
	})
	g.Go(func() error {
		out.ConsultTimes, out.ConsultTimesErr = s.FetchConsultTimeData(ctx, month, year)
		return nil
	})
	g.Go(func() error {
		out.ByDay, out.ByDayErr = s.FetchAppointmentsByDay(ctx, month, year)
		return nil
	})
	_ = g.Wait()

	err := statsErr
	if err == nil {
		err = byDoctorErr
		stats.AppointmentsByDoctor = clone(byDoctor)
	}
	out.StatsErr = s.applyStats(gen, stats, err)
	out.ByDoctor, out.ByDoctorErr = s.doctorCounts(byDoctor, byDoctorErr)

	out.Stats = s.Stats()
	return &out
}

func sampleStats() models.DashboardStats {
	return models.DashboardStats{
		TotalAppointments: 45,
		AvgWaitTime:       12,
		AvgConsultTime:    20,
		AppointmentsByDoctor: []models.DoctorAppointmentCount{
			{DoctorName: "Dr. García", AppointmentCount: 15},
			{DoctorName: "Dra. Rodríguez", AppointmentCount: 12},
			{DoctorName: "Dr. Martínez", AppointmentCount: 18},
		},
	}
}

var sampleDays = []int{1, 5, 10, 15, 20, 25, 30}

func sampleWaitTimes() []models.DailyWaitTime {
	minutes := []float64{10, 12, 8, 15, 11, 9, 14}
	out := make([]models.DailyWaitTime, len(sampleDays))
	for i, day := range sampleDays {
		out[i] = models.DailyWaitTime{Day: day, AvgWaitTime: minutes[i]}
	}
	return out
}

func sampleConsultTimes() []models.DailyConsultTime {
	minutes := []float64{18, 22, 20, 25, 19, 21, 23}
	out := make([]models.DailyConsultTime, len(sampleDays))
	for i, day := range sampleDays {
		out[i] = models.DailyConsultTime{Day: day, AvgConsultTime: minutes[i]}
	}
	return out
}

func sampleAppointmentsByDay(month, year int) []models.DailyAppointmentCount {
	days := 30
	if month >= 1 && month <= 12 {
		days = time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	}
	out := make([]models.DailyAppointmentCount, days)
	for i := range out {
		day := i + 1
		out[i] = models.DailyAppointmentCount{Day: day, Count: (day*7 + month) % 10}
	}
	return out
}
