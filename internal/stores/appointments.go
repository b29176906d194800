package stores

import (
	"context"
	"time"

	"github.com/otcheredev/clinic-desk/internal/apperr"
	"github.com/otcheredev/clinic-desk/internal/models"
)

// AppointmentAPI is the backend surface the appointments store needs
type AppointmentAPI interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error)
	Create(ctx context.Context, input models.AppointmentInput) (*models.Appointment, error)
	Update(ctx context.Context, id int, update models.AppointmentUpdate) (*models.Appointment, error)
	Delete(ctx context.Context, id int) error
}

// AppointmentsStore holds the appointment listing for the active criteria.
// A successful create always refetches, so the new appointment shows up
// exactly when the backend's filtering says it should.
type AppointmentsStore struct {
	base
	api      AppointmentAPI
	items    []models.Appointment
	criteria models.AppointmentFilter
}

// NewAppointmentsStore creates a store showing today's appointments by time
func NewAppointmentsStore(api AppointmentAPI, opts ...Option) *AppointmentsStore {
	s := &AppointmentsStore{
		api: api,
		criteria: models.AppointmentFilter{
			Date:    time.Now().UTC().Format(models.DateLayout),
			SortBy:  models.SortByAppointmentTime,
			SortDir: models.SortAsc,
		},
	}
	s.init("appointments", opts)
	return s
}

func appointmentID(a models.Appointment) int { return a.ID }

// Items returns a copy of the current listing
func (s *AppointmentsStore) Items() []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.items)
}

// Criteria returns a copy of the active criteria
func (s *AppointmentsStore) Criteria() models.AppointmentFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria.Clone()
}

// Fetch reloads the listing with the full current criteria. The listing is
// emptied while loading and stays empty on failure.
func (s *AppointmentsStore) Fetch(ctx context.Context) error {
	s.mu.Lock()
	gen := s.beginFetch()
	s.items = nil
	criteria := s.criteria.Clone()
	s.mu.Unlock()

	items, err := s.api.List(ctx, criteria)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finishFetch(gen, err, "Failed to load appointments.") {
		return err
	}
	if err != nil {
		return err
	}
	s.items = clone(items)
	return nil
}

// update applies fn to the criteria and refetches
func (s *AppointmentsStore) update(ctx context.Context, fn func(*models.AppointmentFilter)) error {
	s.mu.Lock()
	fn(&s.criteria)
	s.mu.Unlock()
	return s.Fetch(ctx)
}

// SetSelectedDate changes the day shown. date must be YYYY-MM-DD.
func (s *AppointmentsStore) SetSelectedDate(ctx context.Context, date string) error {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return s.setErr(apperr.Wrap(apperr.KindValidation, "Invalid date, expected YYYY-MM-DD.", err))
	}
	return s.update(ctx, func(f *models.AppointmentFilter) { f.Date = date })
}

// SetSelectedStatus filters by one status; "" removes the filter
func (s *AppointmentsStore) SetSelectedStatus(ctx context.Context, status models.AppointmentStatus) error {
	if status != "" && !status.Valid() {
		return s.setErr(apperr.New(apperr.KindValidation, "Unknown appointment status "+string(status)+"."))
	}
	return s.update(ctx, func(f *models.AppointmentFilter) { f.Status = status })
}

// SetSelectedDoctorID filters by doctor; 0 removes the filter
func (s *AppointmentsStore) SetSelectedDoctorID(ctx context.Context, doctorID int) error {
	return s.update(ctx, func(f *models.AppointmentFilter) { f.DoctorID = doctorID })
}

// SetSearchPatientName filters by a patient name fragment
func (s *AppointmentsStore) SetSearchPatientName(ctx context.Context, name string) error {
	return s.update(ctx, func(f *models.AppointmentFilter) { f.PatientName = name })
}

// SetExcludeStatuses hides appointments in any of statuses
func (s *AppointmentsStore) SetExcludeStatuses(ctx context.Context, statuses ...models.AppointmentStatus) error {
	list := append([]models.AppointmentStatus(nil), statuses...)
	return s.update(ctx, func(f *models.AppointmentFilter) { f.ExcludeStatuses = list })
}

// SetIncludeStatuses shows only appointments in one of statuses
func (s *AppointmentsStore) SetIncludeStatuses(ctx context.Context, statuses ...models.AppointmentStatus) error {
	list := append([]models.AppointmentStatus(nil), statuses...)
	return s.update(ctx, func(f *models.AppointmentFilter) { f.IncludeStatuses = list })
}

// SetSorting orders the listing by field in dir
func (s *AppointmentsStore) SetSorting(ctx context.Context, field string, dir models.SortDirection) error {
	switch field {
	case models.SortByAppointmentTime, models.SortByStatus, models.SortByPatientName:
	default:
		return s.setErr(apperr.New(apperr.KindValidation, "Unknown sort field "+field+"."))
	}
	if dir != models.SortDesc {
		dir = models.SortAsc
	}
	return s.update(ctx, func(f *models.AppointmentFilter) {
		f.SortBy = field
		f.SortDir = dir
	})
}

// ToggleSortDirection flips the sort direction
func (s *AppointmentsStore) ToggleSortDirection(ctx context.Context) error {
	return s.update(ctx, func(f *models.AppointmentFilter) { f.SortDir = f.SortDir.Toggle() })
}

// ClearFilters drops every filter but keeps the date and the sort
func (s *AppointmentsStore) ClearFilters(ctx context.Context) error {
	return s.update(ctx, func(f *models.AppointmentFilter) { *f = f.WithoutFilters() })
}

// ApplyFilter replaces the whole criteria at once. An empty date or sort
// keeps the current one.
func (s *AppointmentsStore) ApplyFilter(ctx context.Context, filter models.AppointmentFilter) error {
	if filter.Date != "" {
		if _, err := time.Parse(models.DateLayout, filter.Date); err != nil {
			return s.setErr(apperr.Wrap(apperr.KindValidation, "Invalid date, expected YYYY-MM-DD.", err))
		}
	}
	next := filter.Clone()
	return s.update(ctx, func(f *models.AppointmentFilter) {
		if next.Date == "" {
			next.Date = f.Date
		}
		if next.SortBy == "" {
			next.SortBy = f.SortBy
			next.SortDir = f.SortDir
		}
		*f = next
	})
}

// Create books an appointment and refetches the listing. A scheduling
// conflict is returned as is; apperr.ConflictTime extracts the clashing slot.
func (s *AppointmentsStore) Create(ctx context.Context, input models.AppointmentInput) (*models.Appointment, error) {
	started := time.Now()
	s.beginAction()

	created, err := s.api.Create(ctx, input)
	if err != nil {
		s.observe(ctx, "create_appointment", 0, started, err)
		return nil, s.fail(err, "Failed to create the appointment.")
	}
	s.observe(ctx, "create_appointment", created.ID, started, nil)

	if err := s.Fetch(ctx); err != nil {
		s.log.Warn().Err(err).Int("id", created.ID).Msg("Refetch after create failed")
	}
	return created, nil
}

// Update changes an appointment and swaps it into the listing, or refetches
// when it is not in the listing.
func (s *AppointmentsStore) Update(ctx context.Context, id int, update models.AppointmentUpdate) (*models.Appointment, error) {
	return s.apply(ctx, "update_appointment", id, update)
}

// UpdateStatus moves an appointment to status
func (s *AppointmentsStore) UpdateStatus(ctx context.Context, id int, status models.AppointmentStatus) (*models.Appointment, error) {
	if !status.Valid() {
		return nil, s.setErr(apperr.New(apperr.KindValidation, "Unknown appointment status "+string(status)+"."))
	}
	return s.apply(ctx, "update_appointment_status", id, models.AppointmentUpdate{Status: &status})
}

func (s *AppointmentsStore) apply(ctx context.Context, action string, id int, update models.AppointmentUpdate) (*models.Appointment, error) {
	started := time.Now()
	s.beginAction()

	updated, err := s.api.Update(ctx, id, update)
	s.observe(ctx, action, id, started, err)
	if err != nil {
		return nil, s.fail(err, "Failed to update the appointment.")
	}

	s.mu.Lock()
	found := replaceByID(s.items, *updated, appointmentID)
	s.mu.Unlock()

	if !found {
		if err := s.Fetch(ctx); err != nil {
			s.log.Warn().Err(err).Int("id", id).Msg("Refetch after update failed")
		}
	}
	return updated, nil
}

// Delete removes an appointment from the backend and the listing
func (s *AppointmentsStore) Delete(ctx context.Context, id int) error {
	started := time.Now()
	s.beginAction()

	err := s.api.Delete(ctx, id)
	s.observe(ctx, "delete_appointment", id, started, err)
	if err != nil {
		return s.fail(err, "Failed to delete the appointment.")
	}

	s.mu.Lock()
	s.items = removeByID(s.items, id, appointmentID)
	s.mu.Unlock()
	return nil
}
