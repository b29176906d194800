package stores

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/otcheredev/clinic-desk/internal/apperr"
	"github.com/otcheredev/clinic-desk/internal/models"
)

// fakeAppointments is an in-memory backend that filters by date prefix
type fakeAppointments struct {
	mu        sync.Mutex
	data      []models.Appointment
	nextID    int
	listCalls []models.AppointmentFilter
	createErr error
	updateErr error
	deleteErr error
	listErr   error
	// block, when set, is consumed by the next List call and waited on
	block chan []models.Appointment
	// entered is signalled when a blocked List call starts
	entered chan struct{}
}

func (f *fakeAppointments) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, filter.Clone())
	block := f.block
	f.block = nil
	f.mu.Unlock()

	if block != nil {
		f.entered <- struct{}{}
		return <-block, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Appointment
	for _, a := range f.data {
		if filter.Date == "" || strings.HasPrefix(a.AppointmentTime, filter.Date) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointments) Create(ctx context.Context, input models.AppointmentInput) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	a := models.Appointment{
		ID:              f.nextID,
		PatientID:       input.PatientID,
		DoctorID:        input.DoctorID,
		AppointmentTime: input.AppointmentTime,
		Status:          models.StatusScheduled,
	}
	f.data = append(f.data, a)
	return &a, nil
}

func (f *fakeAppointments) Update(ctx context.Context, id int, update models.AppointmentUpdate) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.data {
		if f.data[i].ID != id {
			continue
		}
		if update.Status != nil {
			f.data[i].Status = *update.Status
		}
		if update.AppointmentTime != nil {
			f.data[i].AppointmentTime = *update.AppointmentTime
		}
		a := f.data[i]
		return &a, nil
	}
	return nil, &apperr.Error{Kind: apperr.KindValidation, StatusCode: 404, Message: "Appointment not found"}
}

func (f *fakeAppointments) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.data = removeByID(f.data, id, appointmentID)
	return nil
}

func (f *fakeAppointments) calls() []models.AppointmentFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.AppointmentFilter(nil), f.listCalls...)
}

type fakePatients struct {
	mu        sync.Mutex
	data      []models.Patient
	nextID    int
	searches  []string
	listErr   error
	createErr error
}

func (f *fakePatients) List(ctx context.Context, search string) ([]models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, search)
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Patient
	for _, p := range f.data {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePatients) Create(ctx context.Context, input models.PatientInput) (*models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	p := models.Patient{ID: f.nextID, Name: input.Name}
	f.data = append(f.data, p)
	return &p, nil
}

func (f *fakePatients) Update(ctx context.Context, id int, input models.PatientInput) (*models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.data {
		if f.data[i].ID == id {
			if input.Name != "" {
				f.data[i].Name = input.Name
			}
			p := f.data[i]
			return &p, nil
		}
	}
	return nil, &apperr.Error{Kind: apperr.KindValidation, StatusCode: 404, Message: "Patient not found"}
}

func (f *fakePatients) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = removeByID(f.data, id, patientID)
	return nil
}

type fakeDoctors struct {
	mu    sync.Mutex
	calls int
	data  []models.Doctor
	// release, when set, holds every List call until closed
	release chan struct{}
}

func (f *fakeDoctors) List(ctx context.Context) ([]models.Doctor, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return append([]models.Doctor(nil), f.data...), nil
}

type fakeDashboard struct {
	statsErr, waitErr, consultErr, byDoctorErr, byDayErr error

	byDoctorCalls atomic.Int32
}

func (f *fakeDashboard) Stats(ctx context.Context, month, year int) (*models.DashboardStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &models.DashboardStats{TotalAppointments: 7, AvgWaitTime: 3.5, AvgConsultTime: 11}, nil
}

func (f *fakeDashboard) WaitTimeByDay(ctx context.Context, month, year int) ([]models.DailyWaitTime, error) {
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	return []models.DailyWaitTime{{Day: 2, AvgWaitTime: 4}}, nil
}

func (f *fakeDashboard) ConsultTimeByDay(ctx context.Context, month, year int) ([]models.DailyConsultTime, error) {
	if f.consultErr != nil {
		return nil, f.consultErr
	}
	return []models.DailyConsultTime{{Day: 2, AvgConsultTime: 12}}, nil
}

func (f *fakeDashboard) AppointmentsByDoctor(ctx context.Context, month, year int) ([]models.DoctorAppointmentCount, error) {
	f.byDoctorCalls.Add(1)
	if f.byDoctorErr != nil {
		return nil, f.byDoctorErr
	}
	return []models.DoctorAppointmentCount{{DoctorName: "Dra. Vega", AppointmentCount: 7}}, nil
}

func (f *fakeDashboard) AppointmentsByDay(ctx context.Context, month, year int) ([]models.DailyAppointmentCount, error) {
	if f.byDayErr != nil {
		return nil, f.byDayErr
	}
	return []models.DailyAppointmentCount{{Day: 2, Count: 7}}, nil
}

// recordingAuditor keeps audit entries in memory
type recordingAuditor struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (r *recordingAuditor) Record(ctx context.Context, entry *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *recordingAuditor) all() []models.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.AuditLog(nil), r.entries...)
}
