package stores

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/otcheredev/clinic-desk/internal/apperr"
	"github.com/otcheredev/clinic-desk/internal/models"
	"github.com/otcheredev/clinic-desk/pkg/metrics"
)

type AppointmentsStoreSuite struct {
	suite.Suite
	ctx     context.Context
	api     *fakeAppointments
	auditor *recordingAuditor
	metrics *metrics.Metrics
	store   *AppointmentsStore
	today   string
}

func TestAppointmentsStoreSuite(t *testing.T) {
	suite.Run(t, new(AppointmentsStoreSuite))
}

func (s *AppointmentsStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.api = &fakeAppointments{nextID: 100}
	s.auditor = &recordingAuditor{}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.store = NewAppointmentsStore(s.api,
		WithAuditor(s.auditor),
		WithMetrics(s.metrics),
		WithActor(func() string { return "staff@clinic.test" }),
	)
	s.today = s.store.Criteria().Date
}

func (s *AppointmentsStoreSuite) seed(ids ...int) {
	for _, id := range ids {
		s.api.data = append(s.api.data, models.Appointment{
			ID:              id,
			AppointmentTime: s.today + "T09:00:00",
			Status:          models.StatusScheduled,
		})
	}
}

func ids(items []models.Appointment) []int {
	out := make([]int, len(items))
	for i, a := range items {
		out[i] = a.ID
	}
	return out
}

func (s *AppointmentsStoreSuite) TestDefaultCriteria() {
	c := s.store.Criteria()
	s.Equal(time.Now().UTC().Format(models.DateLayout), c.Date)
	s.Equal(models.SortByAppointmentTime, c.SortBy)
	s.Equal(models.SortAsc, c.SortDir)
	s.Empty(s.store.Items())
	s.False(s.store.IsLoading())
}

func (s *AppointmentsStoreSuite) TestFetchReplacesItems() {
	s.seed(1, 2)

	s.Require().NoError(s.store.Fetch(s.ctx))

	s.Equal([]int{1, 2}, ids(s.store.Items()))
	s.False(s.store.IsLoading())
	s.Empty(s.store.Err())
}

func (s *AppointmentsStoreSuite) TestFetchFailureEmptiesAndReports() {
	s.seed(1)
	s.Require().NoError(s.store.Fetch(s.ctx))
	s.api.listErr = apperr.New(apperr.KindNetworkUnreachable, "Cannot reach the server.")

	s.Error(s.store.Fetch(s.ctx))

	s.Empty(s.store.Items())
	s.Equal("Cannot reach the server.", s.store.Err())
	s.False(s.store.IsLoading())
}

func (s *AppointmentsStoreSuite) TestCreateReconciliation() {
	s.Require().NoError(s.store.Fetch(s.ctx))

	created, err := s.store.Create(s.ctx, models.AppointmentInput{
		PatientID:       3,
		AppointmentTime: s.today + "T10:30:00",
	})

	s.Require().NoError(err)
	s.Contains(ids(s.store.Items()), created.ID)
	s.Empty(s.store.Err())
}

func (s *AppointmentsStoreSuite) TestCreateOtherDayIsNotListed() {
	created, err := s.store.Create(s.ctx, models.AppointmentInput{
		PatientID:       3,
		AppointmentTime: "1999-01-01T10:30:00",
	})

	s.Require().NoError(err)
	s.NotContains(ids(s.store.Items()), created.ID)
}

func (s *AppointmentsStoreSuite) TestConflictSurfacing() {
	s.seed(1)
	s.Require().NoError(s.store.Fetch(s.ctx))
	s.api.createErr = &apperr.Error{
		Kind:         apperr.KindDomainConflict,
		StatusCode:   409,
		Message:      "Dr. X busy",
		ErrorType:    apperr.ErrorTypeDoctorUnavailable,
		ConflictTime: "2024-01-01T10:00:00Z",
	}
	s.api.updateErr = s.api.createErr

	_, err := s.store.Create(s.ctx, models.AppointmentInput{PatientID: 3, AppointmentTime: s.today + "T10:00:00"})
	s.Require().Error(err)
	s.Equal("Dr. X busy", s.store.Err())
	s.True(apperr.IsDoctorUnavailable(err))
	slot, ok := apperr.ConflictTime(err)
	s.True(ok)
	s.Equal("2024-01-01T10:00:00Z", slot)
	s.Equal([]int{1}, ids(s.store.Items()))

	when := s.today + "T11:00:00"
	_, err = s.store.Update(s.ctx, 1, models.AppointmentUpdate{AppointmentTime: &when})
	s.Require().Error(err)
	s.Equal("Dr. X busy", s.store.Err())
	s.Equal(s.today+"T09:00:00", s.store.Items()[0].AppointmentTime)
}

func (s *AppointmentsStoreSuite) TestDeleteRemovesExactlyOne() {
	s.seed(3, 5, 7, 9, 11)
	s.Require().NoError(s.store.Fetch(s.ctx))

	s.Require().NoError(s.store.Delete(s.ctx, 7))

	s.Equal([]int{3, 5, 9, 11}, ids(s.store.Items()))
}

func (s *AppointmentsStoreSuite) TestDeleteFailureKeepsItems() {
	s.seed(1, 2)
	s.Require().NoError(s.store.Fetch(s.ctx))
	s.api.deleteErr = apperr.New(apperr.KindServer, "Internal server error.")

	s.Error(s.store.Delete(s.ctx, 1))

	s.Equal([]int{1, 2}, ids(s.store.Items()))
	s.Equal("Internal server error.", s.store.Err())
}

func (s *AppointmentsStoreSuite) TestUpdateStatusReplacesInPlace() {
	s.seed(1, 2)
	s.Require().NoError(s.store.Fetch(s.ctx))
	fetches := len(s.api.calls())

	updated, err := s.store.UpdateStatus(s.ctx, 2, models.StatusWaiting)

	s.Require().NoError(err)
	s.Equal(models.StatusWaiting, updated.Status)
	s.Equal(models.StatusWaiting, s.store.Items()[1].Status)
	s.Len(s.api.calls(), fetches)
}

func (s *AppointmentsStoreSuite) TestUpdateMissingRefetches() {
	s.seed(1)
	fetches := len(s.api.calls())

	_, err := s.store.UpdateStatus(s.ctx, 1, models.StatusCompleted)

	s.Require().NoError(err)
	s.Len(s.api.calls(), fetches+1)
	s.Equal(models.StatusCompleted, s.store.Items()[0].Status)
}

func (s *AppointmentsStoreSuite) TestUpdateStatusRejectsUnknown() {
	_, err := s.store.UpdateStatus(s.ctx, 1, "Perdida")

	s.True(apperr.IsKind(err, apperr.KindValidation))
	s.NotEmpty(s.store.Err())
}

func (s *AppointmentsStoreSuite) TestSettersFetchWithFullCriteria() {
	s.Require().NoError(s.store.SetSelectedStatus(s.ctx, models.StatusWaiting))
	s.Require().NoError(s.store.SetSelectedDoctorID(s.ctx, 4))
	s.Require().NoError(s.store.SetSearchPatientName(s.ctx, "ana"))
	s.Require().NoError(s.store.SetExcludeStatuses(s.ctx, models.StatusCancelled))
	s.Require().NoError(s.store.ToggleSortDirection(s.ctx))

	calls := s.api.calls()
	s.Require().Len(calls, 5)
	last := calls[4]
	s.Equal(s.today, last.Date)
	s.Equal(models.StatusWaiting, last.Status)
	s.Equal(4, last.DoctorID)
	s.Equal("ana", last.PatientName)
	s.Equal([]models.AppointmentStatus{models.StatusCancelled}, last.ExcludeStatuses)
	s.Equal(models.SortDesc, last.SortDir)
}

func (s *AppointmentsStoreSuite) TestClearFiltersKeepsDateAndSort() {
	s.Require().NoError(s.store.SetSelectedDate(s.ctx, "2024-03-05"))
	s.Require().NoError(s.store.SetSorting(s.ctx, models.SortByStatus, models.SortDesc))
	s.Require().NoError(s.store.SetIncludeStatuses(s.ctx, models.StatusWaiting, models.StatusInProgress))
	s.Require().NoError(s.store.SetSelectedDoctorID(s.ctx, 2))

	s.Require().NoError(s.store.ClearFilters(s.ctx))

	calls := s.api.calls()
	last := calls[len(calls)-1]
	s.Equal(models.AppointmentFilter{
		Date:    "2024-03-05",
		SortBy:  models.SortByStatus,
		SortDir: models.SortDesc,
	}, last)
}

func (s *AppointmentsStoreSuite) TestInvalidDateDoesNotFetch() {
	err := s.store.SetSelectedDate(s.ctx, "05/03/2024")

	s.True(apperr.IsKind(err, apperr.KindValidation))
	s.Empty(s.api.calls())
	s.Equal(s.today, s.store.Criteria().Date)
	s.NotEmpty(s.store.Err())
}

func (s *AppointmentsStoreSuite) TestApplyFilterKeepsDateWhenEmpty() {
	s.Require().NoError(s.store.ApplyFilter(s.ctx, models.AppointmentFilter{Status: models.StatusCompleted}))

	c := s.store.Criteria()
	s.Equal(s.today, c.Date)
	s.Equal(models.StatusCompleted, c.Status)
	s.Equal(models.SortByAppointmentTime, c.SortBy)
}

func (s *AppointmentsStoreSuite) TestStaleFetchIsDiscarded() {
	s.api.block = make(chan []models.Appointment)
	s.api.entered = make(chan struct{})

	done := make(chan error)
	go func() { done <- s.store.Fetch(s.ctx) }()
	<-s.api.entered

	s.seed(2)
	s.Require().NoError(s.store.Fetch(s.ctx))
	s.Equal([]int{2}, ids(s.store.Items()))

	s.api.block <- []models.Appointment{{ID: 1}}
	s.NoError(<-done)

	s.Equal([]int{2}, ids(s.store.Items()))
	s.False(s.store.IsLoading())
}

func (s *AppointmentsStoreSuite) TestMutationsAreAudited() {
	s.seed(1)
	s.Require().NoError(s.store.Fetch(s.ctx))
	s.api.deleteErr = apperr.New(apperr.KindServer, "boom")

	_, err := s.store.UpdateStatus(s.ctx, 1, models.StatusWaiting)
	s.Require().NoError(err)
	s.Error(s.store.Delete(s.ctx, 1))

	entries := s.auditor.all()
	s.Require().Len(entries, 2)
	s.Equal("update_appointment_status", entries[0].Action)
	s.Equal("appointments", entries[0].ResourceType)
	s.Equal("1", entries[0].ResourceID)
	s.Equal("staff@clinic.test", entries[0].UserEmail)
	s.Equal(models.AuditStatusSuccess, entries[0].Status)
	s.Equal(models.AuditStatusFailure, entries[1].Status)
	s.Equal("boom", entries[1].ErrorMessage)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.StoreActions.WithLabelValues("appointments", "delete_appointment", "failure")))
}
