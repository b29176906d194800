package models

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentFilter_ValuesSkipsEmptyEntries(t *testing.T) {
	v := AppointmentFilter{Date: "2024-01-01", PatientName: "   "}.Values()

	assert.Equal(t, url.Values{ParamDate: {"2024-01-01"}}, v)
}

func TestAppointmentFilter_StatusListsAreRepeatedKeys(t *testing.T) {
	f := AppointmentFilter{
		ExcludeStatuses: []AppointmentStatus{StatusCancelled, StatusCompleted},
		IncludeStatuses: []AppointmentStatus{StatusWaiting},
	}

	v := f.Values()

	assert.Equal(t, []string{"Cancelada", "Completada"}, v[ParamExcludeStatuses])
	assert.Equal(t, []string{"En Espera"}, v[ParamIncludeStatuses])
	encoded := v.Encode()
	assert.Contains(t, encoded, "exclude_statuses%5B%5D=Cancelada&exclude_statuses%5B%5D=Completada")
	assert.NotContains(t, encoded, "Cancelada%2CCompletada")
}

func TestAppointmentFilter_RoundTrip(t *testing.T) {
	orders := [][]AppointmentStatus{
		{StatusCancelled, StatusCompleted, StatusWaiting},
		{StatusWaiting, StatusCancelled, StatusCompleted},
		{StatusCompleted, StatusWaiting, StatusCancelled},
	}

	for _, statuses := range orders {
		in := AppointmentFilter{
			Date:            "2024-03-05",
			Status:          StatusScheduled,
			DoctorID:        4,
			PatientName:     "ana",
			ExcludeStatuses: statuses,
			IncludeStatuses: statuses[:1],
			SortBy:          SortByPatientName,
			SortDir:         SortDesc,
		}

		parsed, err := url.ParseQuery(in.Values().Encode())
		require.NoError(t, err)
		out := ParseAppointmentFilter(parsed)

		assert.ElementsMatch(t, in.ExcludeStatuses, out.ExcludeStatuses)
		assert.ElementsMatch(t, in.IncludeStatuses, out.IncludeStatuses)
		assert.Equal(t, in.Date, out.Date)
		assert.Equal(t, in.DoctorID, out.DoctorID)
		assert.Equal(t, in.SortDir, out.SortDir)
	}
}

func TestParseAppointmentFilter_AcceptsBareListKeys(t *testing.T) {
	f := ParseAppointmentFilter(url.Values{"exclude_statuses": {"Cancelada"}, "doctor_id": {"abc"}})

	assert.Equal(t, []AppointmentStatus{StatusCancelled}, f.ExcludeStatuses)
	assert.Zero(t, f.DoctorID)
}

func TestAppointmentFilter_WithoutFiltersKeepsDateAndSort(t *testing.T) {
	f := AppointmentFilter{
		Date:            "2024-01-02",
		Status:          StatusWaiting,
		DoctorID:        2,
		PatientName:     "x",
		ExcludeStatuses: []AppointmentStatus{StatusCancelled},
		SortBy:          SortByStatus,
		SortDir:         SortDesc,
	}

	assert.Equal(t, AppointmentFilter{Date: "2024-01-02", SortBy: SortByStatus, SortDir: SortDesc}, f.WithoutFilters())
}

func TestAppointmentFilter_CloneDoesNotShareSlices(t *testing.T) {
	f := AppointmentFilter{ExcludeStatuses: []AppointmentStatus{StatusCancelled}}
	c := f.Clone()
	c.ExcludeStatuses[0] = StatusWaiting

	assert.Equal(t, StatusCancelled, f.ExcludeStatuses[0])
}
