package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otcheredev/clinic-desk/internal/apperr"
)

func TestDashboardStore_StatsMergeByDoctor(t *testing.T) {
	store := NewDashboardStore(&fakeDashboard{})

	require.NoError(t, store.FetchDashboardStats(context.Background(), 3, 2024))

	stats := store.Stats()
	assert.Equal(t, 7, stats.TotalAppointments)
	require.Len(t, stats.AppointmentsByDoctor, 1)
	assert.Equal(t, "Dra. Vega", stats.AppointmentsByDoctor[0].DoctorName)
	assert.Empty(t, store.Err())
	assert.False(t, store.IsLoading())
}

func TestDashboardStore_FailureKeepsPreviousStats(t *testing.T) {
	api := &fakeDashboard{}
	store := NewDashboardStore(api)
	require.NoError(t, store.FetchDashboardStats(context.Background(), 3, 2024))

	api.byDoctorErr = apperr.New(apperr.KindServer, "Internal server error.")
	require.Error(t, store.FetchDashboardStats(context.Background(), 4, 2024))

	assert.Equal(t, "Internal server error.", store.Err())
	assert.Equal(t, 7, store.Stats().TotalAppointments)
}

func TestDashboardStore_SampleData(t *testing.T) {
	down := apperr.New(apperr.KindNetworkUnreachable, "Cannot reach the server.")
	api := &fakeDashboard{statsErr: down, waitErr: down, consultErr: down, byDoctorErr: down, byDayErr: down}
	store := NewDashboardStore(api, WithSampleData(true))
	ctx := context.Background()

	require.NoError(t, store.FetchDashboardStats(ctx, 2, 2024))
	assert.Equal(t, 45, store.Stats().TotalAppointments)
	assert.Len(t, store.Stats().AppointmentsByDoctor, 3)
	assert.Empty(t, store.Err())

	byDay, err := store.FetchAppointmentsByDay(ctx, 2, 2024)
	require.NoError(t, err)
	assert.Len(t, byDay, 29)

	waits, err := store.FetchWaitTimeData(ctx, 2, 2024)
	require.NoError(t, err)
	assert.Len(t, waits, 7)
}

func TestDashboardStore_LoadOverviewIndependentFailures(t *testing.T) {
	api := &fakeDashboard{waitErr: apperr.New(apperr.KindTimeout, "The server took too long to respond.")}
	store := NewDashboardStore(api)

	out := store.LoadOverview(context.Background(), 3, 2024)

	assert.NoError(t, out.StatsErr)
	assert.Error(t, out.WaitTimesErr)
	assert.Nil(t, out.WaitTimes)
	assert.NoError(t, out.ConsultTimesErr)
	assert.Len(t, out.ConsultTimes, 1)
	assert.NoError(t, out.ByDoctorErr)
	assert.Len(t, out.ByDoctor, 1)
	assert.NoError(t, out.ByDayErr)
	assert.Len(t, out.ByDay, 1)
	assert.Equal(t, 7, out.Stats.TotalAppointments)
}

func TestDashboardStore_LoadOverviewRequestsByDoctorOnce(t *testing.T) {
	api := &fakeDashboard{}
	store := NewDashboardStore(api)

	out := store.LoadOverview(context.Background(), 3, 2024)

	assert.Equal(t, int32(1), api.byDoctorCalls.Load())
	require.Len(t, out.ByDoctor, 1)
	require.Len(t, out.Stats.AppointmentsByDoctor, 1)
	assert.Equal(t, out.ByDoctor[0], out.Stats.AppointmentsByDoctor[0])
	assert.False(t, store.IsLoading())
}

func TestDashboardStore_LoadOverviewStatsFailureKeepsByDoctor(t *testing.T) {
	api := &fakeDashboard{statsErr: apperr.New(apperr.KindServer, "Internal server error.")}
	store := NewDashboardStore(api)

	out := store.LoadOverview(context.Background(), 3, 2024)

	assert.Error(t, out.StatsErr)
	assert.Equal(t, "Internal server error.", store.Err())
	assert.NoError(t, out.ByDoctorErr)
	assert.Len(t, out.ByDoctor, 1)
}
