package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/otcheredev/clinic-desk/internal/models"
	"github.com/otcheredev/clinic-desk/internal/services"
	"github.com/otcheredev/clinic-desk/internal/stores"
)

type DashboardHandler struct {
	store *stores.DashboardStore
	now   func() time.Time
}

func NewDashboardHandler(store *stores.DashboardStore) *DashboardHandler {
	return &DashboardHandler{store: store, now: time.Now}
}

type dashboardPage struct {
	Month        int                             `json:"month"`
	Year         int                             `json:"year"`
	Stats        models.DashboardStats           `json:"stats"`
	WaitTimes    []models.DailyWaitTime          `json:"waitTimes"`
	ConsultTimes []models.DailyConsultTime       `json:"consultTimes"`
	ByDoctor     []models.DoctorAppointmentCount `json:"appointmentsByDoctor"`
	ByDay        []models.DailyAppointmentCount  `json:"appointmentsByDay"`
	Errors       map[string]string               `json:"errors,omitempty"`
}

// Overview loads every dashboard part for ?month=&year=, defaulting to the
// current month. Parts fail independently and are reported under errors.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	month, year := int(now.Month()), now.Year()

	q := r.URL.Query()
	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, "Invalid month")
			return
		}
		month = m
	}
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, "Invalid year")
			return
		}
		year = y
	}
	if err := services.ValidatePeriod(month, year); err != nil {
		writeError(w, err)
		return
	}

	out := h.store.LoadOverview(r.Context(), month, year)
	page := dashboardPage{
		Month:        month,
		Year:         year,
		Stats:        out.Stats,
		WaitTimes:    out.WaitTimes,
		ConsultTimes: out.ConsultTimes,
		ByDoctor:     out.ByDoctor,
		ByDay:        out.ByDay,
		Errors:       map[string]string{},
	}
	for part, err := range map[string]error{
		"stats":                out.StatsErr,
		"waitTimes":            out.WaitTimesErr,
		"consultTimes":         out.ConsultTimesErr,
		"appointmentsByDoctor": out.ByDoctorErr,
		"appointmentsByDay":    out.ByDayErr,
	} {
		if err != nil {
			page.Errors[part] = err.Error()
		}
	}
	writeJSON(w, http.StatusOK, page)
}
