package handlers

import (
	"net/http"

	"github.com/otcheredev/clinic-desk/internal/models"
	"github.com/otcheredev/clinic-desk/internal/stores"
)

type AppointmentsHandler struct {
	store *stores.AppointmentsStore
}

func NewAppointmentsHandler(store *stores.AppointmentsStore) *AppointmentsHandler {
	return &AppointmentsHandler{store: store}
}

type appointmentsPage struct {
	Criteria models.AppointmentFilter `json:"criteria"`
	Items    []models.Appointment     `json:"items"`
}

type statusRequest struct {
	Status models.AppointmentStatus `json:"status"`
}

// List shows the appointments view. Query parameters replace the active
// criteria; without any, the current criteria are reloaded.
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var err error
	if len(r.URL.Query()) == 0 {
		err = h.store.Fetch(ctx)
	} else {
		err = h.store.ApplyFilter(ctx, models.ParseAppointmentFilter(r.URL.Query()))
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, appointmentsPage{
		Criteria: h.store.Criteria(),
		Items:    h.store.Items(),
	})
}

// Create books an appointment
func (h *AppointmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.AppointmentInput
	if !decode(w, r, &input) {
		return
	}

	created, err := h.store.Create(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update changes an appointment
func (h *AppointmentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var update models.AppointmentUpdate
	if !decode(w, r, &update) {
		return
	}

	updated, err := h.store.Update(r.Context(), id, update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// UpdateStatus moves an appointment through its lifecycle
func (h *AppointmentsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}

	updated, err := h.store.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes an appointment
func (h *AppointmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
