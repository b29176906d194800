package handlers

import (
	"net/http"

	"github.com/otcheredev/clinic-desk/internal/models"
	"github.com/otcheredev/clinic-desk/internal/stores"
)

type PatientsHandler struct {
	store *stores.PatientsStore
}

func NewPatientsHandler(store *stores.PatientsStore) *PatientsHandler {
	return &PatientsHandler{store: store}
}

type patientsPage struct {
	Search string           `json:"search,omitempty"`
	Items  []models.Patient `json:"items"`
}

// List shows the patients view. ?search= filters by name, ?force=true
// bypasses the cached list.
func (h *PatientsHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := h.store.FetchPatients(r.Context(), boolQuery(r, "force"), r.URL.Query().Get("search")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, patientsPage{Search: h.store.SearchTerm(), Items: h.store.Items()})
}

func (h *PatientsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.PatientInput
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

func (h *PatientsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var input models.PatientInput
	if !decode(w, r, &input) {
		return
	}
	updated, err := h.store.Update(r.Context(), id, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *PatientsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
