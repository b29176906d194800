package handlers

import (
	"net/http"

	"github.com/otcheredev/clinic-desk/internal/stores"
)

type DoctorsHandler struct {
	store *stores.DoctorsStore
}

func NewDoctorsHandler(store *stores.DoctorsStore) *DoctorsHandler {
	return &DoctorsHandler{store: store}
}

// List returns the doctors, loaded once per process unless ?force=true
func (h *DoctorsHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := h.store.FetchDoctors(r.Context(), boolQuery(r, "force")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Items())
}
