package models

// Doctor represents a doctor. Doctors are read-only for staff clients.
type Doctor struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
}
