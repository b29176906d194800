package models

// Patient represents a clinic patient
type Patient struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	ContactInfo *string `json:"contact_info,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// PatientInput is the body for creating or updating a patient.
type PatientInput struct {
	Name        string  `json:"name,omitempty"`
	ContactInfo *string `json:"contact_info,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
}
