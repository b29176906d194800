package models

// AppointmentStatus is the backend's status label for an appointment.
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "Programada"
	StatusWaiting    AppointmentStatus = "En Espera"
	StatusInProgress AppointmentStatus = "En Consulta"
	StatusCompleted  AppointmentStatus = "Completada"
	StatusCancelled  AppointmentStatus = "Cancelada"
)

// Statuses lists the known statuses in lifecycle order.
func Statuses() []AppointmentStatus {
	return []AppointmentStatus{StatusScheduled, StatusWaiting, StatusInProgress, StatusCompleted, StatusCancelled}
}

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	for _, known := range Statuses() {
		if s == known {
			return true
		}
	}
	return false
}

// PersonRef is the embedded {id, name} pair the backend joins onto appointments.
type PersonRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Appointment represents a scheduled visit as returned by the backend
type Appointment struct {
	ID              int               `json:"id"`
	PatientID       int               `json:"patient_id,omitempty"`
	DoctorID        *int              `json:"doctor_id,omitempty"`
	AppointmentTime string            `json:"appointment_time"`
	Status          AppointmentStatus `json:"status"`
	Notes           *string           `json:"notes,omitempty"`

	// Populated on listing only
	CreatedAt             string     `json:"created_at,omitempty"`
	ArrivalTime           *string    `json:"arrival_time,omitempty"`
	ConsultationStartTime *string    `json:"consultation_start_time,omitempty"`
	ConsultationEndTime   *string    `json:"consultation_end_time,omitempty"`
	Patient               *PersonRef `json:"patient,omitempty"`
	Doctor                *PersonRef `json:"doctor,omitempty"`
	WaitTimeSeconds       *int64     `json:"calculated_wait_time_seconds,omitempty"`
	ConsultationSeconds   *int64     `json:"calculated_consultation_time_seconds,omitempty"`
	IsRecurringPatient    bool       `json:"is_recurring_patient,omitempty"`
}

// AppointmentInput is the body for creating an appointment.
type AppointmentInput struct {
	PatientID       int     `json:"patient_id"`
	DoctorID        *int    `json:"doctor_id,omitempty"`
	AppointmentTime string  `json:"appointment_time"`
	Notes           *string `json:"notes,omitempty"`
}

// AppointmentUpdate carries the fields to change; nil fields are not sent.
type AppointmentUpdate struct {
	PatientID       *int               `json:"patient_id,omitempty"`
	DoctorID        *int               `json:"doctor_id,omitempty"`
	AppointmentTime *string            `json:"appointment_time,omitempty"`
	Status          *AppointmentStatus `json:"status,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
}
