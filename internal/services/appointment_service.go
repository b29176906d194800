package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/otcheredev/clinic-desk/internal/apperr"
	"github.com/otcheredev/clinic-desk/internal/gateway"
	"github.com/otcheredev/clinic-desk/internal/models"
)

// AppointmentService maps the /appointments resource
type AppointmentService struct {
	api Doer
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(api Doer) *AppointmentService {
	return &AppointmentService{api: api}
}

// List returns the appointments matching filter
func (s *AppointmentService) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.api.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Path:   "/appointments",
		Params: filter.Values(),
	}, &appointments)
	if err != nil {
		return nil, normalize(err, "Failed to load appointments.")
	}
	return appointments, nil
}

// Create books a new appointment. A doctor_unavailable conflict is returned
// as apperr.KindDomainConflict with the backend's conflict_time.
func (s *AppointmentService) Create(ctx context.Context, input models.AppointmentInput) (*models.Appointment, error) {
	if input.PatientID <= 0 || input.AppointmentTime == "" {
		return nil, apperr.New(apperr.KindValidation, "patient_id and appointment_time are required.")
	}

	var created models.Appointment
	err := s.api.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/appointments",
		Body:   input,
	}, &created)
	if err != nil {
		return nil, normalize(err, "Failed to create the appointment.")
	}
	return &created, nil
}

// Update changes an appointment, including its status
func (s *AppointmentService) Update(ctx context.Context, id int, update models.AppointmentUpdate) (*models.Appointment, error) {
	var updated models.Appointment
	err := s.api.Do(ctx, gateway.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/appointments/%d", id),
		Body:   update,
	}, &updated)
	if err != nil {
		return nil, normalize(err, "Failed to update the appointment.")
	}
	return &updated, nil
}

// Delete removes an appointment
func (s *AppointmentService) Delete(ctx context.Context, id int) error {
	err := s.api.Do(ctx, gateway.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/appointments/%d", id),
	}, nil)
	return normalize(err, "Failed to delete the appointment.")
}
