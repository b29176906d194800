package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/otcheredev/clinic-desk/internal/apperr"
	"github.com/otcheredev/clinic-desk/internal/gateway"
	"github.com/otcheredev/clinic-desk/internal/models"
)

// PatientService maps the /patients resource
type PatientService struct {
	api Doer
}

// NewPatientService creates a new patient service
func NewPatientService(api Doer) *PatientService {
	return &PatientService{api: api}
}

// List returns patients whose name contains search (all patients when empty)
func (s *PatientService) List(ctx context.Context, search string) ([]models.Patient, error) {
	var params url.Values
	if term := strings.TrimSpace(search); term != "" {
		params = url.Values{"search": {term}}
	}

	var patients []models.Patient
	err := s.api.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Path:   "/patients",
		Params: params,
	}, &patients)
	if err != nil {
		return nil, normalize(err, "Failed to load patients.")
	}
	return patients, nil
}

// Create registers a new patient
func (s *PatientService) Create(ctx context.Context, input models.PatientInput) (*models.Patient, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperr.New(apperr.KindValidation, "The name field is required.")
	}

	var created models.Patient
	err := s.api.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/patients",
		Body:   input,
	}, &created)
	if err != nil {
		return nil, normalize(err, "Failed to create the patient.")
	}
	return &created, nil
}

// Update changes a patient's details
func (s *PatientService) Update(ctx context.Context, id int, input models.PatientInput) (*models.Patient, error) {
	var updated models.Patient
	err := s.api.Do(ctx, gateway.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/patients/%d", id),
		Body:   input,
	}, &updated)
	if err != nil {
		return nil, normalize(err, "Failed to update the patient.")
	}
	return &updated, nil
}

// Delete removes a patient
func (s *PatientService) Delete(ctx context.Context, id int) error {
	err := s.api.Do(ctx, gateway.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/patients/%d", id),
	}, nil)
	return normalize(err, "Failed to delete the patient.")
}
