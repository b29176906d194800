package services

import (
	"context"
	"net/http"

	"github.com/otcheredev/clinic-desk/internal/gateway"
	"github.com/otcheredev/clinic-desk/internal/models"
)

// DoctorService maps the read-only /doctors resource
type DoctorService struct {
	api Doer
}

func NewDoctorService(api Doer) *DoctorService {
	return &DoctorService{api: api}
}

// List returns all doctors, ordered by name on the backend
func (s *DoctorService) List(ctx context.Context) ([]models.Doctor, error) {
	var doctors []models.Doctor
	if err := s.api.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/doctors"}, &doctors); err != nil {
		return nil, normalize(err, "Failed to load doctors.")
	}
	return doctors, nil
}
