package stores

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/otcheredev/clinic-desk/internal/models"
)

// DoctorAPI is the backend surface the doctors store needs
type DoctorAPI interface {
	List(ctx context.Context) ([]models.Doctor, error)
}

// DoctorsStore caches the doctor list, which rarely changes
type DoctorsStore struct {
	base
	api    DoctorAPI
	items  []models.Doctor
	flight singleflight.Group
}

// NewDoctorsStore creates an empty doctors store
func NewDoctorsStore(api DoctorAPI, opts ...Option) *DoctorsStore {
	s := &DoctorsStore{api: api}
	s.init("doctors", opts)
	return s
}

// Items returns a copy of the cached list
func (s *DoctorsStore) Items() []models.Doctor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.items)
}

// Doctor looks up a cached doctor by id
func (s *DoctorsStore) Doctor(id int) (models.Doctor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.items {
		if d.ID == id {
			return d, true
		}
	}
	return models.Doctor{}, false
}

// FetchDoctors loads the list once. Later calls are no-ops unless force is
// set. Concurrent callers on an empty cache share one request.
func (s *DoctorsStore) FetchDoctors(ctx context.Context, force bool) error {
	if force {
		return s.fetch(ctx)
	}
	if s.cached() {
		return nil
	}
	_, err, _ := s.flight.Do("doctors", func() (any, error) {
		if s.cached() {
			return nil, nil
		}
		return nil, s.fetch(ctx)
	})
	return err
}

func (s *DoctorsStore) cached() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items) > 0
}

func (s *DoctorsStore) fetch(ctx context.Context) error {
	s.mu.Lock()
	gen := s.beginFetch()
	s.mu.Unlock()

	items, err := s.api.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finishFetch(gen, err, "Failed to load doctors.") {
		return err
	}
	if err != nil {
		s.items = []models.Doctor{}
		return err
	}
	s.items = clone(items)
	return nil
}
