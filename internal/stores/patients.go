package stores

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/otcheredev/clinic-desk/internal/models"
)

// PatientAPI is the backend surface the patients store needs
type PatientAPI interface {
	List(ctx context.Context, search string) ([]models.Patient, error)
	Create(ctx context.Context, input models.PatientInput) (*models.Patient, error)
	Update(ctx context.Context, id int, input models.PatientInput) (*models.Patient, error)
	Delete(ctx context.Context, id int) error
}

// PatientsStore caches the patient list, kept sorted by name. Mutations are
// applied locally instead of refetching.
type PatientsStore struct {
	base
	api   PatientAPI
	items []models.Patient
	term  string
	// searched is set while items hold the result of a search
	searched bool
	// loaded is set once items come from the backend rather than local creates
	loaded bool
	// collator is not safe for concurrent use; it is only touched under mu
	collator *collate.Collator
}

// NewPatientsStore creates an empty patients store
func NewPatientsStore(api PatientAPI, opts ...Option) *PatientsStore {
	s := &PatientsStore{
		api:      api,
		collator: collate.New(language.Spanish, collate.IgnoreCase, collate.IgnoreDiacritics),
	}
	s.init("patients", opts)
	return s
}

func patientID(p models.Patient) int { return p.ID }

// Items returns a copy of the cached list
func (s *PatientsStore) Items() []models.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.items)
}

// SearchTerm returns the term the cached list was loaded with
func (s *PatientsStore) SearchTerm() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.term
}

// FetchPatients loads the list. A non-empty search always hits the backend.
// Without a search, a list already loaded from the backend is reused unless
// force is set or the cache holds a previous search, which is then cleared.
func (s *PatientsStore) FetchPatients(ctx context.Context, force bool, search string) error {
	term := strings.TrimSpace(search)

	s.mu.Lock()
	switch {
	case term != "":
		s.term = term
		s.searched = true
	case s.searched:
		s.term = ""
		s.searched = false
	case s.loaded && len(s.items) > 0 && !force:
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	return s.fetch(ctx)
}

// fetch reloads with the current term, leaving the cached list visible meanwhile
func (s *PatientsStore) fetch(ctx context.Context) error {
	s.mu.Lock()
	gen := s.beginFetch()
	term := s.term
	s.mu.Unlock()

	items, err := s.api.List(ctx, term)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finishFetch(gen, err, "Failed to load patients.") {
		return err
	}
	if err != nil {
		s.items = []models.Patient{}
		s.loaded = false
		return err
	}
	s.items = clone(items)
	s.loaded = true
	s.sortLocked()
	return nil
}

// sortLocked orders items by name, case and accent insensitive. Caller holds mu.
func (s *PatientsStore) sortLocked() {
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.collator.CompareString(s.items[i].Name, s.items[j].Name) < 0
	})
}

// Create registers a patient and inserts it in name order
func (s *PatientsStore) Create(ctx context.Context, input models.PatientInput) (*models.Patient, error) {
	started := time.Now()
	s.beginAction()

	created, err := s.api.Create(ctx, input)
	if err != nil {
		s.observe(ctx, "create_patient", 0, started, err)
		return nil, s.fail(err, "Failed to create the patient.")
	}
	s.observe(ctx, "create_patient", created.ID, started, nil)

	s.mu.Lock()
	s.items = append(s.items, *created)
	s.sortLocked()
	s.mu.Unlock()
	return created, nil
}

// Update changes a patient and re-sorts, or refetches when it is not cached
func (s *PatientsStore) Update(ctx context.Context, id int, input models.PatientInput) (*models.Patient, error) {
	started := time.Now()
	s.beginAction()

	updated, err := s.api.Update(ctx, id, input)
	s.observe(ctx, "update_patient", id, started, err)
	if err != nil {
		return nil, s.fail(err, "Failed to update the patient.")
	}

	s.mu.Lock()
	found := replaceByID(s.items, *updated, patientID)
	if found {
		s.sortLocked()
	}
	s.mu.Unlock()

	if !found {
		if err := s.fetch(ctx); err != nil {
			s.log.Warn().Err(err).Int("id", id).Msg("Refetch after update failed")
		}
	}
	return updated, nil
}

// Delete removes a patient
func (s *PatientsStore) Delete(ctx context.Context, id int) error {
	started := time.Now()
	s.beginAction()

	err := s.api.Delete(ctx, id)
	s.observe(ctx, "delete_patient", id, started, err)
	if err != nil {
		return s.fail(err, "Failed to delete the patient.")
	}

	s.mu.Lock()
	s.items = removeByID(s.items, id, patientID)
	s.mu.Unlock()
	return nil
}
