package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nurseryhub/nursery-api/internal/models"
	apperrors "github.com/nurseryhub/nursery-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// MemoryStore keeps enrollments in process memory. Used when DB_WORK_OFFLINE is set
// and in tests; data is lost on restart.
type MemoryStore struct {
	mu          sync.RWMutex
	children    map[string]*models.Child
	enrollments map[string]*models.Enrollment
	documents   map[string][]*models.StoredDocument
	parents     map[string]*models.ParentAccount // keyed by lower-case email
	now         func() time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		children:    map[string]*models.Child{},
		enrollments: map[string]*models.Enrollment{},
		documents:   map[string][]*models.StoredDocument{},
		parents:     map[string]*models.ParentAccount{},
		now:         time.Now,
	}
}

func (s *MemoryStore) CreateChild(_ context.Context, child models.ChildFields) (string, error) {
	birthDate, err := time.Parse(dateLayout, child.BirthDate)
	if err != nil {
		return "", apperrors.InvalidInputError("birthDate", "must be a date in YYYY-MM-DD format")
	}

	var medicalInfo *string
	if child.MedicalInfo != "" {
		info := child.MedicalInfo
		medicalInfo = &info
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.children[id] = &models.Child{
		ID:                    id,
		FirstName:             child.FirstName,
		LastName:              child.LastName,
		BirthDate:             birthDate,
		Gender:                child.Gender,
		MedicalInfo:           medicalInfo,
		EmergencyContactName:  child.EmergencyContactName,
		EmergencyContactPhone: child.EmergencyContactPhone,
		CreatedAt:             s.now(),
	}
	return id, nil
}

func (s *MemoryStore) GetChild(_ context.Context, id string) (*models.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	child, ok := s.children[id]
	if !ok {
		return nil, apperrors.NotFoundError("child " + id)
	}
	c := *child
	return &c, nil
}

func (s *MemoryStore) CreateEnrollment(_ context.Context, e models.NewEnrollment) (string, error) {
	startDate, err := time.Parse(dateLayout, e.RequestedStartDate)
	if err != nil {
		return "", apperrors.InvalidInputError("requestedStartDate", "must be a date in YYYY-MM-DD format")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	child, ok := s.children[e.ChildID]
	if !ok {
		return "", apperrors.NotFoundError("child " + e.ChildID)
	}

	var notes *string
	if e.Notes != "" {
		n := e.Notes
		notes = &n
	}

	id := uuid.NewString()
	now := s.now()
	s.enrollments[id] = &models.Enrollment{
		ID:                      id,
		ChildID:                 e.ChildID,
		ChildFirstName:          child.FirstName,
		ChildLastName:           child.LastName,
		RequestedStartDate:      startDate,
		LunchAssistanceSelected: e.LunchAssistanceSelected,
		RegulationAccepted:      e.RegulationAccepted,
		Notes:                   notes,
		Status:                  models.EnrollmentPending,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	return id, nil
}

func (s *MemoryStore) GetEnrollment(_ context.Context, id string) (*models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.enrollments[id]
	if !ok {
		return nil, apperrors.NotFoundError("enrollment " + id)
	}
	c := *e
	return &c, nil
}

func (s *MemoryStore) ListEnrollments(_ context.Context, status models.EnrollmentStatus) ([]*models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*models.Enrollment{}
	for _, e := range s.enrollments {
		if status != "" && e.Status != status {
			continue
		}
		c := *e
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) UpdateEnrollmentStatus(_ context.Context, id string, status models.EnrollmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.enrollments[id]
	if !ok {
		return apperrors.NotFoundError("enrollment " + id)
	}
	now := s.now()
	e.Status = status
	e.StatusChangedAt = &now
	e.UpdatedAt = now
	return nil
}

func (s *MemoryStore) InsertDocument(_ context.Context, doc *models.StoredDocument) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.children[doc.OwnerID]; !ok {
		return "", apperrors.NotFoundError("child " + doc.OwnerID)
	}

	stored := *doc
	stored.DocumentID = uuid.NewString()
	stored.CreatedAt = s.now()
	s.documents[doc.OwnerID] = append(s.documents[doc.OwnerID], &stored)
	return stored.DocumentID, nil
}

func (s *MemoryStore) ListDocuments(_ context.Context, ownerID string) ([]*models.StoredDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.StoredDocument, 0, len(s.documents[ownerID]))
	for _, d := range s.documents[ownerID] {
		c := *d
		out = append(out, &c)
	}
	return out, nil
}

func (s *MemoryStore) CreateParentAccount(_ context.Context, account *models.ParentAccount) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(account.Email)
	if _, exists := s.parents[email]; exists {
		return "", apperrors.ConflictError(fmt.Sprintf("parent account %s already exists", email))
	}

	stored := *account
	stored.ID = uuid.NewString()
	stored.Email = email
	stored.CreatedAt = s.now()
	s.parents[email] = &stored
	return stored.ID, nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}
