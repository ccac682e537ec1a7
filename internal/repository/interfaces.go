package repository

import (
	"context"

	"github.com/nurseryhub/nursery-api/internal/database/postgres"
	"github.com/nurseryhub/nursery-api/internal/models"
)

var (
	_ EnrollmentDataSource = (*postgres.Client)(nil)
	_ EnrollmentDataSource = (*MemoryStore)(nil)
)

// EnrollmentDataSource is the persistence backend for enrollments.
// It is implemented by the PostgreSQL client and by MemoryStore for offline mode.
type EnrollmentDataSource interface {
	// CreateChild inserts a child and returns its id
	CreateChild(ctx context.Context, child models.ChildFields) (string, error)

	// GetChild fetches a child by id
	GetChild(ctx context.Context, id string) (*models.Child, error)

	// CreateEnrollment inserts a pending enrollment and returns its id
	CreateEnrollment(ctx context.Context, enrollment models.NewEnrollment) (string, error)

	// GetEnrollment fetches an enrollment by id
	GetEnrollment(ctx context.Context, id string) (*models.Enrollment, error)

	// ListEnrollments lists enrollments, optionally filtered by status
	ListEnrollments(ctx context.Context, status models.EnrollmentStatus) ([]*models.Enrollment, error)

	// UpdateEnrollmentStatus records a review decision
	UpdateEnrollmentStatus(ctx context.Context, id string, status models.EnrollmentStatus) error

	// InsertDocument records a stored document and returns its id
	InsertDocument(ctx context.Context, doc *models.StoredDocument) (string, error)

	// ListDocuments lists the documents of a child
	ListDocuments(ctx context.Context, ownerID string) ([]*models.StoredDocument, error)

	// CreateParentAccount inserts a parent account and returns its id
	CreateParentAccount(ctx context.Context, account *models.ParentAccount) (string, error)

	// Ping reports whether the backend is reachable
	Ping(ctx context.Context) error
}
