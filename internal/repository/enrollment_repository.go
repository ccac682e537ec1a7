package repository

import (
	"context"

	"github.com/nurseryhub/nursery-api/internal/models"
)

// EnrollmentRepository handles enrollment data access
type EnrollmentRepository struct {
	dataSource EnrollmentDataSource
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(dataSource EnrollmentDataSource) *EnrollmentRepository {
	return &EnrollmentRepository{dataSource: dataSource}
}

// CreateEnrollment creates a pending enrollment
func (r *EnrollmentRepository) CreateEnrollment(ctx context.Context, enrollment models.NewEnrollment) (models.CreatedRecord, error) {
	id, err := r.dataSource.CreateEnrollment(ctx, enrollment)
	if err != nil {
		return models.CreatedRecord{}, err
	}
	return models.CreatedRecord{ID: id}, nil
}

// GetByID retrieves a single enrollment
func (r *EnrollmentRepository) GetByID(ctx context.Context, id string) (*models.Enrollment, error) {
	return r.dataSource.GetEnrollment(ctx, id)
}

// List retrieves enrollments filtered by status (all when empty)
func (r *EnrollmentRepository) List(ctx context.Context, status models.EnrollmentStatus) ([]*models.Enrollment, error) {
	return r.dataSource.ListEnrollments(ctx, status)
}

// UpdateStatus updates the review status of an enrollment
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	return r.dataSource.UpdateEnrollmentStatus(ctx, id, status)
}
