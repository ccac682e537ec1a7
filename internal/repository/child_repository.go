package repository

import (
	"context"

	"github.com/nurseryhub/nursery-api/internal/models"
)

// ChildRepository handles child data access
type ChildRepository struct {
	dataSource EnrollmentDataSource
}

// NewChildRepository creates a new child repository
func NewChildRepository(dataSource EnrollmentDataSource) *ChildRepository {
	return &ChildRepository{dataSource: dataSource}
}

// CreateChild creates a child record
func (r *ChildRepository) CreateChild(ctx context.Context, child models.ChildFields) (models.CreatedRecord, error) {
	id, err := r.dataSource.CreateChild(ctx, child)
	if err != nil {
		return models.CreatedRecord{}, err
	}
	return models.CreatedRecord{ID: id}, nil
}

// GetByID retrieves a child by id
func (r *ChildRepository) GetByID(ctx context.Context, id string) (*models.Child, error) {
	return r.dataSource.GetChild(ctx, id)
}
