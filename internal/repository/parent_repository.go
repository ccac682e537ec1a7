package repository

import (
	"context"

	"github.com/nurseryhub/nursery-api/internal/models"
)

// ParentRepository handles parent account data access
type ParentRepository struct {
	dataSource EnrollmentDataSource
}

// NewParentRepository creates a new parent repository
func NewParentRepository(dataSource EnrollmentDataSource) *ParentRepository {
	return &ParentRepository{dataSource: dataSource}
}

// Create inserts a parent account whose password is already hashed
func (r *ParentRepository) Create(ctx context.Context, account *models.ParentAccount) (string, error) {
	return r.dataSource.CreateParentAccount(ctx, account)
}
