package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/nurseryhub/nursery-api/internal/models"
	"github.com/nurseryhub/nursery-api/pkg/jwt"
	"github.com/nurseryhub/nursery-api/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ParentAccountService creates parent-role accounts from enrollment credentials
type ParentAccountService struct {
	parents ParentAccountRepository
	cost    int
}

// NewParentAccountService creates a new parent account service
func NewParentAccountService(parents ParentAccountRepository) *ParentAccountService {
	return &ParentAccountService{
		parents: parents,
		cost:    bcrypt.DefaultCost,
	}
}

// CreateParentAccount hashes the password and stores the account linked to childID
func (s *ParentAccountService) CreateParentAccount(ctx context.Context, parent models.ParentFields, childID string) (models.CreatedRecord, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(parent.Password), s.cost)
	if err != nil {
		return models.CreatedRecord{}, fmt.Errorf("failed to hash parent password: %w", err)
	}

	id, err := s.parents.Create(ctx, &models.ParentAccount{
		ChildID:      childID,
		FirstName:    parent.FirstName,
		LastName:     parent.LastName,
		Email:        strings.ToLower(strings.TrimSpace(parent.Email)),
		Phone:        parent.Phone,
		PasswordHash: string(hash),
		Role:         jwt.RoleParent,
	})
	if err != nil {
		return models.CreatedRecord{}, err
	}

	logger.Info("Parent account created",
		zap.String("parent_id", id),
		zap.String("child_id", childID))

	return models.CreatedRecord{ID: id}, nil
}
