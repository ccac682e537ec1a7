package services

import (
	"os"

	apperrors "github.com/nurseryhub/nursery-api/pkg/errors"
)

// RegulationService serves the nursery's internal regulation document
type RegulationService struct {
	path string
}

// NewRegulationService creates a regulation service for the file at path
func NewRegulationService(path string) *RegulationService {
	return &RegulationService{path: path}
}

// DocumentPath returns the regulation file path if it exists
func (s *RegulationService) DocumentPath() (string, error) {
	info, err := os.Stat(s.path)
	if err != nil || info.IsDir() {
		return "", apperrors.NotFoundError("regulation document")
	}
	return s.path, nil
}
