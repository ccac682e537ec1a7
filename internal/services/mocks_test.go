package services_test

import (
	"context"
	"time"

	"github.com/nurseryhub/nursery-api/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockDocumentStorage struct {
	mock.Mock
}

func (m *MockDocumentStorage) Upload(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, content, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockDocumentStorage) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

type MockChildReader struct {
	mock.Mock
}

func (m *MockChildReader) GetByID(ctx context.Context, id string) (*models.Child, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Child), args.Error(1)
}

type MockDocumentRecordRepository struct {
	mock.Mock
}

func (m *MockDocumentRecordRepository) Create(ctx context.Context, doc *models.StoredDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRecordRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.StoredDocument, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StoredDocument), args.Error(1)
}

type MockParentAccountRepository struct {
	mock.Mock
}

func (m *MockParentAccountRepository) Create(ctx context.Context, account *models.ParentAccount) (string, error) {
	args := m.Called(ctx, account)
	return args.String(0), args.Error(1)
}

type MockEnrollmentReviewRepository struct {
	mock.Mock
}

func (m *MockEnrollmentReviewRepository) GetByID(ctx context.Context, id string) (*models.Enrollment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Enrollment), args.Error(1)
}

func (m *MockEnrollmentReviewRepository) List(ctx context.Context, status models.EnrollmentStatus) ([]*models.Enrollment, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Enrollment), args.Error(1)
}

func (m *MockEnrollmentReviewRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockRecaptchaVerifier struct {
	mock.Mock
}

func (m *MockRecaptchaVerifier) Verify(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
