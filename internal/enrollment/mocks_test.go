package enrollment

import (
	"context"

	"github.com/nurseryhub/nursery-api/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockChildRecords struct {
	mock.Mock
}

func (m *MockChildRecords) CreateChild(ctx context.Context, child models.ChildFields) (models.CreatedRecord, error) {
	args := m.Called(ctx, child)
	return args.Get(0).(models.CreatedRecord), args.Error(1)
}

type MockEnrollmentRecords struct {
	mock.Mock
}

func (m *MockEnrollmentRecords) CreateEnrollment(ctx context.Context, enrollment models.NewEnrollment) (models.CreatedRecord, error) {
	args := m.Called(ctx, enrollment)
	return args.Get(0).(models.CreatedRecord), args.Error(1)
}

type MockDocumentUploader struct {
	mock.Mock
}

func (m *MockDocumentUploader) UploadDocument(ctx context.Context, file models.DocumentFile, documentType models.DocumentType, ownerID string) (*models.StoredDocument, error) {
	args := m.Called(ctx, file, documentType, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredDocument), args.Error(1)
}

type MockParentAccounts struct {
	mock.Mock
}

func (m *MockParentAccounts) CreateParentAccount(ctx context.Context, parent models.ParentFields, childID string) (models.CreatedRecord, error) {
	args := m.Called(ctx, parent, childID)
	return args.Get(0).(models.CreatedRecord), args.Error(1)
}
