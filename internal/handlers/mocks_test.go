package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/nurseryhub/nursery-api/internal/models"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockWizardService struct {
	mock.Mock
}

func (m *MockWizardService) StartSession(ctx context.Context) (*models.WizardSessionResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WizardSessionResponse), args.Error(1)
}

func (m *MockWizardService) GetView(ctx context.Context, sessionID string) (*models.WizardView, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WizardView), args.Error(1)
}

func (m *MockWizardService) UpdateFields(ctx context.Context, sessionID string, req *models.UpdateWizardFieldsRequest) (*models.WizardView, error) {
	args := m.Called(ctx, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WizardView), args.Error(1)
}

func (m *MockWizardService) Next(ctx context.Context, sessionID string) (*models.StepTransitionResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StepTransitionResponse), args.Error(1)
}

func (m *MockWizardService) Previous(ctx context.Context, sessionID string) (*models.WizardView, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WizardView), args.Error(1)
}

func (m *MockWizardService) AttachDocument(ctx context.Context, sessionID string, documentType models.DocumentType, file *models.DocumentFile) (*models.DocumentAttachResponse, error) {
	args := m.Called(ctx, sessionID, documentType, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DocumentAttachResponse), args.Error(1)
}

func (m *MockWizardService) RemoveDocument(ctx context.Context, sessionID string, documentType models.DocumentType) (*models.WizardView, error) {
	args := m.Called(ctx, sessionID, documentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WizardView), args.Error(1)
}

func (m *MockWizardService) ReportRegulationScroll(ctx context.Context, sessionID string, req *models.RegulationScrollRequest) (*models.WizardView, error) {
	args := m.Called(ctx, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WizardView), args.Error(1)
}

func (m *MockWizardService) AcceptRegulation(ctx context.Context, sessionID string, accepted bool) (*models.WizardView, error) {
	args := m.Called(ctx, sessionID, accepted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WizardView), args.Error(1)
}

func (m *MockWizardService) Submit(ctx context.Context, sessionID string, req *models.SubmitEnrollmentRequest) (*models.SubmitResult, error) {
	args := m.Called(ctx, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubmitResult), args.Error(1)
}

func (m *MockWizardService) Abandon(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListEnrollments(ctx context.Context, status models.EnrollmentStatus) (*models.EnrollmentsResponse, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EnrollmentsResponse), args.Error(1)
}

func (m *MockAdminService) GetEnrollment(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EnrollmentDetail), args.Error(1)
}

func (m *MockAdminService) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) (*models.Enrollment, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Enrollment), args.Error(1)
}

type stubRegulation struct {
	path string
	err  error
}

func (s stubRegulation) DocumentPath() (string, error) {
	return s.path, s.err
}
