package services

import (
	"context"
	"time"

	"github.com/nurseryhub/nursery-api/internal/enrollment"
	"github.com/nurseryhub/nursery-api/internal/models"
)

// DocumentStorage is the object storage holding enrollment documents
type DocumentStorage interface {
	Upload(ctx context.Context, key string, content []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ChildReader reads child records
type ChildReader interface {
	GetByID(ctx context.Context, id string) (*models.Child, error)
}

// DocumentRecordRepository persists stored document metadata
type DocumentRecordRepository interface {
	Create(ctx context.Context, doc *models.StoredDocument) error
	ListByOwner(ctx context.Context, ownerID string) ([]*models.StoredDocument, error)
}

// ParentAccountRepository persists parent accounts
type ParentAccountRepository interface {
	Create(ctx context.Context, account *models.ParentAccount) (string, error)
}

// EnrollmentReviewRepository is the staff side of enrollment persistence
type EnrollmentReviewRepository interface {
	GetByID(ctx context.Context, id string) (*models.Enrollment, error)
	List(ctx context.Context, status models.EnrollmentStatus) ([]*models.Enrollment, error)
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
}

// RecaptchaVerifier verifies captcha tokens before a submission
type RecaptchaVerifier interface {
	Verify(ctx context.Context, token string) error
}

// EnrollmentWizardServiceInterface defines the public enrollment wizard operations
type EnrollmentWizardServiceInterface interface {
	StartSession(ctx context.Context) (*models.WizardSessionResponse, error)
	GetView(ctx context.Context, sessionID string) (*models.WizardView, error)
	UpdateFields(ctx context.Context, sessionID string, req *models.UpdateWizardFieldsRequest) (*models.WizardView, error)
	Next(ctx context.Context, sessionID string) (*models.StepTransitionResponse, error)
	Previous(ctx context.Context, sessionID string) (*models.WizardView, error)
	AttachDocument(ctx context.Context, sessionID string, documentType models.DocumentType, file *models.DocumentFile) (*models.DocumentAttachResponse, error)
	RemoveDocument(ctx context.Context, sessionID string, documentType models.DocumentType) (*models.WizardView, error)
	ReportRegulationScroll(ctx context.Context, sessionID string, req *models.RegulationScrollRequest) (*models.WizardView, error)
	AcceptRegulation(ctx context.Context, sessionID string, accepted bool) (*models.WizardView, error)
	Submit(ctx context.Context, sessionID string, req *models.SubmitEnrollmentRequest) (*models.SubmitResult, error)
	Abandon(ctx context.Context, sessionID string) error
}

// EnrollmentAdminServiceInterface defines staff review operations
type EnrollmentAdminServiceInterface interface {
	ListEnrollments(ctx context.Context, status models.EnrollmentStatus) (*models.EnrollmentsResponse, error)
	GetEnrollment(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) (*models.Enrollment, error)
}

// RegulationServiceInterface resolves the downloadable regulation document
type RegulationServiceInterface interface {
	DocumentPath() (string, error)
}

// Ensure services implement their interfaces
var _ EnrollmentWizardServiceInterface = (*EnrollmentWizardService)(nil)
var _ EnrollmentAdminServiceInterface = (*EnrollmentAdminService)(nil)
var _ RegulationServiceInterface = (*RegulationService)(nil)
var _ enrollment.DocumentUploader = (*DocumentUploadService)(nil)
var _ enrollment.ParentAccounts = (*ParentAccountService)(nil)
