package enrollment

import (
	"context"

	"github.com/nurseryhub/nursery-api/internal/models"
)

// ChildRecords creates child entities
type ChildRecords interface {
	CreateChild(ctx context.Context, child models.ChildFields) (models.CreatedRecord, error)
}

// EnrollmentRecords creates enrollment entities linked to a child
type EnrollmentRecords interface {
	CreateEnrollment(ctx context.Context, enrollment models.NewEnrollment) (models.CreatedRecord, error)
}

// DocumentUploader stores a validated document for its owning child
type DocumentUploader interface {
	UploadDocument(ctx context.Context, file models.DocumentFile, documentType models.DocumentType, ownerID string) (*models.StoredDocument, error)
}

// ParentAccounts creates a parent-role account from the step 2 credentials
type ParentAccounts interface {
	CreateParentAccount(ctx context.Context, parent models.ParentFields, childID string) (models.CreatedRecord, error)
}

// Collaborators are the external services used by the submission.
// Parents may be nil; it is only called when Options.CreateParentAccount is set.
type Collaborators struct {
	Children    ChildRecords
	Enrollments EnrollmentRecords
	Documents   DocumentUploader
	Parents     ParentAccounts
}
