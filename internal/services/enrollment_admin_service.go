package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nurseryhub/nursery-api/config"
	"github.com/nurseryhub/nursery-api/internal/models"
	apperrors "github.com/nurseryhub/nursery-api/pkg/errors"
	"github.com/nurseryhub/nursery-api/pkg/httpclient"
	"github.com/nurseryhub/nursery-api/pkg/logger"
	"github.com/nurseryhub/nursery-api/pkg/metrics"
	"github.com/nurseryhub/nursery-api/pkg/trigger"
	"go.uber.org/zap"
)

// EnrollmentAdminService lets staff review submitted enrollments
type EnrollmentAdminService struct {
	enrollments EnrollmentReviewRepository
	children    ChildReader
	documents   DocumentRecordRepository
	storage     DocumentStorage
	config      *config.Config
	httpClient  httpclient.Client
}

// NewEnrollmentAdminService creates a new enrollment admin service.
// storage may be nil in offline mode; document links are then returned as stored.
func NewEnrollmentAdminService(
	enrollments EnrollmentReviewRepository,
	children ChildReader,
	documents DocumentRecordRepository,
	storage DocumentStorage,
	cfg *config.Config,
	httpClient httpclient.Client,
) *EnrollmentAdminService {
	return &EnrollmentAdminService{
		enrollments: enrollments,
		children:    children,
		documents:   documents,
		storage:     storage,
		config:      cfg,
		httpClient:  httpClient,
	}
}

// ListEnrollments lists enrollments, optionally filtered by status
func (s *EnrollmentAdminService) ListEnrollments(ctx context.Context, status models.EnrollmentStatus) (*models.EnrollmentsResponse, error) {
	if status != "" && !status.IsValid() {
		return nil, apperrors.InvalidInputError("status", fmt.Sprintf("unknown status %q", status))
	}

	enrollments, err := s.enrollments.List(ctx, status)
	if err != nil {
		return nil, err
	}

	return &models.EnrollmentsResponse{
		Enrollments: enrollments,
		Total:       len(enrollments),
	}, nil
}

// GetEnrollment returns an enrollment with its child and documents
func (s *EnrollmentAdminService) GetEnrollment(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	e, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	child, err := s.children.GetByID(ctx, e.ChildID)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents.ListByOwner(ctx, e.ChildID)
	if err != nil {
		return nil, err
	}

	if s.storage != nil {
		ttl := time.Duration(s.config.Storage.PresignTTLMins) * time.Minute
		for _, doc := range docs {
			signed, signErr := s.storage.PresignDownload(ctx, doc.StorageKey, ttl)
			if signErr != nil {
				logger.Warn("Failed to presign document link",
					zap.Error(signErr),
					zap.String("document_id", doc.DocumentID))
				continue
			}
			doc.URL = signed
		}
	}

	return &models.EnrollmentDetail{
		Enrollment: *e,
		Child:      child,
		Documents:  docs,
	}, nil
}

// UpdateStatus records a review decision and notifies the status-changed trigger
func (s *EnrollmentAdminService) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) (*models.Enrollment, error) {
	current, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !current.Status.CanTransitionTo(status) {
		return nil, apperrors.ConflictError(fmt.Sprintf("cannot change enrollment from %s to %s", current.Status, status))
	}

	if err := s.enrollments.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	metrics.EnrollmentStatusChanges.WithLabelValues(string(status)).Inc()
	logger.Info("Enrollment status changed",
		zap.String("enrollment_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(status)))

	trigger.CallAsync(s.config.EventTriggers.EnrollmentStatusChangedTriggerURL, trigger.Event{
		Type:       "enrollment.status_changed",
		RecordID:   id,
		OccurredAt: time.Now().UTC(),
		Data: map[string]string{
			"from": string(current.Status),
			"to":   string(status),
		},
	}, s.httpClient)

	return s.enrollments.GetByID(ctx, id)
}
