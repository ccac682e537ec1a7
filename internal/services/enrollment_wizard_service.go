package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nurseryhub/nursery-api/config"
	"github.com/nurseryhub/nursery-api/internal/cache"
	"github.com/nurseryhub/nursery-api/internal/enrollment"
	"github.com/nurseryhub/nursery-api/internal/models"
	apperrors "github.com/nurseryhub/nursery-api/pkg/errors"
	"github.com/nurseryhub/nursery-api/pkg/httpclient"
	"github.com/nurseryhub/nursery-api/pkg/logger"
	"github.com/nurseryhub/nursery-api/pkg/metrics"
	"github.com/nurseryhub/nursery-api/pkg/tracing"
	"github.com/nurseryhub/nursery-api/pkg/trigger"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RegulationDocumentRoute is where the host UI downloads the regulation text
const RegulationDocumentRoute = "/api/v1/enrollments/regulation"

// EnrollmentWizardService owns the server-side enrollment wizard sessions
type EnrollmentWizardService struct {
	sessions   *cache.WizardSessionCache
	deps       enrollment.Collaborators
	opts       enrollment.Options
	recaptcha  RecaptchaVerifier
	config     *config.Config
	httpClient httpclient.Client
}

// NewEnrollmentWizardService creates a new wizard service.
// parents may be nil when parent accounts are not created on enrollment.
func NewEnrollmentWizardService(
	sessions *cache.WizardSessionCache,
	children enrollment.ChildRecords,
	enrollments enrollment.EnrollmentRecords,
	uploader enrollment.DocumentUploader,
	parents enrollment.ParentAccounts,
	recaptcha RecaptchaVerifier,
	cfg *config.Config,
	httpClient httpclient.Client,
) *EnrollmentWizardService {
	return &EnrollmentWizardService{
		sessions: sessions,
		deps: enrollment.Collaborators{
			Children:    children,
			Enrollments: enrollments,
			Documents:   uploader,
			Parents:     parents,
		},
		opts: enrollment.Options{
			Locale:                cfg.Enrollment.Locale,
			Direction:             cfg.Enrollment.Direction,
			RegulationDocumentURL: RegulationDocumentRoute,
			CreateParentAccount:   cfg.Enrollment.CreateParentAccount,
		},
		recaptcha:  recaptcha,
		config:     cfg,
		httpClient: httpClient,
	}
}

// StartSession creates a new wizard positioned on the first step
func (s *EnrollmentWizardService) StartSession(ctx context.Context) (*models.WizardSessionResponse, error) {
	id := uuid.NewString()
	w := enrollment.NewWizard(s.deps, s.opts)
	s.sessions.Put(id, w)

	logger.Debug("Enrollment wizard session started", zap.String("session_id", id))

	view := s.view(id, w)
	return &models.WizardSessionResponse{SessionID: id, View: *view}, nil
}

// GetView returns the current step rendering
func (s *EnrollmentWizardService) GetView(ctx context.Context, sessionID string) (*models.WizardView, error) {
	w, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sessionID, w), nil
}

// UpdateFields applies every field of the request, or none of them when one is rejected
func (s *EnrollmentWizardService) UpdateFields(ctx context.Context, sessionID string, req *models.UpdateWizardFieldsRequest) (*models.WizardView, error) {
	w, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	if err := w.UpdateFields(enrollment.StepID(req.Step), req.Fields); err != nil {
		return nil, err
	}
	return s.view(sessionID, w), nil
}

// Next validates the current step and advances on success
func (s *EnrollmentWizardService) Next(ctx context.Context, sessionID string) (*models.StepTransitionResponse, error) {
	w, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	from := w.CurrentStep()
	result, err := w.Next()
	if err != nil {
		return nil, err
	}

	outcome := "advanced"
	if !result.OK {
		outcome = "blocked"
	}
	metrics.WizardStepTransitions.WithLabelValues(from.Key(), "next", outcome).Inc()

	return &models.StepTransitionResponse{StepResult: result, View: *s.view(sessionID, w)}, nil
}

// Previous moves one step back
func (s *EnrollmentWizardService) Previous(ctx context.Context, sessionID string) (*models.WizardView, error) {
	w, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	from := w.CurrentStep()
	if err := w.Previous(); err != nil {
		return nil, err
	}
	metrics.WizardStepTransitions.WithLabelValues(from.Key(), "previous", "advanced").Inc()

	return s.view(sessionID, w), nil
}

// AttachDocument validates and stores a file in its slot
func (s *EnrollmentWizardService) AttachDocument(ctx context.Context, sessionID string, documentType models.DocumentType, file *models.DocumentFile) (*models.DocumentAttachResponse, error) {
	w, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	result, err := w.AttachDocument(documentType, file)
	if err != nil {
		return nil, err
	}

	outcome := "valid"
	if !result.IsValid {
		outcome = "invalid"
	}
	metrics.DocumentValidations.WithLabelValues(string(documentType), outcome).Inc()

	return &models.DocumentAttachResponse{Validation: result, View: *s.view(sessionID, w)}, nil
}

// RemoveDocument clears a document slot
func (s *EnrollmentWizardService) RemoveDocument(ctx context.Context, sessionID string, documentType models.DocumentType) (*models.WizardView, error) {
	w, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := w.RemoveDocument(documentType); err != nil {
		return nil, err
	}
	return s.view(sessionID, w), nil
}

// ReportRegulationScroll feeds the regulation scroll position to the consent gate
func (s *EnrollmentWizardService) ReportRegulationScroll(ctx context.Context, sessionID string, req *models.RegulationScrollRequest) (*models.WizardView, error) {
	w, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := w.OnRegulationScroll(req.ScrollTop, req.ViewportHeight, req.ContentHeight); err != nil {
		return nil, err
	}
	return s.view(sessionID, w), nil
}

// AcceptRegulation records the consent checkbox
func (s *EnrollmentWizardService) AcceptRegulation(ctx context.Context, sessionID string, accepted bool) (*models.WizardView, error) {
	w, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := w.AcceptRegulation(accepted); err != nil {
		return nil, err
	}
	return s.view(sessionID, w), nil
}

// Submit verifies the captcha and runs the wizard submission
func (s *EnrollmentWizardService) Submit(ctx context.Context, sessionID string, req *models.SubmitEnrollmentRequest) (*models.SubmitResult, error) {
	w, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.recaptcha.Verify(ctx, req.RecaptchaToken); err != nil {
		metrics.EnrollmentSubmissions.WithLabelValues("captcha_failed").Inc()
		logger.Warn("ReCAPTCHA verification failed", zap.Error(err), zap.String("session_id", sessionID))
		return nil, apperrors.AccessDeniedError("captcha verification failed")
	}

	ctx, span := tracing.StartSpan(ctx, "enrollment.submit", attribute.String("enrollment.session_id", sessionID))
	defer span.End()

	start := time.Now()
	result, err := w.Submit(ctx)
	if err != nil {
		if errors.Is(err, enrollment.ErrSubmissionInFlight) {
			metrics.EnrollmentSubmissions.WithLabelValues("in_flight").Inc()
		}
		tracing.RecordError(span, err)
		return nil, err
	}

	switch {
	case !result.OK:
		metrics.EnrollmentSubmissions.WithLabelValues("failed").Inc()
		span.SetAttributes(attribute.Bool("enrollment.ok", false))
		return &result, nil
	case len(result.Warnings) > 0:
		metrics.EnrollmentSubmissions.WithLabelValues("success_with_warnings").Inc()
	default:
		metrics.EnrollmentSubmissions.WithLabelValues("success").Inc()
	}

	span.SetAttributes(
		attribute.Bool("enrollment.ok", true),
		attribute.String("enrollment.id", result.EnrollmentID),
		attribute.Int("enrollment.warnings", len(result.Warnings)),
	)
	logger.Info("Enrollment submitted",
		zap.String("enrollment_id", result.EnrollmentID),
		zap.String("child_id", result.ChildID),
		zap.Int("warnings", len(result.Warnings)),
		zap.Float64("duration", metrics.MeasureDuration(start)))

	trigger.CallAsync(s.config.EventTriggers.EnrollmentCreatedTriggerURL, trigger.Event{
		Type:       "enrollment.created",
		RecordID:   result.EnrollmentID,
		OccurredAt: time.Now().UTC(),
		Data: map[string]string{
			"childId":  result.ChildID,
			"warnings": strconv.Itoa(len(result.Warnings)),
		},
	}, s.httpClient)

	return &result, nil
}

// Abandon destroys a session and its draft
func (s *EnrollmentWizardService) Abandon(ctx context.Context, sessionID string) error {
	w, err := s.session(sessionID)
	if err != nil {
		return err
	}
	if w.Submitting() {
		return enrollment.ErrSubmissionInFlight
	}
	s.sessions.Delete(sessionID)
	logger.Debug("Enrollment wizard session abandoned", zap.String("session_id", sessionID))
	return nil
}

func (s *EnrollmentWizardService) session(id string) (*enrollment.Wizard, error) {
	w, ok := s.sessions.Get(id)
	if !ok {
		return nil, apperrors.NotFoundError("enrollment session")
	}
	return w, nil
}

func (s *EnrollmentWizardService) view(id string, w *enrollment.Wizard) *models.WizardView {
	view := w.View()
	view.SessionID = id
	return &view
}
