package enrollment

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/nurseryhub/nursery-api/internal/models"
	"github.com/nurseryhub/nursery-api/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options configure a wizard at construction; nothing is read from ambient state
type Options struct {
	Locale                string
	Direction             string
	RegulationDocumentURL string
	CreateParentAccount   bool
}

// DocumentSlot holds at most one file per document type with its last validation
type DocumentSlot struct {
	File       *models.DocumentFile
	Validation models.ValidationResult
}

// Draft accumulates the wizard's form state until submission
type Draft struct {
	Child      models.ChildFields
	Parent     models.ParentFields
	Enrollment models.EnrollmentFields
	Documents  map[models.DocumentType]DocumentSlot
}

func newDraft() Draft {
	return Draft{Documents: map[models.DocumentType]DocumentSlot{}}
}

func (d Draft) clone() Draft {
	c := d
	c.Documents = make(map[models.DocumentType]DocumentSlot, len(d.Documents))
	for t, slot := range d.Documents {
		c.Documents[t] = slot
	}
	return c
}

// Wizard is the five step enrollment state machine.
// All methods are safe for concurrent use; at most one submission runs at a time
// and the draft cannot be edited while it does.
type Wizard struct {
	mu         sync.Mutex
	opts       Options
	deps       Collaborators
	steps      map[StepID]StepHandler
	step       StepID
	draft      Draft
	consent    ConsentGate
	submitting bool
}

// NewWizard creates a wizard positioned on the child info step with an empty draft
func NewWizard(deps Collaborators, opts Options) *Wizard {
	if opts.Direction == "" {
		opts.Direction = "ltr"
	}
	return &Wizard{
		opts:  opts,
		deps:  deps,
		steps: defaultSteps(),
		step:  StepChildInfo,
		draft: newDraft(),
	}
}

// CurrentStep returns the active step
func (w *Wizard) CurrentStep() StepID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Submitting reports whether a submission is in flight
func (w *Wizard) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

// Snapshot returns a copy of the draft
func (w *Wizard) Snapshot() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.clone()
}

// Next validates the current step and advances by one on success
func (w *Wizard) Next() (models.StepResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return models.StepResult{}, ErrSubmissionInFlight
	}
	if w.step == StepConfirmation {
		return models.StepResult{OK: false, Errors: []string{LastStepMessage}}, nil
	}

	if errs := w.steps[w.step].Validate(w); len(errs) > 0 {
		return models.StepResult{OK: false, Errors: errs}, nil
	}

	w.step++
	return models.StepResult{OK: true}, nil
}

// Previous moves back one step without validation; it is a no-op on the first step
func (w *Wizard) Previous() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return ErrSubmissionInFlight
	}
	if w.step > StepChildInfo {
		w.step--
	}
	return nil
}

// UpdateField sets a single field owned by the given step
func (w *Wizard) UpdateField(step StepID, field string, value interface{}) error {
	return w.UpdateFields(step, map[string]interface{}{field: value})
}

// UpdateFields sets several fields of one step. Either every value is applied
// or, when one is rejected, the draft and consent are left as they were.
func (w *Wizard) UpdateFields(step StepID, fields map[string]interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return ErrSubmissionInFlight
	}
	handler, ok := w.steps[step]
	if !ok {
		return fmt.Errorf("step %d: %w", step, ErrInvalidStep)
	}

	names := make([]string, 0, len(fields))
	for field := range fields {
		if _, ok := handler.Fields[field]; !ok {
			return fmt.Errorf("%s on step %s: %w", field, step.Key(), ErrUnknownField)
		}
		names = append(names, field)
	}
	sort.Strings(names)

	draft, consent := w.draft.clone(), w.consent
	for _, field := range names {
		if err := handler.Fields[field](w, fields[field]); err != nil {
			w.draft, w.consent = draft, consent
			return fmt.Errorf("%s: %w", field, err)
		}
	}
	return nil
}

// AttachDocument places a file in its slot, replacing any previous file and validation
func (w *Wizard) AttachDocument(documentType models.DocumentType, file *models.DocumentFile) (models.ValidationResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return models.ValidationResult{}, ErrSubmissionInFlight
	}
	if !documentType.IsValid() {
		return models.ValidationResult{}, fmt.Errorf("%s: %w", documentType, ErrUnknownDocumentType)
	}

	result := ValidateDocument(file, documentType)
	w.draft.Documents[documentType] = DocumentSlot{File: file, Validation: result}
	return result, nil
}

// RemoveDocument empties a document slot
func (w *Wizard) RemoveDocument(documentType models.DocumentType) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return ErrSubmissionInFlight
	}
	if !documentType.IsValid() {
		return fmt.Errorf("%s: %w", documentType, ErrUnknownDocumentType)
	}
	delete(w.draft.Documents, documentType)
	return nil
}

// OnRegulationScroll feeds a scroll position to the consent gate and returns the latch state
func (w *Wizard) OnRegulationScroll(scrollTop, viewportHeight, contentHeight float64) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return false, ErrSubmissionInFlight
	}
	return w.consent.OnScroll(scrollTop, viewportHeight, contentHeight), nil
}

// AcceptRegulation records the consent checkbox
func (w *Wizard) AcceptRegulation(accepted bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return ErrSubmissionInFlight
	}
	return w.acceptRegulationLocked(accepted)
}

func (w *Wizard) acceptRegulationLocked(accepted bool) error {
	if err := w.consent.Accept(accepted); err != nil {
		return err
	}
	w.draft.Enrollment.RegulationAccepted = accepted
	return nil
}

// Reset discards the draft and returns to the first step
func (w *Wizard) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.submitting {
		return ErrSubmissionInFlight
	}
	w.resetLocked()
	return nil
}

func (w *Wizard) resetLocked() {
	w.step = StepChildInfo
	w.draft = newDraft()
	w.consent.Reset()
}

// View renders the current step for the host UI
func (w *Wizard) View() models.WizardView {
	w.mu.Lock()
	defer w.mu.Unlock()

	return models.WizardView{
		Step:       int(w.step),
		StepKey:    w.step.Key(),
		TotalSteps: TotalSteps,
		Locale:     w.opts.Locale,
		Direction:  w.opts.Direction,
		CanGoBack:  w.step > StepChildInfo,
		Submitting: w.submitting,
		Section:    w.steps[w.step].View(w),
	}
}

// Submit runs the orchestrated submission from the confirmation step.
// Child then enrollment creation are fatal on failure and leave the draft intact;
// document uploads run concurrently and only produce warnings.
// The wizard lock is released while collaborators are called.
func (w *Wizard) Submit(ctx context.Context) (models.SubmitResult, error) {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return models.SubmitResult{}, ErrSubmissionInFlight
	}
	if w.step != StepConfirmation {
		w.mu.Unlock()
		return models.SubmitResult{}, ErrNotAtConfirmation
	}
	w.submitting = true
	draft := w.draft.clone()
	w.mu.Unlock()

	result := w.submit(ctx, draft)

	w.mu.Lock()
	w.submitting = false
	if result.OK {
		w.resetLocked()
	}
	w.mu.Unlock()

	return result, nil
}

func (w *Wizard) submit(ctx context.Context, draft Draft) models.SubmitResult {
	child, err := w.deps.Children.CreateChild(ctx, draft.Child)
	if err != nil {
		logger.LogError(ctx, err, "Enrollment submission failed: child creation")
		return models.SubmitResult{OK: false, Error: SubmissionFailedMessage}
	}

	enrollment, err := w.deps.Enrollments.CreateEnrollment(ctx, models.NewEnrollment{
		ChildID:                 child.ID,
		RequestedStartDate:      draft.Enrollment.RequestedStartDate,
		LunchAssistanceSelected: draft.Enrollment.LunchAssistanceSelected,
		RegulationAccepted:      draft.Enrollment.RegulationAccepted,
		Notes:                   draft.Enrollment.Notes,
	})
	if err != nil {
		// The child record is left in place; there is no compensating delete.
		logger.LogError(ctx, err, "Enrollment submission failed: enrollment creation",
			zap.String("orphan_child_id", child.ID))
		return models.SubmitResult{OK: false, Error: SubmissionFailedMessage}
	}

	result := models.SubmitResult{
		OK:           true,
		ChildID:      child.ID,
		EnrollmentID: enrollment.ID,
	}

	if warning := w.createParentAccount(ctx, draft.Parent, child.ID); warning != "" {
		result.Warnings = append(result.Warnings, warning)
	}

	result.Warnings = append(result.Warnings, w.uploadDocuments(ctx, draft.Documents, child.ID)...)
	return result
}

func (w *Wizard) createParentAccount(ctx context.Context, parent models.ParentFields, childID string) string {
	if !w.opts.CreateParentAccount || w.deps.Parents == nil {
		logger.Debug("Parent account creation not configured, skipping",
			zap.String("child_id", childID))
		return ""
	}
	if _, err := w.deps.Parents.CreateParentAccount(ctx, parent, childID); err != nil {
		logger.LogError(ctx, err, "Failed to create parent account", zap.String("child_id", childID))
		return "the parent account could not be created, please contact the nursery"
	}
	return ""
}

// uploadDocuments fires every upload at once and waits for all of them.
// Warnings keep the slot order regardless of completion order.
func (w *Wizard) uploadDocuments(ctx context.Context, docs map[models.DocumentType]DocumentSlot, ownerID string) []string {
	warnings := make([]string, len(models.AllDocumentTypes))

	var g errgroup.Group
	for i, documentType := range models.AllDocumentTypes {
		slot, ok := docs[documentType]
		if !ok || slot.File == nil {
			continue
		}
		if !slot.Validation.IsValid {
			warnings[i] = fmt.Sprintf("%s was not uploaded because it failed validation", documentType.Label())
			continue
		}

		file := *slot.File
		g.Go(func() error {
			if _, err := w.deps.Documents.UploadDocument(ctx, file, documentType, ownerID); err != nil {
				logger.LogError(ctx, err, "Failed to upload enrollment document",
					zap.String("document_type", string(documentType)),
					zap.String("owner_id", ownerID))
				warnings[i] = fmt.Sprintf("%s could not be uploaded", documentType.Label())
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // upload failures are reported as warnings

	out := []string{}
	for _, warning := range warnings {
		if warning != "" {
			out = append(out, warning)
		}
	}
	return out
}
