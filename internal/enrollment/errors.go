package enrollment

import (
	"fmt"

	apperrors "github.com/nurseryhub/nursery-api/pkg/errors"
)

// User-facing messages
const (
	RegulationBlockedMessage = "you must read and accept the regulation before continuing."
	SubmissionFailedMessage  = "error during enrollment, please try again"
	LastStepMessage          = "already at the confirmation step"
)

var (
	// ErrSubmissionInFlight is returned when a wizard is touched while its submission is pending
	ErrSubmissionInFlight = fmt.Errorf("enrollment submission already in progress: %w", apperrors.ErrConflict)

	// ErrNotAtConfirmation is returned when submit is called before the confirmation step
	ErrNotAtConfirmation = fmt.Errorf("enrollment can only be submitted from the confirmation step: %w", apperrors.ErrConflict)

	// ErrRegulationNotRead is returned when consent is given before the regulation was scrolled to its end
	ErrRegulationNotRead = fmt.Errorf("regulation must be scrolled to the end before it can be accepted: %w", apperrors.ErrInvalidInput)

	ErrInvalidStep         = fmt.Errorf("invalid wizard step: %w", apperrors.ErrInvalidInput)
	ErrUnknownField        = fmt.Errorf("unknown field: %w", apperrors.ErrInvalidInput)
	ErrInvalidFieldValue   = fmt.Errorf("invalid field value: %w", apperrors.ErrInvalidInput)
	ErrUnknownDocumentType = fmt.Errorf("unknown document type: %w", apperrors.ErrInvalidInput)
)
