package models

// UpdateWizardFieldsRequest sets one or more fields belonging to a wizard step
type UpdateWizardFieldsRequest struct {
	Step   int                    `json:"step" binding:"required,min=1,max=5"`
	Fields map[string]interface{} `json:"fields" binding:"required,min=1,max=20"`
}

// RegulationScrollRequest reports the scroll position of the regulation text
type RegulationScrollRequest struct {
	ScrollTop      float64 `json:"scrollTop" binding:"min=0"`
	ViewportHeight float64 `json:"viewportHeight" binding:"required,gt=0"`
	ContentHeight  float64 `json:"contentHeight" binding:"required,gt=0"`
}

// AcceptRegulationRequest toggles the regulation consent checkbox
type AcceptRegulationRequest struct {
	Accepted *bool `json:"accepted" binding:"required"`
}

// SubmitEnrollmentRequest triggers the final submission from the confirmation step
type SubmitEnrollmentRequest struct {
	RecaptchaToken string `json:"recaptchaToken" binding:"omitempty,min=20"`
}

// StepResult is the outcome of a next() transition
type StepResult struct {
	OK     bool     `json:"ok"`
	Errors []string `json:"errors,omitempty"`
}

// SubmitResult is the outcome of the orchestrated submission
type SubmitResult struct {
	OK           bool     `json:"ok"`
	Warnings     []string `json:"warnings,omitempty"`
	Error        string   `json:"error,omitempty"`
	ChildID      string   `json:"childId,omitempty"`
	EnrollmentID string   `json:"enrollmentId,omitempty"`
}

// WizardView is the render contract handed to the host UI for the current step
type WizardView struct {
	SessionID  string      `json:"sessionId,omitempty"`
	Step       int         `json:"step"`
	StepKey    string      `json:"stepKey"`
	TotalSteps int         `json:"totalSteps"`
	Locale     string      `json:"locale"`
	Direction  string      `json:"direction"`
	CanGoBack  bool        `json:"canGoBack"`
	Submitting bool        `json:"submitting"`
	Section    interface{} `json:"section"`
}

// ParentStepView is the step 2 section; the password is never echoed back
type ParentStepView struct {
	FirstName               string `json:"firstName"`
	LastName                string `json:"lastName"`
	Email                   string `json:"email"`
	PasswordSet             bool   `json:"passwordSet"`
	Phone                   string `json:"phone"`
	RequestedStartDate      string `json:"requestedStartDate"`
	LunchAssistanceSelected bool   `json:"lunchAssistanceSelected"`
}

// DocumentSlotView describes one document slot on step 3
type DocumentSlotView struct {
	DocumentType DocumentType      `json:"documentType"`
	Label        string            `json:"label"`
	Required     bool              `json:"required"`
	File         *DocumentFile     `json:"file"`
	Validation   *ValidationResult `json:"validation"`
}

// DocumentsStepView is the step 3 section
type DocumentsStepView struct {
	Slots []DocumentSlotView `json:"slots"`
}

// RegulationStepView is the step 4 section
type RegulationStepView struct {
	ScrolledToEnd bool   `json:"scrolledToEnd"`
	CanAccept     bool   `json:"canAccept"`
	Accepted      bool   `json:"accepted"`
	DocumentURL   string `json:"documentUrl"`
}

// ConfirmationStepView is the step 5 review of everything collected
type ConfirmationStepView struct {
	Child      ChildFields        `json:"child"`
	Parent     ParentStepView     `json:"parent"`
	Enrollment EnrollmentFields   `json:"enrollment"`
	Documents  []DocumentSlotView `json:"documents"`
}

// WizardSessionResponse is returned when a wizard session is started
type WizardSessionResponse struct {
	SessionID string     `json:"sessionId"`
	View      WizardView `json:"view"`
}

// DocumentAttachResponse is returned after a file is attached to a slot
type DocumentAttachResponse struct {
	Validation ValidationResult `json:"validation"`
	View       WizardView       `json:"view"`
}

// StepTransitionResponse wraps a next/previous outcome with the refreshed view
type StepTransitionResponse struct {
	StepResult
	View WizardView `json:"view"`
}
