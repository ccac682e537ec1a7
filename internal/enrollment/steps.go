package enrollment

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nurseryhub/nursery-api/internal/models"
)

// StepID identifies a wizard step
type StepID int

const (
	StepChildInfo StepID = iota + 1
	StepParentInfo
	StepDocuments
	StepRegulation
	StepConfirmation
)

// TotalSteps is the number of wizard steps
const TotalSteps = int(StepConfirmation)

// Key returns the stable name of a step used by the host UI
func (s StepID) Key() string {
	switch s {
	case StepChildInfo:
		return "child_info"
	case StepParentInfo:
		return "parent_info"
	case StepDocuments:
		return "documents"
	case StepRegulation:
		return "regulation"
	case StepConfirmation:
		return "confirmation"
	default:
		return "unknown"
	}
}

// IsValid reports whether s is one of the five steps
func (s StepID) IsValid() bool {
	return s >= StepChildInfo && s <= StepConfirmation
}

type fieldSetter func(w *Wizard, value interface{}) error

// StepHandler holds everything step specific: which fields it owns,
// how it gates the next transition and what it renders.
type StepHandler struct {
	Fields   map[string]fieldSetter
	Validate func(w *Wizard) []string
	View     func(w *Wizard) interface{}
}

func defaultSteps() map[StepID]StepHandler {
	return map[StepID]StepHandler{
		StepChildInfo: {
			Fields: map[string]fieldSetter{
				"firstName":             stringField(func(d *Draft) *string { return &d.Child.FirstName }),
				"lastName":              stringField(func(d *Draft) *string { return &d.Child.LastName }),
				"birthDate":             stringField(func(d *Draft) *string { return &d.Child.BirthDate }),
				"gender":                genderField,
				"medicalInfo":           stringField(func(d *Draft) *string { return &d.Child.MedicalInfo }),
				"emergencyContactName":  stringField(func(d *Draft) *string { return &d.Child.EmergencyContactName }),
				"emergencyContactPhone": stringField(func(d *Draft) *string { return &d.Child.EmergencyContactPhone }),
			},
			Validate: func(w *Wizard) []string {
				return validateStruct(w.draft.Child)
			},
			View: func(w *Wizard) interface{} {
				return w.draft.Child
			},
		},
		StepParentInfo: {
			Fields: map[string]fieldSetter{
				"firstName":               stringField(func(d *Draft) *string { return &d.Parent.FirstName }),
				"lastName":                stringField(func(d *Draft) *string { return &d.Parent.LastName }),
				"email":                   stringField(func(d *Draft) *string { return &d.Parent.Email }),
				"password":                passwordField,
				"phone":                   stringField(func(d *Draft) *string { return &d.Parent.Phone }),
				"requestedStartDate":      stringField(func(d *Draft) *string { return &d.Enrollment.RequestedStartDate }),
				"lunchAssistanceSelected": lunchAssistanceField,
				"notes":                   stringField(func(d *Draft) *string { return &d.Enrollment.Notes }),
			},
			Validate: func(w *Wizard) []string {
				errs := validateStruct(w.draft.Parent)
				return append(errs, validateStruct(w.draft.Enrollment)...)
			},
			View: func(w *Wizard) interface{} {
				return parentView(w.draft)
			},
		},
		StepDocuments: {
			// Documents are attached through AttachDocument and never block the transition
			Fields: map[string]fieldSetter{},
			Validate: func(w *Wizard) []string {
				return nil
			},
			View: func(w *Wizard) interface{} {
				return models.DocumentsStepView{Slots: documentSlots(w.draft)}
			},
		},
		StepRegulation: {
			Fields: map[string]fieldSetter{
				"regulationAccepted": regulationField,
			},
			Validate: func(w *Wizard) []string {
				if !w.consent.CanAdvance() {
					return []string{RegulationBlockedMessage}
				}
				return nil
			},
			View: func(w *Wizard) interface{} {
				return models.RegulationStepView{
					ScrolledToEnd: w.consent.ScrolledToEnd(),
					CanAccept:     w.consent.CanAccept(),
					Accepted:      w.consent.Accepted(),
					DocumentURL:   w.opts.RegulationDocumentURL,
				}
			},
		},
		StepConfirmation: {
			Fields: map[string]fieldSetter{},
			Validate: func(w *Wizard) []string {
				return nil
			},
			View: func(w *Wizard) interface{} {
				return models.ConfirmationStepView{
					Child:      w.draft.Child,
					Parent:     parentView(w.draft),
					Enrollment: w.draft.Enrollment,
					Documents:  documentSlots(w.draft),
				}
			},
		},
	}
}

func stringField(target func(d *Draft) *string) fieldSetter {
	return func(w *Wizard, value interface{}) error {
		s, err := asString(value)
		if err != nil {
			return err
		}
		*target(&w.draft) = strings.TrimSpace(s)
		return nil
	}
}

func genderField(w *Wizard, value interface{}) error {
	s, err := asString(value)
	if err != nil {
		return err
	}
	w.draft.Child.Gender = models.Gender(strings.ToLower(strings.TrimSpace(s)))
	return nil
}

// passwordField keeps the value verbatim; leading or trailing spaces are part of a password
func passwordField(w *Wizard, value interface{}) error {
	s, err := asString(value)
	if err != nil {
		return err
	}
	w.draft.Parent.Password = s
	return nil
}

func lunchAssistanceField(w *Wizard, value interface{}) error {
	b, err := asBool(value)
	if err != nil {
		return err
	}
	w.draft.Enrollment.LunchAssistanceSelected = b
	return nil
}

func regulationField(w *Wizard, value interface{}) error {
	b, err := asBool(value)
	if err != nil {
		return err
	}
	return w.acceptRegulationLocked(b)
}

func asString(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("expected text, got %T: %w", value, ErrInvalidFieldValue)
	}
}

func asBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("expected true or false, got %q: %w", v, ErrInvalidFieldValue)
		}
		return b, nil
	default:
		return false, fmt.Errorf("expected true or false, got %T: %w", value, ErrInvalidFieldValue)
	}
}

func parentView(d Draft) models.ParentStepView {
	return models.ParentStepView{
		FirstName:               d.Parent.FirstName,
		LastName:                d.Parent.LastName,
		Email:                   d.Parent.Email,
		PasswordSet:             d.Parent.Password != "",
		Phone:                   d.Parent.Phone,
		RequestedStartDate:      d.Enrollment.RequestedStartDate,
		LunchAssistanceSelected: d.Enrollment.LunchAssistanceSelected,
	}
}

func documentSlots(d Draft) []models.DocumentSlotView {
	slots := make([]models.DocumentSlotView, 0, len(models.AllDocumentTypes))
	for _, t := range models.AllDocumentTypes {
		view := models.DocumentSlotView{
			DocumentType: t,
			Label:        t.Label(),
			Required:     t.Required(),
		}
		if slot, ok := d.Documents[t]; ok {
			view.File = slot.File
			result := slot.Validation
			view.Validation = &result
		}
		slots = append(slots, view)
	}
	return slots
}

var fieldValidator = newFieldValidator()

func newFieldValidator() *validator.Validate {
	v := validator.New()
	// Report json names so messages match what the host UI sends
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("maxbytes", maxBytes)
	return v
}

// maxBytes limits the encoded length of a string, not its rune count
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func validateStruct(s interface{}) []string {
	err := fieldValidator.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msgs = append(msgs, fieldMessage(fe))
	}
	return msgs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must not exceed " + fe.Param() + " characters"
	case "maxbytes":
		return fe.Field() + " must not exceed " + fe.Param() + " bytes"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "datetime":
		return fe.Field() + " must be a date in YYYY-MM-DD format"
	default:
		return fe.Field() + " is invalid"
	}
}
