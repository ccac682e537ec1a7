package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// EnrollmentStatus is the staff review state of an enrollment
type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "pending"
	EnrollmentApproved EnrollmentStatus = "approved"
	EnrollmentRejected EnrollmentStatus = "rejected"
)

// IsValid reports whether s is a known status
func (s EnrollmentStatus) IsValid() bool {
	return s == EnrollmentPending || s == EnrollmentApproved || s == EnrollmentRejected
}

// CanTransitionTo checks if a review decision is allowed.
// Only pending enrollments can be decided; a decision can be reopened back to pending.
func (s EnrollmentStatus) CanTransitionTo(next EnrollmentStatus) bool {
	switch s {
	case EnrollmentPending:
		return next == EnrollmentApproved || next == EnrollmentRejected
	case EnrollmentApproved, EnrollmentRejected:
		return next == EnrollmentPending
	default:
		return false
	}
}

// EnrollmentFields are the enrollment options gathered across steps 2 and 4
type EnrollmentFields struct {
	RequestedStartDate      string `json:"requestedStartDate" validate:"required,datetime=2006-01-02"`
	LunchAssistanceSelected bool   `json:"lunchAssistanceSelected"`
	RegulationAccepted      bool   `json:"regulationAccepted"`
	Notes                   string `json:"notes,omitempty" validate:"max=2000"`
}

// NewEnrollment is the payload sent to the enrollment record service
type NewEnrollment struct {
	ChildID                 string
	RequestedStartDate      string
	LunchAssistanceSelected bool
	RegulationAccepted      bool
	Notes                   string
}

// Enrollment is the persisted enrollment joined with the child's name
type Enrollment struct {
	ID                      string           `json:"id"`
	ChildID                 string           `json:"childId"`
	ChildFirstName          string           `json:"childFirstName"`
	ChildLastName           string           `json:"childLastName"`
	RequestedStartDate      time.Time        `json:"requestedStartDate"`
	LunchAssistanceSelected bool             `json:"lunchAssistanceSelected"`
	RegulationAccepted      bool             `json:"regulationAccepted"`
	Notes                   *string          `json:"notes"`
	Status                  EnrollmentStatus `json:"status"`
	StatusChangedAt         *time.Time       `json:"statusChangedAt"`
	CreatedAt               time.Time        `json:"createdAt"`
	UpdatedAt               time.Time        `json:"updatedAt"`
}

// EnrollmentDetail is the staff view of a single enrollment
type EnrollmentDetail struct {
	Enrollment Enrollment        `json:"enrollment"`
	Child      *Child            `json:"child"`
	Documents  []*StoredDocument `json:"documents"`
}

// ScanEnrollment scans a single PostgreSQL row into an Enrollment
// Expected columns: e.id, e.child_id, c.first_name, c.last_name, e.requested_start_date,
// e.lunch_assistance_selected, e.regulation_accepted, e.notes, e.status,
// e.status_changed_at, e.created_at, e.updated_at
func ScanEnrollment(row pgx.Row) (*Enrollment, error) {
	var e Enrollment
	err := row.Scan(
		&e.ID,
		&e.ChildID,
		&e.ChildFirstName,
		&e.ChildLastName,
		&e.RequestedStartDate,
		&e.LunchAssistanceSelected,
		&e.RegulationAccepted,
		&e.Notes,
		&e.Status,
		&e.StatusChangedAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ScanEnrollments scans multiple PostgreSQL rows into a slice of Enrollment structs
func ScanEnrollments(rows pgx.Rows) ([]*Enrollment, error) {
	defer rows.Close()

	enrollments := []*Enrollment{}
	for rows.Next() {
		e, err := ScanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// UpdateEnrollmentStatusRequest is the staff payload for a review decision
type UpdateEnrollmentStatusRequest struct {
	Status EnrollmentStatus `json:"status" binding:"required,oneof=pending approved rejected"`
}

// EnrollmentsResponse is the response for the staff listing
type EnrollmentsResponse struct {
	Enrollments []*Enrollment `json:"enrollments"`
	Total       int           `json:"total"`
}
