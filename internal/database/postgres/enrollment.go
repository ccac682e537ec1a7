package postgres

import (
	"context"
	"time"

	"github.com/nurseryhub/nursery-api/internal/models"
	apperrors "github.com/nurseryhub/nursery-api/pkg/errors"
)

const enrollmentSelect = `
	SELECT e.id, e.child_id, c.first_name, c.last_name, e.requested_start_date,
	       e.lunch_assistance_selected, e.regulation_accepted, e.notes, e.status,
	       e.status_changed_at, e.created_at, e.updated_at
	FROM enrollments e
	JOIN children c ON c.id = e.child_id
`

// CreateEnrollment inserts a pending enrollment for an existing child
func (c *Client) CreateEnrollment(ctx context.Context, e models.NewEnrollment) (string, error) {
	startDate, err := parseDate("requestedStartDate", e.RequestedStartDate)
	if err != nil {
		return "", err
	}

	start := time.Now()
	var id string
	err = c.pool.QueryRow(ctx, `
		INSERT INTO enrollments (child_id, requested_start_date, lunch_assistance_selected,
		                         regulation_accepted, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		e.ChildID,
		startDate,
		e.LunchAssistanceSelected,
		e.RegulationAccepted,
		nullableText(e.Notes),
	).Scan(&id)

	if err := finish(ctx, "createEnrollment", start, err, "enrollment"); err != nil {
		return "", err
	}
	return id, nil
}

// GetEnrollment returns an enrollment joined with its child's name
func (c *Client) GetEnrollment(ctx context.Context, id string) (*models.Enrollment, error) {
	start := time.Now()
	e, err := models.ScanEnrollment(c.pool.QueryRow(ctx, enrollmentSelect+` WHERE e.id = $1`, id))

	if err := finish(ctx, "getEnrollment", start, err, "enrollment "+id); err != nil {
		return nil, err
	}
	return e, nil
}

// ListEnrollments returns enrollments newest first; an empty status returns all of them
func (c *Client) ListEnrollments(ctx context.Context, status models.EnrollmentStatus) ([]*models.Enrollment, error) {
	start := time.Now()

	query := enrollmentSelect + ` WHERE ($1 = '' OR e.status = $1) ORDER BY e.created_at DESC`
	rows, err := c.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, finish(ctx, "listEnrollments", start, err, "enrollments")
	}

	enrollments, err := models.ScanEnrollments(rows)
	if err := finish(ctx, "listEnrollments", start, err, "enrollments"); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// UpdateEnrollmentStatus records a staff review decision
func (c *Client) UpdateEnrollmentStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	start := time.Now()

	result, err := c.pool.Exec(ctx, `
		UPDATE enrollments
		SET status = $1, status_changed_at = NOW(), updated_at = NOW()
		WHERE id = $2
	`, string(status), id)
	if err != nil {
		return finish(ctx, "updateEnrollmentStatus", start, err, "enrollment "+id)
	}
	if result.RowsAffected() == 0 {
		recordMetrics("updateEnrollmentStatus", "not_found", time.Since(start).Seconds())
		return apperrors.NotFoundError("enrollment " + id)
	}
	return finish(ctx, "updateEnrollmentStatus", start, nil, "")
}
