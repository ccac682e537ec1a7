package postgres

import (
	"context"
	"time"

	"github.com/nurseryhub/nursery-api/internal/models"
)

const childColumns = `id, first_name, last_name, birth_date, gender, medical_info,
	emergency_contact_name, emergency_contact_phone, created_at`

// CreateChild inserts a child and returns its id
func (c *Client) CreateChild(ctx context.Context, child models.ChildFields) (string, error) {
	birthDate, err := parseDate("birthDate", child.BirthDate)
	if err != nil {
		return "", err
	}

	start := time.Now()
	var id string
	err = c.pool.QueryRow(ctx, `
		INSERT INTO children (first_name, last_name, birth_date, gender, medical_info,
		                      emergency_contact_name, emergency_contact_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		child.FirstName,
		child.LastName,
		birthDate,
		string(child.Gender),
		nullableText(child.MedicalInfo),
		child.EmergencyContactName,
		child.EmergencyContactPhone,
	).Scan(&id)

	if err := finish(ctx, "createChild", start, err, "child"); err != nil {
		return "", err
	}
	return id, nil
}

// GetChild returns a child by id
func (c *Client) GetChild(ctx context.Context, id string) (*models.Child, error) {
	start := time.Now()
	child, err := models.ScanChild(c.pool.QueryRow(ctx,
		`SELECT `+childColumns+` FROM children WHERE id = $1`, id))

	if err := finish(ctx, "getChild", start, err, "child "+id); err != nil {
		return nil, err
	}
	return child, nil
}
