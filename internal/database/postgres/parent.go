package postgres

import (
	"context"
	"time"

	"github.com/nurseryhub/nursery-api/internal/models"
)

// CreateParentAccount inserts a parent account; a duplicate email is reported as a conflict
func (c *Client) CreateParentAccount(ctx context.Context, account *models.ParentAccount) (string, error) {
	start := time.Now()
	var id string
	err := c.pool.QueryRow(ctx, `
		INSERT INTO parent_accounts (child_id, first_name, last_name, email, phone, password_hash, role)
		VALUES ($1, $2, $3, LOWER($4), $5, $6, $7)
		RETURNING id
	`,
		account.ChildID,
		account.FirstName,
		account.LastName,
		account.Email,
		account.Phone,
		account.PasswordHash,
		account.Role,
	).Scan(&id)

	if err := finish(ctx, "createParentAccount", start, err, "parent account "+account.Email); err != nil {
		return "", err
	}
	return id, nil
}
