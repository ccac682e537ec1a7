package models

import (
	"time"

	"github.com/jackc/pgx/v5"
)

// Gender of a child as recorded on enrollment
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ChildFields are the step 1 values of the enrollment wizard
type ChildFields struct {
	FirstName             string `json:"firstName" validate:"required,max=100"`
	LastName              string `json:"lastName" validate:"required,max=100"`
	BirthDate             string `json:"birthDate" validate:"required,datetime=2006-01-02"`
	Gender                Gender `json:"gender" validate:"required,oneof=male female"`
	MedicalInfo           string `json:"medicalInfo,omitempty" validate:"max=2000"`
	EmergencyContactName  string `json:"emergencyContactName" validate:"required,max=200"`
	EmergencyContactPhone string `json:"emergencyContactPhone" validate:"required,max=30"`
}

// CreatedRecord is the identifier returned by a record service after creation
type CreatedRecord struct {
	ID string `json:"id"`
}

// Child is the persisted child record
type Child struct {
	ID                    string    `json:"id"`
	FirstName             string    `json:"firstName"`
	LastName              string    `json:"lastName"`
	BirthDate             time.Time `json:"birthDate"`
	Gender                Gender    `json:"gender"`
	MedicalInfo           *string   `json:"medicalInfo"`
	EmergencyContactName  string    `json:"emergencyContactName"`
	EmergencyContactPhone string    `json:"emergencyContactPhone"`
	CreatedAt             time.Time `json:"createdAt"`
}

// ScanChild scans a single PostgreSQL row into a Child
// Expected columns: id, first_name, last_name, birth_date, gender, medical_info,
// emergency_contact_name, emergency_contact_phone, created_at
func ScanChild(row pgx.Row) (*Child, error) {
	var c Child
	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.BirthDate,
		&c.Gender,
		&c.MedicalInfo,
		&c.EmergencyContactName,
		&c.EmergencyContactPhone,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
