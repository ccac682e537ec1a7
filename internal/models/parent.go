package models

import "time"

// ParentFields are the step 2 identity and credential values.
// The password is capped in bytes since bcrypt rejects anything longer than 72.
type ParentFields struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=6,maxbytes=72"`
	Phone     string `json:"phone" validate:"required,max=30"`
}

// ParentAccount is a parent-role user created from an enrollment
type ParentAccount struct {
	ID           string    `json:"id"`
	ChildID      string    `json:"childId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}
