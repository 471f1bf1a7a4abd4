package model

import "time"

// User represents an application user record as stored in the
// `users` table.  A user carries an integer points balance that is
// debited when a photo session is created and credited by the
// bank-transfer webhook.  The PaymentCode is assigned exactly once
// at registration and is used to correlate incoming transfers with
// the account; it is never regenerated.
//
// Fields:
//  ID           – UUID primary key of the user.
//  Email        – unique email address (stored lowercase).
//  Name         – display name.
//  PasswordHash – bcrypt hashed password.
//  RoleID       – foreign key into the roles table (nullable).
//  RoleName     – resolved role name when the row was loaded with a join.
//  Points       – integer points balance; never negative after a debit.
//  PaymentCode  – unique 8-char lowercase alphanumeric transfer code.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	RoleID       *string   `json:"roleId,omitempty"`
	RoleName     string    `json:"role,omitempty"`
	Points       int64     `json:"points"`
	PaymentCode  *string   `json:"paymentCode,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Role names form a fixed enumeration.  The roles table is seeded at
// startup when it is empty.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Role represents a row in the `roles` table.
//
// Fields:
//  ID          – UUID identifier of the role.
//  Name        – unique role name (ADMIN or USER).
//  Description – human readable description.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
