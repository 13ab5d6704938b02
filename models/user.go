package models

import (
	"time"
)

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// User is the local mirror of an identity-provider account.
// Rows are upserted on first sign-in (and refreshed by the profile sync
// worker); this service never authenticates users itself.
type User struct {
	ID    string `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"not null"`
	Email string `json:"email" gorm:"uniqueIndex;not null"`
	Image string `json:"image,omitempty"`
	Role  string `json:"role" gorm:"default:'user'"` // admin | moderator | user

	// Profile fields filled in by the user after first sign-in
	RollNo  string `json:"roll_no,omitempty"`
	Branch  string `json:"branch,omitempty"`
	PhoneNo string `json:"phone_no,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleModerator || role == RoleUser
}
