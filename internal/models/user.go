package models

import "time"

// Role is the privilege level of an account.
type Role string

// Status tells whether an account may log in.
type Status string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"

	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// User represents an account of the notes service.
type User struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username    string    `json:"username" gorm:"type:varchar(100);not null"`
	UsernameKey string    `json:"-" gorm:"uniqueIndex;type:varchar(100);not null"` // lowercased username
	Email       string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password    string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	Role        Role      `json:"role" gorm:"type:varchar(16);not null"`
	Status      Status    `json:"status" gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	return Role(r) == RoleUser || Role(r) == RoleAdmin
}
