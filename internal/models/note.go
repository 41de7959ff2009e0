package models

import "time"

// Note is a text note owned by exactly one user.
type Note struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title     string    `json:"title,omitempty" gorm:"type:varchar(255)"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	OwnerID   string    `json:"ownerId" gorm:"index;type:varchar(36);not null"` // immutable after creation
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LatestActivity returns the later of CreatedAt and UpdatedAt.
func (n *Note) LatestActivity() time.Time {
	if n.UpdatedAt.After(n.CreatedAt) {
		return n.UpdatedAt
	}
	return n.CreatedAt
}
