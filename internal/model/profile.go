package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the public face of an authenticated identity.
type Profile struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Username       *string   `json:"username"`
	AvatarURL      *string   `json:"avatar_url"`
	HashedPassword string    `gorm:"not null" json:"-"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"-"`
}
