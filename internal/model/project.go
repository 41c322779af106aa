package model

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Description  *string   `json:"description"`
	ProjectCover *string   `json:"project_cover"`
	CreatorID    uuid.UUID `gorm:"type:uuid;not null;index" json:"creator_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Creator Profile         `gorm:"foreignKey:CreatorID" json:"-"`
	Members []ProjectMember `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}
