package model

import (
	"time"

	"github.com/google/uuid"
)

// ProjectMember links a profile to a project with a role.
type ProjectMember struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey" json:"project_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	Role      Role      `gorm:"not null;check:role IN ('VIEWER','MEMBER','ADMIN','OWNER')" json:"role"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`

	Profile Profile `gorm:"foreignKey:UserID" json:"profile"`
}
