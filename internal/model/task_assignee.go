package model

import (
	"time"

	"github.com/google/uuid"
)

// TaskAssignee is the junction row between tasks and profiles.
type TaskAssignee struct {
	TaskID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"task_id"`
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`
}
