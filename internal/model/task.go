package model

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title           string     `gorm:"not null" json:"title"`
	MarkdownContent *string    `json:"markdown_content"`
	IsPrivate       bool       `gorm:"not null;default:true" json:"is_private"`
	Priority        Priority   `gorm:"not null" json:"priority"`
	Status          Status     `gorm:"not null;index" json:"status"`
	ProjectID       *uuid.UUID `gorm:"type:uuid;index" json:"project_id"`
	ProjectName     *string    `json:"project_name"`
	DueDate         *time.Time `gorm:"type:date" json:"due_date"`
	EndDate         *time.Time `gorm:"type:date" json:"end_date"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatorID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"creator_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Assignees []Profile `gorm:"many2many:task_assignees;joinForeignKey:TaskID;joinReferences:UserID" json:"assignees,omitempty"`
}

// SetStatus changes the status and keeps CompletedAt in step with it.
func (t *Task) SetStatus(s Status, now time.Time) {
	if s == StatusCompleted && t.Status != StatusCompleted {
		t.CompletedAt = &now
	}
	if s != StatusCompleted {
		t.CompletedAt = nil
	}
	t.Status = s
}
