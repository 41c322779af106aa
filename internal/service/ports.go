package service

import (
	"context"
	"io"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/google/uuid"
)

type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListForUser(ctx context.Context, userID uuid.UUID, withAssignees bool, limit int) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddAssignees(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error
	RemoveAssignee(ctx context.Context, taskID, userID uuid.UUID) error
}

type ProjectStore interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	SetCover(ctx context.Context, id uuid.UUID, url string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID, withMembers bool, limit int) ([]model.Project, error)
	CountForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type MemberStore interface {
	Add(ctx context.Context, member *model.ProjectMember) error
	GetRole(ctx context.Context, projectID, userID uuid.UUID) (model.Role, error)
	UpdateRole(ctx context.Context, projectID, userID uuid.UUID, role model.Role) error
	Remove(ctx context.Context, projectID, userID uuid.UUID) error
	ListProfiles(ctx context.Context, projectID uuid.UUID) ([]repository.MemberProfile, error)
}

// CoverStore keeps uploaded project covers.
type CoverStore interface {
	SaveProjectCover(ctx context.Context, projectID uuid.UUID, r io.Reader) (string, error)
	RemoveProject(ctx context.Context, projectID uuid.UUID) error
}

// Invalidator is told which users' dashboards went stale.
type Invalidator interface {
	InvalidateDashboard(userIDs ...uuid.UUID)
}

type MarkdownRenderer interface {
	Render(src string) (string, error)
}

type Clock func() time.Time

var (
	_ TaskStore    = (*repository.TaskRepository)(nil)
	_ ProjectStore = (*repository.ProjectRepository)(nil)
	_ MemberStore  = (*repository.MemberRepository)(nil)
)
