package service

import (
	"context"
	"log"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultTaskLimit = 20

// ReadResult is the shape of every read: data, or a null payload and an error.
type ReadResult[T any] struct {
	Data  T       `json:"data"`
	Error *string `json:"error"`
}

func readOK[T any](data T) ReadResult[T] {
	return ReadResult[T]{Data: data}
}

func readFailed[T any](message string) ReadResult[T] {
	var zero T
	return ReadResult[T]{Data: zero, Error: &message}
}

// TaskView is a task as returned to readers, with rendered markdown.
type TaskView struct {
	model.Task
	ContentHTML string `json:"content_html,omitempty"`
}

type QueryService struct {
	projects ProjectStore
	tasks    TaskStore
	members  MemberStore
	markdown MarkdownRenderer
	now      Clock
}

func NewQueryService(projects ProjectStore, tasks TaskStore, members MemberStore, md MarkdownRenderer) *QueryService {
	return &QueryService{
		projects: projects,
		tasks:    tasks,
		members:  members,
		markdown: md,
		now:      time.Now,
	}
}

func (s *QueryService) WithClock(now Clock) *QueryService {
	s.now = now
	return s
}

// Projects lists the projects where the user is more than a viewer.
func (s *QueryService) Projects(ctx context.Context, userID uuid.UUID, withMembers bool) ReadResult[[]model.Project] {
	projects, err := s.projects.ListForUser(ctx, userID, withMembers, 0)
	if err != nil {
		log.Printf("❌ Error fetching projects: %v", err)
		return readFailed[[]model.Project]("Failed to fetch projects")
	}
	if projects == nil {
		projects = []model.Project{}
	}
	return readOK(projects)
}

// RecentTasks lists the newest tasks visible to the user with their assignees.
func (s *QueryService) RecentTasks(ctx context.Context, userID uuid.UUID, limit int) ReadResult[[]TaskView] {
	if limit <= 0 {
		limit = defaultTaskLimit
	}
	tasks, err := s.tasks.ListForUser(ctx, userID, true, limit)
	if err != nil {
		log.Printf("❌ Error fetching tasks: %v", err)
		return readFailed[[]TaskView]("Failed to fetch tasks")
	}

	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, s.view(t))
	}
	return readOK(views)
}

func (s *QueryService) view(t model.Task) TaskView {
	v := TaskView{Task: t}
	if t.MarkdownContent != nil && s.markdown != nil {
		html, err := s.markdown.Render(*t.MarkdownContent)
		if err != nil {
			log.Printf("⚠️  Failed to render markdown of task %s: %v", t.ID, err)
		}
		v.ContentHTML = html
	}
	return v
}

// Task returns one task the user may see.
func (s *QueryService) Task(ctx context.Context, userID, taskID uuid.UUID) ReadResult[*TaskView] {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return readFailed[*TaskView]("Task not found")
	}
	if !s.canSee(ctx, userID, task) {
		return readFailed[*TaskView]("Task not found")
	}
	v := s.view(*task)
	return readOK(&v)
}

func (s *QueryService) canSee(ctx context.Context, userID uuid.UUID, t *model.Task) bool {
	if t.CreatorID == userID {
		return true
	}
	for _, a := range t.Assignees {
		if a.ID == userID {
			return true
		}
	}
	if t.IsPrivate || t.ProjectID == nil {
		return false
	}
	role, err := s.members.GetRole(ctx, *t.ProjectID, userID)
	return err == nil && role != ""
}

// ProjectMembers lists the member profiles of a project the user belongs to.
func (s *QueryService) ProjectMembers(ctx context.Context, userID, projectID uuid.UUID) ReadResult[[]repository.MemberProfile] {
	role, err := s.members.GetRole(ctx, projectID, userID)
	if err != nil {
		log.Printf("❌ Error checking membership: %v", err)
		return readFailed[[]repository.MemberProfile]("Failed to fetch project members")
	}
	if role == "" {
		return readFailed[[]repository.MemberProfile]("Project not found")
	}

	members, err := s.members.ListProfiles(ctx, projectID)
	if err != nil {
		log.Printf("❌ Error fetching project members: %v", err)
		return readFailed[[]repository.MemberProfile]("Failed to fetch project members")
	}
	if members == nil {
		members = []repository.MemberProfile{}
	}
	return readOK(members)
}

// DashboardStats loads the project count and the user's tasks concurrently
// and aggregates them.
func (s *QueryService) DashboardStats(ctx context.Context, userID uuid.UUID) ReadResult[*Stats] {
	var (
		projectsCount int64
		tasks         []model.Task
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.projects.CountForUser(gctx, userID)
		projectsCount = n
		return err
	})
	g.Go(func() error {
		list, err := s.tasks.ListForUser(gctx, userID, false, 0)
		tasks = list
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("❌ Error fetching dashboard stats: %v", err)
		return readFailed[*Stats]("Failed to fetch dashboard statistics")
	}

	stats := ComputeStats(tasks, projectsCount, s.now())
	return readOK(&stats)
}
