package service_test

import (
	"context"
	"testing"
	"time"

	"taskboard/internal/markdown"
	"taskboard/internal/model"
	"taskboard/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrTime(t time.Time) *time.Time { return &t }

func TestComputeStats(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

	tasks := []model.Task{
		{Status: model.StatusCompleted, CompletedAt: ptrTime(time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC))},
		{Status: model.StatusBacklog},
	}

	stats := service.ComputeStats(tasks, 3, now)

	assert.Equal(t, int64(3), stats.ProjectsCount)
	assert.Equal(t, 1, stats.CompletedThisMonth)
	assert.Equal(t, 1, stats.AssignedTasks)
	assert.Equal(t, 1, stats.CompletedTasks)
	assert.Equal(t, 0, stats.OverdueTasks)
}

func TestComputeStats_MonthBoundariesAndOverdue(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

	tasks := []model.Task{
		{Status: model.StatusCompleted, CompletedAt: ptrTime(time.Date(2024, 4, 30, 23, 59, 0, 0, time.UTC))},
		{Status: model.StatusCompleted, CompletedAt: ptrTime(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))},
		{Status: model.StatusCompleted},
		{Status: model.StatusInProgress, DueDate: ptrTime(time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC))},
		{Status: model.StatusTodo, DueDate: ptrTime(time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC))},
		{Status: model.StatusCompleted, CompletedAt: ptrTime(now), DueDate: ptrTime(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))},
	}

	stats := service.ComputeStats(tasks, 0, now)

	assert.Equal(t, 2, stats.CompletedThisMonth)
	assert.Equal(t, 3, stats.CompletedTasks)
	assert.Equal(t, 2, stats.AssignedTasks)
	assert.Equal(t, 2, stats.OverdueTasks)
}

func TestDashboardStats(t *testing.T) {
	tasks := newFakeTasks()
	projects := newFakeProjects()
	projects.count = 2
	user := uuid.New()
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, tasks.Create(context.Background(), &model.Task{
		Title: "a", CreatorID: user, Status: model.StatusCompleted, CompletedAt: ptrTime(now),
	}))
	require.NoError(t, tasks.Create(context.Background(), &model.Task{
		Title: "b", CreatorID: user, Status: model.StatusBacklog,
	}))

	q := service.NewQueryService(projects, tasks, newFakeMembers(), markdown.New()).
		WithClock(func() time.Time { return now })

	res := q.DashboardStats(context.Background(), user)

	require.Nil(t, res.Error)
	require.NotNil(t, res.Data)
	assert.Equal(t, int64(2), res.Data.ProjectsCount)
	assert.Equal(t, 1, res.Data.CompletedThisMonth)
	assert.Equal(t, 1, res.Data.AssignedTasks)
}

func TestDashboardStats_Failure(t *testing.T) {
	projects := newFakeProjects()
	projects.countErr = errDB

	q := service.NewQueryService(projects, newFakeTasks(), newFakeMembers(), nil)
	res := q.DashboardStats(context.Background(), uuid.New())

	assert.Nil(t, res.Data)
	require.NotNil(t, res.Error)
}

func TestRecentTasks_RendersMarkdown(t *testing.T) {
	tasks := newFakeTasks()
	user := uuid.New()
	md := "**bold**"
	require.NoError(t, tasks.Create(context.Background(), &model.Task{Title: "a", CreatorID: user, MarkdownContent: &md}))

	q := service.NewQueryService(newFakeProjects(), tasks, newFakeMembers(), markdown.New())
	res := q.RecentTasks(context.Background(), user, 0)

	require.Nil(t, res.Error)
	require.Len(t, res.Data, 1)
	assert.Contains(t, res.Data[0].ContentHTML, "<strong>bold</strong>")
}

func TestRecentTasks_EmptyIsNotAnError(t *testing.T) {
	q := service.NewQueryService(newFakeProjects(), newFakeTasks(), newFakeMembers(), nil)
	res := q.RecentTasks(context.Background(), uuid.New(), 5)

	assert.Nil(t, res.Error)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
}

func TestRecentTasks_Failure(t *testing.T) {
	tasks := newFakeTasks()
	tasks.listErr = errDB

	q := service.NewQueryService(newFakeProjects(), tasks, newFakeMembers(), nil)
	res := q.RecentTasks(context.Background(), uuid.New(), 5)

	assert.Nil(t, res.Data)
	require.NotNil(t, res.Error)
	assert.Equal(t, "Failed to fetch tasks", *res.Error)
}

func TestProjectMembers(t *testing.T) {
	members := newFakeMembers()
	project, user, other := uuid.New(), uuid.New(), uuid.New()
	members.set(project, user, model.RoleViewer)
	members.set(project, other, model.RoleOwner)

	q := service.NewQueryService(newFakeProjects(), newFakeTasks(), members, nil)

	res := q.ProjectMembers(context.Background(), user, project)
	require.Nil(t, res.Error)
	assert.Len(t, res.Data, 2)

	res = q.ProjectMembers(context.Background(), uuid.New(), project)
	assert.Nil(t, res.Data)
	require.NotNil(t, res.Error)
}

func TestTask_Visibility(t *testing.T) {
	tasks := newFakeTasks()
	members := newFakeMembers()
	owner, teammate, stranger := uuid.New(), uuid.New(), uuid.New()
	project := uuid.New()
	members.set(project, teammate, model.RoleViewer)

	private := &model.Task{Title: "p", CreatorID: owner, IsPrivate: true, ProjectID: &project}
	shared := &model.Task{Title: "s", CreatorID: owner, IsPrivate: false, ProjectID: &project}
	require.NoError(t, tasks.Create(context.Background(), private))
	require.NoError(t, tasks.Create(context.Background(), shared))

	q := service.NewQueryService(newFakeProjects(), tasks, members, nil)

	assert.Nil(t, q.Task(context.Background(), owner, private.ID).Error)
	assert.NotNil(t, q.Task(context.Background(), teammate, private.ID).Error)
	assert.Nil(t, q.Task(context.Background(), teammate, shared.ID).Error)
	assert.NotNil(t, q.Task(context.Background(), stranger, shared.ID).Error)
}
