package service

import (
	"time"

	"taskboard/internal/model"
)

// Stats is the dashboard statistics panel.
type Stats struct {
	ProjectsCount      int64 `json:"projectsCount"`
	CompletedThisMonth int   `json:"completedThisMonth"`
	OverdueTasks       int   `json:"overdueTasks"`
	AssignedTasks      int   `json:"assignedTasks"`
	CompletedTasks     int   `json:"completedTasks"`
}

// ComputeStats aggregates tasks as of now. A task is overdue when its due
// date lies before now, whatever its status; the month is now's calendar
// month in now's location.
func ComputeStats(tasks []model.Task, projectsCount int64, now time.Time) Stats {
	stats := Stats{ProjectsCount: projectsCount}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)

	for _, t := range tasks {
		if t.DueDate != nil && t.DueDate.Before(now) {
			stats.OverdueTasks++
		}

		if t.Status != model.StatusCompleted {
			stats.AssignedTasks++
			continue
		}
		if t.CompletedAt == nil {
			continue
		}
		stats.CompletedTasks++
		if !t.CompletedAt.Before(monthStart) && t.CompletedAt.Before(nextMonth) {
			stats.CompletedThisMonth++
		}
	}
	return stats
}
