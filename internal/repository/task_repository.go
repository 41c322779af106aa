package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// visibleTo restricts a task query to what the user may read: tasks they
// created, tasks assigned to them, and non-private tasks of their projects.
func visibleTo(db *gorm.DB, userID uuid.UUID) *gorm.DB {
	return db.Where(
		"tasks.creator_id = ? OR tasks.id IN (SELECT task_id FROM task_assignees WHERE user_id = ?) OR "+
			"(tasks.is_private = false AND tasks.project_id IN (SELECT project_id FROM project_members WHERE user_id = ?))",
		userID, userID, userID,
	)
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Omit("Assignees").Create(task).Error
}

// GetByID retrieves a task by its ID together with its assignees
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).Preload("Assignees").First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// ListForUser retrieves the tasks visible to the user, newest first.
func (r *TaskRepository) ListForUser(ctx context.Context, userID uuid.UUID, withAssignees bool, limit int) ([]model.Task, error) {
	var tasks []model.Task

	query := visibleTo(r.db.WithContext(ctx), userID).Order("tasks.created_at DESC")
	if withAssignees {
		query = query.Preload("Assignees")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update updates an existing task
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Omit("Assignees").Save(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task by its ID; assignee rows cascade
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// AddAssignees inserts one junction row per user in a single statement
func (r *TaskRepository) AddAssignees(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	rows := make([]model.TaskAssignee, len(userIDs))
	for i, userID := range userIDs {
		rows[i] = model.TaskAssignee{TaskID: taskID, UserID: userID}
	}

	err := r.db.WithContext(ctx).Create(&rows).Error
	if isUniqueViolation(err) {
		return ErrAlreadyAssigned
	}
	return err
}

// RemoveAssignee removes a user assignment from a task
func (r *TaskRepository) RemoveAssignee(ctx context.Context, taskID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Delete(&model.TaskAssignee{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
