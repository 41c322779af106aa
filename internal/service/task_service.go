package service

import (
	"context"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/saga"
	"taskboard/internal/validation"

	"github.com/google/uuid"
)

const (
	msgTaskCreated        = "Task created successfully"
	msgTaskAssignFailed   = "Task created but failed to assign user"
	msgTaskNoAccess       = "You do not have access to create tasks in this project"
	msgProjectAccessCheck = "Failed to check project access"
	msgInvalidAssignees   = "Assignees must be a JSON array of user ids"
)

// TaskSubmission is the raw task form. AssigneeIDs holds the JSON-encoded
// list exactly as submitted.
type TaskSubmission struct {
	Fields      validation.TaskFields
	AssigneeIDs string
}

// SubmissionFromValues reads a task submission out of form values.
func SubmissionFromValues(form url.Values) TaskSubmission {
	return TaskSubmission{
		Fields: validation.TaskFields{
			Title:           form.Get("title"),
			MarkdownContent: form.Get("markdown_content"),
			IsPrivate:       form.Get("is_private"),
			Priority:        form.Get("priority"),
			Status:          form.Get("status"),
			ProjectID:       form.Get("project_id"),
			ProjectName:     form.Get("project_name"),
			DueDate:         form.Get("due_date"),
			EndDate:         form.Get("end_date"),
		},
		AssigneeIDs: form.Get("assignee_ids"),
	}
}

type TaskService struct {
	tasks       TaskStore
	members     MemberStore
	validator   *validation.Validator
	invalidator Invalidator
	now         Clock
}

func NewTaskService(tasks TaskStore, members MemberStore, v *validation.Validator, inv Invalidator) *TaskService {
	return &TaskService{
		tasks:       tasks,
		members:     members,
		validator:   v,
		invalidator: inv,
		now:         time.Now,
	}
}

// WithClock replaces the time source.
func (s *TaskService) WithClock(now Clock) *TaskService {
	s.now = now
	return s
}

// Create runs the task creation workflow for callerID. uuid.Nil means the
// caller could not be identified.
func (s *TaskService) Create(ctx context.Context, callerID uuid.UUID, sub TaskSubmission) ActionResponse {
	if callerID == uuid.Nil {
		return failed(unauthenticated())
	}

	assignees, err := validation.ParseAssigneeIDs(sub.AssigneeIDs)
	if err != nil {
		return failed(invalidField("assignee_ids", msgInvalidAssignees))
	}

	if raw := strings.TrimSpace(sub.Fields.ProjectID); raw != "" {
		// a malformed id is left to the validator
		if projectID, err := uuid.Parse(raw); err == nil {
			if e := s.requireTaskWriter(ctx, projectID, callerID); e != nil {
				return failed(e)
			}
		}
	}

	fields := sub.Fields
	fields.AssigneeIDs = assignees
	in, failure := s.validator.Task(fields)
	if failure != nil {
		return failed(invalid(failure))
	}

	task := &model.Task{
		Title:           in.Title,
		MarkdownContent: in.MarkdownContent,
		IsPrivate:       in.IsPrivate,
		Priority:        in.Priority,
		ProjectID:       in.ProjectID,
		ProjectName:     in.ProjectName,
		DueDate:         in.DueDate,
		EndDate:         in.EndDate,
		CreatorID:       callerID,
	}
	task.SetStatus(in.Status, s.now())

	res := saga.New(
		saga.Step{
			Name:   "insert task",
			Policy: saga.Required,
			Action: func(ctx context.Context) error {
				return s.tasks.Create(ctx, task)
			},
		},
		saga.Step{
			Name:   "assign users",
			Policy: saga.BestEffort,
			Skip:   func() bool { return len(in.AssigneeIDs) == 0 },
			Action: func(ctx context.Context) error {
				return s.tasks.AddAssignees(ctx, task.ID, in.AssigneeIDs)
			},
		},
	).Run(ctx)

	if res.Failed() {
		log.Printf("❌ Error creating task: %v", res.Err)
		return failed(storageFailure("", unwrapStep(res.Err)))
	}
	if res.PartiallyFailed() {
		for _, p := range res.Partial {
			log.Printf("⚠️  Task %s: %v", task.ID, p)
		}
		resp := succeeded(StatusCreated, msgTaskAssignFailed, taskData(task.ID))
		resp.Partial = true
		resp.Kind = KindPartialFailure
		return resp
	}

	s.invalidator.InvalidateDashboard(append([]uuid.UUID{callerID}, in.AssigneeIDs...)...)
	return succeeded(StatusCreated, msgTaskCreated, taskData(task.ID))
}

func (s *TaskService) requireTaskWriter(ctx context.Context, projectID, userID uuid.UUID) *Error {
	role, err := s.members.GetRole(ctx, projectID, userID)
	if err != nil {
		log.Printf("❌ Error checking project access: %v", err)
		return storageFailure(msgProjectAccessCheck, err)
	}
	if !role.CanWriteTasks() {
		return forbidden(msgTaskNoAccess)
	}
	return nil
}

// TaskChanges is a partial task update; nil fields are left unchanged.
type TaskChanges struct {
	Title           *string `json:"title"`
	MarkdownContent *string `json:"markdown_content"`
	IsPrivate       *bool   `json:"is_private"`
	Priority        *string `json:"priority"`
	Status          *string `json:"status"`
	DueDate         *string `json:"due_date"`
	EndDate         *string `json:"end_date"`
}

// Update applies changes to a task. The merged task must still satisfy every
// creation rule.
func (s *TaskService) Update(ctx context.Context, callerID, taskID uuid.UUID, changes TaskChanges) ActionResponse {
	if callerID == uuid.Nil {
		return failed(unauthenticated())
	}

	task, e := s.loadEditable(ctx, callerID, taskID)
	if e != nil {
		return failed(e)
	}

	fields := fieldsOf(task)
	if changes.Title != nil {
		fields.Title = *changes.Title
	}
	if changes.MarkdownContent != nil {
		fields.MarkdownContent = *changes.MarkdownContent
	}
	if changes.IsPrivate != nil {
		fields.IsPrivate = boolString(*changes.IsPrivate)
	}
	if changes.Priority != nil {
		fields.Priority = *changes.Priority
	}
	if changes.Status != nil {
		fields.Status = *changes.Status
	}
	if changes.DueDate != nil {
		fields.DueDate = *changes.DueDate
	}
	if changes.EndDate != nil {
		fields.EndDate = *changes.EndDate
	}

	in, failure := s.validator.Task(fields)
	if failure != nil {
		return failed(invalid(failure))
	}

	task.Title = in.Title
	task.MarkdownContent = in.MarkdownContent
	task.IsPrivate = in.IsPrivate
	task.Priority = in.Priority
	task.DueDate = in.DueDate
	task.EndDate = in.EndDate
	task.SetStatus(in.Status, s.now())

	assignees := task.Assignees
	task.Assignees = nil
	if err := s.tasks.Update(ctx, task); err != nil {
		log.Printf("❌ Error updating task %s: %v", taskID, err)
		return failed(storageFailure("Failed to update task", err))
	}

	s.invalidator.InvalidateDashboard(affectedByTask(callerID, task.CreatorID, assignees)...)
	return succeeded(StatusUpdated, "Task updated successfully", taskData(task.ID))
}

// Delete removes a task. Allowed for its creator and for owners and admins
// of its project.
func (s *TaskService) Delete(ctx context.Context, callerID, taskID uuid.UUID) ActionResponse {
	if callerID == uuid.Nil {
		return failed(unauthenticated())
	}

	task, e := s.loadEditable(ctx, callerID, taskID)
	if e != nil {
		return failed(e)
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return failed(notFound("Task not found", err))
		}
		log.Printf("❌ Error deleting task %s: %v", taskID, err)
		return failed(storageFailure("Failed to delete task", err))
	}

	s.invalidator.InvalidateDashboard(affectedByTask(callerID, task.CreatorID, task.Assignees)...)
	return succeeded(StatusDeleted, "Task deleted successfully", taskData(taskID))
}

// Assign adds one user to a task. The caller needs a writing role on the
// task's project and the assignee must be a member of it. Tasks without a
// project can only be assigned by their creator.
func (s *TaskService) Assign(ctx context.Context, callerID, taskID, userID uuid.UUID) ActionResponse {
	if callerID == uuid.Nil {
		return failed(unauthenticated())
	}

	task, e := s.loadAssignable(ctx, callerID, taskID)
	if e != nil {
		return failed(e)
	}
	if task.ProjectID != nil {
		role, err := s.members.GetRole(ctx, *task.ProjectID, userID)
		if err != nil {
			return failed(storageFailure(msgProjectAccessCheck, err))
		}
		if role == "" {
			return failed(invalidField("user_id", "User is not a member of this project"))
		}
	}

	if err := s.tasks.AddAssignees(ctx, taskID, []uuid.UUID{userID}); err != nil {
		if errors.Is(err, repository.ErrAlreadyAssigned) {
			return failed(conflict("User is already assigned to this task", err))
		}
		log.Printf("❌ Error assigning user to task: %v", err)
		return failed(storageFailure("Failed to assign user to task", err))
	}

	s.invalidator.InvalidateDashboard(callerID, userID)
	return succeeded(StatusUpdated, "User assigned successfully", taskData(taskID))
}

func (s *TaskService) Unassign(ctx context.Context, callerID, taskID, userID uuid.UUID) ActionResponse {
	if callerID == uuid.Nil {
		return failed(unauthenticated())
	}

	if _, e := s.loadAssignable(ctx, callerID, taskID); e != nil {
		return failed(e)
	}

	if err := s.tasks.RemoveAssignee(ctx, taskID, userID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return failed(notFound("User is not assigned to this task", err))
		}
		return failed(storageFailure("Failed to unassign user", err))
	}

	s.invalidator.InvalidateDashboard(callerID, userID)
	return succeeded(StatusUpdated, "User unassigned successfully", taskData(taskID))
}

func (s *TaskService) load(ctx context.Context, taskID uuid.UUID) (*model.Task, *Error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return nil, notFound("Task not found", err)
	}
	if err != nil {
		return nil, storageFailure("Failed to retrieve task", err)
	}
	return task, nil
}

// loadEditable returns the task when the caller created it or manages its project.
func (s *TaskService) loadEditable(ctx context.Context, callerID, taskID uuid.UUID) (*model.Task, *Error) {
	task, e := s.load(ctx, taskID)
	if e != nil {
		return nil, e
	}
	if task.CreatorID == callerID {
		return task, nil
	}
	if task.ProjectID != nil {
		role, err := s.members.GetRole(ctx, *task.ProjectID, callerID)
		if err != nil {
			return nil, storageFailure(msgProjectAccessCheck, err)
		}
		if role.CanManageMembers() {
			return task, nil
		}
	}
	return nil, forbidden("You do not have permission to modify this task")
}

func (s *TaskService) loadAssignable(ctx context.Context, callerID, taskID uuid.UUID) (*model.Task, *Error) {
	task, e := s.load(ctx, taskID)
	if e != nil {
		return nil, e
	}
	if task.ProjectID == nil {
		if task.CreatorID != callerID {
			return nil, forbidden("You do not have permission to modify this task")
		}
		return task, nil
	}
	if e := s.requireTaskWriter(ctx, *task.ProjectID, callerID); e != nil {
		return nil, e
	}
	return task, nil
}

// fieldsOf renders a stored task back into form fields for revalidation.
func fieldsOf(t *model.Task) validation.TaskFields {
	f := validation.TaskFields{
		Title:     t.Title,
		IsPrivate: boolString(t.IsPrivate),
		Priority:  string(t.Priority),
		Status:    string(t.Status),
	}
	if t.MarkdownContent != nil {
		f.MarkdownContent = *t.MarkdownContent
	}
	if t.ProjectID != nil {
		f.ProjectID = t.ProjectID.String()
	}
	if t.ProjectName != nil {
		f.ProjectName = *t.ProjectName
	}
	if t.DueDate != nil {
		f.DueDate = t.DueDate.Format("2006-01-02")
	}
	if t.EndDate != nil {
		f.EndDate = t.EndDate.Format("2006-01-02")
	}
	return f
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func affectedByTask(callerID, creatorID uuid.UUID, assignees []model.Profile) []uuid.UUID {
	ids := []uuid.UUID{callerID, creatorID}
	for _, p := range assignees {
		ids = append(ids, p.ID)
	}
	return ids
}

func unwrapStep(err error) error {
	var stepErr *saga.StepError
	if errors.As(err, &stepErr) {
		return stepErr.Err
	}
	return err
}
