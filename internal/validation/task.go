package validation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	tagProjectRequired = "project_required"
	tagDateOrder       = "date_order"
)

// TaskFields is the raw task submission as it arrives from a form.
type TaskFields struct {
	Title           string   `form:"title" validate:"required"`
	MarkdownContent string   `form:"markdown_content"`
	IsPrivate       string   `form:"is_private"`
	Priority        string   `form:"priority" validate:"omitempty,task_priority"`
	Status          string   `form:"status" validate:"omitempty,task_status"`
	ProjectID       string   `form:"project_id" validate:"omitempty,uuid"`
	ProjectName     string   `form:"project_name"`
	AssigneeIDs     []string `form:"-" json:"assignee_ids" validate:"omitempty,dive,uuid"`
	DueDate         string   `form:"due_date" validate:"omitempty,calendar_date"`
	EndDate         string   `form:"end_date" validate:"omitempty,calendar_date"`
}

// Private reports whether the submission marks the task private.
// Only "true" does; any other value means a shared task.
func (f TaskFields) Private() bool {
	return f.IsPrivate == "true"
}

func (f *TaskFields) normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.IsPrivate = strings.ToLower(strings.TrimSpace(f.IsPrivate))
	f.Priority = strings.ToUpper(strings.TrimSpace(f.Priority))
	f.Status = strings.ToUpper(strings.TrimSpace(f.Status))
	f.ProjectID = strings.TrimSpace(f.ProjectID)
	f.ProjectName = strings.TrimSpace(f.ProjectName)
	f.DueDate = strings.TrimSpace(f.DueDate)
	f.EndDate = strings.TrimSpace(f.EndDate)
}

// TaskInput is a validated task submission.
type TaskInput struct {
	Title           string
	MarkdownContent *string
	IsPrivate       bool
	Priority        model.Priority
	Status          model.Status
	ProjectID       *uuid.UUID
	ProjectName     *string
	AssigneeIDs     []uuid.UUID
	DueDate         *time.Time
	EndDate         *time.Time
}

// ParseAssigneeIDs decodes the JSON-encoded assignee list of a submission.
// An empty value or JSON null means no assignees.
func ParseAssigneeIDs(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("assignee_ids must be a JSON array of ids: %w", err)
	}
	return ids, nil
}

// Task validates a raw task submission.
func (v *Validator) Task(fields TaskFields) (*TaskInput, *Failure) {
	fields.normalize()
	if failure := v.check(fields); failure != nil {
		return nil, failure
	}

	in := &TaskInput{
		Title:     fields.Title,
		IsPrivate: fields.Private(),
		Priority:  model.DefaultPriority,
		Status:    model.DefaultStatus,
		DueDate:   optionalDate(fields.DueDate),
		EndDate:   optionalDate(fields.EndDate),
	}
	if fields.MarkdownContent != "" {
		in.MarkdownContent = &fields.MarkdownContent
	}
	if p, ok := model.ParsePriority(fields.Priority); ok {
		in.Priority = p
	}
	if s, ok := model.ParseStatus(fields.Status); ok {
		in.Status = s
	}
	if fields.ProjectID != "" {
		id := uuid.MustParse(fields.ProjectID)
		in.ProjectID = &id
	}
	if fields.ProjectName != "" {
		in.ProjectName = &fields.ProjectName
	}
	for _, raw := range fields.AssigneeIDs {
		in.AssigneeIDs = append(in.AssigneeIDs, uuid.MustParse(raw))
	}
	return in, nil
}

func validPriority(fl validator.FieldLevel) bool {
	_, ok := model.ParsePriority(fl.Field().String())
	return ok
}

func validStatus(fl validator.FieldLevel) bool {
	_, ok := model.ParseStatus(fl.Field().String())
	return ok
}

func validDate(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

// taskRules holds the cross-field rules: a shared task needs a project, and
// the end date may not precede the due date.
func taskRules(sl validator.StructLevel) {
	f := sl.Current().Interface().(TaskFields)

	if !f.Private() && f.ProjectID == "" {
		sl.ReportError(f.ProjectID, "project_id", "ProjectID", tagProjectRequired, "")
	}

	if f.DueDate == "" || f.EndDate == "" {
		return
	}
	due, errDue := ParseDate(f.DueDate)
	end, errEnd := ParseDate(f.EndDate)
	if errDue == nil && errEnd == nil && end.Before(due) {
		sl.ReportError(f.EndDate, "end_date", "EndDate", tagDateOrder, "")
	}
}
