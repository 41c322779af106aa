// Package formstate holds the in-progress state of the task creation form.
// A TaskDraft is a plain value: Update and Reset return a new draft and
// never touch the receiver.
package formstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/validation"
)

// Draft field names, identical to the task submission form keys.
const (
	FieldTitle           = "title"
	FieldMarkdownContent = "markdown_content"
	FieldIsPrivate       = "is_private"
	FieldPriority        = "priority"
	FieldStatus          = "status"
	FieldProjectID       = "project_id"
	FieldProjectName     = "project_name"
	FieldAssigneeIDs     = "assignee_ids"
	FieldDueDate         = "due_date"
	FieldEndDate         = "end_date"
)

var (
	ErrUnknownField = errors.New("unknown draft field")
	ErrInvalidValue = errors.New("invalid draft value")
)

type TaskDraft struct {
	Title           string         `json:"title"`
	MarkdownContent string         `json:"markdown_content"`
	IsPrivate       bool           `json:"is_private"`
	Priority        model.Priority `json:"priority"`
	Status          model.Status   `json:"status"`
	ProjectID       string         `json:"project_id"`
	ProjectName     string         `json:"project_name"`
	AssigneeIDs     []string       `json:"assignee_ids"`
	DueDate         string         `json:"due_date"`
	EndDate         string         `json:"end_date"`
}

// NewTaskDraft returns an empty private draft with default priority and status.
func NewTaskDraft() TaskDraft {
	return TaskDraft{
		IsPrivate:   true,
		Priority:    model.DefaultPriority,
		Status:      model.DefaultStatus,
		AssigneeIDs: []string{},
	}
}

// Reset returns the default draft.
func (d TaskDraft) Reset() TaskDraft {
	return NewTaskDraft()
}

// Update returns a copy of d with one field replaced. The value uses the same
// string encoding as the submission form.
func (d TaskDraft) Update(field, value string) (TaskDraft, error) {
	next := d
	next.AssigneeIDs = append([]string{}, d.AssigneeIDs...)

	switch field {
	case FieldTitle:
		next.Title = value
	case FieldMarkdownContent:
		next.MarkdownContent = value
	case FieldIsPrivate:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return d, fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, value)
		}
		next.IsPrivate = b
	case FieldPriority:
		p, ok := model.ParsePriority(value)
		if !ok {
			return d, fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, value)
		}
		next.Priority = p
	case FieldStatus:
		s, ok := model.ParseStatus(value)
		if !ok {
			return d, fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, value)
		}
		next.Status = s
	case FieldProjectID:
		next.ProjectID = strings.TrimSpace(value)
	case FieldProjectName:
		next.ProjectName = value
	case FieldAssigneeIDs:
		ids, err := validation.ParseAssigneeIDs(value)
		if err != nil {
			return d, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		next.AssigneeIDs = append([]string{}, ids...)
	case FieldDueDate, FieldEndDate:
		date, err := normalizeDate(value)
		if err != nil {
			return d, fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, value)
		}
		if field == FieldDueDate {
			next.DueDate = date
		} else {
			next.EndDate = date
		}
	default:
		return d, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return next, nil
}

func normalizeDate(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	t, err := validation.ParseDate(value)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02"), nil
}

// Values encodes the draft as a task submission form.
func (d TaskDraft) Values() url.Values {
	ids := d.AssigneeIDs
	if ids == nil {
		ids = []string{}
	}
	encoded, _ := json.Marshal(ids)

	return url.Values{
		FieldTitle:           {d.Title},
		FieldMarkdownContent: {d.MarkdownContent},
		FieldIsPrivate:       {strconv.FormatBool(d.IsPrivate)},
		FieldPriority:        {string(d.Priority)},
		FieldStatus:          {string(d.Status)},
		FieldProjectID:       {d.ProjectID},
		FieldProjectName:     {d.ProjectName},
		FieldAssigneeIDs:     {string(encoded)},
		FieldDueDate:         {d.DueDate},
		FieldEndDate:         {d.EndDate},
	}
}
