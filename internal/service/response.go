package service

import (
	"net/http"

	"taskboard/internal/validation"

	"github.com/google/uuid"
)

type ActionStatus string

const (
	StatusIdle    ActionStatus = "idle"
	StatusError   ActionStatus = "error"
	StatusCreated ActionStatus = "created"
	StatusUpdated ActionStatus = "updated"
	StatusDeleted ActionStatus = "deleted"
)

// ActionData carries the id of the entity a workflow wrote.
type ActionData struct {
	ProjectID *uuid.UUID `json:"projectId,omitempty"`
	TaskID    *uuid.UUID `json:"taskId,omitempty"`
}

// ActionResponse is the result of every mutating operation. It is returned
// as a value for failures too; nothing is signalled through Go errors.
type ActionResponse struct {
	Status  ActionStatus           `json:"status"`
	Message *string                `json:"message"`
	Errors  validation.FieldErrors `json:"errors,omitempty"`
	Data    *ActionData            `json:"data,omitempty"`
	// Partial is set when the primary write succeeded but a dependent one did not.
	Partial bool `json:"partial,omitempty"`

	Kind ErrorKind `json:"-"`
}

// Idle is the response before anything was submitted.
func Idle() ActionResponse {
	return ActionResponse{Status: StatusIdle}
}

func succeeded(status ActionStatus, message string, data *ActionData) ActionResponse {
	return ActionResponse{Status: status, Message: &message, Data: data}
}

func failed(err *Error) ActionResponse {
	msg := err.Message
	return ActionResponse{Status: StatusError, Message: &msg, Errors: err.Fields, Kind: err.Kind}
}

func (r ActionResponse) Text() string {
	if r.Message == nil {
		return ""
	}
	return *r.Message
}

// HTTPStatus maps the response onto a status code. The body stays authoritative.
func (r ActionResponse) HTTPStatus() int {
	switch r.Status {
	case StatusCreated:
		return http.StatusCreated
	case StatusUpdated, StatusDeleted, StatusIdle:
		return http.StatusOK
	}
	switch r.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func taskData(id uuid.UUID) *ActionData    { return &ActionData{TaskID: &id} }
func projectData(id uuid.UUID) *ActionData { return &ActionData{ProjectID: &id} }
