// Package handler exposes the workflows and read models over gin.
package handler

import (
	"context"
	"net/http"

	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TaskWorkflow is the write side of tasks.
type TaskWorkflow interface {
	Create(ctx context.Context, callerID uuid.UUID, sub service.TaskSubmission) service.ActionResponse
	Update(ctx context.Context, callerID, taskID uuid.UUID, changes service.TaskChanges) service.ActionResponse
	Delete(ctx context.Context, callerID, taskID uuid.UUID) service.ActionResponse
	Assign(ctx context.Context, callerID, taskID, userID uuid.UUID) service.ActionResponse
	Unassign(ctx context.Context, callerID, taskID, userID uuid.UUID) service.ActionResponse
}

// ProjectWorkflow is the write side of projects and their memberships.
type ProjectWorkflow interface {
	Create(ctx context.Context, callerID uuid.UUID, fields validation.ProjectFields, cover *service.CoverUpload) service.ActionResponse
	Update(ctx context.Context, callerID, projectID uuid.UUID, fields validation.ProjectFields) service.ActionResponse
	SetCover(ctx context.Context, callerID, projectID uuid.UUID, coverURL string, cover *service.CoverUpload) service.ActionResponse
	Delete(ctx context.Context, callerID, projectID uuid.UUID) service.ActionResponse

	AddMember(ctx context.Context, callerID, projectID uuid.UUID, email, role string) service.ActionResponse
	ChangeRole(ctx context.Context, callerID, projectID, userID uuid.UUID, role string) service.ActionResponse
	RemoveMember(ctx context.Context, callerID, projectID, userID uuid.UUID) service.ActionResponse
	Leave(ctx context.Context, callerID, projectID uuid.UUID) service.ActionResponse
}

// Reader is the read side shared by every handler.
type Reader interface {
	Projects(ctx context.Context, userID uuid.UUID, withMembers bool) service.ReadResult[[]model.Project]
	RecentTasks(ctx context.Context, userID uuid.UUID, limit int) service.ReadResult[[]service.TaskView]
	Task(ctx context.Context, userID, taskID uuid.UUID) service.ReadResult[*service.TaskView]
	ProjectMembers(ctx context.Context, userID, projectID uuid.UUID) service.ReadResult[[]repository.MemberProfile]
	DashboardStats(ctx context.Context, userID uuid.UUID) service.ReadResult[*service.Stats]
}

var (
	_ TaskWorkflow    = (*service.TaskService)(nil)
	_ ProjectWorkflow = (*service.ProjectService)(nil)
	_ Reader          = (*service.QueryService)(nil)
)

// respond пишет результат workflow; код статуса следует за телом ответа
func respond(c *gin.Context, res service.ActionResponse) {
	c.JSON(res.HTTPStatus(), res)
}

// respondRead пишет результат чтения; failStatus используется, если чтение не удалось
func respondRead[T any](c *gin.Context, res service.ReadResult[T], failStatus int) {
	if res.Error != nil {
		c.JSON(failStatus, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// uuidParam разбирает параметр пути; при ошибке отвечает 400 и возвращает false
func uuidParam(c *gin.Context, name, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
		return uuid.Nil, false
	}
	return id, true
}

func currentUser(c *gin.Context) uuid.UUID {
	return middleware.CurrentUserID(c)
}
