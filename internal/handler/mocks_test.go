package handler_test

import (
	"context"

	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Мок сервиса задач
type MockTaskWorkflow struct {
	mock.Mock
}

func (m *MockTaskWorkflow) Create(ctx context.Context, callerID uuid.UUID, sub service.TaskSubmission) service.ActionResponse {
	return m.Called(ctx, callerID, sub).Get(0).(service.ActionResponse)
}

func (m *MockTaskWorkflow) Update(ctx context.Context, callerID, taskID uuid.UUID, changes service.TaskChanges) service.ActionResponse {
	return m.Called(ctx, callerID, taskID, changes).Get(0).(service.ActionResponse)
}

func (m *MockTaskWorkflow) Delete(ctx context.Context, callerID, taskID uuid.UUID) service.ActionResponse {
	return m.Called(ctx, callerID, taskID).Get(0).(service.ActionResponse)
}

func (m *MockTaskWorkflow) Assign(ctx context.Context, callerID, taskID, userID uuid.UUID) service.ActionResponse {
	return m.Called(ctx, callerID, taskID, userID).Get(0).(service.ActionResponse)
}

func (m *MockTaskWorkflow) Unassign(ctx context.Context, callerID, taskID, userID uuid.UUID) service.ActionResponse {
	return m.Called(ctx, callerID, taskID, userID).Get(0).(service.ActionResponse)
}

// Мок сервиса проектов
type MockProjectWorkflow struct {
	mock.Mock
}

func (m *MockProjectWorkflow) Create(ctx context.Context, callerID uuid.UUID, fields validation.ProjectFields, cover *service.CoverUpload) service.ActionResponse {
	return m.Called(ctx, callerID, fields, cover).Get(0).(service.ActionResponse)
}

func (m *MockProjectWorkflow) Update(ctx context.Context, callerID, projectID uuid.UUID, fields validation.ProjectFields) service.ActionResponse {
	return m.Called(ctx, callerID, projectID, fields).Get(0).(service.ActionResponse)
}

func (m *MockProjectWorkflow) SetCover(ctx context.Context, callerID, projectID uuid.UUID, coverURL string, cover *service.CoverUpload) service.ActionResponse {
	return m.Called(ctx, callerID, projectID, coverURL, cover).Get(0).(service.ActionResponse)
}

func (m *MockProjectWorkflow) Delete(ctx context.Context, callerID, projectID uuid.UUID) service.ActionResponse {
	return m.Called(ctx, callerID, projectID).Get(0).(service.ActionResponse)
}

func (m *MockProjectWorkflow) AddMember(ctx context.Context, callerID, projectID uuid.UUID, email, role string) service.ActionResponse {
	return m.Called(ctx, callerID, projectID, email, role).Get(0).(service.ActionResponse)
}

func (m *MockProjectWorkflow) ChangeRole(ctx context.Context, callerID, projectID, userID uuid.UUID, role string) service.ActionResponse {
	return m.Called(ctx, callerID, projectID, userID, role).Get(0).(service.ActionResponse)
}

func (m *MockProjectWorkflow) RemoveMember(ctx context.Context, callerID, projectID, userID uuid.UUID) service.ActionResponse {
	return m.Called(ctx, callerID, projectID, userID).Get(0).(service.ActionResponse)
}

func (m *MockProjectWorkflow) Leave(ctx context.Context, callerID, projectID uuid.UUID) service.ActionResponse {
	return m.Called(ctx, callerID, projectID).Get(0).(service.ActionResponse)
}

// Мок слоя чтения
type MockReader struct {
	mock.Mock
}

func (m *MockReader) Projects(ctx context.Context, userID uuid.UUID, withMembers bool) service.ReadResult[[]model.Project] {
	return m.Called(ctx, userID, withMembers).Get(0).(service.ReadResult[[]model.Project])
}

func (m *MockReader) RecentTasks(ctx context.Context, userID uuid.UUID, limit int) service.ReadResult[[]service.TaskView] {
	return m.Called(ctx, userID, limit).Get(0).(service.ReadResult[[]service.TaskView])
}

func (m *MockReader) Task(ctx context.Context, userID, taskID uuid.UUID) service.ReadResult[*service.TaskView] {
	return m.Called(ctx, userID, taskID).Get(0).(service.ReadResult[*service.TaskView])
}

func (m *MockReader) ProjectMembers(ctx context.Context, userID, projectID uuid.UUID) service.ReadResult[[]repository.MemberProfile] {
	return m.Called(ctx, userID, projectID).Get(0).(service.ReadResult[[]repository.MemberProfile])
}

func (m *MockReader) DashboardStats(ctx context.Context, userID uuid.UUID) service.ReadResult[*service.Stats] {
	return m.Called(ctx, userID).Get(0).(service.ReadResult[*service.Stats])
}

// asUser подставляет аутентифицированного пользователя вместо JWT middleware
func asUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func newTestRouter(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(asUser(userID))
	return r
}

func created(message string, data *service.ActionData) service.ActionResponse {
	return service.ActionResponse{Status: service.StatusCreated, Message: &message, Data: data}
}

func failedWith(kind service.ErrorKind, message string) service.ActionResponse {
	return service.ActionResponse{Status: service.StatusError, Message: &message, Kind: kind}
}

func strPtr(s string) *string { return &s }
