package handler

import (
	"net/http"
	"strconv"

	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
)

type TaskHandler struct {
	tasks  TaskWorkflow
	reader Reader
}

func NewTaskHandler(tasks TaskWorkflow, reader Reader) *TaskHandler {
	return &TaskHandler{tasks: tasks, reader: reader}
}

// TaskAssignRequest представляет запрос на назначение пользователя на задачу
type TaskAssignRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// Create godoc
// @Summary Создание задачи
// @Description Принимает форму задачи (urlencoded или multipart). assignee_ids передается как JSON-массив.
// @Tags tasks
// @Accept x-www-form-urlencoded
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Название"
// @Param is_private formData string false "true для личной задачи"
// @Param project_id formData string false "ID проекта"
// @Param assignee_ids formData string false "JSON-массив ID пользователей"
// @Success 201 {object} service.ActionResponse
// @Failure 400 {object} service.ActionResponse
// @Failure 403 {object} service.ActionResponse
// @Router /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var sub service.TaskSubmission
	if err := c.ShouldBindWith(&sub.Fields, binding.Form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form"})
		return
	}
	sub.AssigneeIDs = c.PostForm("assignee_ids")

	respond(c, h.tasks.Create(c.Request.Context(), currentUser(c), sub))
}

// List godoc
// @Summary Последние задачи пользователя
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Количество задач"
// @Success 200 {object} service.ReadResult[[]service.TaskView]
// @Router /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	respondRead(c, h.reader.RecentTasks(c.Request.Context(), currentUser(c), limit), http.StatusInternalServerError)
}

// GetByID godoc
// @Summary Получение задачи
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID задачи"
// @Success 200 {object} service.ReadResult[service.TaskView]
// @Failure 404 {object} service.ReadResult[service.TaskView]
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	taskID, ok := uuidParam(c, "id", "Invalid task ID format")
	if !ok {
		return
	}

	respondRead(c, h.reader.Task(c.Request.Context(), currentUser(c), taskID), http.StatusNotFound)
}

// Update godoc
// @Summary Обновление задачи
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID задачи"
// @Param request body service.TaskChanges true "Изменяемые поля"
// @Success 200 {object} service.ActionResponse
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	taskID, ok := uuidParam(c, "id", "Invalid task ID format")
	if !ok {
		return
	}

	var changes service.TaskChanges
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	respond(c, h.tasks.Update(c.Request.Context(), currentUser(c), taskID, changes))
}

// Delete godoc
// @Summary Удаление задачи
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID задачи"
// @Success 200 {object} service.ActionResponse
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, ok := uuidParam(c, "id", "Invalid task ID format")
	if !ok {
		return
	}

	respond(c, h.tasks.Delete(c.Request.Context(), currentUser(c), taskID))
}

// Assign godoc
// @Summary Назначение пользователя на задачу
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID задачи"
// @Param request body TaskAssignRequest true "Пользователь"
// @Success 200 {object} service.ActionResponse
// @Router /tasks/{id}/assign [post]
func (h *TaskHandler) Assign(c *gin.Context) {
	taskID, userID, ok := h.assignment(c)
	if !ok {
		return
	}

	respond(c, h.tasks.Assign(c.Request.Context(), currentUser(c), taskID, userID))
}

// Unassign godoc
// @Summary Снятие пользователя с задачи
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID задачи"
// @Param user_id path string true "ID пользователя"
// @Success 200 {object} service.ActionResponse
// @Router /tasks/{id}/assign/{user_id} [delete]
func (h *TaskHandler) Unassign(c *gin.Context) {
	taskID, ok := uuidParam(c, "id", "Invalid task ID format")
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "user_id", "Invalid user ID format")
	if !ok {
		return
	}

	respond(c, h.tasks.Unassign(c.Request.Context(), currentUser(c), taskID, userID))
}

func (h *TaskHandler) assignment(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	taskID, ok := uuidParam(c, "id", "Invalid task ID format")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	var req TaskAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return uuid.Nil, uuid.Nil, false
	}

	// binding уже проверил формат uuid
	userID := uuid.MustParse(req.UserID)
	return taskID, userID, true
}
