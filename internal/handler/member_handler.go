package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type MemberHandler struct {
	projects ProjectWorkflow
	reader   Reader
}

func NewMemberHandler(projects ProjectWorkflow, reader Reader) *MemberHandler {
	return &MemberHandler{projects: projects, reader: reader}
}

// AddMemberRequest представляет запрос на добавление участника
type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// ChangeRoleRequest представляет запрос на смену роли
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// List godoc
// @Summary Участники проекта
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID проекта"
// @Success 200 {object} service.ReadResult[[]repository.MemberProfile]
// @Failure 404 {object} service.ReadResult[[]repository.MemberProfile]
// @Router /projects/{id}/members [get]
func (h *MemberHandler) List(c *gin.Context) {
	projectID, ok := uuidParam(c, "id", "Invalid project ID format")
	if !ok {
		return
	}

	respondRead(c, h.reader.ProjectMembers(c.Request.Context(), currentUser(c), projectID), http.StatusNotFound)
}

// Add godoc
// @Summary Добавление участника по email
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID проекта"
// @Param request body AddMemberRequest true "Участник"
// @Success 201 {object} service.ActionResponse
// @Router /projects/{id}/members [post]
func (h *MemberHandler) Add(c *gin.Context) {
	projectID, ok := uuidParam(c, "id", "Invalid project ID format")
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	respond(c, h.projects.AddMember(c.Request.Context(), currentUser(c), projectID, req.Email, req.Role))
}

// ChangeRole godoc
// @Summary Смена роли участника
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID проекта"
// @Param user_id path string true "ID пользователя"
// @Param request body ChangeRoleRequest true "Роль"
// @Success 200 {object} service.ActionResponse
// @Router /projects/{id}/members/{user_id} [put]
func (h *MemberHandler) ChangeRole(c *gin.Context) {
	projectID, ok := uuidParam(c, "id", "Invalid project ID format")
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "user_id", "Invalid user ID format")
	if !ok {
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	respond(c, h.projects.ChangeRole(c.Request.Context(), currentUser(c), projectID, userID, req.Role))
}

// Remove godoc
// @Summary Удаление участника
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID проекта"
// @Param user_id path string true "ID пользователя"
// @Success 200 {object} service.ActionResponse
// @Router /projects/{id}/members/{user_id} [delete]
func (h *MemberHandler) Remove(c *gin.Context) {
	projectID, ok := uuidParam(c, "id", "Invalid project ID format")
	if !ok {
		return
	}
	userID, ok := uuidParam(c, "user_id", "Invalid user ID format")
	if !ok {
		return
	}

	respond(c, h.projects.RemoveMember(c.Request.Context(), currentUser(c), projectID, userID))
}

// Leave godoc
// @Summary Выход из проекта
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID проекта"
// @Success 200 {object} service.ActionResponse
// @Router /projects/{id}/leave [post]
func (h *MemberHandler) Leave(c *gin.Context) {
	projectID, ok := uuidParam(c, "id", "Invalid project ID format")
	if !ok {
		return
	}

	respond(c, h.projects.Leave(c.Request.Context(), currentUser(c), projectID))
}
