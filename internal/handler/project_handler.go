package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"taskboard/internal/service"
	"taskboard/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// coverField is the multipart field carrying an uploaded cover image.
const coverField = "cover_file"

type ProjectHandler struct {
	projects ProjectWorkflow
	reader   Reader
}

func NewProjectHandler(projects ProjectWorkflow, reader Reader) *ProjectHandler {
	return &ProjectHandler{projects: projects, reader: reader}
}

// ProjectUpdateRequest представляет запрос на обновление проекта
type ProjectUpdateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
}

// Create godoc
// @Summary Создание проекта
// @Description Создает проект, добавляет создателя как OWNER и загружает обложку, если она передана.
// @Tags projects
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Название"
// @Param description formData string false "Описание"
// @Param cover_url formData string false "URL обложки"
// @Param cover_file formData file false "Файл обложки"
// @Success 201 {object} service.ActionResponse
// @Failure 400 {object} service.ActionResponse
// @Router /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var fields validation.ProjectFields
	if err := c.ShouldBindWith(&fields, binding.Form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form"})
		return
	}

	cover, ok := coverUpload(c)
	if !ok {
		return
	}

	respond(c, h.projects.Create(c.Request.Context(), currentUser(c), fields, cover))
}

// List godoc
// @Summary Проекты пользователя
// @Description Проекты, в которых пользователь не VIEWER.
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param with_members query bool false "Включить участников"
// @Success 200 {object} service.ReadResult[[]model.Project]
// @Router /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	withMembers := false
	if raw := c.Query("with_members"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid with_members"})
			return
		}
		withMembers = v
	}

	respondRead(c, h.reader.Projects(c.Request.Context(), currentUser(c), withMembers), http.StatusInternalServerError)
}

// Update godoc
// @Summary Обновление проекта
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID проекта"
// @Param request body ProjectUpdateRequest true "Поля проекта"
// @Success 200 {object} service.ActionResponse
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	projectID, ok := uuidParam(c, "id", "Invalid project ID format")
	if !ok {
		return
	}

	var req ProjectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	fields := validation.ProjectFields{Name: req.Name, Description: req.Description, CoverURL: req.CoverURL}
	respond(c, h.projects.Update(c.Request.Context(), currentUser(c), projectID, fields))
}

// SetCover godoc
// @Summary Замена обложки проекта
// @Tags projects
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID проекта"
// @Param cover_url formData string false "URL обложки"
// @Param cover_file formData file false "Файл обложки"
// @Success 200 {object} service.ActionResponse
// @Router /projects/{id}/cover [put]
func (h *ProjectHandler) SetCover(c *gin.Context) {
	projectID, ok := uuidParam(c, "id", "Invalid project ID format")
	if !ok {
		return
	}

	cover, ok := coverUpload(c)
	if !ok {
		return
	}

	respond(c, h.projects.SetCover(c.Request.Context(), currentUser(c), projectID, c.PostForm("cover_url"), cover))
}

// Delete godoc
// @Summary Удаление проекта
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID проекта"
// @Success 200 {object} service.ActionResponse
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, ok := uuidParam(c, "id", "Invalid project ID format")
	if !ok {
		return
	}

	respond(c, h.projects.Delete(c.Request.Context(), currentUser(c), projectID))
}

// coverUpload возвращает nil, если файл обложки не передан
func coverUpload(c *gin.Context) (*service.CoverUpload, bool) {
	fh, err := c.FormFile(coverField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, true
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cover file"})
		return nil, false
	}

	return &service.CoverUpload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}, true
}
