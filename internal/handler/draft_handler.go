package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sort"

	"taskboard/internal/formstate"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TaskCreator submits a finished draft.
type TaskCreator interface {
	Create(ctx context.Context, callerID uuid.UUID, sub service.TaskSubmission) service.ActionResponse
}

type DraftHandler struct {
	store formstate.Store
	tasks TaskCreator
}

func NewDraftHandler(store formstate.Store, tasks TaskCreator) *DraftHandler {
	return &DraftHandler{store: store, tasks: tasks}
}

// DraftResponse представляет черновик формы задачи
type DraftResponse struct {
	Draft formstate.TaskDraft `json:"draft"`
}

// Get godoc
// @Summary Черновик формы задачи
// @Tags drafts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DraftResponse
// @Router /drafts/task [get]
func (h *DraftHandler) Get(c *gin.Context) {
	draft := formstate.Restore(c.Request.Context(), h.store, draftKey(c))
	c.JSON(http.StatusOK, DraftResponse{Draft: draft})
}

// Update godoc
// @Summary Изменение полей черновика
// @Description Тело: объект {поле: значение} в кодировке формы задачи.
// @Tags drafts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body map[string]string true "Поля"
// @Success 200 {object} DraftResponse
// @Failure 400 {object} map[string]string
// @Router /drafts/task [put]
func (h *DraftHandler) Update(c *gin.Context) {
	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	key := draftKey(c)
	draft := formstate.Restore(c.Request.Context(), h.store, key)

	// Порядок применения не важен, но сортировка делает ошибку детерминированной
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		next, err := draft.Update(name, fields[name])
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": draftError(err), "field": name})
			return
		}
		draft = next
	}

	if err := formstate.Persist(c.Request.Context(), h.store, key, draft); err != nil {
		log.Printf("❌ Failed to persist draft: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save draft"})
		return
	}

	c.JSON(http.StatusOK, DraftResponse{Draft: draft})
}

// Reset godoc
// @Summary Сброс черновика
// @Tags drafts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DraftResponse
// @Router /drafts/task [delete]
func (h *DraftHandler) Reset(c *gin.Context) {
	if err := formstate.Clear(c.Request.Context(), h.store, draftKey(c)); err != nil {
		log.Printf("❌ Failed to clear draft: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset draft"})
		return
	}

	c.JSON(http.StatusOK, DraftResponse{Draft: formstate.NewTaskDraft()})
}

// Submit godoc
// @Summary Отправка черновика как новой задачи
// @Description Черновик очищается только после успешного создания задачи.
// @Tags drafts
// @Produce json
// @Security BearerAuth
// @Success 201 {object} service.ActionResponse
// @Failure 400 {object} service.ActionResponse
// @Router /drafts/task/submit [post]
func (h *DraftHandler) Submit(c *gin.Context) {
	key := draftKey(c)
	draft := formstate.Restore(c.Request.Context(), h.store, key)

	res := h.tasks.Create(c.Request.Context(), currentUser(c), service.SubmissionFromValues(draft.Values()))
	if res.Status == service.StatusCreated {
		if err := formstate.Clear(c.Request.Context(), h.store, key); err != nil {
			log.Printf("⚠️  Task created but draft was not cleared: %v", err)
		}
	}

	respond(c, res)
}

func draftKey(c *gin.Context) string {
	return formstate.TaskDraftKey(currentUser(c).String())
}

func draftError(err error) string {
	switch {
	case errors.Is(err, formstate.ErrUnknownField):
		return "Unknown draft field"
	case errors.Is(err, formstate.ErrInvalidValue):
		return "Invalid draft value"
	default:
		return err.Error()
	}
}
