package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	reader Reader
}

func NewDashboardHandler(reader Reader) *DashboardHandler {
	return &DashboardHandler{reader: reader}
}

// Stats godoc
// @Summary Статистика для дашборда
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ReadResult[service.Stats]
// @Failure 500 {object} service.ReadResult[service.Stats]
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	respondRead(c, h.reader.DashboardStats(c.Request.Context(), currentUser(c)), http.StatusInternalServerError)
}
