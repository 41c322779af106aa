package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Upgrader serves a websocket connection for a user.
type Upgrader interface {
	Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID)
}

type RealtimeHandler struct {
	hub Upgrader
}

func NewRealtimeHandler(hub Upgrader) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Connect godoc
// @Summary Websocket с событиями инвалидации дашборда
// @Description Токен можно передать в параметре access_token.
// @Tags realtime
// @Security BearerAuth
// @Param access_token query string false "JWT"
// @Success 101
// @Router /ws [get]
func (h *RealtimeHandler) Connect(c *gin.Context) {
	h.hub.Serve(c.Writer, c.Request, currentUser(c))
}
