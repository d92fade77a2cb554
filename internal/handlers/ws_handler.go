package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pulsegram/backend/internal/realtime"
)

// WSHandler upgrades authenticated clients onto the relay hub.
type WSHandler struct {
	hub *realtime.Hub
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// RegisterWSRoutes registers the websocket route
func (h *WSHandler) RegisterWSRoutes(g *echo.Group) {
	g.GET("/ws", h.Connect)
}

// Connect attaches the session to the caller's relay channel.
func (h *WSHandler) Connect(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return realtime.HandleWebSocket(c, h.hub, currentUserID)
}
