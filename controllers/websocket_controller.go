package controllers

import (
	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"rescueradar/websocket"
)

type WebSocketController struct {
	hub      *websocket.Hub
	upgrader gorilla.Upgrader
}

func NewWebSocketController(hub *websocket.Hub, allowedOrigins []string) *WebSocketController {
	return &WebSocketController{
		hub:      hub,
		upgrader: websocket.NewUpgrader(allowedOrigins),
	}
}

// HandleWebSocket upgrades to the live report feed
// @Summary Live report feed
// @Description Streams report.created and reports.refreshed events matching the client's filter
// @Tags WebSocket
// @Param urgency query string false "Comma-separated urgency levels"
// @Param time_range query string false "all, 24h, 7d or 30d"
// @Param search query string false "Search filter"
// @Success 101 "Switching Protocols"
// @Router /ws [get]
func (wsc *WebSocketController) HandleWebSocket(c *gin.Context) {
	if err := websocket.ServeWS(wsc.hub, wsc.upgrader, c); err != nil {
		logrus.WithField("ip", c.ClientIP()).Warnf("WebSocket upgrade failed: %v", err)
	}
}
