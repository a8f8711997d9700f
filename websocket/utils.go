package websocket

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"rescueradar/models"
	"rescueradar/services"
)

// NewUpgrader accepts connections from the given origins; "*" or an empty list allows any.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r.Header.Get("Origin"), allowedOrigins)
		},
	}
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" || len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(strings.TrimSuffix(a, "/"), origin) {
			return true
		}
	}
	return false
}

// ServeWS upgrades the request and attaches the connection to the hub. The
// initial filter comes from the urgency, time_range and search query params.
func ServeWS(hub *Hub, upgrader websocket.Upgrader, c *gin.Context) error {
	filter := models.ReportFilter{
		Urgency:   services.ParseUrgencyList(c.Query("urgency")),
		TimeRange: c.Query("time_range"),
		Search:    c.Query("search"),
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return err
	}

	client := NewClient(conn, hub, c.Request, filter)
	select {
	case hub.register <- client:
	case <-hub.done():
		conn.Close()
		return nil
	}

	go client.WritePump()
	go client.ReadPump()
	return nil
}

func createErrorResponse(code, message, requestID string) models.WSMessage {
	return models.WSMessage{
		Type:      models.WSTypeError,
		Data:      models.WSError{Code: code, Message: message},
		Timestamp: time.Now(),
		RequestID: requestID,
	}
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		logrus.Debugf("Unparseable remote address %q", r.RemoteAddr)
		return r.RemoteAddr
	}
	return host
}
