package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"rescueradar/models"
	"rescueradar/utils"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Buffer size for client send channel
	sendBufferSize = 256
)

type Client struct {
	conn *websocket.Conn
	hub  *Hub

	connectionID string
	connectedAt  time.Time
	ipAddress    string
	userAgent    string

	// Buffered channel of outbound messages, closed by the hub
	send chan models.WSMessage

	rateLimiter *utils.RateLimiter

	filterMu sync.RWMutex
	filter   models.ReportFilter
}

func NewClient(conn *websocket.Conn, hub *Hub, r *http.Request, filter models.ReportFilter) *Client {
	return &Client{
		conn:         conn,
		hub:          hub,
		send:         make(chan models.WSMessage, sendBufferSize),
		connectionID: utils.GenerateUUID(),
		connectedAt:  time.Now(),
		ipAddress:    getClientIP(r),
		userAgent:    r.UserAgent(),
		rateLimiter:  utils.NewRateLimiter(30, time.Minute), // 30 messages per minute
		filter:       filter,
	}
}

// Filter returns the client's current subscription filter.
func (c *Client) Filter() models.ReportFilter {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()
	return c.filter
}

func (c *Client) setFilter(filter models.ReportFilter) {
	c.filterMu.Lock()
	c.filter = filter
	c.filterMu.Unlock()
}

func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done():
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("connection_id", c.connectionID).Errorf("WebSocket read error: %v", err)
			}
			return
		}

		if !c.rateLimiter.Allow() {
			c.sendError(models.WSErrorRateLimit, "Rate limit exceeded", "")
			continue
		}

		c.handleMessage(data)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				logrus.WithField("connection_id", c.connectionID).Errorf("WebSocket write error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg struct {
		Type      string          `json:"type"`
		Data      json.RawMessage `json:"data"`
		RequestID string          `json:"requestId"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(models.WSErrorInvalidMessage, "Invalid message format", "")
		return
	}

	switch msg.Type {
	case models.WSTypeSubscribe:
		var req models.WSSubscribeRequest
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				c.sendError(models.WSErrorInvalidMessage, "Invalid subscription filter", msg.RequestID)
				return
			}
		}
		c.setFilter(req.Filter)
		c.reply(models.WSMessage{
			Type:      models.WSTypeSubscribed,
			Data:      req,
			Timestamp: time.Now(),
			RequestID: msg.RequestID,
		})

	case models.WSTypePing:
		c.reply(models.WSMessage{
			Type:      models.WSTypePong,
			Timestamp: time.Now(),
			RequestID: msg.RequestID,
		})

	default:
		c.sendError(models.WSErrorInvalidMessage, "Unknown message type", msg.RequestID)
	}
}

func (c *Client) sendError(code, message, requestID string) {
	c.reply(createErrorResponse(code, message, requestID))
}

// reply queues a direct response through the hub so it never races the hub closing send.
func (c *Client) reply(msg models.WSMessage) {
	c.hub.enqueue(func(target *Client, _ time.Time) (models.WSMessage, bool) {
		return msg, target == c
	})
}
