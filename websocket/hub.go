package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rescueradar/metrics"
	"rescueradar/models"
	"rescueradar/services"
)

const broadcastBuffer = 64

// Hub fans report events out to connected map clients, each scoped by its own filter.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound

	stats HubStats
	mutex sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

// outbound builds the message for one client; ok=false skips that client.
type outbound func(c *Client, now time.Time) (msg models.WSMessage, ok bool)

type HubStats struct {
	TotalConnections int64
	MessagesSent     int64
	MessagesDropped  int64
	StartTime        time.Time

	mutex sync.Mutex
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, broadcastBuffer),
		stats:      HubStats{StartTime: time.Now()},
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (h *Hub) Run() {
	logrus.Info("WebSocket Hub starting...")

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case build := <-h.broadcast:
			h.deliver(build)

		case <-h.ctx.Done():
			h.closeAll()
			logrus.Info("WebSocket Hub stopped")
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	h.clients[client] = true
	active := len(h.clients)
	h.mutex.Unlock()

	h.stats.mutex.Lock()
	h.stats.TotalConnections++
	h.stats.mutex.Unlock()
	metrics.WebSocketClients.Set(float64(active))

	logrus.WithFields(logrus.Fields{
		"connection_id": client.connectionID,
		"active":        active,
	}).Info("Feed client connected")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	active := len(h.clients)
	h.mutex.Unlock()
	metrics.WebSocketClients.Set(float64(active))

	logrus.WithField("connection_id", client.connectionID).Info("Feed client disconnected")
}

func (h *Hub) deliver(build outbound) {
	now := time.Now()

	h.mutex.Lock()
	defer h.mutex.Unlock()

	var sent, dropped int64
	for client := range h.clients {
		msg, ok := build(client, now)
		if !ok {
			continue
		}
		select {
		case client.send <- msg:
			sent++
		default:
			// Slow consumer; drop it rather than block the hub
			delete(h.clients, client)
			close(client.send)
			dropped++
		}
	}

	h.stats.mutex.Lock()
	h.stats.MessagesSent += sent
	h.stats.MessagesDropped += dropped
	h.stats.mutex.Unlock()
	if dropped > 0 {
		metrics.WebSocketClients.Set(float64(len(h.clients)))
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
	metrics.WebSocketClients.Set(0)
}

func (h *Hub) enqueue(build outbound) {
	select {
	case h.broadcast <- build:
	case <-h.ctx.Done():
	}
}

// BroadcastReportCreated sends the event to every client whose filter matches the report.
func (h *Hub) BroadcastReportCreated(event models.ReportCreatedEvent) {
	h.enqueue(func(c *Client, now time.Time) (models.WSMessage, bool) {
		if !services.MatchesFilter(event.Report, c.Filter(), now) {
			return models.WSMessage{}, false
		}
		return models.WSMessage{
			Type:      models.WSTypeReportCreated,
			Data:      event,
			Timestamp: now,
		}, true
	})
}

// BroadcastReportsRefreshed pushes each client the refreshed list narrowed by its filter.
func (h *Hub) BroadcastReportsRefreshed(reports []models.ActiveReport) {
	h.enqueue(func(c *Client, now time.Time) (models.WSMessage, bool) {
		filtered := services.FilterReports(reports, c.Filter(), now)
		return models.WSMessage{
			Type:      models.WSTypeReportsRefreshed,
			Data:      models.WSReportsRefreshed{Reports: filtered, Total: len(filtered)},
			Timestamp: now,
		}, true
	})
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) GetStats() models.WSHubStats {
	active := h.ClientCount()

	h.stats.mutex.Lock()
	defer h.stats.mutex.Unlock()
	return models.WSHubStats{
		ActiveConnections: active,
		TotalConnections:  h.stats.TotalConnections,
		MessagesSent:      h.stats.MessagesSent,
		MessagesDropped:   h.stats.MessagesDropped,
		StartTime:         h.stats.StartTime,
	}
}

func (h *Hub) Shutdown() {
	logrus.Info("Shutting down WebSocket Hub...")
	h.cancel()
}

func (h *Hub) done() <-chan struct{} {
	return h.ctx.Done()
}
