// models/websocket.go
package models

import (
	"time"
)

// WebSocket Message Types
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"requestId,omitempty"`
}

const (
	WSTypeReportCreated    = "report.created"
	WSTypeReportsRefreshed = "reports.refreshed"
	WSTypeSubscribe        = "subscribe"
	WSTypeSubscribed       = "subscribed"
	WSTypePing             = "ping"
	WSTypePong             = "pong"
	WSTypeError            = "error"
)

// WebSocket error codes
const (
	WSErrorRateLimit      = "RATE_LIMIT"
	WSErrorInvalidMessage = "INVALID_MESSAGE"
)

// WSSubscribeRequest replaces the client's report filter.
type WSSubscribeRequest struct {
	Filter ReportFilter `json:"filter"`
}

type WSReportsRefreshed struct {
	Reports []ActiveReport `json:"reports"`
	Total   int            `json:"total"`
}

type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type WSHubStats struct {
	ActiveConnections int       `json:"active_connections"`
	TotalConnections  int64     `json:"total_connections"`
	MessagesSent      int64     `json:"messages_sent"`
	MessagesDropped   int64     `json:"messages_dropped"`
	StartTime         time.Time `json:"start_time"`
}
