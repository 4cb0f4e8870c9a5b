// Package events contains the WebSocket message contracts shared by the
// PostPulse server and the dashboard frontend.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Dataset lifecycle messages - the primary event types
	MessageTypeDatasetLoaded  MessageType = "dataset:loaded"
	MessageTypeDatasetExpired MessageType = "dataset:expired"

	// System messages
	MessageTypeSystemStatus  MessageType = "system:status"
	MessageTypeSystemMetrics MessageType = "system:metrics"

	// Connection messages
	MessageTypeConnect    MessageType = "connect"
	MessageTypeDisconnect MessageType = "disconnect"
	MessageTypeError      MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`       // Unique message ID
	Type      MessageType `json:"type"`               // Message type
	Timestamp time.Time   `json:"timestamp"`          // Message timestamp
	TraceID   string      `json:"trace_id,omitempty"` // Request trace ID
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"` // Message payload
}

// ConnectData is the payload of the connect message sent to a client right
// after registration.
type ConnectData struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	ClientID string `json:"client_id"`
}

// DatasetLoadedData is the payload of a dataset:loaded event, pushed after
// an upload has been parsed and stored. The dashboard refreshes its views
// when the event names its own session.
type DatasetLoadedData struct {
	SessionID  string    `json:"session_id"`
	DatasetID  string    `json:"dataset_id"`
	SourceName string    `json:"source_name"`
	Sheet      string    `json:"sheet"`
	TotalRows  int       `json:"total_rows"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// DatasetExpiredData is the payload of a dataset:expired event, pushed when
// the session janitor sweeps an idle dataset or capacity eviction drops it.
type DatasetExpiredData struct {
	SessionID string    `json:"session_id"`
	DatasetID string    `json:"dataset_id"`
	ExpiredAt time.Time `json:"expired_at"`
}

// ErrorData is the payload of an error message.
type ErrorData struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Retry   bool        `json:"retry"`
	Fatal   bool        `json:"fatal"`
}

// SystemStatusData is the payload of a system:status event.
type SystemStatusData struct {
	Status     string            `json:"status"` // healthy|degraded|unhealthy
	Components map[string]string `json:"components,omitempty"`
	Uptime     string            `json:"uptime"`
	Version    string            `json:"version"`
}

// SystemMetricsData is the payload of a system:metrics event, pushed
// periodically so the dashboard's status widgets stay live without polling.
type SystemMetricsData struct {
	Goroutines  int       `json:"goroutines"`
	Connections int       `json:"active_connections"`
	Sessions    int       `json:"active_sessions"`
	Timestamp   time.Time `json:"timestamp"`
}
