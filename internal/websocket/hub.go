package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"postpulse/internal/config"
	"postpulse/internal/infrastructure"
	"postpulse/pkg/contracts/events"
)

// broadcastBuffer bounds the hub's outbound queue. Broadcasts never block
// the caller; when the queue is full the message is dropped and counted.
const broadcastBuffer = 256

// Hub maintains the set of active clients and fans dataset events out to
// them. Uploads, janitor sweeps and periodic system metrics all flow through
// the same broadcast queue.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages to all clients
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Logger instance
	logger *slog.Logger

	// Keepalive timing shared with clients
	pingPeriod time.Duration
	pongWait   time.Duration

	// Metrics
	totalConnections int64
	messagesSent     int64
	messagesDropped  int64
	connectionErrors int64

	// Control
	quit        chan struct{}
	running     bool
	metricsQuit chan struct{}
}

// NewHub creates a new Hub. The zero value of cfg falls back to the default
// keepalive timing.
func NewHub(logger *slog.Logger, cfg config.WebSocketConfig) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = logger.With(slog.String("component", "websocket.hub"))

	pongWait := cfg.PongWait
	if pongWait <= 0 {
		pongWait = 60 * time.Second
	}
	pingPeriod := cfg.PingPeriod
	if pingPeriod <= 0 || pingPeriod >= pongWait {
		pingPeriod = (pongWait * 9) / 10
	}

	return &Hub{
		broadcast:   make(chan []byte, broadcastBuffer),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		clients:     make(map[*Client]bool),
		logger:      logger,
		pingPeriod:  pingPeriod,
		pongWait:    pongWait,
		quit:        make(chan struct{}),
		metricsQuit: make(chan struct{}),
	}
}

// Start starts the hub's goroutines
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
	go h.reportMetrics()
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()

			ctx := context.Background()
			if client.traceID != "" {
				ctx = infrastructure.WithTraceID(ctx, client.traceID)
			}

			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			metrics := GetMetrics()
			metrics.RecordConnection()

			if otelMetrics := GetOTelMetrics(); otelMetrics != nil {
				otelMetrics.RecordConnection(ctx, client.id, client.remoteAddr)
				otelMetrics.RecordClientCount(ctx, int64(count))
			}

			// Greet the new client so the dashboard can show its
			// connection state immediately.
			welcome := events.WebSocketMessage{
				BaseMessage: events.BaseMessage{
					ID:        uuid.New().String(),
					Type:      events.MessageTypeConnect,
					Timestamp: time.Now().UTC(),
					TraceID:   client.traceID,
				},
				Data: events.ConnectData{
					Status:   "connected",
					Message:  "Connected to PostPulse",
					ClientID: client.id,
				},
			}

			jsonData, err := json.Marshal(welcome)
			if err == nil {
				select {
				case client.send <- jsonData:
					h.logger.DebugContext(ctx, "Sent connect message to client",
						slog.String("client_id", client.id))
				default:
					h.logger.WarnContext(ctx, "Failed to send connect message - client buffer full",
						slog.String("client_id", client.id))
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				count := len(h.clients)
				h.mu.Unlock()

				ctx := context.Background()
				if client.traceID != "" {
					ctx = infrastructure.WithTraceID(ctx, client.traceID)
				}

				h.logger.InfoContext(ctx, "Client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))

				metrics := GetMetrics()
				metrics.RecordDisconnection(time.Since(client.connectedAt))

				if otelMetrics := GetOTelMetrics(); otelMetrics != nil {
					otelMetrics.RecordDisconnection(ctx, client.id, time.Since(client.connectedAt), "normal")
					otelMetrics.RecordClientCount(ctx, int64(count))
				}
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			// Copy clients so the lock is not held during sends
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			h.logger.Debug("Broadcasting message to clients",
				slog.Int("client_count", len(clients)),
				slog.Int("message_size", len(message)))

			successCount := 0
			failCount := 0

			for _, client := range clients {
				select {
				case client.send <- message:
					successCount++
					h.mu.Lock()
					h.messagesSent++
					h.mu.Unlock()
				default:
					failCount++
					// Client's send channel is full, drop the client
					h.mu.Lock()
					close(client.send)
					delete(h.clients, client)
					h.mu.Unlock()

					ctx := context.Background()
					if client.traceID != "" {
						ctx = infrastructure.WithTraceID(ctx, client.traceID)
					}
					h.logger.WarnContext(ctx, "Client send buffer full, disconnecting",
						slog.String("client_id", client.id))
				}
			}

			if failCount > 0 {
				h.logger.Warn("Some clients failed to receive broadcast",
					slog.Int("success_count", successCount),
					slog.Int("fail_count", failCount))
			}

			if otelMetrics := GetOTelMetrics(); otelMetrics != nil {
				otelMetrics.RecordBroadcast(context.Background(), "broadcast",
					int64(len(clients)), int64(successCount), int64(failCount))
			}
		}
	}
}

// BroadcastDatasetLoaded notifies all clients that a workbook finished
// loading. The dashboard matches the session ID against its own before
// refreshing.
func (h *Hub) BroadcastDatasetLoaded(data events.DatasetLoadedData) {
	h.broadcastEvent(events.MessageTypeDatasetLoaded, data, "")

	if otelMetrics := GetOTelMetrics(); otelMetrics != nil {
		otelMetrics.RecordDatasetEvent(context.Background(), string(events.MessageTypeDatasetLoaded), data.SessionID)
	}
}

// BroadcastDatasetExpired notifies all clients that a dataset was swept or
// evicted, so stale dashboards can prompt for a new upload.
func (h *Hub) BroadcastDatasetExpired(data events.DatasetExpiredData) {
	h.broadcastEvent(events.MessageTypeDatasetExpired, data, "")

	if otelMetrics := GetOTelMetrics(); otelMetrics != nil {
		otelMetrics.RecordDatasetEvent(context.Background(), string(events.MessageTypeDatasetExpired), data.SessionID)
	}
}

// BroadcastError sends a structured error message to all clients.
func (h *Hub) BroadcastError(code, message string, retry, fatal bool) {
	h.broadcastEvent(events.MessageTypeError, events.ErrorData{
		Code:    code,
		Message: message,
		Retry:   retry,
		Fatal:   fatal,
	}, "")
}

// BroadcastSystemStatus pushes a server status event (startup, shutdown,
// degraded dependencies).
func (h *Hub) BroadcastSystemStatus(data events.SystemStatusData) {
	h.broadcastEvent(events.MessageTypeSystemStatus, data, "")
}

// BroadcastSystemMetrics pushes a runtime metrics snapshot for the
// dashboard's status widgets.
func (h *Hub) BroadcastSystemMetrics(data events.SystemMetricsData) {
	h.broadcastEvent(events.MessageTypeSystemMetrics, data, "")
}

// broadcastEvent wraps a payload in the shared message envelope and queues
// it. The send never blocks; a full queue drops the message and counts it.
func (h *Hub) broadcastEvent(msgType events.MessageType, data interface{}, traceID string) {
	msg := events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			ID:        uuid.New().String(),
			Type:      msgType,
			Timestamp: time.Now().UTC(),
			TraceID:   traceID,
		},
		Data: data,
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		ctx := context.Background()
		if traceID != "" {
			ctx = infrastructure.WithTraceID(ctx, traceID)
		}
		h.logger.ErrorContext(ctx, "Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", string(msgType)))
		return
	}

	select {
	case h.broadcast <- jsonData:
	default:
		h.mu.Lock()
		h.messagesDropped++
		h.mu.Unlock()
		GetMetrics().RecordDroppedMessage()

		h.logger.Warn("Broadcast queue full, dropping message",
			slog.String("message_type", string(msgType)))

		if otelMetrics := GetOTelMetrics(); otelMetrics != nil {
			otelMetrics.RecordDroppedMessage(context.Background(), string(msgType), "queue_full")
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RecordConnectionError counts a failed upgrade attempt. Called by the HTTP
// layer since the hub never sees connections that fail to upgrade.
func (h *Hub) RecordConnectionError() {
	h.mu.Lock()
	h.connectionErrors++
	h.mu.Unlock()
	GetMetrics().RecordError("upgrade_failed")
}

// Stop gracefully stops the hub
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	// Signal goroutines to stop
	close(h.quit)
	close(h.metricsQuit)

	// Close all client connections
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// reportMetrics periodically reports hub metrics
func (h *Hub) reportMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.metricsQuit:
			h.logger.Info("Metrics reporting shutting down")
			return

		case <-ticker.C:
			h.mu.RLock()
			activeClients := len(h.clients)
			totalConnections := h.totalConnections
			messagesSent := h.messagesSent
			messagesDropped := h.messagesDropped
			h.mu.RUnlock()

			metrics := GetMetrics()
			metrics.RecordQueueDepth(int64(len(h.broadcast)))

			h.logger.Info("WebSocket hub metrics",
				slog.Int("active_clients", activeClients),
				slog.Int64("total_connections", totalConnections),
				slog.Int64("messages_sent", messagesSent),
				slog.Int64("messages_dropped", messagesDropped),
				slog.Int("broadcast_queue", len(h.broadcast)),
			)
		}
	}
}

// GetHubMetrics returns current hub metrics
func (h *Hub) GetHubMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent,
		"messages_dropped":  h.messagesDropped,
		"connection_errors": h.connectionErrors,
	}
}
