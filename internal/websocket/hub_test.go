package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postpulse/internal/config"
	"postpulse/internal/shared/testutil"
	"postpulse/pkg/contracts/events"
)

// envelope mirrors events.WebSocketMessage with the payload kept raw so each
// test can decode it into the expected shape.
type envelope struct {
	events.BaseMessage
	Data json.RawMessage `json:"data"`
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()

	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(logger, config.WebSocketConfig{
		PingPeriod: 30 * time.Second,
		PongWait:   60 * time.Second,
	})
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func registerTestClient(t *testing.T, hub *Hub) (*Client, *MockConnection) {
	t.Helper()

	logger, _ := testutil.NewTestLogger(t)
	conn := NewMockConnection()
	client := NewClientWithConnection(hub, conn, logger)
	hub.Register(client)

	// Every registration is greeted with a connect message.
	env := readEvent(t, client)
	require.Equal(t, events.MessageTypeConnect, env.Type)
	return client, conn
}

func readEvent(t *testing.T, client *Client) envelope {
	t.Helper()

	select {
	case raw, ok := <-client.send:
		require.True(t, ok, "send channel closed before a message arrived")
		var env envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a hub message")
		return envelope{}
	}
}

func TestHub_RegisterSendsConnectMessage(t *testing.T) {
	hub := newTestHub(t)

	logger, _ := testutil.NewTestLogger(t)
	conn := NewMockConnection()
	client := NewClientWithConnection(hub, conn, logger)
	hub.Register(client)

	env := readEvent(t, client)
	assert.Equal(t, events.MessageTypeConnect, env.Type)
	assert.NotEmpty(t, env.ID)
	assert.False(t, env.Timestamp.IsZero())

	var data events.ConnectData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "connected", data.Status)
	assert.Equal(t, client.id, data.ClientID)

	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastDatasetLoaded(t *testing.T) {
	hub := newTestHub(t)
	first, _ := registerTestClient(t, hub)
	second, _ := registerTestClient(t, hub)

	loadedAt := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	hub.BroadcastDatasetLoaded(events.DatasetLoadedData{
		SessionID:  "sess-123",
		DatasetID:  "ds-456",
		SourceName: "export.xlsx",
		Sheet:      "All posts",
		TotalRows:  42,
		LoadedAt:   loadedAt,
	})

	for _, client := range []*Client{first, second} {
		env := readEvent(t, client)
		assert.Equal(t, events.MessageTypeDatasetLoaded, env.Type)
		assert.NotEmpty(t, env.ID)

		var data events.DatasetLoadedData
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "sess-123", data.SessionID)
		assert.Equal(t, "ds-456", data.DatasetID)
		assert.Equal(t, 42, data.TotalRows)
		assert.True(t, data.LoadedAt.Equal(loadedAt))
	}
}

func TestHub_BroadcastDatasetExpired(t *testing.T) {
	hub := newTestHub(t)
	client, _ := registerTestClient(t, hub)

	expiredAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	hub.BroadcastDatasetExpired(events.DatasetExpiredData{
		SessionID: "sess-123",
		DatasetID: "ds-456",
		ExpiredAt: expiredAt,
	})

	env := readEvent(t, client)
	assert.Equal(t, events.MessageTypeDatasetExpired, env.Type)

	var data events.DatasetExpiredData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "sess-123", data.SessionID)
	assert.True(t, data.ExpiredAt.Equal(expiredAt))
}

func TestHub_BroadcastError(t *testing.T) {
	hub := newTestHub(t)
	client, _ := registerTestClient(t, hub)

	hub.BroadcastError("PARSE_FAILED", "workbook could not be parsed", true, false)

	env := readEvent(t, client)
	assert.Equal(t, events.MessageTypeError, env.Type)

	var data events.ErrorData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "PARSE_FAILED", data.Code)
	assert.True(t, data.Retry)
	assert.False(t, data.Fatal)
}

func TestHub_BroadcastSystemMetrics(t *testing.T) {
	hub := newTestHub(t)
	client, _ := registerTestClient(t, hub)

	hub.BroadcastSystemMetrics(events.SystemMetricsData{
		Goroutines:  12,
		Connections: 1,
		Sessions:    3,
		Timestamp:   time.Now().UTC(),
	})

	env := readEvent(t, client)
	assert.Equal(t, events.MessageTypeSystemMetrics, env.Type)

	var data events.SystemMetricsData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 3, data.Sessions)
}

func TestHub_SlowClientDropped(t *testing.T) {
	hub := newTestHub(t)
	client, _ := registerTestClient(t, hub)

	// Nothing drains the send channel, so fill it to capacity. The next
	// broadcast cannot queue and must evict the client.
	for i := 0; i < cap(client.send); i++ {
		client.send <- []byte("backlog")
	}

	hub.BroadcastError("OVERFLOW", "buffer test", false, false)

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	hub := newTestHub(t)
	client, _ := registerTestClient(t, hub)

	hub.unregister <- client

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)

	_, open := <-client.send
	assert.False(t, open)
}

func TestHub_StopClosesClients(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(logger, config.WebSocketConfig{})
	hub.Start()

	client, _ := registerTestClient(t, hub)
	hub.Stop()

	assert.Equal(t, 0, hub.ClientCount())
	_, open := <-client.send
	assert.False(t, open)

	// Stopping twice must not panic.
	hub.Stop()
}

func TestHub_GetHubMetrics(t *testing.T) {
	hub := newTestHub(t)
	client, _ := registerTestClient(t, hub)

	hub.BroadcastError("X", "metrics test", false, false)
	readEvent(t, client)

	// The sent counter is incremented by the hub loop after the message is
	// queued, so poll rather than assert immediately.
	assert.Eventually(t, func() bool {
		return hub.GetHubMetrics()["messages_sent"].(int64) >= 1
	}, time.Second, 10*time.Millisecond)

	metrics := hub.GetHubMetrics()
	assert.Equal(t, 1, metrics["active_clients"])
	assert.Equal(t, int64(1), metrics["total_connections"])
	assert.Equal(t, int64(0), metrics["connection_errors"])

	hub.RecordConnectionError()
	metrics = hub.GetHubMetrics()
	assert.Equal(t, int64(1), metrics["connection_errors"])
}

func TestHub_BroadcastQueueFullDrops(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	// Not started: nothing consumes the broadcast queue.
	hub := NewHub(logger, config.WebSocketConfig{})

	for i := 0; i < broadcastBuffer+5; i++ {
		hub.BroadcastError("FLOOD", "queue test", false, false)
	}

	metrics := hub.GetHubMetrics()
	assert.Equal(t, int64(5), metrics["messages_dropped"])
}

func TestNewHub_DefaultsKeepaliveTiming(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	hub := NewHub(logger, config.WebSocketConfig{})
	assert.Equal(t, 60*time.Second, hub.pongWait)
	assert.Equal(t, 54*time.Second, hub.pingPeriod)

	// Ping period must stay below the pong wait.
	hub = NewHub(logger, config.WebSocketConfig{PingPeriod: 2 * time.Minute, PongWait: time.Minute})
	assert.Equal(t, 54*time.Second, hub.pingPeriod)
}
