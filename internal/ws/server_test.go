package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/trego/provider/internal/job"
)

type countingGauge struct {
	connected, disconnected chan struct{}
}

func (g *countingGauge) SubscriberConnected()    { g.connected <- struct{}{} }
func (g *countingGauge) SubscriberDisconnected() { g.disconnected <- struct{}{} }

func dial(t *testing.T, hub *Hub) (*websocket.Conn, context.Context) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleSubscribe))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn, ctx
}

func TestHub_AckThenJobUpdates(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(logger, time.Second, nil)
	conn, ctx := dial(t, hub)

	var ack AckMessage
	require.NoError(t, wsjson.Read(ctx, conn, &ack))
	assert.Equal(t, TypeAck, ack.Type)
	assert.NotEmpty(t, ack.SubscriberID)
	assert.Equal(t, 1, hub.Count())

	hub.Publish(job.Event{Action: job.ActionStart, Job: job.Job{ID: "1", Status: job.StatusEnRoute}})

	var msg JobUpdatedMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, TypeJobUpdated, msg.Type)
	assert.Equal(t, job.ActionStart, msg.Action)
	assert.Equal(t, "1", msg.Job.ID)
	assert.Equal(t, job.StatusEnRoute, msg.Job.Status)
}

func TestHub_Heartbeat(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(logger, time.Second, nil)
	conn, ctx := dial(t, hub)

	var ack AckMessage
	require.NoError(t, wsjson.Read(ctx, conn, &ack))

	require.NoError(t, wsjson.Write(ctx, conn, HeartbeatMessage{Type: TypeHeartbeat}))

	var hb HeartbeatMessage
	require.NoError(t, wsjson.Read(ctx, conn, &hb))
	assert.Equal(t, TypeHeartbeat, hb.Type)
	assert.False(t, hb.Timestamp.IsZero())
}

func TestHub_QuitUnregisters(t *testing.T) {
	logger, _ := test.NewNullLogger()
	gauge := &countingGauge{connected: make(chan struct{}, 1), disconnected: make(chan struct{}, 1)}
	hub := NewHub(logger, time.Second, gauge)
	conn, ctx := dial(t, hub)

	var ack AckMessage
	require.NoError(t, wsjson.Read(ctx, conn, &ack))
	<-gauge.connected

	require.NoError(t, wsjson.Write(ctx, conn, BaseMessage{Type: TypeQuit}))

	select {
	case <-gauge.disconnected:
	case <-ctx.Done():
		t.Fatal("subscriber was not unregistered")
	}
	assert.Equal(t, 0, hub.Count())
}

func TestHub_PublishWithoutSubscribers(t *testing.T) {
	logger, _ := test.NewNullLogger()
	hub := NewHub(logger, 0, nil)

	hub.Publish(job.Event{Action: job.ActionCancel})

	assert.Equal(t, 0, hub.Count())
}
