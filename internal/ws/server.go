package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/trego/provider/internal/job"
)

const subscriberBuffer = 16

// SubscriberGauge tracks connected subscribers.
type SubscriberGauge interface {
	SubscriberConnected()
	SubscriberDisconnected()
}

// Hub fans job events out to websocket subscribers. It implements job.Publisher.
type Hub struct {
	log          logrus.FieldLogger
	writeTimeout time.Duration
	gauge        SubscriberGauge

	subsMu sync.RWMutex
	subs   map[string]chan job.Event
}

func NewHub(log logrus.FieldLogger, writeTimeout time.Duration, gauge SubscriberGauge) *Hub {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Hub{
		log:          log,
		writeTimeout: writeTimeout,
		gauge:        gauge,
		subs:         make(map[string]chan job.Event),
	}
}

// Publish never blocks; a subscriber whose buffer is full misses the event.
func (h *Hub) Publish(e job.Event) {
	h.subsMu.RLock()
	defer h.subsMu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- e:
		default:
			h.log.WithField("subscriber_id", id).Warn("subscriber lagging, event dropped")
		}
	}
}

func (h *Hub) Count() int {
	h.subsMu.RLock()
	defer h.subsMu.RUnlock()
	return len(h.subs)
}

func (h *Hub) register(id string) chan job.Event {
	ch := make(chan job.Event, subscriberBuffer)
	h.subsMu.Lock()
	h.subs[id] = ch
	h.subsMu.Unlock()
	if h.gauge != nil {
		h.gauge.SubscriberConnected()
	}
	return ch
}

func (h *Hub) unregister(id string) {
	h.subsMu.Lock()
	delete(h.subs, id)
	h.subsMu.Unlock()
	if h.gauge != nil {
		h.gauge.SubscriberDisconnected()
	}
}

func (h *Hub) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.WithError(err).Warn("websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "goodbye")

	id := uuid.NewString()
	log := h.log.WithField("subscriber_id", id)
	events := h.register(id)
	defer h.unregister(id)

	ack := AckMessage{
		Type:         TypeAck,
		SubscriberID: id,
		Message:      "Subscribed to job updates",
	}
	if err := h.write(r.Context(), conn, ack); err != nil {
		log.WithError(err).Warn("failed to send ack")
		return
	}
	log.Info("subscriber connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go h.handleMessages(ctx, cancel, conn, log)

	for {
		select {
		case <-ctx.Done():
			log.Info("subscriber disconnected")
			return
		case e := <-events:
			msg := JobUpdatedMessage{Type: TypeJobUpdated, Action: e.Action, Job: e.Job}
			if err := h.write(ctx, conn, msg); err != nil {
				log.WithError(err).Warn("failed to send job update")
				return
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, v any) error {
	ctx, cancel := context.WithTimeout(ctx, h.writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, v)
}

func (h *Hub) handleMessages(ctx context.Context, done context.CancelFunc, conn *websocket.Conn, log logrus.FieldLogger) {
	defer done()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && ctx.Err() == nil {
				log.WithError(err).Debug("websocket read error")
			}
			return
		}

		var msg BaseMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.WithError(err).Debug("invalid message format")
			continue
		}

		switch msg.Type {
		case TypeHeartbeat:
			hb := HeartbeatMessage{Type: TypeHeartbeat, Timestamp: time.Now().UTC()}
			if err := h.write(ctx, conn, hb); err != nil {
				return
			}
		case TypeQuit:
			return
		default:
			log.WithField("type", msg.Type).Debug("unknown message type")
		}
	}
}
