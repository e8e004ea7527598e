// Package realtime streams simulation frames to UI clients over WebSocket.
package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/neowatch/neowatch/internal/observability"
	"github.com/neowatch/neowatch/internal/utils"
)

// Event is one message on the stream.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Broadcaster manages WebSocket connections and fans events out to all of
// them. A slow consumer never blocks the simulation: the broadcast channel
// drops when full.
type Broadcaster struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan Event
	done       chan struct{}

	log     *logrus.Entry
	metrics *observability.Metrics
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the simulator serves a local UI
	},
}

// NewBroadcaster creates an event broadcaster.
func NewBroadcaster(log *logrus.Logger, metrics *observability.Metrics) *Broadcaster {
	return &Broadcaster{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan Event, 256),
		done:       make(chan struct{}),
		log:        utils.Component(log, "realtime"),
		metrics:    metrics,
	}
}

// Start begins the broadcaster event loop. Run on its own goroutine.
func (b *Broadcaster) Start() {
	for {
		select {
		case conn := <-b.register:
			b.clients[conn] = true
			b.setClientGauge()
			b.log.Debugf("client connected, total %d", len(b.clients))

		case conn := <-b.unregister:
			if _, ok := b.clients[conn]; ok {
				delete(b.clients, conn)
				conn.Close()
			}
			b.setClientGauge()
			b.log.Debugf("client disconnected, total %d", len(b.clients))

		case event := <-b.broadcast:
			for conn := range b.clients {
				if err := conn.WriteJSON(event); err != nil {
					b.log.Debugf("dropping client: %v", err)
					delete(b.clients, conn)
					conn.Close()
				}
			}
			b.setClientGauge()

		case <-b.done:
			for conn := range b.clients {
				conn.Close()
				delete(b.clients, conn)
			}
			b.setClientGauge()
			return
		}
	}
}

// Stop terminates the event loop and closes all clients.
func (b *Broadcaster) Stop() {
	close(b.done)
}

// Broadcast queues an event for all connected clients, dropping it when
// the queue is full.
func (b *Broadcaster) Broadcast(eventType string, payload interface{}) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	select {
	case b.broadcast <- event:
	default:
		b.log.Warnf("broadcast channel full, dropping %s", eventType)
	}
}

func (b *Broadcaster) setClientGauge() {
	if b.metrics != nil {
		b.metrics.WSClients.Set(float64(len(b.clients)))
	}
}

// HandleWebSocket upgrades the request and registers the connection.
func (b *Broadcaster) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warnf("websocket upgrade: %v", err)
		return
	}

	b.register <- conn

	go func() {
		defer func() { b.unregister <- conn }()

		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// StreamFrames samples the source at the given cadence and broadcasts a
// simulation_frame event until the context is cancelled.
func (b *Broadcaster) StreamFrames(ctx context.Context, interval time.Duration, source func() interface{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		case <-ticker.C:
			b.Broadcast("simulation_frame", source())
			if b.metrics != nil {
				b.metrics.WSFrames.Inc()
			}
		}
	}
}
