package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Hub fans encoded frames out to connected websocket mirrors.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}

	buffer       int
	writeTimeout time.Duration
	logger       *slog.Logger

	connected prometheus.Gauge
	sent      prometheus.Counter
	dropped   prometheus.Counter
}

type client struct {
	conn   *websocket.Conn
	remote string
	send   chan []byte
	once   sync.Once
}

func newHub(reg prometheus.Registerer, namespace string, buffer int, writeTimeout time.Duration, logger *slog.Logger) *Hub {
	factory := promauto.With(reg)
	return &Hub{
		clients:      make(map[*client]struct{}),
		buffer:       buffer,
		writeTimeout: writeTimeout,
		logger:       logger,
		connected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Number of connected websocket mirrors",
		}),
		sent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "frames_sent_total",
			Help:      "Total number of frames queued to websocket mirrors",
		}),
		dropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "clients_dropped_total",
			Help:      "Total number of mirrors dropped for falling behind",
		}),
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// add registers conn and queues first as its first frame.
func (h *Hub) add(conn *websocket.Conn, first []byte) *client {
	c := &client{conn: conn, remote: conn.RemoteAddr().String(), send: make(chan []byte, h.buffer)}
	c.send <- first

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.connected.Inc()
	h.sent.Inc()
	go h.writePump(c)
	return c
}

// remove unregisters c and closes its connection. It is idempotent.
func (h *Hub) remove(c *client) {
	c.once.Do(func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()

		close(c.send)
		h.connected.Dec()
	})
}

// Broadcast queues data on every client. A client whose queue is full is
// dropped rather than allowed to stall reconciliation.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- data:
			h.sent.Inc()
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow websocket client", "remote", c.remote)
		h.dropped.Inc()
		h.remove(c)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	all := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.Unlock()

	for _, c := range all {
		h.remove(c)
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			h.logger.Debug("websocket write failed", "error", err)
			h.remove(c)
			for range c.send {
			}
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readPump discards inbound messages until the peer goes away.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", "error", err)
			}
			return
		}
	}
}
