package events

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

// client is one websocket subscriber. An empty ship filter receives every
// event.
type client struct {
	id   string
	conn *websocket.Conn
	send chan Event

	mu    sync.Mutex
	ships map[string]bool
}

func (c *client) wants(event Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.ships) == 0 || event.Type == TypeStatus {
		return true
	}
	for _, id := range event.ShipIDs {
		if c.ships[id] {
			return true
		}
	}
	return false
}

func (c *client) subscribe(shipIDs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ships = make(map[string]bool, len(shipIDs))
	for _, id := range shipIDs {
		if id != "" {
			c.ships[id] = true
		}
	}
}

// Hub fans published events out to connected clients. A client whose buffer
// is full is dropped rather than slowing the ledger down.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan Event
	register   chan *client
	unregister chan *client
	stop       chan struct{}
	stopOnce   sync.Once
	count      chan int

	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHub starts a hub.
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		stop:       make(chan struct{}),
		count:      make(chan int),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.logger.Debug("Event subscriber connected", zap.String("client_id", c.id))

		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
				h.logger.Debug("Event subscriber disconnected", zap.String("client_id", c.id))
			}

		case event := <-h.broadcast:
			for c := range h.clients {
				if !c.wants(event) {
					continue
				}
				select {
				case c.send <- event:
				default:
					delete(h.clients, c)
					close(c.send)
					h.logger.Warn("Dropping slow event subscriber", zap.String("client_id", c.id))
				}
			}

		case h.count <- len(h.clients):

		case <-h.stop:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		}
	}
}

// Publish implements Publisher. It never blocks; events are dropped when
// the hub is saturated.
func (h *Hub) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case h.broadcast <- event:
	case <-h.stop:
	default:
		h.logger.Warn("Event broadcast channel full, dropping event", zap.String("type", string(event.Type)))
	}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	select {
	case n := <-h.count:
		return n
	case <-h.stop:
		return 0
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// Serve upgrades the request and streams events matching shipIDs until the
// client goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, shipIDs []string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	c := &client{id: uuid.New().String(), conn: conn, send: make(chan Event, sendBuffer)}
	c.subscribe(shipIDs)
	c.send <- Event{Type: TypeStatus, Reference: c.id, Timestamp: time.Now().UTC()}

	select {
	case h.register <- c:
	case <-h.stop:
		conn.Close()
		return fmt.Errorf("event hub closed")
	}

	go h.writePump(c)
	go h.readPump(c)
	return nil
}

// readPump handles subscription changes and detects closed connections.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.stop:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Event
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("Event subscriber read failed", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}
		if msg.Type == TypeSubscribe {
			c.subscribe(msg.ShipIDs)
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
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
