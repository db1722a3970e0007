package inspect

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phanxgames/grove"
)

// logger follows grove.SetLogger.
func logger() *slog.Logger { return grove.Logger().With("pkg", "inspect") }

const (
	// DefaultInterval is how often a Publisher snapshots the scene.
	DefaultInterval = 250 * time.Millisecond

	pingPeriod   = 30 * time.Second
	writeTimeout = 40 * time.Second
	sendBuffer   = 8
)

// Publisher holds the latest snapshot of a scene and fans it out to
// websocket clients. Attach it to the scene with AttachPhysics; it
// snapshots at most once per Interval of simulated time.
type Publisher struct {
	Interval time.Duration

	elapsed   time.Duration
	frame     uint64
	published bool

	mu      sync.Mutex
	last    Snapshot
	encoded []byte
	clients map[*client]bool
}

// NewPublisher returns a Publisher using DefaultInterval.
func NewPublisher() *Publisher {
	return &Publisher{
		Interval: DefaultInterval,
		clients:  make(map[*client]bool),
	}
}

// Update implements grove.PhysicsSystem for the scene.
func (p *Publisher) Update(s *grove.Scene, dt time.Duration) error {
	p.frame++
	p.elapsed += dt
	if p.published && p.elapsed < p.Interval {
		return nil
	}
	p.elapsed = 0
	p.published = true
	p.Publish(Take(s, p.frame))
	return nil
}

// Publish stores snap as the latest snapshot and sends it to every client.
// Clients that cannot keep up miss snapshots rather than stall the caller.
func (p *Publisher) Publish(snap Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		logger().Error("encode snapshot", "err", err)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = snap
	p.encoded = data
	for c := range p.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// Latest returns the last published snapshot and whether there is one.
func (p *Publisher) Latest() (Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.encoded != nil
}

// Clients returns the number of connected websocket clients.
func (p *Publisher) Clients() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.clients)
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// register adds conn as a client and starts its write pump. The client
// receives the latest snapshot first.
func (p *Publisher) register(conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	p.mu.Lock()
	p.clients[c] = true
	if p.encoded != nil {
		c.send <- p.encoded
	}
	p.mu.Unlock()
	go p.writePump(c)
	go p.readPump(c)
	return c
}

func (p *Publisher) unregister(c *client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.clients[c] {
		delete(p.clients, c)
		close(c.send)
	}
}

// Close disconnects every client.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for c := range p.clients {
		delete(p.clients, c)
		close(c.send)
	}
}

func (p *Publisher) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.unregister(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger().Debug("ws write", "err", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger().Debug("ws ping", "err", err)
				return
			}
		}
	}
}

// readPump discards client messages and unregisters the client once the
// connection drops.
func (p *Publisher) readPump(c *client) {
	defer p.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
