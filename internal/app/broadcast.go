package app

import (
	"sync"

	"livepoll-service/internal/domain"
	"livepoll-service/internal/metrics"
)

const sendBuffer = 32

// Gateway is the fan-out layer. Each attached connection owns a buffered
// event channel; scoped sends pick the audience (one connection, everyone
// else, or everyone). Slow consumers lose their oldest queued event instead
// of blocking the coordinator.
type Gateway struct {
	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	ch     chan domain.Event
	closed bool
}

func NewGateway() *Gateway {
	return &Gateway{clients: make(map[string]*client)}
}

// Attach registers a connection and returns its event stream. The cancel
// function detaches and closes the stream; it is safe to call twice.
func (g *Gateway) Attach(connID string) (<-chan domain.Event, func()) {
	c := &client{ch: make(chan domain.Event, sendBuffer)}

	g.mu.Lock()
	g.clients[connID] = c
	n := len(g.clients)
	g.mu.Unlock()
	metrics.SetConnectedClients(n)

	cancel := func() { g.Close(connID) }
	return c.ch, cancel
}

// Close detaches a connection and closes its channel so the writer drains
// any queued events and exits.
func (g *Gateway) Close(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.clients[connID]
	if !ok {
		return
	}
	delete(g.clients, connID)
	metrics.SetConnectedClients(len(g.clients))
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}

// ToConn delivers an event to a single connection.
func (g *Gateway) ToConn(connID string, ev domain.Event) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.clients[connID]; ok {
		c.send(ev)
	}
	metrics.IncBroadcast(string(ev.Type))
}

// ToOthers delivers an event to every connection except one.
func (g *Gateway) ToOthers(exceptConnID string, ev domain.Event) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id, c := range g.clients {
		if id == exceptConnID {
			continue
		}
		c.send(ev)
	}
	metrics.IncBroadcast(string(ev.Type))
}

// ToAll delivers an event to every attached connection.
func (g *Gateway) ToAll(ev domain.Event) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range g.clients {
		c.send(ev)
	}
	metrics.IncBroadcast(string(ev.Type))
}

// send never blocks: when the buffer is full the oldest queued event is
// dropped so the consumer converges on the latest state.
func (c *client) send(ev domain.Event) {
	if c.closed {
		return
	}
	select {
	case c.ch <- ev:
	default:
		select {
		case <-c.ch:
		default:
		}
		c.ch <- ev
	}
}
