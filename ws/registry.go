package ws

import (
	"sync"

	"github.com/google/uuid"
)

// Registry maps authenticated player identities to their live connection.
// It enforces a single live connection per identity: registering an identity
// that already has a connection hands the old one back to the caller to be
// closed.
type Registry struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[uuid.UUID]*Client),
	}
}

// Register stores the client as the live connection for its identity and
// returns the connection it displaced, if any.
func (r *Registry) Register(c *Client) (replaced *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	replaced = r.clients[c.ID()]
	r.clients[c.ID()] = c
	return replaced
}

// Unregister removes the client's mapping and reports whether it was still
// the live connection. A superseded connection must not evict its
// replacement, so the mapping is only cleared when it still points at c.
func (r *Registry) Unregister(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.clients[c.ID()]; ok && current == c {
		delete(r.clients, c.ID())
		return true
	}
	return false
}

// Get returns the live connection for an identity.
func (r *Registry) Get(id uuid.UUID) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[id]
	return c, ok
}
