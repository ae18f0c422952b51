package realtime

import "sync"

// Registry maps user ids to their live connection. In-memory and
// single-process: presence is lost on restart, and running more than
// one instance needs an external shared registry instead.
type Registry struct {
	mu      sync.RWMutex
	clients map[int]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[int]*Client)}
}

// Register stores the client as the user's live connection. The last
// connection wins; any displaced client is returned so the caller can
// close it.
func (r *Registry) Register(c *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.clients[c.UserID]
	r.clients[c.UserID] = c
	return prev
}

// Unregister removes the entry only when the given client is still
// the one registered. Returns false when a newer connection has
// already taken over.
func (r *Registry) Unregister(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clients[c.UserID] != c {
		return false
	}
	delete(r.clients, c.UserID)
	return true
}

func (r *Registry) Lookup(userID int) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[userID]
	return c, ok
}

// Others snapshots every client except the given user's.
func (r *Registry) Others(userID int) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.clients))
	for id, c := range r.clients {
		if id != userID {
			out = append(out, c)
		}
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
