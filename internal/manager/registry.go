package manager

import (
	"sync"
	"time"

	"github.com/otcheredev/pcd-manager/internal/fsm"
)

// Registry tracks every live Connection, grounded on the same
// mutex-guarded-slice style as the teacher's connection pool, but
// adapted to long-lived associations: entries are added on accept and
// removed on teardown, never reused across associations.
type Registry struct {
	mu          sync.Mutex
	connections map[string]*Connection
	idleCheck   *time.Ticker
	done        chan struct{}
}

// NewRegistry starts a registry with a periodic idle sweep: every
// idleTimeout, each connection found in Unassociated at that moment is
// closed, catching Agents that connected and never sent an AARQ. How
// long a connection has been in Unassociated is not tracked.
func NewRegistry(idleTimeout time.Duration) *Registry {
	r := &Registry{
		connections: make(map[string]*Connection),
		idleCheck:   time.NewTicker(idleTimeout),
		done:        make(chan struct{}),
	}
	go r.sweep(idleTimeout)
	return r
}

// Add registers a newly accepted connection.
func (r *Registry) Add(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connections[c.ID] = c
}

// Remove drops a connection from the registry, typically called once
// its Serve loop returns.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.connections, id)
}

// Get returns the connection for id, if still registered.
func (r *Registry) Get(id string) (*Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.connections[id]
	return c, ok
}

// List snapshots every currently registered connection id and state.
func (r *Registry) List() []ConnectionSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ConnectionSummary, 0, len(r.connections))
	for id, c := range r.connections {
		out = append(out, ConnectionSummary{ID: id, State: c.State()})
	}
	return out
}

// ConnectionSummary is the read-only view the httpapi admin endpoints
// render.
type ConnectionSummary struct {
	ID    string
	State fsm.State
}

func (r *Registry) sweep(idleTimeout time.Duration) {
	for {
		select {
		case <-r.idleCheck.C:
			r.closeIdle()
		case <-r.done:
			return
		}
	}
}

func (r *Registry) closeIdle() {
	r.mu.Lock()
	victims := make([]*Connection, 0)
	for _, c := range r.connections {
		if c.State() == fsm.Unassociated {
			victims = append(victims, c)
		}
	}
	r.mu.Unlock()

	for _, c := range victims {
		_ = c.Close()
	}
}

// Close stops the idle sweep and closes every registered connection.
func (r *Registry) Close() error {
	close(r.done)
	r.idleCheck.Stop()

	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.connections))
	for _, c := range r.connections {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
	return nil
}
