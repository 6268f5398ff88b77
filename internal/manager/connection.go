// Package manager hosts one Connection per live TCP association: the
// transport socket, the per-connection fsm.Context, and the goroutine
// that pumps inbound frames into it. Everything inside fsm/service
// still runs to completion with no internal suspension points (§5); the
// concurrency this package adds is strictly at the edges — a single
// mutex serialises every entry point into a Context so the read loop,
// timer callbacks, and application requests never interleave inside it.
package manager

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/otcheredev/pcd-manager/internal/extconfig"
	"github.com/otcheredev/pcd-manager/internal/fsm"
	"github.com/otcheredev/pcd-manager/internal/stdconfig"
	"github.com/otcheredev/pcd-manager/internal/transport"
)

// connTransport adapts *transport.Conn to fsm.Transport.
type connTransport struct {
	c *transport.Conn
}

func (t connTransport) Send(frame []byte) error { return t.c.Send(frame) }

// Connection owns one association's wire socket and FSM context, and
// serialises access to both behind mu.
type Connection struct {
	ID string

	mu      sync.Mutex
	conn    *transport.Conn
	ctx     *fsm.Context
	timer   *singleShotTimer
	log     zerolog.Logger
	closing bool
}

// NewConnection wires a freshly accepted/dialled transport.Conn into a
// new fsm.Context and returns the Connection ready for Serve.
func NewConnection(id string, conn *transport.Conn, localSystemID []byte, catalogue *stdconfig.Catalogue, registry extconfig.Registry, callbacks fsm.Callbacks, logger zerolog.Logger) *Connection {
	timer := newSingleShotTimer()
	c := &Connection{ID: id, conn: conn, timer: timer, log: logger}

	wrappedCallbacks := callbacks
	c.ctx = fsm.NewContext(localSystemID, connTransport{conn}, timerGuard{c}, catalogue, registry, wrappedCallbacks, logger)
	c.ctx.OnLinkUp()
	return c
}

// timerGuard wraps singleShotTimer so expiry callbacks re-enter the
// Connection's mutex before touching the fsm.Context, since
// time.AfterFunc invokes onExpiry on its own goroutine.
type timerGuard struct {
	c *Connection
}

func (g timerGuard) Arm(seconds int, onExpiry func()) {
	g.c.timer.Arm(seconds, func() {
		g.c.mu.Lock()
		defer g.c.mu.Unlock()
		if g.c.closing {
			return
		}
		onExpiry()
	})
}

func (g timerGuard) Cancel() {
	g.c.timer.Cancel()
}

// Serve pumps inbound frames into the FSM until the socket closes or
// Close is called. Intended to run on its own goroutine per connection.
func (c *Connection) Serve() {
	defer c.teardownOnLinkDown()
	for {
		frame, err := c.conn.ReadFrame()
		if err != nil {
			c.log.Info().Err(err).Str("connection_id", c.ID).Msg("manager: connection read loop ending")
			return
		}
		c.mu.Lock()
		if c.closing {
			c.mu.Unlock()
			return
		}
		if err := c.ctx.OnReceive(frame); err != nil {
			c.log.Warn().Err(err).Str("connection_id", c.ID).Msg("manager: error handling inbound frame")
		}
		c.mu.Unlock()
	}
}

func (c *Connection) teardownOnLinkDown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closing {
		return
	}
	c.ctx.OnLinkDown()
}

// Close tears down the connection from the application side (e.g. the
// registry's idle sweep).
func (c *Connection) Close() error {
	c.mu.Lock()
	c.closing = true
	c.mu.Unlock()
	return c.conn.Close()
}

// RequestAssociate starts an association on this connection.
func (c *Connection) RequestAssociate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx.RequestAssociate()
}

// RequestRelease begins an orderly release.
func (c *Connection) RequestRelease() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx.RequestRelease()
}

// RequestAbort tears the association down immediately.
func (c *Connection) RequestAbort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx.RequestAbort()
}

// State reports the connection's current FSM state.
func (c *Connection) State() fsm.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx.State()
}

// WithContext runs fn against the connection's fsm.Context under the
// connection's mutex — the one sanctioned way for application code
// (httpapi handlers, CLI commands) to reach request_get_mds-style
// operations without racing the read loop.
func (c *Connection) WithContext(fn func(*fsm.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.ctx)
}
