package fsm

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/otcheredev/pcd-manager/internal/codec"
	"github.com/otcheredev/pcd-manager/internal/dim"
	"github.com/otcheredev/pcd-manager/internal/extconfig"
	"github.com/otcheredev/pcd-manager/internal/service"
	"github.com/otcheredev/pcd-manager/internal/stdconfig"
)

// Transport is the outbound half of the transport contract in §6:
// send(bytes) -> Result<(), LinkError>. Framing (choice+length) is
// already applied by the caller; Transport only moves bytes.
type Transport interface {
	Send(frame []byte) error
}

// Timer is the per-connection logical timer of §3: a new count_timeout
// replaces any prior timer; reset_timeout cancels it. One Timer backs
// exactly one Context.
type Timer interface {
	Arm(seconds int, onExpiry func())
	Cancel()
}

// DataList is the payload handed to on_device_available and
// on_measurement_data_updated: the set of sub-objects whose state
// changed, snapshotted at callback time.
type DataList struct {
	Objects []*dim.Object
}

// Callbacks are the application-facing notifications of §6.
type Callbacks struct {
	OnDeviceAvailable        func(DataList)
	OnMeasurementDataUpdated func(DataList)
	OnDisassociated          func(DisassociateReason)
}

// Context is one connection context per §3: it owns exactly one MDS
// mirror, FSM state, pending-request table, timer slot, and transport
// reference. It is not safe for concurrent use — §5 mandates a single
// cooperative thread of control per connection.
type Context struct {
	state State
	role  Role

	mds       *dim.MDS
	table     *service.Table
	transport Transport
	timer     Timer

	catalogue *stdconfig.Catalogue
	registry  extconfig.Registry

	localSystemID  []byte
	peerSystemID   []byte
	configReportID uint16

	callbacks Callbacks
	log       zerolog.Logger

	// background is used for registry lookups/registers, which may hit a
	// database; the connection's own event loop is never blocked on
	// network I/O by anything else (§5's no-suspension-points rule).
	background context.Context
}

// NewContext constructs a fresh Disconnected connection context. localSystemID
// identifies this Manager in outbound AARQs.
func NewContext(localSystemID []byte, transport Transport, timer Timer, catalogue *stdconfig.Catalogue, registry extconfig.Registry, callbacks Callbacks, logger zerolog.Logger) *Context {
	return &Context{
		state:         Disconnected,
		role:          RoleManager,
		mds:           dim.Create(),
		table:         service.NewTable(),
		transport:     transport,
		timer:         timer,
		catalogue:     catalogue,
		registry:      registry,
		localSystemID: localSystemID,
		callbacks:     callbacks,
		log:           logger,
		background:    context.Background(),
	}
}

// State returns the context's current FSM state.
func (c *Context) State() State { return c.state }

// MDS returns the connection's object mirror, for read-only inspection
// by the application surface (e.g. rendering a Get response).
func (c *Context) MDS() *dim.MDS { return c.mds }

func (c *Context) setState(to State) {
	from := c.state
	c.state = to
	c.log.Debug().Stringer("from", from).Stringer("to", to).Msg("fsm: state transition")
}

func (c *Context) send(a codec.APDU) error {
	w := newFrameWriter(a)
	return c.transport.Send(w)
}

// teardown cancels the timer, drains every pending request with
// Aborted, resets to Unassociated, and notifies the application. It is
// the single exit path shared by abort, link-down, release-complete,
// and config-rejected-timeout handling.
func (c *Context) teardown(reason DisassociateReason) {
	c.timer.Cancel()
	c.table.DrainAborted()
	c.mds.Destroy()
	c.peerSystemID = nil
	c.configReportID = 0
	c.setState(Unassociated)
	if c.callbacks.OnDisassociated != nil {
		c.callbacks.OnDisassociated(reason)
	}
}
