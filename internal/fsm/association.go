package fsm

import (
	"github.com/otcheredev/pcd-manager/internal/codec"
)

// OnLinkUp implements the link_up transport event: a freshly accepted
// or dialled connection becomes Unassociated, the only state req_assoc
// is legal from.
func (c *Context) OnLinkUp() {
	if c.state != Disconnected {
		return
	}
	c.setState(Unassociated)
}

// RequestAssociate implements req_assoc: sends AARQ and moves to
// Associating with an association timeout armed. Per §4.5, only legal
// from Unassociated.
func (c *Context) RequestAssociate() error {
	if c.state != Unassociated {
		return &ErrInvalidForState{State: c.state, Op: "req_assoc"}
	}

	a := codec.APDU{
		Choice: codec.ChoiceAARQ,
		Body: codec.AARQApdu{Info: codec.AssociationInfo{
			ProtocolVersion: 1,
			SystemID:        c.localSystemID,
		}},
	}
	if err := c.send(a); err != nil {
		return err
	}
	c.setState(Associating)
	c.timer.Arm(TimeoutConfiguring, func() { c.onAssociationTimeout() })
	return nil
}

func (c *Context) onAssociationTimeout() {
	c.log.Warn().Msg("fsm: association timed out")
	c.abortLocal()
}

// handleAARE processes rx_aare in the Associating state: the core of
// the Association step in §4.5. accept examines whether the reported
// config_report_id is already known (builtin or cached extended); if
// so it installs immediately and moves to Operating, otherwise it
// drops to WaitingForConfig pending the Agent's ROIV-confirmed-event-report.
func (c *Context) handleAARE(body codec.AAREApdu) {
	if c.state != Associating {
		c.log.Debug().Msg("fsm: rx_aare outside Associating ignored")
		return
	}
	c.timer.Cancel()

	if !body.Accepted() {
		c.log.Warn().Uint16("result", uint16(body.Result)).Msg("fsm: association rejected by peer")
		c.abortLocal()
		return
	}

	c.peerSystemID = body.Info.SystemID
	c.configReportID = body.Info.ConfigReportID

	if objects, ok := c.catalogue.Lookup(c.configReportID); ok {
		c.installConfiguration(objects)
		return
	}
	if objects, found, err := c.registry.Lookup(c.background, c.peerSystemID, c.configReportID); err == nil && found {
		c.installConfiguration(objects)
		return
	}

	c.setState(WaitingForConfig)
	c.timer.Arm(TimeoutConfiguring, func() { c.onConfiguringTimeout() })
}

func (c *Context) onConfiguringTimeout() {
	c.log.Warn().Msg("fsm: configuring timed out waiting for ConfigReport")
	c.abortLocal()
}

// installConfiguration instantiates the mirror's sub-objects and moves
// straight to Operating, used both for the "already known at AARE time"
// fast path and for a freshly-accepted ConfigReport in CheckingConfig.
func (c *Context) installConfiguration(objects []codec.ConfigObject) {
	c.mds.ConfigureOperating(objects)
	c.table.Init()
	c.setState(Operating)
	if c.callbacks.OnDeviceAvailable != nil {
		c.callbacks.OnDeviceAvailable(DataList{Objects: c.mds.Objects()})
	}
}

// abortLocal implements req_abort / internal abort-on-timeout: send
// ABRT, then teardown. A link-down event calls teardown directly
// without sending ABRT (§5 Cancellation).
func (c *Context) abortLocal() {
	_ = c.send(codec.APDU{Choice: codec.ChoiceABRT, Body: codec.ABRTApdu{Reason: codec.AbortReasonUndefined}})
	c.teardown(ReasonAborted)
}

// RequestAbort implements req_abort from any state.
func (c *Context) RequestAbort() {
	c.abortLocal()
}

// OnLinkDown implements the link_down transport event: identical to
// abort but without sending ABRT, since the link is already gone.
func (c *Context) OnLinkDown() {
	if c.state == Disconnected || c.state == Unassociated {
		return
	}
	c.teardown(ReasonLinkDown)
}
