package fsm

import (
	"github.com/otcheredev/pcd-manager/internal/codec"
)

// RequestRelease implements req_release: sends RLRQ and moves to
// Disassociating with the release timeout armed. Legal from any state
// that has an association up (everything but Disconnected/Unassociated).
func (c *Context) RequestRelease() error {
	if c.state == Disconnected || c.state == Unassociated {
		return &ErrInvalidForState{State: c.state, Op: "req_release"}
	}
	a := codec.APDU{Choice: codec.ChoiceRLRQ, Body: codec.RLRQApdu{Reason: codec.ReleaseReasonNormal}}
	if err := c.send(a); err != nil {
		return err
	}
	c.setState(Disassociating)
	c.timer.Arm(TimeoutRelease, func() { c.onReleaseTimeout() })
	return nil
}

func (c *Context) onReleaseTimeout() {
	c.log.Warn().Msg("fsm: release timed out waiting for RLRE")
	c.abortLocal()
}

// handleRLRE processes rx_rlre: only legal in Disassociating, it
// completes the release we initiated.
func (c *Context) handleRLRE(body codec.RLREApdu) {
	if c.state != Disassociating {
		c.log.Debug().Msg("fsm: rx_rlre outside Disassociating ignored")
		return
	}
	c.timer.Cancel()
	c.teardown(ReasonReleasedByUs)
}

// handleRLRQ processes rx_rlrq: legal from any associated state, per
// §4.5's "the peer may release at any time". Replies RLRE with
// ReleaseReasonNormal and tears down.
func (c *Context) handleRLRQ(body codec.RLRQApdu) {
	if c.state == Disconnected || c.state == Unassociated {
		c.log.Debug().Msg("fsm: rx_rlrq outside an association ignored")
		return
	}
	a := codec.APDU{Choice: codec.ChoiceRLRE, Body: codec.RLREApdu{Reason: codec.ReleaseReasonNormal}}
	if err := c.send(a); err != nil {
		c.log.Warn().Err(err).Msg("fsm: failed to send RLRE")
	}
	c.teardown(ReasonReleasedByPeer)
}

// handleABRT processes rx_abrt: legal from any state with an
// association up; drops straight to Unassociated without replying.
func (c *Context) handleABRT(body codec.ABRTApdu) {
	if c.state == Disconnected || c.state == Unassociated {
		return
	}
	c.teardown(ReasonAborted)
}
