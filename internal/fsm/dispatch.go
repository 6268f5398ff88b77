package fsm

import (
	"errors"

	"github.com/otcheredev/pcd-manager/internal/bytelib"
	"github.com/otcheredev/pcd-manager/internal/codec"
)

// OnReceive decodes one framed APDU off the wire and routes it by the
// connection's current state, per §4.5's dispatch table. Tie-breaks:
// (a) an APDU that is well-formed but not legal for the current state
// is silently dropped, except that a ROIV event report arriving in a
// state that does not accept it is rejected via rejectROIVForState; (b) an
// unrecognised outer or inner choice is ignored, never escalated to an
// abort; (c) truncated/malformed input is logged and dropped — a
// malformed frame from the peer is not grounds for tearing down the
// association by itself.
func (c *Context) OnReceive(frame []byte) error {
	a, err := codec.DecodeAPDU(bytelib.NewReader(frame))
	if err != nil {
		if errors.Is(err, codec.ErrUnknownChoice) {
			c.log.Debug().Msg("fsm: unknown apdu choice ignored")
			return nil
		}
		c.log.Warn().Err(err).Msg("fsm: malformed apdu dropped")
		return nil
	}

	switch body := a.Body.(type) {
	case codec.AAREApdu:
		c.handleAARE(body)
	case codec.RLRQApdu:
		c.handleRLRQ(body)
	case codec.RLREApdu:
		c.handleRLRE(body)
	case codec.ABRTApdu:
		c.handleABRT(body)
	case codec.AARQApdu:
		c.log.Debug().Msg("fsm: rx_aarq ignored, Manager never receives an association request")
	case codec.PRSTApdu:
		c.dispatchData(body.Data)
	default:
		c.log.Debug().Msg("fsm: unrecognised apdu body ignored")
	}
	return nil
}

func (c *Context) dispatchData(d codec.DataAPDU) {
	switch msg := d.Message.(type) {
	case codec.ROIVConfirmedEventReport:
		if msg.EventType == codec.MDCNotiConfig {
			c.handleConfigEventReport(d.InvokeID, msg)
			return
		}
		c.handleOperatingEventReport(d.InvokeID, msg)
	case codec.ROER:
		c.handleROER(d.InvokeID, msg)
	case codec.RORJ:
		c.handleRORJ(d.InvokeID, msg)
	case codec.RORSConfirmedGet, codec.RORSConfirmedSet, codec.RORSConfirmedAction, codec.RORSConfirmedEventReport:
		c.handleOperatingResponse(d.InvokeID, msg)
	default:
		c.log.Debug().Msg("fsm: unrecognised DATA-apdu message ignored")
	}
}
