package fsm

import (
	"time"

	"github.com/otcheredev/pcd-manager/internal/bytelib"
	"github.com/otcheredev/pcd-manager/internal/codec"
	"github.com/otcheredev/pcd-manager/internal/dim"
	"github.com/otcheredev/pcd-manager/internal/service"
)

// handleOperatingEventReport applies an incoming measurement
// notification to the mirror and emits on_measurement_data_updated, per
// §4.5 Operating. Any event_type other than the scan-report family is
// acknowledged but otherwise ignored (this Manager has no other
// consumer for it).
func (c *Context) handleOperatingEventReport(invokeID uint16, msg codec.ROIVConfirmedEventReport) {
	if c.state != Operating {
		c.rejectROIVForState(invokeID, msg.Choice())
		return
	}

	touched := map[uint16]bool{}
	r := bytelib.NewReader(msg.EventInfo)

	switch msg.EventType {
	case codec.MDCNotiScanReportVar, codec.MDCNotiScanReportVarPersonID:
		report := codec.DecodeScanReportInfoVar(r)
		for _, obs := range report.ObsScanList {
			c.applyObservation(obs.ObjHandle, obs.ObsValue)
			touched[obs.ObjHandle] = true
		}
	case codec.MDCNotiScanReportFixed, codec.MDCNotiScanReportFixedPersonID:
		report := codec.DecodeScanReportInfoFixed(r)
		for _, obs := range report.ObsScanList {
			c.applyObservation(obs.ObjHandle, obs.Value)
			touched[obs.ObjHandle] = true
		}
	default:
		c.log.Debug().Uint16("event_type", msg.EventType).Msg("fsm: unrecognised event_type in Operating, acknowledged only")
	}

	c.ackEventReport(invokeID, msg.EventType)

	if len(touched) > 0 && c.callbacks.OnMeasurementDataUpdated != nil {
		c.deliverTouched(touched)
	}
}

func (c *Context) deliverTouched(touched map[uint16]bool) {
	objs := make([]*dim.Object, 0, len(touched))
	for handle := range touched {
		if o := c.mds.GetByHandle(handle); o != nil {
			objs = append(objs, o)
		}
	}
	c.callbacks.OnMeasurementDataUpdated(DataList{Objects: objs})
}

func (c *Context) applyObservation(handle uint16, value []byte) {
	obj := c.mds.GetByHandle(handle)
	if obj == nil {
		return
	}
	obj.ApplyScanValue(value)
}

func (c *Context) ackEventReport(invokeID uint16, eventType uint16) {
	msg := codec.RORSConfirmedEventReport{EventReportResultSimple: codec.EventReportResultSimple{
		ObjHandle: codec.MDSHandle,
		EventType: eventType,
	}}
	a := codec.APDU{Choice: codec.ChoicePRST, Body: codec.PRSTApdu{Data: codec.DataAPDU{InvokeID: invokeID, Message: msg}}}
	if err := c.send(a); err != nil {
		c.log.Warn().Err(err).Msg("fsm: failed to ack event report")
	}
}

// handleOperatingResponse routes an inbound RORS-* to the pending-request
// table, per §4.4's check_known_invoke_id / request_retired. ROER and
// RORJ never match a pending entry's expected RORS-* choice and are
// routed separately by handleROER/handleRORJ.
func (c *Context) handleOperatingResponse(invokeID uint16, msg codec.DataMessage) {
	if !c.table.CheckKnownInvokeID(invokeID, msg.Choice()) {
		c.log.Debug().Uint16("invoke_id", invokeID).Msg("fsm: response for unknown or mismatched invoke-id dropped")
		return
	}
	c.table.Retire(invokeID, msg)
	c.rearmRequestTimer()
}

func (c *Context) handleROER(invokeID uint16, msg codec.ROER) {
	c.table.RetireWithError(invokeID, &service.ErrRemote{InvokeID: invokeID, ErrorValue: msg.ErrorValue})
	c.rearmRequestTimer()
}

func (c *Context) handleRORJ(invokeID uint16, msg codec.RORJ) {
	c.table.RetireWithError(invokeID, &service.ErrRemoteReject{InvokeID: invokeID, Problem: msg.ProblemValue})
	c.rearmRequestTimer()
}

// rearmRequestTimer re-arms the context's single timer slot to the
// earliest pending Get/Set/Action deadline while Operating. No
// association-level timeout is ever active in Operating, so this timer
// slot is free for the service layer's use; a tick that finds no
// pending deadline just cancels it.
func (c *Context) rearmRequestTimer() {
	if c.state != Operating {
		return
	}
	seconds, ok := c.table.NextDeadline()
	if !ok {
		c.timer.Cancel()
		return
	}
	c.timer.Arm(seconds, func() { c.onRequestTimerExpiry() })
}

func (c *Context) onRequestTimerExpiry() {
	c.table.OnTimerTick()
	c.rearmRequestTimer()
}

// RequestGet implements request_get_mds / a Get on any handle: emits a
// ROIV-confirmed-get with a fresh invoke-id and arms the 3s default
// timeout. Only legal in Operating.
func (c *Context) RequestGet(objHandle uint16, attributeIDs []uint16, cb func(codec.GetResultSimple, error)) error {
	if c.state != Operating {
		return &ErrInvalidForState{State: c.state, Op: "req_get"}
	}
	msg := codec.ROIVConfirmedGet{GetArgumentSimple: codec.GetArgumentSimple{ObjHandle: objHandle, AttributeIDs: attributeIDs}}
	invokeID := c.table.Allocate(codec.ChoiceRORSConfirmedGet, TimeoutGet*time.Second, c.wrapGetCallback(cb))
	c.rearmRequestTimer()
	a := codec.APDU{Choice: codec.ChoicePRST, Body: codec.PRSTApdu{Data: codec.DataAPDU{InvokeID: invokeID, Message: msg}}}
	return c.send(a)
}

// wrapGetCallback adapts an application Get callback to the
// service.Table's generic DataMessage shape. A successful Get-MDS
// response is applied to the MDS mirror via mds_set_attribute before the
// application sees it, per §4.3: the mirror is only actually
// materialised once the Agent's own reported values come back.
func (c *Context) wrapGetCallback(cb func(codec.GetResultSimple, error)) func(codec.DataMessage, error) {
	return func(msg codec.DataMessage, err error) {
		if err != nil {
			cb(codec.GetResultSimple{}, err)
			return
		}
		result, ok := msg.(codec.RORSConfirmedGet)
		if !ok {
			cb(codec.GetResultSimple{}, &ErrUnexpectedAPDU{State: c.state, Choice: msg.Choice()})
			return
		}
		c.applyToMirror(result.ObjHandle, result.AttributeList)
		cb(result.GetResultSimple, nil)
	}
}

// applyToMirror routes each reported attribute to the right mirror
// record: handle 0 is the MDS itself, any other handle is one of its
// sub-objects (a no-op if that handle isn't installed).
func (c *Context) applyToMirror(handle uint16, attrs []codec.AVA) {
	if handle == codec.MDSHandle {
		for _, ava := range attrs {
			c.mds.SetAttribute(ava)
		}
		return
	}
	obj := c.mds.GetByHandle(handle)
	if obj == nil {
		return
	}
	for _, ava := range attrs {
		obj.SetAttribute(ava)
	}
}

// RequestSet implements request_set_time and the general Set operation:
// emits a ROIV-confirmed-set and arms the 3s default timeout.
func (c *Context) RequestSet(objHandle uint16, attrs []codec.AVA, cb func(codec.SetResultSimple, error)) error {
	if c.state != Operating {
		return &ErrInvalidForState{State: c.state, Op: "req_set"}
	}
	msg := codec.ROIVConfirmedSet{SetArgumentSimple: codec.SetArgumentSimple{ObjHandle: objHandle, AttributeList: attrs}}
	invokeID := c.table.Allocate(codec.ChoiceRORSConfirmedSet, TimeoutConfirmSet*time.Second, c.wrapSetCallback(cb))
	c.rearmRequestTimer()
	a := codec.APDU{Choice: codec.ChoicePRST, Body: codec.PRSTApdu{Data: codec.DataAPDU{InvokeID: invokeID, Message: msg}}}
	return c.send(a)
}

// wrapSetCallback mirrors wrapGetCallback: the Set response's confirmed
// attribute values are applied back to the mirror before the
// application callback fires, same as a Get.
func (c *Context) wrapSetCallback(cb func(codec.SetResultSimple, error)) func(codec.DataMessage, error) {
	return func(msg codec.DataMessage, err error) {
		if err != nil {
			cb(codec.SetResultSimple{}, err)
			return
		}
		result, ok := msg.(codec.RORSConfirmedSet)
		if !ok {
			cb(codec.SetResultSimple{}, &ErrUnexpectedAPDU{State: c.state, Choice: msg.Choice()})
			return
		}
		c.applyToMirror(result.ObjHandle, result.AttributeList)
		cb(result.SetResultSimple, nil)
	}
}

// RequestAction implements request_segment_info / request_segment_data /
// request_clear_segments and any other confirmed-action: emits a
// ROIV-confirmed-action and arms the 3s default timeout.
func (c *Context) RequestAction(objHandle, actionType uint16, actionInfo []byte, cb func(codec.ActionResultSimple, error)) error {
	if c.state != Operating {
		return &ErrInvalidForState{State: c.state, Op: "req_action"}
	}
	msg := codec.ROIVConfirmedAction{ActionArgumentSimple: codec.ActionArgumentSimple{ObjHandle: objHandle, ActionType: actionType, ActionInfo: actionInfo}}
	invokeID := c.table.Allocate(codec.ChoiceRORSConfirmedAction, TimeoutConfirmAction*time.Second, c.wrapActionCallback(cb))
	c.rearmRequestTimer()
	a := codec.APDU{Choice: codec.ChoicePRST, Body: codec.PRSTApdu{Data: codec.DataAPDU{InvokeID: invokeID, Message: msg}}}
	return c.send(a)
}

func (c *Context) wrapActionCallback(cb func(codec.ActionResultSimple, error)) func(codec.DataMessage, error) {
	return func(msg codec.DataMessage, err error) {
		if err != nil {
			cb(codec.ActionResultSimple{}, err)
			return
		}
		result, ok := msg.(codec.RORSConfirmedAction)
		if !ok {
			cb(codec.ActionResultSimple{}, &ErrUnexpectedAPDU{State: c.state, Choice: msg.Choice()})
			return
		}
		cb(result.ActionResultSimple, nil)
	}
}
