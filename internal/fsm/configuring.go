package fsm

import (
	"github.com/otcheredev/pcd-manager/internal/bytelib"
	"github.com/otcheredev/pcd-manager/internal/codec"
)

// evaluateConfig is the three-way verdict grounded on
// configuring_evaluate_configuration_validity in original_source's
// configuring.c: (1) a known standard id always wins, even if the
// Agent also supplied an extended object list — that list is ignored;
// (2) an unknown id with an empty object list is STANDARD_CONFIG_UNKNOWN;
// (3) an unknown id with a non-empty object list is ACCEPTED_CONFIG
// using the supplied description, which the caller must register.
func (c *Context) evaluateConfig(report codec.ConfigReport) (codec.ConfigResult, []codec.ConfigObject) {
	if objects, ok := c.catalogue.Lookup(report.ConfigReportID); ok {
		return codec.ConfigAccepted, objects
	}
	if len(report.ConfigObjList) == 0 {
		return codec.ConfigStandardUnknown, nil
	}
	return codec.ConfigAccepted, report.ConfigObjList
}

// handleConfigEventReport processes an inbound ROIV-confirmed-event-report
// whose event_type is MDC_NOTI_CONFIG, per the Configuring step of §4.5.
// It is only legal in WaitingForConfig; in any other state it is rejected
// via rejectROIVForState.
func (c *Context) handleConfigEventReport(invokeID uint16, msg codec.ROIVConfirmedEventReport) {
	if c.state != WaitingForConfig {
		c.rejectROIVForState(invokeID, msg.Choice())
		return
	}

	c.timer.Cancel()
	c.setState(CheckingConfig)

	report := codec.DecodeConfigReport(bytelib.NewReader(msg.EventInfo))
	result, objects := c.evaluateConfig(report)

	switch result {
	case codec.ConfigAccepted:
		if report.ConfigReportID != 0 && !c.catalogueKnows(report.ConfigReportID) {
			if err := c.registry.Register(c.background, c.peerSystemID, report.ConfigReportID, objects); err != nil {
				c.log.Warn().Err(err).Msg("fsm: failed to register extended configuration")
			}
		}
		c.replyConfigVerdict(invokeID, report.ConfigReportID, codec.ConfigAccepted)
		c.installConfiguration(objects)
	case codec.ConfigStandardUnknown:
		c.replyConfigVerdict(invokeID, report.ConfigReportID, codec.ConfigStandardUnknown)
		c.setState(WaitingForConfig)
		c.timer.Arm(TimeoutConfiguring, func() { c.onConfiguringTimeout() })
	default:
		c.replyConfigVerdict(invokeID, report.ConfigReportID, codec.ConfigUnsupported)
		c.setState(WaitingForConfig)
		c.timer.Arm(TimeoutConfiguring, func() { c.onConfiguringTimeout() })
	}
}

func (c *Context) catalogueKnows(id uint16) bool {
	return c.catalogue.IsSupportedStandard(id)
}

func (c *Context) replyConfigVerdict(invokeID, configReportID uint16, result codec.ConfigResult) {
	rsp := codec.ConfigReportRsp{ConfigReportID: configReportID, ConfigResult: result}
	w := bytelib.NewWriter(rsp.EncodedSize())
	codec.EncodeConfigReportRsp(w, rsp)

	msg := codec.RORSConfirmedEventReport{EventReportResultSimple: codec.EventReportResultSimple{
		ObjHandle:      codec.MDSHandle,
		EventType:      codec.MDCNotiConfig,
		EventReplyInfo: w.Buffer(),
	}}
	a := codec.APDU{Choice: codec.ChoicePRST, Body: codec.PRSTApdu{Data: codec.DataAPDU{InvokeID: invokeID, Message: msg}}}
	if err := c.send(a); err != nil {
		c.log.Warn().Err(err).Msg("fsm: failed to send config verdict")
	}
}

// rejectROIVForState implements tie-break: a ROIV received while the
// connection isn't in a state that accepts it is rejected with
// NO_SUCH_ACTION for a confirmed-action ROIV, NO_SUCH_OBJECT_INSTANCE
// for every other ROIV form, per §4.5.
func (c *Context) rejectROIVForState(invokeID uint16, choice uint16) {
	errorValue := codec.ErrNoSuchObjectInstance
	if choice == codec.ChoiceROIVConfirmedAction {
		errorValue = codec.ErrNoSuchAction
	}
	a := codec.APDU{Choice: codec.ChoicePRST, Body: codec.PRSTApdu{Data: codec.DataAPDU{
		InvokeID: invokeID,
		Message:  codec.ROER{ErrorValue: errorValue},
	}}}
	if err := c.send(a); err != nil {
		c.log.Warn().Err(err).Msg("fsm: failed to send ROER reject")
	}
}
