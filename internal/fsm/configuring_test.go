package fsm

import (
	"testing"

	"github.com/otcheredev/pcd-manager/internal/bytelib"
	"github.com/otcheredev/pcd-manager/internal/codec"
)

// toWaitingForConfig drives h.ctx from Unassociated through an AARE
// carrying an unknown config_report_id, landing in WaitingForConfig.
func toWaitingForConfig(t *testing.T, h *testHarness, peerSystemID []byte, configReportID uint16) {
	t.Helper()
	if err := h.ctx.RequestAssociate(); err != nil {
		t.Fatalf("RequestAssociate: %v", err)
	}
	h.ctx.handleAARE(codec.AAREApdu{
		Result: codec.AssociationAccepted,
		Info:   codec.AssociationInfo{SystemID: peerSystemID, ConfigReportID: configReportID},
	})
	if h.ctx.State() != WaitingForConfig {
		t.Fatalf("state = %s, want WaitingForConfig", h.ctx.State())
	}
}

func configEventReport(report codec.ConfigReport) codec.ROIVConfirmedEventReport {
	w := bytelib.NewWriter(report.EncodedSize())
	codec.EncodeConfigReport(w, report)
	return codec.ROIVConfirmedEventReport{EventReportArgumentSimple: codec.EventReportArgumentSimple{
		ObjHandle: codec.MDSHandle,
		EventType: codec.MDCNotiConfig,
		EventInfo: w.Buffer(),
	}}
}

func TestConfigEventReportAcceptedWithExtendedObjectsRegistersAndOperates(t *testing.T) {
	h := newHarness(t)
	toWaitingForConfig(t, h, []byte{0xAA}, 0x9999)

	report := codec.ConfigReport{ConfigReportID: 0x9999, ConfigObjList: []codec.ConfigObject{
		{ObjClass: codec.ObjClassNumeric, ObjHandle: 1},
	}}
	h.ctx.handleConfigEventReport(7, configEventReport(report))

	if h.ctx.State() != Operating {
		t.Fatalf("state = %s, want Operating", h.ctx.State())
	}
	if h.registry.registerCalled != 1 {
		t.Fatalf("registry.Register called %d times, want 1", h.registry.registerCalled)
	}

	last := h.transport.last()
	data, ok := last.Body.(codec.PRSTApdu)
	if !ok {
		t.Fatalf("last sent body = %T, want PRSTApdu", last.Body)
	}
	rsp, ok := data.Data.Message.(codec.RORSConfirmedEventReport)
	if !ok {
		t.Fatalf("last sent message = %T, want RORSConfirmedEventReport", data.Data.Message)
	}
	verdict := codec.DecodeConfigReportRsp(bytelib.NewReader(rsp.EventReplyInfo))
	if verdict.ConfigResult != codec.ConfigAccepted {
		t.Fatalf("verdict = %v, want ConfigAccepted", verdict.ConfigResult)
	}
}

func TestConfigEventReportKnownStandardIgnoresSuppliedObjects(t *testing.T) {
	h := newHarness(t)
	toWaitingForConfig(t, h, []byte{0xAA}, 0x0BAB)

	report := codec.ConfigReport{ConfigReportID: 0x0BAB, ConfigObjList: []codec.ConfigObject{
		{ObjClass: codec.ObjClassNumeric, ObjHandle: 99},
	}}
	h.ctx.handleConfigEventReport(1, configEventReport(report))

	if h.ctx.State() != Operating {
		t.Fatalf("state = %s, want Operating", h.ctx.State())
	}
	if h.registry.registerCalled != 0 {
		t.Fatalf("registry.Register called %d times, want 0 (known standard wins)", h.registry.registerCalled)
	}
	if h.ctx.mds.GetByHandle(99) != nil {
		t.Fatalf("handle 99 from the ignored supplied object list should not be installed")
	}
}

func TestConfigEventReportStandardUnknownStaysWaitingForConfig(t *testing.T) {
	h := newHarness(t)
	toWaitingForConfig(t, h, []byte{0xAA}, 0xEEEE)

	report := codec.ConfigReport{ConfigReportID: 0xEEEE}
	h.ctx.handleConfigEventReport(2, configEventReport(report))

	if h.ctx.State() != WaitingForConfig {
		t.Fatalf("state = %s, want WaitingForConfig after standard-unknown verdict", h.ctx.State())
	}
	if !h.timer.armed {
		t.Fatalf("configuring timer not re-armed after standard-unknown verdict")
	}

	last := h.transport.last()
	data := last.Body.(codec.PRSTApdu)
	rsp := data.Data.Message.(codec.RORSConfirmedEventReport)
	verdict := codec.DecodeConfigReportRsp(bytelib.NewReader(rsp.EventReplyInfo))
	if verdict.ConfigResult != codec.ConfigStandardUnknown {
		t.Fatalf("verdict = %v, want ConfigStandardUnknown", verdict.ConfigResult)
	}
}

func TestConfigEventReportOutsideWaitingForConfigIsRejected(t *testing.T) {
	h := newHarness(t)
	h.associateFastPath(t)

	report := codec.ConfigReport{ConfigReportID: 0x1111}
	h.ctx.handleConfigEventReport(3, configEventReport(report))

	last := h.transport.last()
	data := last.Body.(codec.PRSTApdu)
	roer, ok := data.Data.Message.(codec.ROER)
	if !ok {
		t.Fatalf("message = %T, want ROER reject", data.Data.Message)
	}
	if roer.ErrorValue != codec.ErrNoSuchObjectInstance {
		t.Fatalf("ErrorValue = %d, want ErrNoSuchObjectInstance", roer.ErrorValue)
	}
	if h.ctx.State() != Operating {
		t.Fatalf("state = %s, want unchanged Operating", h.ctx.State())
	}
}

func TestConfiguringTimeoutAbortsFromWaitingForConfig(t *testing.T) {
	h := newHarness(t)
	toWaitingForConfig(t, h, []byte{0xAA}, 0xEEEE)

	h.timer.fire()

	if h.ctx.State() != Unassociated {
		t.Fatalf("state = %s, want Unassociated after configuring timeout", h.ctx.State())
	}
	if len(h.disassoc) != 1 || h.disassoc[0] != ReasonAborted {
		t.Fatalf("disassoc reasons = %v, want [ReasonAborted]", h.disassoc)
	}
}
