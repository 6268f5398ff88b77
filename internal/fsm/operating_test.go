package fsm

import (
	"testing"
	"time"

	"github.com/otcheredev/pcd-manager/internal/bytelib"
	"github.com/otcheredev/pcd-manager/internal/codec"
	"github.com/otcheredev/pcd-manager/internal/service"
)

// TestGetTimeoutEmptiesTableAndStaysOperating is the scenario named
// directly by name: in Operating, request_get_mds() issued, no response
// within 3s, the callback receives Timeout, the pending table empties,
// and the connection remains in Operating.
func TestGetTimeoutEmptiesTableAndStaysOperating(t *testing.T) {
	h := newHarness(t)
	h.associateFastPath(t)

	var gotErr error
	called := 0
	if err := h.ctx.RequestGetMDS(func(_ codec.GetResultSimple, err error) {
		called++
		gotErr = err
	}); err != nil {
		t.Fatalf("RequestGetMDS: %v", err)
	}

	if !h.timer.armed || h.timer.seconds != TimeoutGet {
		t.Fatalf("timer armed=%v seconds=%d, want armed for %ds", h.timer.armed, h.timer.seconds, TimeoutGet)
	}

	// The table compares deadlines against the real clock, so let the
	// Get deadline actually pass before delivering the tick.
	time.Sleep(time.Duration(TimeoutGet)*time.Second + 50*time.Millisecond)
	h.timer.fire()

	if called != 1 {
		t.Fatalf("callback invoked %d times, want 1", called)
	}
	if _, ok := gotErr.(*service.ErrTimeout); !ok {
		t.Fatalf("callback error = %v (%T), want *service.ErrTimeout", gotErr, gotErr)
	}
	if h.ctx.table.Len() != 0 {
		t.Fatalf("table.Len() = %d, want 0 after timeout", h.ctx.table.Len())
	}
	if h.ctx.State() != Operating {
		t.Fatalf("state = %s, want Operating (timeout does not tear down)", h.ctx.State())
	}
	if h.timer.armed {
		t.Fatalf("timer still armed after its only pending entry expired")
	}
}

func TestRequestGetSuccessRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.associateFastPath(t)

	var got codec.GetResultSimple
	var gotErr error
	if err := h.ctx.RequestGet(codec.MDSHandle, nil, func(r codec.GetResultSimple, err error) {
		got, gotErr = r, err
	}); err != nil {
		t.Fatalf("RequestGet: %v", err)
	}

	sent := h.transport.last()
	prst := sent.Body.(codec.PRSTApdu)
	invokeID := prst.Data.InvokeID

	reply := codec.RORSConfirmedGet{GetResultSimple: codec.GetResultSimple{ObjHandle: codec.MDSHandle}}
	h.ctx.handleOperatingResponse(invokeID, reply)

	if gotErr != nil {
		t.Fatalf("callback err = %v, want nil", gotErr)
	}
	if got.ObjHandle != codec.MDSHandle {
		t.Fatalf("ObjHandle = %d, want MDSHandle", got.ObjHandle)
	}
	if h.timer.armed {
		t.Fatalf("timer still armed after the only pending request retired")
	}
}

func TestRequestGetOnlyLegalInOperating(t *testing.T) {
	h := newHarness(t)
	err := h.ctx.RequestGetMDS(func(codec.GetResultSimple, error) {})
	if _, ok := err.(*ErrInvalidForState); !ok {
		t.Fatalf("err = %v, want *ErrInvalidForState", err)
	}
}

func TestROERRoutesRemoteErrorToCallback(t *testing.T) {
	h := newHarness(t)
	h.associateFastPath(t)

	var gotErr error
	if err := h.ctx.RequestGetMDS(func(_ codec.GetResultSimple, err error) { gotErr = err }); err != nil {
		t.Fatalf("RequestGetMDS: %v", err)
	}
	invokeID := h.transport.last().Body.(codec.PRSTApdu).Data.InvokeID

	h.ctx.handleROER(invokeID, codec.ROER{ErrorValue: codec.ErrNoSuchObjectInstance})

	if _, ok := gotErr.(*service.ErrRemote); !ok {
		t.Fatalf("gotErr = %v (%T), want *service.ErrRemote", gotErr, gotErr)
	}
}

func TestRORJRoutesRemoteRejectToCallback(t *testing.T) {
	h := newHarness(t)
	h.associateFastPath(t)

	var gotErr error
	if err := h.ctx.RequestGetMDS(func(_ codec.GetResultSimple, err error) { gotErr = err }); err != nil {
		t.Fatalf("RequestGetMDS: %v", err)
	}
	invokeID := h.transport.last().Body.(codec.PRSTApdu).Data.InvokeID

	h.ctx.handleRORJ(invokeID, codec.RORJ{ProblemValue: 3})

	if _, ok := gotErr.(*service.ErrRemoteReject); !ok {
		t.Fatalf("gotErr = %v (%T), want *service.ErrRemoteReject", gotErr, gotErr)
	}
}

func TestOperatingEventReportAppliesObservationAndNotifies(t *testing.T) {
	h := newHarness(t)
	if err := h.ctx.RequestAssociate(); err != nil {
		t.Fatalf("RequestAssociate: %v", err)
	}
	h.ctx.handleAARE(codec.AAREApdu{
		Result: codec.AssociationAccepted,
		Info: codec.AssociationInfo{SystemID: []byte{0xAA}, ConfigReportID: 0xBEEF},
	})
	report := codec.ConfigReport{ConfigReportID: 0xBEEF, ConfigObjList: []codec.ConfigObject{
		{ObjClass: codec.ObjClassNumeric, ObjHandle: 1},
	}}
	h.ctx.handleConfigEventReport(1, configEventReport(report))
	if h.ctx.State() != Operating {
		t.Fatalf("precondition: state = %s, want Operating", h.ctx.State())
	}
	h.events = DataList{}

	scan := codec.ScanReportInfoVar{
		ObsScanList: []codec.ObservationScan{{ObjHandle: 1, ObsValue: []byte{0x00, 0x00, 0x00, 0x2A}}},
	}
	w := bytelib.NewWriter(0)
	codec.EncodeScanReportInfoVar(w, scan)
	msg := codec.ROIVConfirmedEventReport{EventReportArgumentSimple: codec.EventReportArgumentSimple{
		ObjHandle: 1,
		EventType: codec.MDCNotiScanReportVar,
		EventInfo: w.Buffer(),
	}}
	h.ctx.handleOperatingEventReport(5, msg)

	obj := h.ctx.mds.GetByHandle(1)
	if obj == nil || obj.Numeric == nil {
		t.Fatalf("handle 1 should be a Numeric object, got %+v", obj)
	}
	if obj.Numeric.Value != 0x2A {
		t.Fatalf("Numeric.Value = %d, want 42", obj.Numeric.Value)
	}
	if len(h.events.Objects) != 1 {
		t.Fatalf("OnMeasurementDataUpdated delivered %d objects, want 1", len(h.events.Objects))
	}

	last := h.transport.last()
	ack := last.Body.(codec.PRSTApdu).Data.Message.(codec.RORSConfirmedEventReport)
	if ack.EventType != codec.MDCNotiScanReportVar {
		t.Fatalf("ack EventType = %#04x, want MDCNotiScanReportVar", ack.EventType)
	}
}

func TestOperatingEventReportOutsideOperatingIsRejected(t *testing.T) {
	h := newHarness(t)
	msg := codec.ROIVConfirmedEventReport{EventReportArgumentSimple: codec.EventReportArgumentSimple{
		ObjHandle: 1, EventType: codec.MDCNotiScanReportVar,
	}}
	h.ctx.handleOperatingEventReport(1, msg)

	last := h.transport.last()
	roer := last.Body.(codec.PRSTApdu).Data.Message.(codec.ROER)
	if roer.ErrorValue != codec.ErrNoSuchObjectInstance {
		t.Fatalf("ErrorValue = %d, want ErrNoSuchObjectInstance", roer.ErrorValue)
	}
}
