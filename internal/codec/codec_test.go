package codec

import (
	"bytes"
	"testing"

	"github.com/otcheredev/pcd-manager/internal/bytelib"
)

func roundTripAPDU(t *testing.T, a APDU) APDU {
	t.Helper()
	size := a.EncodedSize()
	w := bytelib.NewWriter(size)
	EncodeAPDU(w, a)
	if w.Overflowed() {
		t.Fatalf("writer overflowed: measured %d, wrote %d", size, w.Size())
	}
	if w.Size() != size {
		t.Fatalf("encoded size mismatch: measured %d, wrote %d", size, w.Size())
	}

	r := bytelib.NewReader(w.Buffer())
	got, err := DecodeAPDU(r)
	if err != nil {
		t.Fatalf("DecodeAPDU failed: %v", err)
	}
	return got
}

func TestAARQRoundTrip(t *testing.T) {
	a := APDU{
		Choice: ChoiceAARQ,
		Body: AARQApdu{Info: AssociationInfo{
			ProtocolVersion: 1,
			SystemID:        []byte{0x01, 0x02, 0x03},
			ConfigReportID:  0x4007,
		}},
	}
	got := roundTripAPDU(t, a)
	body, ok := got.Body.(AARQApdu)
	if !ok {
		t.Fatalf("decoded body is %T, want AARQApdu", got.Body)
	}
	if body.Info.ConfigReportID != 0x4007 {
		t.Fatalf("ConfigReportID = %x, want 0x4007", body.Info.ConfigReportID)
	}
	if !bytes.Equal(body.Info.SystemID, []byte{0x01, 0x02, 0x03}) {
		t.Fatalf("SystemID = %v, want [1 2 3]", body.Info.SystemID)
	}
}

func TestAARERoundTrip(t *testing.T) {
	a := APDU{
		Choice: ChoiceAARE,
		Body: AAREApdu{
			Result: AssociationAccepted,
			Info: AssociationInfo{
				ProtocolVersion: 1,
				SystemID:        []byte("scale-0001"),
				ConfigReportID:  0xBEEF,
			},
		},
	}
	got := roundTripAPDU(t, a)
	body := got.Body.(AAREApdu)
	if !body.Accepted() {
		t.Fatalf("expected Accepted() == true")
	}
	if body.Info.ConfigReportID != 0xBEEF {
		t.Fatalf("ConfigReportID = %x, want 0xBEEF", body.Info.ConfigReportID)
	}
}

func TestOuterLengthIsWellFormed(t *testing.T) {
	a := APDU{Choice: ChoiceRLRQ, Body: RLRQApdu{Reason: 0}}
	size := a.EncodedSize()
	w := bytelib.NewWriter(size)
	EncodeAPDU(w, a)
	buf := w.Buffer()
	declared := int(buf[2])<<8 | int(buf[3])
	remainder := len(buf) - 4
	if declared != remainder {
		t.Fatalf("declared length %d != remainder length %d", declared, remainder)
	}
}

func TestTruncatedInputDetected(t *testing.T) {
	a := APDU{Choice: ChoiceABRT, Body: ABRTApdu{Reason: AbortReasonUndefined}}
	size := a.EncodedSize()
	w := bytelib.NewWriter(size)
	EncodeAPDU(w, a)
	buf := w.Buffer()
	truncated := buf[:len(buf)-1] // drop the last byte of the declared body

	r := bytelib.NewReader(truncated)
	_, err := DecodeAPDU(r)
	if err != ErrTruncatedInput {
		t.Fatalf("err = %v, want ErrTruncatedInput", err)
	}
}

func TestUnknownChoiceReported(t *testing.T) {
	w := bytelib.NewWriter(4)
	w.WriteU16(0x9999)
	w.WriteU16(0)
	r := bytelib.NewReader(w.Buffer())
	_, err := DecodeAPDU(r)
	if err != ErrUnknownChoice {
		t.Fatalf("err = %v, want ErrUnknownChoice", err)
	}
}

func TestTolerantTrailingBytesWithinDeclaredLength(t *testing.T) {
	// Encode an RLRQ normally, then append extra bytes *inside* the
	// declared length, simulating a future-extension field the decoder
	// must tolerate by skipping to the declared end rather than failing.
	a := APDU{Choice: ChoiceRLRQ, Body: RLRQApdu{Reason: 0}}
	w := bytelib.NewWriter(64)
	w.WriteU16(a.Choice)
	bodyLen := bytelib.Measure(func(s *bytelib.Writer) { encodeAPDUBody(s, a) })
	extra := []byte{0xAA, 0xBB, 0xCC}
	w.WriteU16(uint16(bodyLen + len(extra)))
	encodeAPDUBody(w, a)
	w.WriteOctets(extra)

	r := bytelib.NewReader(w.Buffer())
	got, err := DecodeAPDU(r)
	if err != nil {
		t.Fatalf("DecodeAPDU failed on tolerated trailing bytes: %v", err)
	}
	if got.Body.(RLRQApdu).Reason != 0 {
		t.Fatalf("unexpected reason")
	}
}

func TestConfigReportRoundTrip(t *testing.T) {
	report := ConfigReport{
		ConfigReportID: 0x4001,
		ConfigObjList: []ConfigObject{
			{
				ObjClass:  ObjClassNumeric,
				ObjHandle: 1,
				AttributeList: []AVA{
					{AttributeID: AttrHandle, Value: []byte{0x00, 0x01}},
				},
			},
		},
	}
	w := bytelib.NewWriter(report.EncodedSize())
	EncodeConfigReport(w, report)
	r := bytelib.NewReader(w.Buffer())
	got := DecodeConfigReport(r)
	if r.Error() != nil {
		t.Fatalf("decode error: %v", r.Error())
	}
	if got.ConfigReportID != report.ConfigReportID {
		t.Fatalf("ConfigReportID mismatch")
	}
	if len(got.ConfigObjList) != 1 || got.ConfigObjList[0].ObjHandle != 1 {
		t.Fatalf("ConfigObjList mismatch: %+v", got.ConfigObjList)
	}
}

func TestPRSTConfigEventReportRoundTrip(t *testing.T) {
	report := ConfigReport{ConfigReportID: 0x4001}
	eventInfo := bytelib.NewWriter(report.EncodedSize())
	EncodeConfigReport(eventInfo, report)

	msg := ROIVConfirmedEventReport{EventReportArgumentSimple{
		ObjHandle: MDSHandle,
		EventTime: 42,
		EventType: MDCNotiConfig,
		EventInfo: eventInfo.Buffer(),
	}}
	a := APDU{Choice: ChoicePRST, Body: PRSTApdu{Data: DataAPDU{InvokeID: 7, Message: msg}}}

	got := roundTripAPDU(t, a)
	prst := got.Body.(PRSTApdu)
	if prst.Data.InvokeID != 7 {
		t.Fatalf("InvokeID = %d, want 7", prst.Data.InvokeID)
	}
	roiv, ok := prst.Data.Message.(ROIVConfirmedEventReport)
	if !ok {
		t.Fatalf("message is %T, want ROIVConfirmedEventReport", prst.Data.Message)
	}
	if roiv.EventType != MDCNotiConfig {
		t.Fatalf("EventType = %x, want MDCNotiConfig", roiv.EventType)
	}
	inner := DecodeConfigReport(bytelib.NewReader(roiv.EventInfo))
	if inner.ConfigReportID != 0x4001 {
		t.Fatalf("nested ConfigReportID = %x, want 0x4001", inner.ConfigReportID)
	}
}
