package codec

import "github.com/otcheredev/pcd-manager/internal/bytelib"

// EventReportArgumentSimple is the ROIV-confirmed-event-report argument:
// an object, a relative event time, an event type discriminator, and raw
// event info bytes whose shape depends on EventType (a ConfigReport when
// EventType == MDCNotiConfig, a ScanReportInfoVar/Fixed for measurement
// notifications).
type EventReportArgumentSimple struct {
	ObjHandle uint16
	EventTime uint32
	EventType uint16
	EventInfo []byte
}

func EncodeEventReportArgumentSimple(w *bytelib.Writer, e EventReportArgumentSimple) {
	w.WriteU16(e.ObjHandle)
	w.WriteU32(e.EventTime)
	w.WriteU16(e.EventType)
	w.WriteOctetString(e.EventInfo)
}

func DecodeEventReportArgumentSimple(r *bytelib.Reader) EventReportArgumentSimple {
	h := r.ReadU16()
	t := r.ReadU32()
	et := r.ReadU16()
	info := r.ReadOctetString()
	return EventReportArgumentSimple{ObjHandle: h, EventTime: t, EventType: et, EventInfo: info}
}

// EventReportResultSimple is the RORS-confirmed-event-report reply,
// carrying the Manager's verdict back to the Agent (e.g. an encoded
// ConfigReportRsp in EventReplyInfo when EventType == MDCNotiConfig).
type EventReportResultSimple struct {
	ObjHandle      uint16
	CurrentTime    uint32
	EventType      uint16
	EventReplyInfo []byte
}

func EncodeEventReportResultSimple(w *bytelib.Writer, e EventReportResultSimple) {
	w.WriteU16(e.ObjHandle)
	w.WriteU32(e.CurrentTime)
	w.WriteU16(e.EventType)
	w.WriteOctetString(e.EventReplyInfo)
}

func DecodeEventReportResultSimple(r *bytelib.Reader) EventReportResultSimple {
	h := r.ReadU16()
	t := r.ReadU32()
	et := r.ReadU16()
	info := r.ReadOctetString()
	return EventReportResultSimple{ObjHandle: h, CurrentTime: t, EventType: et, EventReplyInfo: info}
}
