package codec

import "github.com/otcheredev/pcd-manager/internal/bytelib"

// ConfigObject is one object description within a ConfigReport: its class,
// its handle within the MDS, and the attribute values the Agent supplied
// for it.
type ConfigObject struct {
	ObjClass      uint16
	ObjHandle     uint16
	AttributeList []AVA
}

func encodeConfigObject(w *bytelib.Writer, o ConfigObject) {
	w.WriteU16(o.ObjClass)
	w.WriteU16(o.ObjHandle)
	encodeAVAList(w, o.AttributeList)
}

func decodeConfigObject(r *bytelib.Reader) ConfigObject {
	class := r.ReadU16()
	handle := r.ReadU16()
	attrs := decodeAVAList(r)
	return ConfigObject{ObjClass: class, ObjHandle: handle, AttributeList: attrs}
}

// ConfigReport carries the Agent's declared object model, per §3.
type ConfigReport struct {
	ConfigReportID uint16
	ConfigObjList  []ConfigObject
}

// EncodeConfigReport writes a ConfigReport (exported: the Agent stub used
// by the symmetric test harness builds these directly).
func EncodeConfigReport(w *bytelib.Writer, c ConfigReport) {
	w.WriteU16(c.ConfigReportID)
	w.WriteU16(uint16(len(c.ConfigObjList)))
	length := bytelib.Measure(func(scratch *bytelib.Writer) {
		for _, o := range c.ConfigObjList {
			encodeConfigObject(scratch, o)
		}
	})
	w.WriteU16(uint16(length))
	for _, o := range c.ConfigObjList {
		encodeConfigObject(w, o)
	}
}

// DecodeConfigReport decodes a ConfigReport per the tolerant-trailing /
// bounded-length rules of §4.2.
func DecodeConfigReport(r *bytelib.Reader) ConfigReport {
	id := r.ReadU16()
	count := r.ReadU16()
	length := r.ReadU16()
	sub := r.Sub(int(length))
	objs := make([]ConfigObject, 0, count)
	for i := uint16(0); i < count; i++ {
		if sub.Remaining() == 0 {
			break
		}
		objs = append(objs, decodeConfigObject(sub))
	}
	return ConfigReport{ConfigReportID: id, ConfigObjList: objs}
}

// EncodedSize returns the exact number of bytes EncodeConfigReport would
// produce for c, used by callers sizing an enclosing writer.
func (c ConfigReport) EncodedSize() int {
	return bytelib.Measure(func(w *bytelib.Writer) { EncodeConfigReport(w, c) })
}

// ConfigReportRsp is the Manager's verdict on a ConfigReport, carried
// back inside a RORS-confirmed-event-report in reply to the Agent's
// unsolicited MDC_NOTI_CONFIG notification.
type ConfigReportRsp struct {
	ConfigReportID uint16
	ConfigResult   ConfigResult
}

func EncodeConfigReportRsp(w *bytelib.Writer, c ConfigReportRsp) {
	w.WriteU16(c.ConfigReportID)
	w.WriteU16(uint16(c.ConfigResult))
}

func DecodeConfigReportRsp(r *bytelib.Reader) ConfigReportRsp {
	id := r.ReadU16()
	result := r.ReadU16()
	return ConfigReportRsp{ConfigReportID: id, ConfigResult: ConfigResult(result)}
}

func (c ConfigReportRsp) EncodedSize() int {
	return bytelib.Measure(func(w *bytelib.Writer) { EncodeConfigReportRsp(w, c) })
}
