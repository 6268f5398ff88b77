package codec

import "github.com/otcheredev/pcd-manager/internal/bytelib"

// ObservationScan is one object's measured value within a scan report.
// The payload is left as raw bytes; the dim package applies it to the
// matching sub-object once it knows the object's class.
type ObservationScan struct {
	ObjHandle uint16
	ObsValue  []byte
}

func encodeObservationScan(w *bytelib.Writer, o ObservationScan) {
	w.WriteU16(o.ObjHandle)
	w.WriteOctetString(o.ObsValue)
}

func decodeObservationScan(r *bytelib.Reader) ObservationScan {
	h := r.ReadU16()
	v := r.ReadOctetString()
	return ObservationScan{ObjHandle: h, ObsValue: v}
}

// ScanReportInfoVar is the variable-format scan report shape: each
// observation carries its own length-prefixed value. PersonID is nil for
// the single-person form and set for the multi-person variant mentioned
// in §4.5 Operating.
type ScanReportInfoVar struct {
	DataReqID    uint16
	ScanReportNo uint16
	PersonID     *uint16
	ObsScanList  []ObservationScan
}

func EncodeScanReportInfoVar(w *bytelib.Writer, s ScanReportInfoVar) {
	w.WriteU16(s.DataReqID)
	w.WriteU16(s.ScanReportNo)
	if s.PersonID != nil {
		w.WriteU8(1)
		w.WriteU16(*s.PersonID)
	} else {
		w.WriteU8(0)
	}
	w.WriteU16(uint16(len(s.ObsScanList)))
	for _, o := range s.ObsScanList {
		encodeObservationScan(w, o)
	}
}

func DecodeScanReportInfoVar(r *bytelib.Reader) ScanReportInfoVar {
	s := ScanReportInfoVar{}
	s.DataReqID = r.ReadU16()
	s.ScanReportNo = r.ReadU16()
	if r.ReadU8() == 1 {
		pid := r.ReadU16()
		s.PersonID = &pid
	}
	count := r.ReadU16()
	s.ObsScanList = make([]ObservationScan, 0, count)
	for i := uint16(0); i < count; i++ {
		if r.Error() != nil {
			break
		}
		s.ObsScanList = append(s.ObsScanList, decodeObservationScan(r))
	}
	return s
}

// ScanReportInfoFixed is the fixed-format scan report shape: every
// observation shares one value width (SampleSize), so values are packed
// without per-observation length prefixes.
type ScanReportInfoFixed struct {
	DataReqID    uint16
	ScanReportNo uint16
	PersonID     *uint16
	SampleSize   uint16
	ObsScanList  []ObservationScanFixed
}

// ObservationScanFixed is one fixed-width observation. Decoding reads
// exactly SampleSize bytes into Value; encoding writes Value as given
// without checking its length against SampleSize.
type ObservationScanFixed struct {
	ObjHandle uint16
	Value     []byte
}

func EncodeScanReportInfoFixed(w *bytelib.Writer, s ScanReportInfoFixed) {
	w.WriteU16(s.DataReqID)
	w.WriteU16(s.ScanReportNo)
	if s.PersonID != nil {
		w.WriteU8(1)
		w.WriteU16(*s.PersonID)
	} else {
		w.WriteU8(0)
	}
	w.WriteU16(s.SampleSize)
	w.WriteU16(uint16(len(s.ObsScanList)))
	for _, o := range s.ObsScanList {
		w.WriteU16(o.ObjHandle)
		w.WriteOctets(o.Value)
	}
}

func DecodeScanReportInfoFixed(r *bytelib.Reader) ScanReportInfoFixed {
	s := ScanReportInfoFixed{}
	s.DataReqID = r.ReadU16()
	s.ScanReportNo = r.ReadU16()
	if r.ReadU8() == 1 {
		pid := r.ReadU16()
		s.PersonID = &pid
	}
	s.SampleSize = r.ReadU16()
	count := r.ReadU16()
	s.ObsScanList = make([]ObservationScanFixed, 0, count)
	for i := uint16(0); i < count; i++ {
		if r.Error() != nil {
			break
		}
		h := r.ReadU16()
		v := r.ReadOctets(int(s.SampleSize))
		s.ObsScanList = append(s.ObsScanList, ObservationScanFixed{ObjHandle: h, Value: v})
	}
	return s
}
