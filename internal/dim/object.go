package dim

import (
	"github.com/otcheredev/pcd-manager/internal/bytelib"
	"github.com/otcheredev/pcd-manager/internal/codec"
)

// Metric is the common part embedded by every measurement-bearing
// sub-object variant (Numeric, Enumeration, RTSA), per §3's "Metric
// common part".
type Metric struct {
	Handle        uint16
	UnitCode      uint16
	MetricStatus  uint16
	AttributeValueMap []uint16
}

func (m *Metric) setAttribute(id uint16, r *bytelib.Reader) bool {
	switch id {
	case codec.AttrHandle:
		m.Handle = r.ReadU16()
	case codec.AttrUnitCode:
		m.UnitCode = r.ReadU16()
	case codec.AttrMetricStatus:
		m.MetricStatus = r.ReadU16()
	case codec.AttrAttrValMapOverall:
		count := r.ReadU16()
		ids := make([]uint16, 0, count)
		for i := uint16(0); i < count && r.Error() == nil; i++ {
			ids = append(ids, r.ReadU16())
		}
		m.AttributeValueMap = ids
	default:
		return false
	}
	return true
}

// Numeric holds one MDC_MOC_VMO_METRIC_NU instance: a single scalar
// measurement, updated by Event-Report and Set responses.
type Numeric struct {
	Metric
	Value          int32
	CompoundValues []int32
}

func newNumeric(handle uint16) *Numeric {
	return &Numeric{Metric: Metric{Handle: handle}}
}

func (n *Numeric) setAttribute(ava codec.AVA) {
	r := bytelib.NewReader(ava.Value)
	if n.Metric.setAttribute(ava.AttributeID, r) {
		return
	}
	switch ava.AttributeID {
	case codec.AttrNuVal:
		n.Value = int32(r.ReadU32())
	case codec.AttrNuCmpdVal:
		count := r.ReadU16()
		vals := make([]int32, 0, count)
		for i := uint16(0); i < count && r.Error() == nil; i++ {
			vals = append(vals, int32(r.ReadU32()))
		}
		n.CompoundValues = vals
	default:
		// unrecognised attribute id: no-op, same tolerance as mds_set_attribute.
	}
}

// Enumeration holds one MDC_MOC_VMO_METRIC_ENUM instance: a
// discrete-valued measurement reported as a coded observation value.
type Enumeration struct {
	Metric
	ObsValue uint16
}

func newEnumeration(handle uint16) *Enumeration {
	return &Enumeration{Metric: Metric{Handle: handle}}
}

func (e *Enumeration) setAttribute(ava codec.AVA) {
	r := bytelib.NewReader(ava.Value)
	if e.Metric.setAttribute(ava.AttributeID, r) {
		return
	}
	switch ava.AttributeID {
	case codec.AttrEnumObsValSimple:
		e.ObsValue = r.ReadU16()
	default:
	}
}

// RTSA holds one MDC_MOC_VMO_METRIC_SA_RT instance. Real-time sample
// array decoding is deferred per §9 — the original stubs this case out
// entirely — so an RTSA is kept as an opaque attribute bag rather than
// a typed structure, pending a real-time sample consumer.
type RTSA struct {
	Metric
	Raw map[uint16][]byte
}

func newRTSA(handle uint16) *RTSA {
	return &RTSA{Metric: Metric{Handle: handle}, Raw: make(map[uint16][]byte)}
}

func (s *RTSA) setAttribute(ava codec.AVA) {
	r := bytelib.NewReader(ava.Value)
	if s.Metric.setAttribute(ava.AttributeID, r) {
		return
	}
	s.Raw[ava.AttributeID] = ava.Value
}

// PMStore holds one MDC_MOC_VMO_PMSTORE instance: the archive of
// measurement segments the Agent exposes via the segment actions in §4.3.
type PMStore struct {
	Handle          uint16
	Capabilities    uint16
	SampleAlgorithm uint16
	NumberOfSegments uint16
}

func newPMStore(handle uint16) *PMStore {
	return &PMStore{Handle: handle}
}

func (p *PMStore) setAttribute(ava codec.AVA) {
	r := bytelib.NewReader(ava.Value)
	switch ava.AttributeID {
	case codec.AttrHandle:
		p.Handle = r.ReadU16()
	case codec.AttrPMStoreCapab:
		p.Capabilities = r.ReadU16()
	case codec.AttrPMStoreSampleAlgo:
		p.SampleAlgorithm = r.ReadU16()
	case codec.AttrNumOfPMSegments:
		p.NumberOfSegments = r.ReadU16()
	default:
	}
}

// ScannerOperationalState mirrors the original's os_enabled/os_disabled
// enumeration for a Scanner's operational state.
type ScannerOperationalState uint16

const (
	ScannerDisabled ScannerOperationalState = 0
	ScannerEnabled  ScannerOperationalState = 1
)

// Scanner is the common part shared by both configured-scanner variants:
// the handle, operational state, and confirm mode carried by CfgScanner.
type Scanner struct {
	Handle            uint16
	OperationalState  ScannerOperationalState
	Confirmed         bool
}

func (s *Scanner) setAttribute(id uint16, r *bytelib.Reader) bool {
	switch id {
	case codec.AttrHandle:
		s.Handle = r.ReadU16()
	case codec.AttrScannerEnableStatus:
		s.OperationalState = ScannerOperationalState(r.ReadU16())
	case codec.AttrConfirmMode:
		s.Confirmed = r.ReadU16() != 0
	default:
		return false
	}
	return true
}

// EpiCfgScanner holds one MDC_MOC_SCAN_CFG_EPI instance: an episodic
// scanner, triggered per measurement episode rather than on a period.
type EpiCfgScanner struct {
	Scanner
}

func newEpiCfgScanner(handle uint16) *EpiCfgScanner {
	return &EpiCfgScanner{Scanner: Scanner{Handle: handle, OperationalState: ScannerDisabled}}
}

func (s *EpiCfgScanner) setAttribute(ava codec.AVA) {
	r := bytelib.NewReader(ava.Value)
	s.Scanner.setAttribute(ava.AttributeID, r)
}

// PeriCfgScanner holds one MDC_MOC_SCAN_CFG_PERI instance: a periodic
// scanner, driven by ScanReportPeriod rather than by episode.
type PeriCfgScanner struct {
	Scanner
	ScanReportPeriod uint32
}

func newPeriCfgScanner(handle uint16) *PeriCfgScanner {
	return &PeriCfgScanner{Scanner: Scanner{Handle: handle, OperationalState: ScannerDisabled}}
}

func (s *PeriCfgScanner) setAttribute(ava codec.AVA) {
	r := bytelib.NewReader(ava.Value)
	if s.Scanner.setAttribute(ava.AttributeID, r) {
		return
	}
	switch ava.AttributeID {
	case codec.AttrScanReportPer:
		s.ScanReportPeriod = r.ReadU32()
	default:
	}
}

// Object is the tagged variant over the six recognised sub-object
// classes, per §3. At most one of the fields below is non-nil (none for
// an unrecognised class), selected at construction time by obj_class and
// fixed for the object's lifetime.
type Object struct {
	Class  uint16
	Handle uint16

	Numeric        *Numeric
	Enumeration    *Enumeration
	RTSA           *RTSA
	PMStore        *PMStore
	EpiCfgScanner  *EpiCfgScanner
	PeriCfgScanner *PeriCfgScanner
}

// NewObject instantiates the sub-object variant matching class, with
// handle attached up front so GetByHandle works even before any
// attribute has been decoded. An unrecognised class yields an Object
// with every variant field nil; SetAttribute on it is a no-op.
func NewObject(class, handle uint16) *Object {
	obj := &Object{Class: class, Handle: handle}
	switch class {
	case codec.ObjClassNumeric:
		obj.Numeric = newNumeric(handle)
	case codec.ObjClassEnumeration:
		obj.Enumeration = newEnumeration(handle)
	case codec.ObjClassRTSA:
		obj.RTSA = newRTSA(handle)
	case codec.ObjClassPMStore:
		obj.PMStore = newPMStore(handle)
	case codec.ObjClassEpiCfgScanner:
		obj.EpiCfgScanner = newEpiCfgScanner(handle)
	case codec.ObjClassPeriCfgScanner:
		obj.PeriCfgScanner = newPeriCfgScanner(handle)
	}
	return obj
}

// SetAttribute dispatches to whichever variant this Object holds.
// Unrecognised classes silently ignore every attribute, mirroring the
// default case in mds_configure_operating.
func (o *Object) SetAttribute(ava codec.AVA) {
	switch {
	case o.Numeric != nil:
		o.Numeric.setAttribute(ava)
	case o.Enumeration != nil:
		o.Enumeration.setAttribute(ava)
	case o.RTSA != nil:
		o.RTSA.setAttribute(ava)
	case o.PMStore != nil:
		o.PMStore.setAttribute(ava)
	case o.EpiCfgScanner != nil:
		o.EpiCfgScanner.setAttribute(ava)
	case o.PeriCfgScanner != nil:
		o.PeriCfgScanner.setAttribute(ava)
	}
}

// ApplyScanValue applies one scan-report observation's raw bytes to
// whichever variant this Object holds, picking the attribute id the
// variant actually stores its measured value under (Numeric -> nu-val,
// Enumeration -> enum-obs-val-simple, RTSA -> sa-specn, kept opaque in its
// Raw map). PMStore, the scanner variants and unrecognised classes are a
// no-op.
func (o *Object) ApplyScanValue(value []byte) {
	switch {
	case o.Numeric != nil:
		o.Numeric.setAttribute(codec.AVA{AttributeID: codec.AttrNuVal, Value: value})
	case o.Enumeration != nil:
		o.Enumeration.setAttribute(codec.AVA{AttributeID: codec.AttrEnumObsValSimple, Value: value})
	case o.RTSA != nil:
		o.RTSA.setAttribute(codec.AVA{AttributeID: codec.AttrSaSpecn, Value: value})
	}
}
