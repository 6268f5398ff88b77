// Package dim is the in-memory mirror of an Agent's object model: the MDS
// root record and its dynamic sequence of sub-objects, built up by the
// configuration evaluator in internal/fsm and mutated by incoming
// measurement events.
package dim

import (
	"time"

	"github.com/otcheredev/pcd-manager/internal/bytelib"
	"github.com/otcheredev/pcd-manager/internal/codec"
)

// MDS is the root record of one Agent's mirror: scalar attributes plus an
// ordered sequence of sub-objects, each with a unique 16-bit handle.
type MDS struct {
	SystemID              []byte
	SystemType            uint16
	SystemModel           string
	ProductionSpecn       string
	DevConfigurationID    uint16
	AttributeValueMap     []uint16
	RegCertDataList       []byte
	SystemTypeSpecList    []byte

	MDSTimeInfo          []byte
	DateAndTime          []byte
	RelativeTime         uint32
	HiResRelativeTime    []byte
	DateAndTimeAdjust    []byte
	PowerStatus          uint16
	BatteryLevel         uint16
	RemainingBatteryTime []byte
	ConfirmTimeout       uint32

	// DataReqModeCapable / DataReqScopeCapable / DataReqTypeCapable /
	// DataReqPersonIDCapable mirror the Agent's advertised data-request
	// capability bits, per §4.3 "Data-request capability check".
	DataReqModeCapable     uint16
	DataReqScopeCapable    uint16
	DataReqTypeCapable     uint16
	DataReqPersonIDCapable bool

	objects []*Object
}

// Create returns a fresh MDS mirror with an empty object list. Handle 0
// is reserved for the MDS itself, per §3.
func Create() *MDS {
	return &MDS{objects: nil}
}

// AddObject appends a sub-object. Ownership: obj is now exclusively owned
// by this MDS; callers must not retain it independently.
func (m *MDS) AddObject(obj *Object) {
	m.objects = append(m.objects, obj)
}

// GetByHandle returns the sub-object with the given handle, or nil. A
// linear scan is acceptable per §4.3 (typical N < 32).
func (m *MDS) GetByHandle(handle uint16) *Object {
	for _, o := range m.objects {
		if o.Handle == handle {
			return o
		}
	}
	return nil
}

// Objects returns the mirror's sub-objects in configuration order.
func (m *MDS) Objects() []*Object {
	return m.objects
}

// Destroy clears the mirror's sub-objects, per mds_destroy in §4.3.
func (m *MDS) Destroy() {
	m.objects = nil
}

// SetAttribute decodes one (attribute_id, raw_bytes) pair into the
// matching MDS field. Unknown attribute ids are a silent no-op, per §4.3
// and the original mds_set_attribute's default fallthrough. AttrHandle is
// an explicit no-op (the MDS handle is fixed at 0, not settable) rather
// than an "unknown id", mirroring the original's explicit empty case.
func (m *MDS) SetAttribute(ava codec.AVA) {
	r := bytelib.NewReader(ava.Value)
	switch ava.AttributeID {
	case codec.AttrHandle:
		// no-op: MDS handle is fixed.
	case codec.AttrSysType:
		m.SystemType = r.ReadU16()
	case codec.AttrIDModel:
		m.SystemModel = string(r.ReadOctets(r.Remaining()))
	case codec.AttrSysID:
		m.SystemID = r.ReadOctetString()
	case codec.AttrDevConfigID:
		m.DevConfigurationID = r.ReadU16()
	case codec.AttrAttributeValMap:
		count := r.ReadU16()
		ids := make([]uint16, 0, count)
		for i := uint16(0); i < count && r.Error() == nil; i++ {
			ids = append(ids, r.ReadU16())
		}
		m.AttributeValueMap = ids
	case codec.AttrIDProdSpecn:
		m.ProductionSpecn = string(r.ReadOctets(r.Remaining()))
	case codec.AttrMDSTimeInfo:
		m.MDSTimeInfo = ava.Value
	case codec.AttrTimeAbs:
		m.DateAndTime = ava.Value
	case codec.AttrTimeRel:
		m.RelativeTime = r.ReadU32()
	case codec.AttrTimeRelHiRes:
		m.HiResRelativeTime = ava.Value
	case codec.AttrTimeAbsAdjust:
		m.DateAndTimeAdjust = ava.Value
	case codec.AttrPowerStat:
		m.PowerStatus = r.ReadU16()
	case codec.AttrValBattCharge:
		m.BatteryLevel = r.ReadU16()
	case codec.AttrTimeBattRemain:
		m.RemainingBatteryTime = ava.Value
	case codec.AttrRegCertDataList:
		m.RegCertDataList = ava.Value
	case codec.AttrSysTypeSpecList:
		m.SystemTypeSpecList = ava.Value
	case codec.AttrConfirmTimeout:
		m.ConfirmTimeout = r.ReadU32()
	default:
		// unknown attribute id: no-op, per §4.3.
	}
}

// ConfigureOperating instantiates the sub-object variant for each
// ConfigObject, decodes its attributes, attaches the handle, and appends
// it to the mirror — the bulk of mds_configure_operating in §4.3. The
// caller (the fsm package) is responsible for the "notify the application
// of device availability" half of that operation, since that crosses into
// the application-callback boundary this package does not own.
func (m *MDS) ConfigureOperating(objects []codec.ConfigObject) {
	for _, co := range objects {
		obj := NewObject(co.ObjClass, co.ObjHandle)
		for _, ava := range co.AttributeList {
			obj.SetAttribute(ava)
		}
		m.AddObject(obj)
	}
}

// Now is an overridable clock hook. No code in this repository reads it.
var Now = time.Now
