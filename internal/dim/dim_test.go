package dim

import (
	"testing"

	"github.com/otcheredev/pcd-manager/internal/codec"
)

func TestMDSSetAttributeKnownIDs(t *testing.T) {
	m := Create()
	m.SetAttribute(codec.AVA{AttributeID: codec.AttrSysType, Value: []byte{0x00, 0x2A}})
	if m.SystemType != 0x2A {
		t.Fatalf("SystemType = %x, want 0x2A", m.SystemType)
	}
	m.SetAttribute(codec.AVA{AttributeID: codec.AttrSysID, Value: []byte{0x00, 0x03, 0xAA, 0xBB, 0xCC}})
	if len(m.SystemID) != 3 {
		t.Fatalf("SystemID = %v, want 3 bytes", m.SystemID)
	}
}

func TestMDSSetAttributeUnknownIDIsNoOp(t *testing.T) {
	m := Create()
	before := *m
	m.SetAttribute(codec.AVA{AttributeID: 0xFFFF, Value: []byte{0x01}})
	if m.SystemType != before.SystemType || m.DevConfigurationID != before.DevConfigurationID {
		t.Fatalf("unknown attribute id mutated MDS: %+v", m)
	}
}

func TestMDSHandleIsNoOp(t *testing.T) {
	m := Create()
	m.SetAttribute(codec.AVA{AttributeID: codec.AttrHandle, Value: []byte{0x00, 0x07}})
	// AttrHandle on the MDS itself is a no-op; there is no field it could
	// mutate, so simply confirm it didn't panic and the mirror is otherwise
	// untouched.
	if m.GetByHandle(0) != nil {
		t.Fatalf("MDS handle 0 must never appear as a sub-object")
	}
}

func TestConfigureOperatingInstantiatesVariants(t *testing.T) {
	m := Create()
	objs := []codec.ConfigObject{
		{
			ObjClass:  codec.ObjClassNumeric,
			ObjHandle: 1,
			AttributeList: []codec.AVA{
				{AttributeID: codec.AttrHandle, Value: []byte{0x00, 0x01}},
				{AttributeID: codec.AttrNuVal, Value: []byte{0x00, 0x00, 0x00, 0x64}},
			},
		},
		{
			ObjClass:  codec.ObjClassPMStore,
			ObjHandle: 2,
			AttributeList: []codec.AVA{
				{AttributeID: codec.AttrNumOfPMSegments, Value: []byte{0x00, 0x05}},
			},
		},
	}
	m.ConfigureOperating(objs)

	if len(m.Objects()) != 2 {
		t.Fatalf("len(Objects()) = %d, want 2", len(m.Objects()))
	}

	numObj := m.GetByHandle(1)
	if numObj == nil || numObj.Numeric == nil {
		t.Fatalf("handle 1 should be a Numeric object, got %+v", numObj)
	}
	if numObj.Numeric.Value != 0x64 {
		t.Fatalf("Numeric.Value = %d, want 100", numObj.Numeric.Value)
	}

	pmObj := m.GetByHandle(2)
	if pmObj == nil || pmObj.PMStore == nil {
		t.Fatalf("handle 2 should be a PMStore object, got %+v", pmObj)
	}
	if pmObj.PMStore.NumberOfSegments != 5 {
		t.Fatalf("PMStore.NumberOfSegments = %d, want 5", pmObj.PMStore.NumberOfSegments)
	}
}

func TestGetByHandleMissingReturnsNil(t *testing.T) {
	m := Create()
	if got := m.GetByHandle(99); got != nil {
		t.Fatalf("GetByHandle on empty mirror = %+v, want nil", got)
	}
}

func TestDestroyClearsObjects(t *testing.T) {
	m := Create()
	m.AddObject(NewObject(codec.ObjClassNumeric, 1))
	m.Destroy()
	if len(m.Objects()) != 0 {
		t.Fatalf("Destroy left %d objects, want 0", len(m.Objects()))
	}
}

func TestCheckDataRequest(t *testing.T) {
	m := Create()
	m.DataReqTypeCapable = 0x03
	m.DataReqModeCapable = DataReqModeSingleResponse | DataReqModeTimePeriod
	m.DataReqScopeCapable = DataReqScopeAll | DataReqScopeHandle
	m.DataReqPersonIDCapable = false

	ok := DataReqTypeMask&0x03 | DataReqModeSingleResponse | DataReqScopeAll
	if err := m.CheckDataRequest(ok); err != nil {
		t.Fatalf("expected supported request, got %v", err)
	}

	tooManyTypeBits := uint16(0x0C) | DataReqModeSingleResponse | DataReqScopeAll
	if err := m.CheckDataRequest(tooManyTypeBits); err == nil {
		t.Fatalf("expected UnsupportedDataRequest for type bits outside capability")
	}

	noModeBit := uint16(0x01) | DataReqScopeAll
	if err := m.CheckDataRequest(noModeBit); err == nil {
		t.Fatalf("expected UnsupportedDataRequest for missing mode bit")
	}

	twoModeBits := uint16(0x01) | DataReqModeSingleResponse | DataReqModeTimePeriod | DataReqScopeAll
	if err := m.CheckDataRequest(twoModeBits); err == nil {
		t.Fatalf("expected UnsupportedDataRequest for two mode bits set")
	}

	personIDRequested := uint16(0x01) | DataReqModeSingleResponse | DataReqScopeAll | DataReqPersonID
	if err := m.CheckDataRequest(personIDRequested); err == nil {
		t.Fatalf("expected UnsupportedDataRequest for person-id without capability")
	}
}
