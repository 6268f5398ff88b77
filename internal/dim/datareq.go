package dim

import "fmt"

// DataReqMode bit layout, per §4.3's "Data-request capability check".
// Low nibble carries the requested data-type bits; bits 4-6 select
// exactly one of three mutually-exclusive modes; bits 8-10 select exactly
// one of three mutually-exclusive scopes; bit 12 requests per-person
// scoping.
const (
	DataReqTypeMask uint16 = 0x000F

	DataReqModeSingleResponse uint16 = 0x0010
	DataReqModeTimePeriod     uint16 = 0x0020
	DataReqModeNoLimit        uint16 = 0x0040
	dataReqModeMask           uint16 = DataReqModeSingleResponse | DataReqModeTimePeriod | DataReqModeNoLimit

	DataReqScopeAll    uint16 = 0x0100
	DataReqScopeClass  uint16 = 0x0200
	DataReqScopeHandle uint16 = 0x0400
	dataReqScopeMask   uint16 = DataReqScopeAll | DataReqScopeClass | DataReqScopeHandle

	DataReqPersonID uint16 = 0x1000
)

// UnsupportedDataRequest reports which clause of the capability check
// failed, without ever emitting an APDU for the rejected request.
type UnsupportedDataRequest struct {
	Requested uint16
	Reason    string
}

func (e *UnsupportedDataRequest) Error() string {
	return fmt.Sprintf("unsupported data request %#04x: %s", e.Requested, e.Reason)
}

func oneBitSet(bits uint16) bool {
	return bits != 0 && bits&(bits-1) == 0
}

// CheckDataRequest validates a requested data_req_mode against what this
// MDS's Agent has advertised, per the four clauses in §4.3. nil means
// supported; a non-nil *UnsupportedDataRequest names the failing clause.
func (m *MDS) CheckDataRequest(requested uint16) error {
	typeBits := requested & DataReqTypeMask
	if typeBits&^m.DataReqTypeCapable != 0 {
		return &UnsupportedDataRequest{Requested: requested, Reason: "requested type bits exceed Agent's advertised type capability"}
	}

	modeBits := requested & dataReqModeMask
	if !oneBitSet(modeBits) {
		return &UnsupportedDataRequest{Requested: requested, Reason: "exactly one mode bit must be set"}
	}
	if modeBits&m.DataReqModeCapable == 0 {
		return &UnsupportedDataRequest{Requested: requested, Reason: "requested mode not in Agent's advertised mode capability"}
	}

	scopeBits := requested & dataReqScopeMask
	if !oneBitSet(scopeBits) {
		return &UnsupportedDataRequest{Requested: requested, Reason: "exactly one scope bit must be set"}
	}
	if scopeBits&m.DataReqScopeCapable == 0 {
		return &UnsupportedDataRequest{Requested: requested, Reason: "requested scope not in Agent's advertised scope capability"}
	}

	if requested&DataReqPersonID != 0 && !m.DataReqPersonIDCapable {
		return &UnsupportedDataRequest{Requested: requested, Reason: "person-id requested but Agent does not advertise person-id support"}
	}

	return nil
}
