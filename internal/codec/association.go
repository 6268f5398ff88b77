package codec

import "github.com/otcheredev/pcd-manager/internal/bytelib"

// AssociationInfo is the PhdAssociationInformation payload carried inside
// both AARQ and AARE: protocol version, the Agent's system id, and the
// config_report_id identifying its object model (or the configuration it
// is proposing). A zero-length SystemID means "not yet known" (AARQ sent
// by the Manager before it knows the Agent).
type AssociationInfo struct {
	ProtocolVersion uint32
	SystemID        []byte
	ConfigReportID  uint16
}

func encodeAssociationInfo(w *bytelib.Writer, a AssociationInfo) {
	w.WriteU32(a.ProtocolVersion)
	w.WriteOctetString(a.SystemID)
	w.WriteU16(a.ConfigReportID)
}

func decodeAssociationInfo(r *bytelib.Reader) AssociationInfo {
	ver := r.ReadU32()
	sysID := r.ReadOctetString()
	cfgID := r.ReadU16()
	return AssociationInfo{ProtocolVersion: ver, SystemID: sysID, ConfigReportID: cfgID}
}

// AssociationResult values carried in AARE, per 11073-20601's
// AssociationResult enumeration.
type AssociationResult uint16

const (
	AssociationAccepted                    AssociationResult = 0
	AssociationRejectedPermanent            AssociationResult = 1
	AssociationRejectedTransient            AssociationResult = 2
)

// AARQApdu is the A-ASSOCIATE request body.
type AARQApdu struct {
	Info AssociationInfo
}

func (AARQApdu) isAPDUBody() {}

func encodeAARQ(w *bytelib.Writer, a AARQApdu) {
	encodeAssociationInfo(w, a.Info)
}

func decodeAARQ(r *bytelib.Reader) AARQApdu {
	return AARQApdu{Info: decodeAssociationInfo(r)}
}

// AAREApdu is the A-ASSOCIATE response body.
type AAREApdu struct {
	Result AssociationResult
	Info   AssociationInfo
}

func (AAREApdu) isAPDUBody() {}

func encodeAARE(w *bytelib.Writer, a AAREApdu) {
	w.WriteU16(uint16(a.Result))
	encodeAssociationInfo(w, a.Info)
}

func decodeAARE(r *bytelib.Reader) AAREApdu {
	result := AssociationResult(r.ReadU16())
	return AAREApdu{Result: result, Info: decodeAssociationInfo(r)}
}

// Accepted reports whether the AARE carries an accepting result.
func (a AAREApdu) Accepted() bool {
	return a.Result == AssociationAccepted
}
