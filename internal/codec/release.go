package codec

import "github.com/otcheredev/pcd-manager/internal/bytelib"

// RLRQApdu is the A-RELEASE request body.
type RLRQApdu struct {
	Reason uint16
}

func (RLRQApdu) isAPDUBody() {}

func encodeRLRQ(w *bytelib.Writer, a RLRQApdu) { w.WriteU16(a.Reason) }
func decodeRLRQ(r *bytelib.Reader) RLRQApdu    { return RLRQApdu{Reason: r.ReadU16()} }

// RLREApdu is the A-RELEASE response body. Reason ReleaseReasonNormal is
// sent for every unsolicited RLRQ the Manager receives, per §4.5.
type RLREApdu struct {
	Reason uint16
}

func (RLREApdu) isAPDUBody() {}

func encodeRLRE(w *bytelib.Writer, a RLREApdu) { w.WriteU16(a.Reason) }
func decodeRLRE(r *bytelib.Reader) RLREApdu    { return RLREApdu{Reason: r.ReadU16()} }

// ABRTApdu is the A-ABORT body.
type ABRTApdu struct {
	Reason uint16
}

func (ABRTApdu) isAPDUBody() {}

func encodeABRT(w *bytelib.Writer, a ABRTApdu) { w.WriteU16(a.Reason) }
func decodeABRT(r *bytelib.Reader) ABRTApdu    { return ABRTApdu{Reason: r.ReadU16()} }

// Abort reason codes.
const (
	AbortReasonUndefined        uint16 = 0
	AbortReasonInvalidAPDU      uint16 = 1
	AbortReasonPeerRequested    uint16 = 2
)

// PRSTApdu wraps a DataAPDU, the only thing a Presentation APDU carries.
type PRSTApdu struct {
	Data DataAPDU
}

func (PRSTApdu) isAPDUBody() {}
