package fsm

import (
	"github.com/otcheredev/pcd-manager/internal/bytelib"
	"github.com/otcheredev/pcd-manager/internal/codec"
)

// newFrameWriter encodes a into a freshly sized buffer ready to hand to
// Transport.Send.
func newFrameWriter(a codec.APDU) []byte {
	w := bytelib.NewWriter(a.EncodedSize())
	codec.EncodeAPDU(w, a)
	return w.Buffer()
}
