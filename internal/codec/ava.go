package codec

import "github.com/otcheredev/pcd-manager/internal/bytelib"

// AVA is an attribute-value assertion: one (attribute_id, raw_bytes) pair
// as carried in a ConfigObject's attribute list, or a Get/Set result. The
// value is left undecoded here — the codec is side-effect-free per §4.2;
// the dim package decodes it once it knows which attribute id it is.
type AVA struct {
	AttributeID uint16
	Value       []byte
}

func encodeAVA(w *bytelib.Writer, a AVA) {
	w.WriteU16(a.AttributeID)
	w.WriteOctetString(a.Value)
}

func decodeAVA(r *bytelib.Reader) AVA {
	id := r.ReadU16()
	val := r.ReadOctetString()
	return AVA{AttributeID: id, Value: val}
}

func encodeAVAList(w *bytelib.Writer, list []AVA) {
	w.WriteU16(uint16(len(list)))
	length := bytelib.Measure(func(scratch *bytelib.Writer) {
		for _, a := range list {
			encodeAVA(scratch, a)
		}
	})
	w.WriteU16(uint16(length))
	for _, a := range list {
		encodeAVA(w, a)
	}
}

func decodeAVAList(r *bytelib.Reader) []AVA {
	count := r.ReadU16()
	length := r.ReadU16()
	sub := r.Sub(int(length))
	list := make([]AVA, 0, count)
	for i := uint16(0); i < count; i++ {
		if sub.Remaining() == 0 {
			break
		}
		list = append(list, decodeAVA(sub))
	}
	return list
}
