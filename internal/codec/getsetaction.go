package codec

import "github.com/otcheredev/pcd-manager/internal/bytelib"

// GetArgumentSimple is the ROIV-confirmed-get argument: the target object
// handle and, if non-empty, the subset of attribute ids requested (an
// empty list means "all attributes").
type GetArgumentSimple struct {
	ObjHandle     uint16
	AttributeIDs  []uint16
}

func encodeAttrIDList(w *bytelib.Writer, ids []uint16) {
	w.WriteU16(uint16(len(ids)))
	for _, id := range ids {
		w.WriteU16(id)
	}
}

func decodeAttrIDList(r *bytelib.Reader) []uint16 {
	count := r.ReadU16()
	ids := make([]uint16, 0, count)
	for i := uint16(0); i < count; i++ {
		if r.Error() != nil {
			break
		}
		ids = append(ids, r.ReadU16())
	}
	return ids
}

func EncodeGetArgumentSimple(w *bytelib.Writer, a GetArgumentSimple) {
	w.WriteU16(a.ObjHandle)
	encodeAttrIDList(w, a.AttributeIDs)
}

func DecodeGetArgumentSimple(r *bytelib.Reader) GetArgumentSimple {
	h := r.ReadU16()
	ids := decodeAttrIDList(r)
	return GetArgumentSimple{ObjHandle: h, AttributeIDs: ids}
}

// GetResultSimple is the ROIV-confirmed-get's reply payload.
type GetResultSimple struct {
	ObjHandle     uint16
	AttributeList []AVA
}

func EncodeGetResultSimple(w *bytelib.Writer, g GetResultSimple) {
	w.WriteU16(g.ObjHandle)
	encodeAVAList(w, g.AttributeList)
}

func DecodeGetResultSimple(r *bytelib.Reader) GetResultSimple {
	h := r.ReadU16()
	attrs := decodeAVAList(r)
	return GetResultSimple{ObjHandle: h, AttributeList: attrs}
}

// SetArgumentSimple is the ROIV-confirmed-set argument: new attribute
// values for an object.
type SetArgumentSimple struct {
	ObjHandle     uint16
	AttributeList []AVA
}

func EncodeSetArgumentSimple(w *bytelib.Writer, s SetArgumentSimple) {
	w.WriteU16(s.ObjHandle)
	encodeAVAList(w, s.AttributeList)
}

func DecodeSetArgumentSimple(r *bytelib.Reader) SetArgumentSimple {
	h := r.ReadU16()
	attrs := decodeAVAList(r)
	return SetArgumentSimple{ObjHandle: h, AttributeList: attrs}
}

// SetResultSimple echoes the attribute values actually applied.
type SetResultSimple struct {
	ObjHandle     uint16
	AttributeList []AVA
}

func EncodeSetResultSimple(w *bytelib.Writer, s SetResultSimple) {
	w.WriteU16(s.ObjHandle)
	encodeAVAList(w, s.AttributeList)
}

func DecodeSetResultSimple(r *bytelib.Reader) SetResultSimple {
	h := r.ReadU16()
	attrs := decodeAVAList(r)
	return SetResultSimple{ObjHandle: h, AttributeList: attrs}
}

// ActionArgumentSimple is the ROIV-confirmed-action argument: an object,
// an action type, and opaque action-specific info bytes (e.g. an encoded
// SegmSelection or TrigSegmDataXferReq).
type ActionArgumentSimple struct {
	ObjHandle  uint16
	ActionType uint16
	ActionInfo []byte
}

func EncodeActionArgumentSimple(w *bytelib.Writer, a ActionArgumentSimple) {
	w.WriteU16(a.ObjHandle)
	w.WriteU16(a.ActionType)
	w.WriteOctetString(a.ActionInfo)
}

func DecodeActionArgumentSimple(r *bytelib.Reader) ActionArgumentSimple {
	h := r.ReadU16()
	t := r.ReadU16()
	info := r.ReadOctetString()
	return ActionArgumentSimple{ObjHandle: h, ActionType: t, ActionInfo: info}
}

// ActionResultSimple is the ROIV-confirmed-action's reply payload.
type ActionResultSimple struct {
	ObjHandle  uint16
	ActionType uint16
	ActionInfo []byte
}

func EncodeActionResultSimple(w *bytelib.Writer, a ActionResultSimple) {
	w.WriteU16(a.ObjHandle)
	w.WriteU16(a.ActionType)
	w.WriteOctetString(a.ActionInfo)
}

func DecodeActionResultSimple(r *bytelib.Reader) ActionResultSimple {
	h := r.ReadU16()
	t := r.ReadU16()
	info := r.ReadOctetString()
	return ActionResultSimple{ObjHandle: h, ActionType: t, ActionInfo: info}
}
