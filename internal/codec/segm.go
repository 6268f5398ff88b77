package codec

import "github.com/otcheredev/pcd-manager/internal/bytelib"

// SegmSelection chooses which PMStore segments an action targets. Carried
// as the ActionInfo of a get-segment-info / trig-segment-data-xfer
// action, per the supplemented PMStore features in SPEC_FULL.md §4.
type SegmSelection struct {
	Choice       SegmSelectionChoice
	AllSegments  uint16
	SegmInstance uint16
	AbsoluteTime uint32
}

// SegmSelectionChoice discriminates which field of SegmSelection is live.
type SegmSelectionChoice uint8

const (
	AllSegmentsChosen       SegmSelectionChoice = 0
	SegmInstanceChosen      SegmSelectionChoice = 1
	SegmAbsoluteTimeChosen  SegmSelectionChoice = 2
)

func EncodeSegmSelection(w *bytelib.Writer, s SegmSelection) {
	w.WriteU8(uint8(s.Choice))
	switch s.Choice {
	case AllSegmentsChosen:
		w.WriteU16(s.AllSegments)
	case SegmInstanceChosen:
		w.WriteU16(s.SegmInstance)
	case SegmAbsoluteTimeChosen:
		w.WriteU32(s.AbsoluteTime)
	}
}

func DecodeSegmSelection(r *bytelib.Reader) SegmSelection {
	choice := SegmSelectionChoice(r.ReadU8())
	s := SegmSelection{Choice: choice}
	switch choice {
	case AllSegmentsChosen:
		s.AllSegments = r.ReadU16()
	case SegmInstanceChosen:
		s.SegmInstance = r.ReadU16()
	case SegmAbsoluteTimeChosen:
		s.AbsoluteTime = r.ReadU32()
	}
	return s
}

// TrigSegmDataXferReq requests PMStore segment data transfer for one
// segment instance.
type TrigSegmDataXferReq struct {
	SegInstNo uint16
}

func EncodeTrigSegmDataXferReq(w *bytelib.Writer, t TrigSegmDataXferReq) {
	w.WriteU16(t.SegInstNo)
}

func DecodeTrigSegmDataXferReq(r *bytelib.Reader) TrigSegmDataXferReq {
	return TrigSegmDataXferReq{SegInstNo: r.ReadU16()}
}

// Action type codes for PMStore operations (the "action" arm of the
// application surface's request_segment_info / request_segment_data /
// request_clear_segments operations).
const (
	ActionGetSegmentInfo        uint16 = 0x0C1C
	ActionTrigSegmentDataXfer   uint16 = 0x0C1D
	ActionClearSegments         uint16 = 0x0C1E
)

// Action type codes for the scanner data-request family (the "action"
// arm of request_data_request), same numbering family as the PMStore
// actions above.
const (
	ActionDataRequestStart uint16 = 0x0C1F
	ActionDataRequestStop  uint16 = 0x0C20
)
