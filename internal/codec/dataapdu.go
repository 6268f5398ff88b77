package codec

import "github.com/otcheredev/pcd-manager/internal/bytelib"

// DataMessage is the sum type over DATA-apdu.message choices: ROIV-*,
// RORS-*, ROER, RORJ. Exhaustive switches over Choice() replace the
// source's choice-plus-union layout per §9.
type DataMessage interface {
	Choice() uint16
}

func (ROIVConfirmedEventReport) Choice() uint16 { return ChoiceROIVConfirmedEventReport }
func (ROIVConfirmedGet) Choice() uint16         { return ChoiceROIVConfirmedGet }
func (ROIVConfirmedSet) Choice() uint16         { return ChoiceROIVConfirmedSet }
func (ROIVConfirmedAction) Choice() uint16      { return ChoiceROIVConfirmedAction }
func (RORSConfirmedEventReport) Choice() uint16 { return ChoiceRORSConfirmedEventReport }
func (RORSConfirmedGet) Choice() uint16         { return ChoiceRORSConfirmedGet }
func (RORSConfirmedSet) Choice() uint16         { return ChoiceRORSConfirmedSet }
func (RORSConfirmedAction) Choice() uint16      { return ChoiceRORSConfirmedAction }
func (ROER) Choice() uint16                     { return ChoiceROER }
func (RORJ) Choice() uint16                     { return ChoiceRORJ }

// ROIVConfirmedEventReport wraps EventReportArgumentSimple as a
// DataMessage variant.
type ROIVConfirmedEventReport struct{ EventReportArgumentSimple }

// ROIVConfirmedGet wraps GetArgumentSimple as a DataMessage variant.
type ROIVConfirmedGet struct{ GetArgumentSimple }

// ROIVConfirmedSet wraps SetArgumentSimple as a DataMessage variant.
type ROIVConfirmedSet struct{ SetArgumentSimple }

// ROIVConfirmedAction wraps ActionArgumentSimple as a DataMessage variant.
type ROIVConfirmedAction struct{ ActionArgumentSimple }

// RORSConfirmedEventReport wraps EventReportResultSimple as a
// DataMessage variant.
type RORSConfirmedEventReport struct{ EventReportResultSimple }

// RORSConfirmedGet wraps GetResultSimple as a DataMessage variant.
type RORSConfirmedGet struct{ GetResultSimple }

// RORSConfirmedSet wraps SetResultSimple as a DataMessage variant.
type RORSConfirmedSet struct{ SetResultSimple }

// RORSConfirmedAction wraps ActionResultSimple as a DataMessage variant.
type RORSConfirmedAction struct{ ActionResultSimple }

// ROER is a remote-operation error reply.
type ROER struct {
	ErrorValue uint16
	Parameter  []byte
}

// RORJ is a remote-operation reject reply.
type RORJ struct {
	ProblemValue uint16
}

// DataAPDU is the PRST payload: an invoke id plus one DataMessage.
type DataAPDU struct {
	InvokeID uint16
	Message  DataMessage
}

// IsROIV reports whether m is any ROIV-* variant, per the
// communication_is_roiv_type helper in the original.
func IsROIV(m DataMessage) bool {
	switch m.(type) {
	case ROIVConfirmedEventReport, ROIVConfirmedGet, ROIVConfirmedSet, ROIVConfirmedAction:
		return true
	}
	return false
}

// IsRORS reports whether m is any RORS-* variant.
func IsRORS(m DataMessage) bool {
	switch m.(type) {
	case RORSConfirmedEventReport, RORSConfirmedGet, RORSConfirmedSet, RORSConfirmedAction:
		return true
	}
	return false
}

func encodeDataMessageBody(w *bytelib.Writer, m DataMessage) {
	switch v := m.(type) {
	case ROIVConfirmedEventReport:
		EncodeEventReportArgumentSimple(w, v.EventReportArgumentSimple)
	case ROIVConfirmedGet:
		EncodeGetArgumentSimple(w, v.GetArgumentSimple)
	case ROIVConfirmedSet:
		EncodeSetArgumentSimple(w, v.SetArgumentSimple)
	case ROIVConfirmedAction:
		EncodeActionArgumentSimple(w, v.ActionArgumentSimple)
	case RORSConfirmedEventReport:
		EncodeEventReportResultSimple(w, v.EventReportResultSimple)
	case RORSConfirmedGet:
		EncodeGetResultSimple(w, v.GetResultSimple)
	case RORSConfirmedSet:
		EncodeSetResultSimple(w, v.SetResultSimple)
	case RORSConfirmedAction:
		EncodeActionResultSimple(w, v.ActionResultSimple)
	case ROER:
		w.WriteU16(v.ErrorValue)
		w.WriteOctetString(v.Parameter)
	case RORJ:
		w.WriteU16(v.ProblemValue)
	}
}

func decodeDataMessageBody(r *bytelib.Reader, choice uint16) DataMessage {
	switch choice {
	case ChoiceROIVConfirmedEventReport:
		return ROIVConfirmedEventReport{DecodeEventReportArgumentSimple(r)}
	case ChoiceROIVConfirmedGet:
		return ROIVConfirmedGet{DecodeGetArgumentSimple(r)}
	case ChoiceROIVConfirmedSet:
		return ROIVConfirmedSet{DecodeSetArgumentSimple(r)}
	case ChoiceROIVConfirmedAction:
		return ROIVConfirmedAction{DecodeActionArgumentSimple(r)}
	case ChoiceRORSConfirmedEventReport:
		return RORSConfirmedEventReport{DecodeEventReportResultSimple(r)}
	case ChoiceRORSConfirmedGet:
		return RORSConfirmedGet{DecodeGetResultSimple(r)}
	case ChoiceRORSConfirmedSet:
		return RORSConfirmedSet{DecodeSetResultSimple(r)}
	case ChoiceRORSConfirmedAction:
		return RORSConfirmedAction{DecodeActionResultSimple(r)}
	case ChoiceROER:
		ev := r.ReadU16()
		param := r.ReadOctetString()
		return ROER{ErrorValue: ev, Parameter: param}
	case ChoiceRORJ:
		return RORJ{ProblemValue: r.ReadU16()}
	default:
		return nil
	}
}

// EncodeDataAPDU writes the invoke id, inner choice, length, and body.
func EncodeDataAPDU(w *bytelib.Writer, d DataAPDU) {
	w.WriteU16(d.InvokeID)
	w.WriteU16(d.Message.Choice())
	length := bytelib.Measure(func(scratch *bytelib.Writer) {
		encodeDataMessageBody(scratch, d.Message)
	})
	w.WriteU16(uint16(length))
	encodeDataMessageBody(w, d.Message)
}

// EncodedSize returns the exact byte length EncodeDataAPDU would produce.
func (d DataAPDU) EncodedSize() int {
	return bytelib.Measure(func(w *bytelib.Writer) { EncodeDataAPDU(w, d) })
}

// DecodeDataAPDU decodes a DataAPDU. An unrecognised inner choice yields
// ErrUnknownChoice: per §4.5 tie-break (c), unknown APDU choices are
// ignored by the FSM, not treated as a hard protocol error here.
func DecodeDataAPDU(r *bytelib.Reader) (DataAPDU, error) {
	invokeID := r.ReadU16()
	choice := r.ReadU16()
	length := r.ReadU16()
	if r.Error() != nil {
		return DataAPDU{}, ErrTruncatedInput
	}
	sub := r.Sub(int(length))
	if r.Error() != nil {
		return DataAPDU{}, ErrTruncatedInput
	}
	msg := decodeDataMessageBody(sub, choice)
	if msg == nil {
		return DataAPDU{}, ErrUnknownChoice
	}
	if sub.Error() != nil {
		return DataAPDU{}, ErrInvalidLength
	}
	return DataAPDU{InvokeID: invokeID, Message: msg}, nil
}
