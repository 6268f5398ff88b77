package codec

import "github.com/otcheredev/pcd-manager/internal/bytelib"

// Body is the sum type over the outer APDU choices: AARQ, AARE, RLRQ,
// RLRE, ABRT, PRST.
type Body interface {
	isAPDUBody()
}

// APDU is one framed message: a 16-bit choice discriminator, a 16-bit
// length of the remainder, and the body, per §6.
type APDU struct {
	Choice uint16
	Body   Body
}

// EncodeAPDU writes the full frame: choice, length, body. Length is
// always computed by measuring the actual encoded body, never guessed
// from host struct sizes (the sizeof-based bug called out in §9).
func EncodeAPDU(w *bytelib.Writer, a APDU) {
	w.WriteU16(a.Choice)
	length := bytelib.Measure(func(scratch *bytelib.Writer) {
		encodeAPDUBody(scratch, a)
	})
	w.WriteU16(uint16(length))
	encodeAPDUBody(w, a)
}

func encodeAPDUBody(w *bytelib.Writer, a APDU) {
	switch v := a.Body.(type) {
	case AARQApdu:
		encodeAARQ(w, v)
	case AAREApdu:
		encodeAARE(w, v)
	case RLRQApdu:
		encodeRLRQ(w, v)
	case RLREApdu:
		encodeRLRE(w, v)
	case ABRTApdu:
		encodeABRT(w, v)
	case PRSTApdu:
		EncodeDataAPDU(w, v.Data)
	}
}

// EncodedSize returns the exact byte length EncodeAPDU would produce.
func (a APDU) EncodedSize() int {
	return bytelib.Measure(func(w *bytelib.Writer) { EncodeAPDU(w, a) })
}

// DecodeAPDU decodes one framed APDU from the front of r. Per §4.2, a
// declared length that exceeds the available payload is ErrTruncatedInput,
// a body that needs more bytes than its declared length is ErrInvalidLength,
// and an unrecognised outer choice is ErrUnknownChoice — which the FSM
// tie-break (c) treats as "ignore", not abort.
func DecodeAPDU(r *bytelib.Reader) (APDU, error) {
	choice := r.ReadU16()
	length := r.ReadU16()
	if r.Error() != nil {
		return APDU{}, ErrTruncatedInput
	}
	sub := r.Sub(int(length))
	if r.Error() != nil {
		return APDU{}, ErrTruncatedInput
	}

	var body Body
	switch choice {
	case ChoiceAARQ:
		body = decodeAARQ(sub)
	case ChoiceAARE:
		body = decodeAARE(sub)
	case ChoiceRLRQ:
		body = decodeRLRQ(sub)
	case ChoiceRLRE:
		body = decodeRLRE(sub)
	case ChoiceABRT:
		body = decodeABRT(sub)
	case ChoicePRST:
		data, err := DecodeDataAPDU(sub)
		if err != nil {
			return APDU{}, err
		}
		body = PRSTApdu{Data: data}
	default:
		return APDU{}, ErrUnknownChoice
	}

	if sub.Error() != nil {
		return APDU{}, ErrInvalidLength
	}
	return APDU{Choice: choice, Body: body}, nil
}
