package codec

import "errors"

// Errors returned by decoders, per the Codec error kind in §7. Running out
// of input while reading a header or a declared length maps to
// ErrTruncatedInput; a body that needs more bytes than its own declared
// length maps to ErrInvalidLength; structural problems specific to a given
// APDU shape get their own sentinel.
var (
	// ErrTruncatedInput means a declared length exceeded the available
	// payload, or a fixed-width field ran past the end of the buffer.
	ErrTruncatedInput = errors.New("codec: truncated input")

	// ErrInvalidLength means a declared length field did not match the
	// structure being decoded (e.g. a substructure claims a length that
	// does not leave room for its own mandatory fields).
	ErrInvalidLength = errors.New("codec: invalid length")

	// ErrUnknownChoice means a tagged choice discriminator did not match
	// any shape in the closed catalogue.
	ErrUnknownChoice = errors.New("codec: unknown choice")
)

// ErrUnexpectedTrailing is not a hard failure: decoders tolerate extra
// trailing bytes inside a declared substructure length (future
// extension, per §4.2) and simply skip to its end. Call sites that want
// to log the occurrence can compare against this value; it is never
// returned as a decode error.
var ErrUnexpectedTrailing = errors.New("codec: unexpected trailing bytes (tolerated)")
