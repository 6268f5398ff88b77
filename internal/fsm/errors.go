package fsm

import "fmt"

// ErrUnexpectedAPDU is a State-kind error (§7): a well-formed APDU whose
// choice is not what the current state or request expects. Dispatch drops
// or rejects such APDUs without producing this error; it is delivered to a
// request's callback when the response retired for its invoke-id is not
// the expected message type.
type ErrUnexpectedAPDU struct {
	State  State
	Choice uint16
}

func (e *ErrUnexpectedAPDU) Error() string {
	return fmt.Sprintf("fsm: apdu choice %#04x unexpected in state %s", e.Choice, e.State)
}

// ErrUnknownInvokeID reports a response whose invoke-id has no pending
// entry; per §4.4 this is silently dropped by the caller, never
// escalated.
type ErrUnknownInvokeID struct {
	InvokeID uint16
}

func (e *ErrUnknownInvokeID) Error() string {
	return fmt.Sprintf("fsm: invoke-id %d has no pending request", e.InvokeID)
}

// ErrInvalidForState is a State-kind error for application requests
// issued from a state that cannot service them (e.g. req_get while
// Unassociated).
type ErrInvalidForState struct {
	State State
	Op    string
}

func (e *ErrInvalidForState) Error() string {
	return fmt.Sprintf("fsm: %s not valid in state %s", e.Op, e.State)
}

// ConfigRejectedReason names why an association's configuration could
// not be accepted, per the Protocol-kind ConfigRejected(reason) error.
type ConfigRejectedReason int

const (
	ConfigRejectedStandardUnknown ConfigRejectedReason = iota
	ConfigRejectedUnsupported
)

func (r ConfigRejectedReason) String() string {
	if r == ConfigRejectedStandardUnknown {
		return "standard-config-unknown"
	}
	return "unsupported-config"
}

// ErrConfigRejected describes an Agent configuration that could not be
// accepted. No code path returns or delivers it: a configuring timeout
// reaches on_disassociated as ReasonAborted.
type ErrConfigRejected struct {
	Reason ConfigRejectedReason
}

func (e *ErrConfigRejected) Error() string {
	return fmt.Sprintf("fsm: configuration rejected: %s", e.Reason)
}

// ErrAssociationRejected is a Protocol-kind error for an AARE carrying a
// non-accepting result.
type ErrAssociationRejected struct {
	Result uint16
}

func (e *ErrAssociationRejected) Error() string {
	return fmt.Sprintf("fsm: association rejected, result %#04x", e.Result)
}

// DisassociateReason names why a connection left Operating/association,
// delivered to on_disassociated.
type DisassociateReason int

const (
	ReasonReleasedByUs DisassociateReason = iota
	ReasonReleasedByPeer
	ReasonAborted
	ReasonTimeout
	ReasonLinkDown
)

func (r DisassociateReason) String() string {
	switch r {
	case ReasonReleasedByUs:
		return "released-by-us"
	case ReasonReleasedByPeer:
		return "released-by-peer"
	case ReasonAborted:
		return "aborted"
	case ReasonTimeout:
		return "timeout"
	case ReasonLinkDown:
		return "link-down"
	default:
		return "unknown"
	}
}
