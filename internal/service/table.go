// Package service implements the pending-request table and invoke-id
// allocator described in §4.4: a connection-scoped, single-threaded
// collaborator driven entirely by explicit calls from the fsm package,
// never by its own goroutine (per §5's "no suspension points internal
// to the core" rule).
package service

import (
	"time"

	"github.com/otcheredev/pcd-manager/internal/codec"
)

// NoTimeout marks a pending entry with no deadline.
const NoTimeout time.Duration = 0

// Callback receives the decoded response payload on success, or one of
// the Err* types in errors.go on Timeout/Aborted/RemoteError/RemoteReject.
type Callback func(codec.DataMessage, error)

// pendingEntry is one allocated-but-not-yet-retired request.
type pendingEntry struct {
	invokeID       uint16
	expectedChoice uint16
	callback       Callback
	deadline       time.Time
	hasDeadline    bool
}

// Table is the pending-request table owned by one connection context.
// It is not safe for concurrent use: the fsm package serialises all
// access to a single connection's Table, per §5's scheduling model.
type Table struct {
	entries map[uint16]*pendingEntry
	next    uint16
	now     func() time.Time
}

// NewTable returns an empty table. The invoke-id counter starts at 1:
// 0 is never allocated, matching "rotating counter modulo 2^16,
// skipping 0" in §3.
func NewTable() *Table {
	return &Table{entries: make(map[uint16]*pendingEntry), next: 1, now: time.Now}
}

// allocateInvokeID returns the next invoke-id, rotating through the
// 16-bit space and skipping 0 and any id already pending (I1).
func (t *Table) allocateInvokeID() uint16 {
	for {
		id := t.next
		if t.next == 0xFFFF {
			t.next = 1
		} else {
			t.next++
		}
		if id == 0 {
			continue
		}
		if _, busy := t.entries[id]; !busy {
			return id
		}
	}
}

// Allocate reserves a fresh invoke-id, enqueues a pending entry with the
// given expected response choice and deadline, and returns the id to
// patch into the outbound APDU. A zero timeout means NoTimeout: the
// entry never expires on its own.
func (t *Table) Allocate(expectedChoice uint16, timeout time.Duration, cb Callback) uint16 {
	id := t.allocateInvokeID()
	e := &pendingEntry{invokeID: id, expectedChoice: expectedChoice, callback: cb}
	if timeout > 0 {
		e.deadline = t.now().Add(timeout)
		e.hasDeadline = true
	}
	t.entries[id] = e
	return id
}

// CheckKnownInvokeID reports whether a pending entry exists for
// invokeID whose expected result choice matches msgChoice.
func (t *Table) CheckKnownInvokeID(invokeID, msgChoice uint16) bool {
	e, ok := t.entries[invokeID]
	if !ok {
		return false
	}
	return e.expectedChoice == msgChoice
}

// Retire removes the pending entry for invokeID and invokes its
// callback with msg and a nil error (the OK outcome). A response whose
// invoke-id is not in the table is silently dropped by the caller
// before Retire is ever called, per §4.4.
func (t *Table) Retire(invokeID uint16, msg codec.DataMessage) {
	e, ok := t.entries[invokeID]
	if !ok {
		return
	}
	delete(t.entries, invokeID)
	e.callback(msg, nil)
}

// RetireWithError removes the pending entry for invokeID and invokes
// its callback with the given error (RemoteError / RemoteReject paths).
func (t *Table) RetireWithError(invokeID uint16, err error) {
	e, ok := t.entries[invokeID]
	if !ok {
		return
	}
	delete(t.entries, invokeID)
	e.callback(nil, err)
}

// OnTimerTick removes every entry whose deadline has passed and invokes
// its callback with ErrTimeout. Entries with no deadline are untouched.
func (t *Table) OnTimerTick() {
	now := t.now()
	for id, e := range t.entries {
		if e.hasDeadline && !now.Before(e.deadline) {
			delete(t.entries, id)
			e.callback(nil, &ErrTimeout{InvokeID: id})
		}
	}
}

// DrainAborted empties the table, invoking every remaining callback
// with ErrAborted — used on connection teardown (req_abort, link-down),
// satisfying invariant I2: every allocated entry retires exactly once.
func (t *Table) DrainAborted() {
	for id, e := range t.entries {
		delete(t.entries, id)
		e.callback(nil, &ErrAborted{InvokeID: id})
	}
}

// NextDeadline reports the whole seconds (rounded up) until the
// earliest pending entry's deadline, and whether any deadline exists
// at all. The fsm package uses this to re-arm its single timer slot to
// cover Get/Set/Action timeouts while Operating, per §3's "one logical
// timer per context, a new count_timeout replaces any prior timer".
func (t *Table) NextDeadline() (int, bool) {
	var earliest time.Time
	found := false
	for _, e := range t.entries {
		if !e.hasDeadline {
			continue
		}
		if !found || e.deadline.Before(earliest) {
			earliest = e.deadline
			found = true
		}
	}
	if !found {
		return 0, false
	}
	d := earliest.Sub(t.now())
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	if secs < 0 {
		secs = 0
	}
	return secs, true
}

// Init clears the table, per the init(ctx) operation run on
// (re-)entering Operating.
func (t *Table) Init() {
	t.entries = make(map[uint16]*pendingEntry)
}

// Len reports the number of pending entries.
func (t *Table) Len() int {
	return len(t.entries)
}
