package fsm

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/otcheredev/pcd-manager/internal/bytelib"
	"github.com/otcheredev/pcd-manager/internal/codec"
	"github.com/otcheredev/pcd-manager/internal/stdconfig"
)

// fakeTransport captures every frame Send would have put on the wire,
// so tests can decode and assert on what the FSM actually sent.
type fakeTransport struct {
	sent    [][]byte
	failNext bool
}

func (f *fakeTransport) Send(frame []byte) error {
	if f.failNext {
		f.failNext = false
		return errSendFailed
	}
	f.sent = append(f.sent, frame)
	return nil
}

func (f *fakeTransport) last() codec.APDU {
	if len(f.sent) == 0 {
		panic("fakeTransport: no frame sent")
	}
	a, err := codec.DecodeAPDU(bytelib.NewReader(f.sent[len(f.sent)-1]))
	if err != nil {
		panic(err)
	}
	return a
}

var errSendFailed = &fakeSendError{}

type fakeSendError struct{}

func (*fakeSendError) Error() string { return "fake transport: send failed" }

// fakeTimer stands in for the single logical timer slot: Arm always
// replaces the previously armed callback, matching the real
// singleShotTimer's behaviour, but firing is entirely manual so tests
// can deterministically exercise timeout paths.
type fakeTimer struct {
	armed    bool
	seconds  int
	onExpiry func()
}

func (t *fakeTimer) Arm(seconds int, onExpiry func()) {
	t.armed = true
	t.seconds = seconds
	t.onExpiry = onExpiry
}

func (t *fakeTimer) Cancel() {
	t.armed = false
	t.onExpiry = nil
}

// fire simulates the armed timer expiring.
func (t *fakeTimer) fire() {
	if !t.armed {
		panic("fakeTimer: fire called with nothing armed")
	}
	cb := t.onExpiry
	t.armed = false
	t.onExpiry = nil
	cb()
}

// fakeRegistry is an in-memory extconfig.Registry for tests that don't
// need a real backend; entries are pre-seeded directly on the map.
type fakeRegistry struct {
	entries        map[string][]codec.ConfigObject
	registerCalled int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{entries: make(map[string][]codec.ConfigObject)}
}

func (r *fakeRegistry) key(systemID []byte, configReportID uint16) string {
	return fmt.Sprintf("%x:%04x", systemID, configReportID)
}

func (r *fakeRegistry) Lookup(_ context.Context, systemID []byte, configReportID uint16) ([]codec.ConfigObject, bool, error) {
	objs, ok := r.entries[r.key(systemID, configReportID)]
	return objs, ok, nil
}

func (r *fakeRegistry) Register(_ context.Context, systemID []byte, configReportID uint16, objects []codec.ConfigObject) error {
	r.registerCalled++
	r.entries[r.key(systemID, configReportID)] = objects
	return nil
}

// testHarness bundles one Context with its fakes so tests can drive
// and assert on it without repeating the wiring.
type testHarness struct {
	ctx       *Context
	transport *fakeTransport
	timer     *fakeTimer
	catalogue *stdconfig.Catalogue
	registry  *fakeRegistry
	events    DataList
	disassoc  []DisassociateReason
}

func newHarness(t *testing.T) *testHarness {
	cat, err := stdconfig.New()
	if err != nil {
		t.Fatalf("stdconfig.New: %v", err)
	}
	h := &testHarness{
		transport: &fakeTransport{},
		timer:     &fakeTimer{},
		catalogue: cat,
		registry:  newFakeRegistry(),
	}
	callbacks := Callbacks{
		OnDeviceAvailable: func(d DataList) { h.events = d },
		OnMeasurementDataUpdated: func(d DataList) { h.events = d },
		OnDisassociated: func(r DisassociateReason) { h.disassoc = append(h.disassoc, r) },
	}
	h.ctx = NewContext([]byte{0x01, 0x02}, h.transport, h.timer, cat, h.registry, callbacks, zerolog.Nop())
	h.ctx.OnLinkUp()
	return h
}

// associateFastPath drives h.ctx from Disconnected all the way to Operating
// using a standard (already-known) config_report_id, the fast path
// through handleAARE.
func (h *testHarness) associateFastPath(t *testing.T) {
	h.ctx.OnLinkUp()
	if err := h.ctx.RequestAssociate(); err != nil {
		t.Fatalf("RequestAssociate: %v", err)
	}
	h.ctx.handleAARE(codec.AAREApdu{
		Result: codec.AssociationAccepted,
		Info:   codec.AssociationInfo{SystemID: []byte{0xAA, 0xBB}, ConfigReportID: 0x0BAB},
	})
	if h.ctx.State() != Operating {
		t.Fatalf("after fast-path AARE, state = %s, want Operating", h.ctx.State())
	}
}
