package service

import (
	"testing"
	"time"

	"github.com/otcheredev/pcd-manager/internal/codec"
)

func TestAllocateSkipsZeroAndRotates(t *testing.T) {
	tbl := NewTable()
	tbl.next = 0xFFFF
	id := tbl.allocateInvokeID()
	if id != 0xFFFF {
		t.Fatalf("id = %x, want 0xFFFF", id)
	}
	id2 := tbl.allocateInvokeID()
	if id2 == 0 {
		t.Fatalf("allocateInvokeID returned reserved id 0")
	}
	if id2 != 1 {
		t.Fatalf("id2 = %x, want 1 (rotated past 0xFFFF, skipping 0)", id2)
	}
}

func TestRetireInvokesCallbackOnce(t *testing.T) {
	tbl := NewTable()
	calls := 0
	id := tbl.Allocate(codec.ChoiceRORSConfirmedGet, time.Second, func(msg codec.DataMessage, err error) {
		calls++
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	if !tbl.CheckKnownInvokeID(id, codec.ChoiceRORSConfirmedGet) {
		t.Fatalf("CheckKnownInvokeID false for a freshly allocated entry")
	}
	tbl.Retire(id, codec.RORSConfirmedGet{})
	if calls != 1 {
		t.Fatalf("callback invoked %d times, want 1", calls)
	}
	if tbl.Len() != 0 {
		t.Fatalf("Len() = %d after retire, want 0", tbl.Len())
	}
	// Retiring again (duplicate response) must not re-invoke the callback.
	tbl.Retire(id, codec.RORSConfirmedGet{})
	if calls != 1 {
		t.Fatalf("callback invoked %d times after duplicate retire, want 1", calls)
	}
}

func TestCheckKnownInvokeIDWrongChoiceMismatches(t *testing.T) {
	tbl := NewTable()
	id := tbl.Allocate(codec.ChoiceRORSConfirmedGet, NoTimeout, func(codec.DataMessage, error) {})
	if tbl.CheckKnownInvokeID(id, codec.ChoiceRORSConfirmedSet) {
		t.Fatalf("CheckKnownInvokeID matched a mismatched response family")
	}
}

func TestOnTimerTickExpiresOnlyPastDeadline(t *testing.T) {
	tbl := NewTable()
	fakeNow := time.Now()
	tbl.now = func() time.Time { return fakeNow }

	var timedOut, untouched bool
	tbl.Allocate(codec.ChoiceRORSConfirmedGet, time.Second, func(_ codec.DataMessage, err error) {
		if _, ok := err.(*ErrTimeout); ok {
			timedOut = true
		}
	})
	tbl.Allocate(codec.ChoiceRORSConfirmedSet, NoTimeout, func(codec.DataMessage, error) {
		untouched = true
	})

	fakeNow = fakeNow.Add(2 * time.Second)
	tbl.OnTimerTick()

	if !timedOut {
		t.Fatalf("expired entry was not delivered ErrTimeout")
	}
	if untouched {
		t.Fatalf("NoTimeout entry fired on a timer tick")
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d after tick, want 1 (NoTimeout entry survives)", tbl.Len())
	}
}

func TestDrainAbortedDeliversToEveryPendingEntry(t *testing.T) {
	tbl := NewTable()
	aborted := 0
	for i := 0; i < 3; i++ {
		tbl.Allocate(codec.ChoiceRORSConfirmedGet, NoTimeout, func(_ codec.DataMessage, err error) {
			if _, ok := err.(*ErrAborted); ok {
				aborted++
			}
		})
	}
	tbl.DrainAborted()
	if aborted != 3 {
		t.Fatalf("aborted callbacks = %d, want 3", aborted)
	}
	if tbl.Len() != 0 {
		t.Fatalf("Len() = %d after DrainAborted, want 0", tbl.Len())
	}
}

func TestInitClearsTableWithoutInvokingCallbacks(t *testing.T) {
	tbl := NewTable()
	called := false
	tbl.Allocate(codec.ChoiceRORSConfirmedGet, NoTimeout, func(codec.DataMessage, error) {
		called = true
	})
	tbl.Init()
	if tbl.Len() != 0 {
		t.Fatalf("Len() = %d after Init, want 0", tbl.Len())
	}
	if called {
		t.Fatalf("Init must not invoke pending callbacks")
	}
}
