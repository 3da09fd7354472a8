package dimm

import (
	"bytes"
	"strings"
	"testing"
)

// New builds one chip per channel, every bank in the power-on state.
func TestNewDIMMPowerOnState(t *testing.T) {
	var buf bytes.Buffer
	d := New(DefaultConfig(), &buf)
	for ch := uint8(0); ch < NumChannels; ch++ {
		chip := d.Chip(ch)
		if chip == nil {
			t.Fatalf("channel %d: nil chip", ch)
		}
		if !chip.Banks[0][0].IsPrecharged {
			t.Fatalf("channel %d: expected bank [0][0] precharged", ch)
		}
	}
}

// Advance dispatches to ClosedPage when openPage is false and emits the
// resulting command line through the DIMM's emitter.
func TestAdvanceClosedPageEmitsToSink(t *testing.T) {
	var buf bytes.Buffer
	d := New(DefaultConfig(), &buf)
	r := NewRequest(0, 0, DataRead, 0, 0)

	emitted, err := d.Advance(&r, 0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !emitted {
		t.Fatalf("expected a command on the first ACT0-eligible cycle")
	}
	if r.State != Act1 {
		t.Fatalf("expected state ACT1 after the first closed-page step, got %v", r.State)
	}

	if err := d.Emitter.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !strings.Contains(buf.String(), "ACT0") {
		t.Fatalf("expected ACT0 in emitted output, got %q", buf.String())
	}
}

// Advance dispatches to OpenPage when openPage is true.
func TestAdvanceOpenPageDispatch(t *testing.T) {
	var buf bytes.Buffer
	d := New(DefaultConfig(), &buf)
	r := NewRequest(0, 0, DataRead, 0, 0)

	emitted, err := d.Advance(&r, 0, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !emitted {
		t.Fatalf("expected a command")
	}
	if r.State != Act1 {
		t.Fatalf("expected state ACT1 after the first open-page step on a page-empty bank, got %v", r.State)
	}
}

// Tick decrements counters on every channel's chip, not just one.
func TestDIMMTickAdvancesEveryChannel(t *testing.T) {
	var buf bytes.Buffer
	d := New(DefaultConfig(), &buf)
	r0 := NewRequest(0, 0, DataRead, 0, 0)
	r1 := NewRequest(0, 0, DataRead, 1, 0)

	d.Chip(0).ArmBankTiming(&r0, TRCD)
	d.Chip(1).ArmBankTiming(&r1, TRCD)

	reload := DefaultConfig().BankTiming[TRCD]
	for i := uint16(0); i < reload; i++ {
		d.Tick()
	}

	if !d.Chip(0).BankTimingMet(&r0, TRCD) {
		t.Fatalf("expected channel 0's tRCD met after %d ticks", reload)
	}
	if !d.Chip(1).BankTimingMet(&r1, TRCD) {
		t.Fatalf("expected channel 1's tRCD met after %d ticks", reload)
	}
}
