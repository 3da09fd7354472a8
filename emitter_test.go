package dimm

import (
	"bytes"
	"strings"
	"testing"
)

// ACT0/ACT1 lines carry bank-group, bank, and the row in 4-digit hex.
func TestFormatCommandActivate(t *testing.T) {
	cmd := Command{Cycle: 100, Channel: 0, Mnemonic: MnemonicAct0, BankGroup: 1, Bank: 2, Row: 5}
	got := formatCommand(cmd)
	want := "       100 0 ACT0 1 2 0x0005"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// PRE lines carry only bank-group and bank, no hex suffix.
func TestFormatCommandPrecharge(t *testing.T) {
	cmd := Command{Cycle: 42, Channel: 1, Mnemonic: MnemonicPre, BankGroup: 3, Bank: 0}
	got := formatCommand(cmd)
	want := "        42 1 PRE  3 0"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// RD0/WR0/RD1/WR1 lines carry bank-group, bank, and column in 4-digit hex.
func TestFormatCommandReadWrite(t *testing.T) {
	cmd := Command{Cycle: 7, Channel: 0, Mnemonic: MnemonicRd0, BankGroup: 2, Bank: 1, Column: 0xAB}
	got := formatCommand(cmd)
	want := "         7 0 RD0  2 1 0x00AB"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

// Emit appends one line per command and Flush pushes it to the sink.
func TestEmitterAppendsLineAndFlushes(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)
	cmd := Command{Cycle: 1, Channel: 0, Mnemonic: MnemonicAct0, BankGroup: 0, Bank: 0, Row: 0}
	if err := e.Emit(cmd); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Fatalf("expected trailing newline, got %q", buf.String())
	}
}
