// ═══════════════════════════════════════════════════════════════════════════
// COMMAND EMITTER
// ═══════════════════════════════════════════════════════════════════════════
//
// Formats and appends one line per issued DDR5 interface command, exactly
// as spec.md §4.7: ten-character right-aligned decimal cycle, one space,
// channel, one space, four-character left-aligned mnemonic, then a
// command-specific suffix.
//
// ═══════════════════════════════════════════════════════════════════════════

package dimm

import (
	"bufio"
	"io"
)

// Mnemonic is the DDR5 interface command a state-machine transition emits.
type Mnemonic string

const (
	MnemonicAct0 Mnemonic = "ACT0"
	MnemonicAct1 Mnemonic = "ACT1"
	MnemonicPre  Mnemonic = "PRE"
	MnemonicRd0  Mnemonic = "RD0"
	MnemonicRd1  Mnemonic = "RD1"
	MnemonicWr0  Mnemonic = "WR0"
	MnemonicWr1  Mnemonic = "WR1"
)

// Command is one issued DDR5 interface command, ready for formatting.
type Command struct {
	Cycle     uint64
	Channel   uint8
	Mnemonic  Mnemonic
	BankGroup uint8
	Bank      uint8
	Row       uint32
	Column    uint16
}

// Emitter appends formatted command lines to an underlying writer.
type Emitter struct {
	w *bufio.Writer
}

// NewEmitter wraps w in a buffered writer. Flush must be called before the
// driver exits to guarantee the last lines reach the sink.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: bufio.NewWriter(w)}
}

// Flush pushes any buffered lines to the underlying writer.
func (e *Emitter) Flush() error {
	return e.w.Flush()
}

// Emit writes one formatted command line.
func (e *Emitter) Emit(cmd Command) error {
	if _, err := e.w.WriteString(formatCommand(cmd)); err != nil {
		return err
	}
	_, err := e.w.WriteString("\n")
	return err
}

func formatCommand(cmd Command) string {
	head := padCycleAndHeader(cmd.Cycle, cmd.Channel, string(cmd.Mnemonic))
	switch {
	case cmd.Mnemonic == MnemonicAct0 || cmd.Mnemonic == MnemonicAct1:
		return head + formatBankAndHex(cmd.BankGroup, cmd.Bank, cmd.Row)
	case cmd.Mnemonic == MnemonicPre:
		return head + formatBank(cmd.BankGroup, cmd.Bank)
	default: // RD0, RD1, WR0, WR1
		return head + formatBankAndHex(cmd.BankGroup, cmd.Bank, uint32(cmd.Column))
	}
}
