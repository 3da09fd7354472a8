// ═══════════════════════════════════════════════════════════════════════════
// MEMORY REQUEST
// ═══════════════════════════════════════════════════════════════════════════

package dimm

import "fmt"

// Operation is the kind of access a request performs.
type Operation uint8

const (
	DataRead Operation = iota
	DataWrite
	IFetch
)

func (op Operation) String() string {
	switch op {
	case DataRead:
		return "DATA_READ"
	case DataWrite:
		return "DATA_WRITE"
	case IFetch:
		return "IFETCH"
	default:
		return "UNKNOWN_OP"
	}
}

// RequestState is the request's position in the per-bank state machine.
type RequestState uint8

const (
	Pending RequestState = iota
	Act0
	Act1
	Rd0
	Rd1
	Wr0
	Wr1
	Pre
	Buffer
	Burst
	Complete
)

func (s RequestState) String() string {
	names := [...]string{
		"PENDING", "ACT0", "ACT1", "RD0", "RD1", "WR0", "WR1",
		"PRE", "BUFFER", "BURST", "COMPLETE",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return "UNKNOWN_STATE"
}

// Request is one in-flight memory access, carried by value through the
// queue from admission to completion.
type Request struct {
	Time      uint64
	Core      uint8
	Operation Operation

	Channel    uint8
	BankGroup  uint8
	Bank       uint8
	Row        uint32
	ColumnHigh uint8
	ColumnLow  uint8
	ByteSelect uint8

	State      RequestState
	Aging      uint64
	IsFinished bool
}

// NewRequest decodes addr and builds a freshly-admitted, PENDING request.
func NewRequest(time uint64, core uint8, op Operation, channel uint8, addr uint64) Request {
	d := DecodeAddress(addr)
	return Request{
		Time:       time,
		Core:       core,
		Operation:  op,
		Channel:    channel,
		BankGroup:  d.BankGroup,
		Bank:       d.Bank,
		Row:        d.Row,
		ColumnHigh: d.ColumnHigh,
		ColumnLow:  d.ColumnLow,
		ByteSelect: d.ByteSelect,
		State:      Pending,
		Aging:      0,
		IsFinished: false,
	}
}

// Column concatenates column-high and column-low, the address the command
// emitter reports for RD/WR commands.
func (r *Request) Column() uint16 {
	return uint16(r.ColumnHigh)<<colLowBits | uint16(r.ColumnLow)
}

// SameBank reports whether r and other target the same (bank-group, bank).
func (r *Request) SameBank(other *Request) bool {
	return r.BankGroup == other.BankGroup && r.Bank == other.Bank
}

func (r Request) String() string {
	return fmt.Sprintf(
		"time=%d core=%d op=%s ch=%d bg=%d bank=%d row=0x%05X col=0x%04X state=%s aging=%d finished=%t",
		r.Time, r.Core, r.Operation, r.Channel, r.BankGroup, r.Bank, r.Row, r.Column(), r.State, r.Aging, r.IsFinished,
	)
}
