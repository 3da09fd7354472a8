// ═══════════════════════════════════════════════════════════════════════════
// TRACE READER
// ═══════════════════════════════════════════════════════════════════════════
//
// Reads a line-oriented trace file: `<cycle:uint64> <op:uint8> <addr:hex>`
// per line, whitespace-separated. Requests must be monotonically
// non-decreasing in cycle; the original parser assumed this but never
// checked it, so this reader rejects a decreasing cycle as a malformed
// trace rather than silently accepting it.
//
// ═══════════════════════════════════════════════════════════════════════════

package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	dimm "github.com/kalmaniii/DDR5-Memory-Controller"
)

// Entry is one parsed trace line, not yet decoded into a dimm.Request
// (the channel a trace targets is supplied by the driver, not the trace
// format, since §6 only names cycle/op/address).
type Entry struct {
	Cycle   uint64
	Op      dimm.Operation
	Address uint64
}

// Reader yields trace entries in file order.
type Reader struct {
	scanner   *bufio.Scanner
	lastCycle uint64
	started   bool
	done      bool
}

// NewReader wraps r for line-oriented scanning.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Done reports whether the reader has reached end-of-file. Mirrors the
// original parser's explicit END_OF_FILE status rather than relying on
// callers distinguishing io.EOF from other errors.
func (r *Reader) Done() bool {
	return r.done
}

// Next returns the next trace entry, or sets Done() and returns
// (Entry{}, false, nil) at end of file.
func (r *Reader) Next() (Entry, bool, error) {
	if r.done {
		return Entry{}, false, nil
	}
	if !r.scanner.Scan() {
		r.done = true
		if err := r.scanner.Err(); err != nil {
			return Entry{}, false, err
		}
		return Entry{}, false, nil
	}

	entry, err := parseLine(r.scanner.Text())
	if err != nil {
		return Entry{}, false, err
	}
	if r.started && entry.Cycle < r.lastCycle {
		return Entry{}, false, fmt.Errorf(
			"trace: cycle %d out of order after %d (cycles must be non-decreasing)",
			entry.Cycle, r.lastCycle,
		)
	}
	r.started = true
	r.lastCycle = entry.Cycle
	return entry, true, nil
}

func parseLine(line string) (Entry, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Entry{}, fmt.Errorf("trace: malformed line %q: want 3 fields, got %d", line, len(fields))
	}

	cycle, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("trace: bad cycle %q: %w", fields[0], err)
	}

	opVal, err := strconv.ParseUint(fields[1], 10, 8)
	if err != nil {
		return Entry{}, fmt.Errorf("trace: bad op %q: %w", fields[1], err)
	}
	op := dimm.Operation(opVal)
	if op != dimm.DataRead && op != dimm.DataWrite && op != dimm.IFetch {
		return Entry{}, fmt.Errorf("trace: unknown op %d", opVal)
	}

	addrField := strings.TrimPrefix(strings.TrimPrefix(fields[2], "0x"), "0X")
	addr, err := strconv.ParseUint(addrField, 16, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("trace: bad address %q: %w", fields[2], err)
	}

	return Entry{Cycle: cycle, Op: op, Address: addr}, nil
}
