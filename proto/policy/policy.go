// ═══════════════════════════════════════════════════════════════════════════
// SCHEDULING POLICY ENGINE
// ═══════════════════════════════════════════════════════════════════════════
//
// Four scheduling levels over the bounded request queue, one call per DRAM
// cycle. Levels 2/3 scan the queue in order and skip any request that an
// earlier unfinished request to the same bank blocks. Level-3 aging
// promotion (§ admission) tracks "old" and "young" queue slots as uint32
// bitmaps in one pass and uses math/bits.TrailingZeros32 to find the first
// of each — the bitmap/CTZ technique used for reservation-station selection
// in the reference out-of-order scheduler this package is adapted from.
//
// Counter decrement is NOT done here: the driver calls dimm.DIMM.Tick
// after Advance returns, keeping "decrement is a tick-end concern" an
// explicit boundary the policy functions never cross.
//
// ═══════════════════════════════════════════════════════════════════════════

package policy

import (
	"math/bits"

	dimm "github.com/kalmaniii/DDR5-Memory-Controller"
	"github.com/kalmaniii/DDR5-Memory-Controller/queue"
)

// Level selects one of the four scheduling policies.
type Level uint8

const (
	LevelZero  Level = iota // FCFS, closed-page
	LevelOne                // FCFS, open-page
	LevelTwo                // bank-level parallelism, open-page
	LevelThree              // level-2 plus out-of-order admission and aging
)

// Valid reports whether l is one of the four defined levels.
func (l Level) Valid() bool {
	return l <= LevelThree
}

// Advance runs one DRAM cycle of scheduling against q, calling the
// appropriate state-machine flavor on one or more candidates and removing
// any request that reaches COMPLETE. It does not decrement counters or
// increment aging — both are the driver's responsibility at tick
// boundaries.
func Advance(d *dimm.DIMM, q *queue.Queue[dimm.Request], cycle uint64, level Level) error {
	switch level {
	case LevelZero:
		return advanceLevelZero(d, q, cycle)
	case LevelOne:
		return advanceLevelOne(d, q, cycle)
	default: // LevelTwo, LevelThree
		return advanceBankLevelParallelism(d, q, cycle)
	}
}

// advanceLevelZero: FCFS over a closed-page state machine. The head always
// advances; if the head is already past its command-issue phase, the next
// entry advances too in the same cycle, letting a completing request's
// post-burst stages overlap with the next request's front stages.
func advanceLevelZero(d *dimm.DIMM, q *queue.Queue[dimm.Request], cycle uint64) error {
	head, err := q.PeekAt(0)
	if err != nil {
		return err
	}

	if q.Len() > 1 {
		next, err := q.PeekAt(1)
		if err != nil {
			return err
		}
		if !head.IsFinished {
			if _, err := d.Advance(head, cycle, false); err != nil {
				return err
			}
		} else {
			if _, err := d.Advance(head, cycle, false); err != nil {
				return err
			}
			if _, err := d.Advance(next, cycle, false); err != nil {
				return err
			}
		}
	} else if head.State != dimm.Complete {
		if _, err := d.Advance(head, cycle, false); err != nil {
			return err
		}
	}

	if head.State == dimm.Complete {
		if _, err := q.DequeueTail(); err != nil {
			return err
		}
	}
	return nil
}

// advanceLevelOne: FCFS over an open-page state machine. If the head is
// past its command-issue phase, walk the queue from the head, advancing
// each entry already past that phase (the head included) and then the
// first one not yet past it, attempting to pipeline.
func advanceLevelOne(d *dimm.DIMM, q *queue.Queue[dimm.Request], cycle uint64) error {
	head, err := q.PeekAt(0)
	if err != nil {
		return err
	}

	if !head.IsFinished {
		if _, err := d.Advance(head, cycle, true); err != nil {
			return err
		}
	} else {
		for i := 0; i < q.Len(); i++ {
			next, err := q.PeekAt(i)
			if err != nil {
				return err
			}
			wasFinished := next.IsFinished
			if _, err := d.Advance(next, cycle, true); err != nil {
				return err
			}
			if !wasFinished {
				break
			}
		}
	}

	if head.State == dimm.Complete {
		if _, err := q.DequeueTail(); err != nil {
			return err
		}
	}
	return nil
}

// advanceBankLevelParallelism: levels 2 and 3. Scans the queue in order,
// skipping any entry blocked by an earlier unfinished entry to the same
// (bank-group, bank), advancing the first unblocked candidate
// that actually emits a command, and removing any entry that completes
// along the way.
func advanceBankLevelParallelism(d *dimm.DIMM, q *queue.Queue[dimm.Request], cycle uint64) error {
	for index := 0; index < q.Len(); index++ {
		req, err := q.PeekAt(index)
		if err != nil {
			return err
		}

		if req.State == dimm.Complete {
			if _, err := q.DeleteAt(index); err != nil {
				return err
			}
			index--
			continue
		}

		if req.IsFinished {
			if _, err := d.Advance(req, cycle, true); err != nil {
				return err
			}
			continue
		}

		blocked := false
		for j := 0; j < index; j++ {
			earlier, err := q.PeekAt(j)
			if err != nil {
				return err
			}
			if !earlier.IsFinished && earlier.BankGroup == req.BankGroup && earlier.Bank == req.Bank {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}

		emitted, err := d.Advance(req, cycle, true)
		if err != nil {
			return err
		}
		if emitted {
			break
		}
	}
	return nil
}

// IncrementAging adds one to every queued request's aging counter. Called
// by the driver once per DRAM tick, after Advance returns.
func IncrementAging(q *queue.Queue[dimm.Request]) error {
	for i := 0; i < q.Len(); i++ {
		req, err := q.PeekAt(i)
		if err != nil {
			return err
		}
		req.Aging++
	}
	return nil
}

// Admit places an arriving request into q. Levels 0-2 enqueue at the head
// (most-recent-arrival end); level 3 additionally reorders per
// AdmitOutOfOrder.
func Admit(q *queue.Queue[dimm.Request], req dimm.Request, level Level, trcReload uint16) error {
	if level != LevelThree {
		return q.EnqueueHead(req)
	}
	return AdmitOutOfOrder(q, req, trcReload)
}

// AdmitOutOfOrder implements §4.5's four-rule admission scan, checked in
// priority order from the service end; only the first matching rule
// fires. It first applies aging promotion (CheckAndPromoteAging) the way
// the reference scheduler runs its starvation check before every
// admission, not just on a schedule.
func AdmitOutOfOrder(q *queue.Queue[dimm.Request], req dimm.Request, trcReload uint16) error {
	if err := CheckAndPromoteAging(q, trcReload); err != nil {
		return err
	}

	n := q.Len()
	if req.Operation == dimm.DataWrite {
		for i := 0; i < n; i++ {
			other, err := q.PeekAt(i)
			if err != nil {
				return err
			}
			if other.Operation != dimm.DataWrite && other.BankGroup == req.BankGroup &&
				other.Bank == req.Bank && other.Row != req.Row {
				return q.InsertAt(i+1, req)
			}
		}
	} else {
		for i := 0; i < n; i++ {
			other, err := q.PeekAt(i)
			if err != nil {
				return err
			}
			if other.Operation == dimm.DataWrite && other.BankGroup == req.BankGroup &&
				other.Bank == req.Bank && other.Row != req.Row {
				return q.InsertAt(i, req)
			}
		}

		for i := 0; i < n; i++ {
			other, err := q.PeekAt(i)
			if err != nil {
				return err
			}
			if other.Operation == dimm.DataWrite && other.BankGroup == req.BankGroup &&
				other.Bank == req.Bank && other.Row == req.Row {
				return q.InsertAt(i+1, req)
			}
		}

		for i := 0; i < n; i++ {
			other, err := q.PeekAt(i)
			if err != nil {
				return err
			}
			if other.Operation != dimm.DataWrite && other.BankGroup == req.BankGroup &&
				other.Bank == req.Bank && other.Row == req.Row {
				return q.InsertAt(i+1, req)
			}
		}
	}

	return q.EnqueueHead(req)
}

// CheckAndPromoteAging scans q once, tracking candidate "old"
// (aging >= 8*tRC) and "young" (aging < tRC) slots as bitmaps, then
// promotes the first old request to the first young request's index if
// both exist and the old one sits behind the young one.
func CheckAndPromoteAging(q *queue.Queue[dimm.Request], trcReload uint16) error {
	n := q.Len()
	if n == 0 {
		return nil
	}

	oldThreshold := uint64(dimm.AgingOldThreshold) * uint64(trcReload)
	var oldBitmap, youngBitmap uint32

	for i := 0; i < n; i++ {
		req, err := q.PeekAt(i)
		if err != nil {
			return err
		}
		switch {
		case req.Aging >= oldThreshold:
			oldBitmap |= 1 << uint(i)
		case req.Aging < uint64(trcReload):
			youngBitmap |= 1 << uint(i)
		}
	}

	if oldBitmap == 0 || youngBitmap == 0 {
		return nil
	}

	oldIndex := bits.TrailingZeros32(oldBitmap)
	youngIndex := bits.TrailingZeros32(youngBitmap)
	if oldIndex < youngIndex {
		// The old request is already ahead of every young one.
		return nil
	}

	old, err := q.DeleteAt(oldIndex)
	if err != nil {
		return err
	}
	return q.InsertAt(youngIndex, old)
}
