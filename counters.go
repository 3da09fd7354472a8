// ═══════════════════════════════════════════════════════════════════════════
// TIMING-COUNTER BANK
// ═══════════════════════════════════════════════════════════════════════════
//
// Three tiers of saturating-decrement counters: per-bank per-constraint (10
// constraints x 32 banks), chip-global inter-command constraints (10), and
// the tFAW rolling window (4 counters, at most one armed per activate).
//
// Discipline (spec.md §5): within one DRAM tick the state machine runs
// first and may arm counters to their full reload value; decrement happens
// once, at tick end, via Chip.Tick (counters.decrementAll). A counter armed
// this tick is therefore not spuriously shortened by this tick's decrement.
//
// ═══════════════════════════════════════════════════════════════════════════

package dimm

// counters is embedded in Chip; it is never constructed standalone.
type counters struct {
	bankTiming  [NumBankGroups][NumBanksPerGroup][numTimingConstraints]uint16
	interTiming [numConsecutiveCmds]uint16
	tFAW        [NumTFAWCounters]uint16
}

// TRCReload returns the configured tRC reload value, the unit aging
// promotion measures "old" and "young" requests against.
func (c *Chip) TRCReload() uint16 {
	return c.config.BankTiming[TRC]
}

// ArmBankTiming (re)arms a per-bank constraint to its configured reload
// value, the state machine's "set_timing_constraint" step.
func (c *Chip) ArmBankTiming(r *Request, constraint TimingConstraint) {
	c.bankTiming[r.BankGroup][r.Bank][constraint] = c.config.BankTiming[constraint]
}

// BankTimingMet reports whether a per-bank constraint has reached zero.
func (c *Chip) BankTimingMet(r *Request, constraint TimingConstraint) bool {
	return c.bankTiming[r.BankGroup][r.Bank][constraint] == 0
}

// ArmInterTiming (re)arms one chip-global inter-command constraint.
func (c *Chip) ArmInterTiming(constraint ConsecutiveCmd) {
	c.interTiming[constraint] = c.config.InterTiming[constraint]
}

// InterTimingMet reports whether a chip-global inter-command constraint has
// reached zero.
func (c *Chip) InterTimingMet(constraint ConsecutiveCmd) bool {
	return c.interTiming[constraint] == 0
}

// ArmTRRD arms both tRRD counters on an ACT1, matching set_trrd_timers.
func (c *Chip) ArmTRRD() {
	c.ArmInterTiming(TRRD_L)
	c.ArmInterTiming(TRRD_S)
}

// ArmTCCD arms every tCCD_* counter on a completing RD1/WR1, matching
// set_tccd_timers.
func (c *Chip) ArmTCCD() {
	c.ArmInterTiming(TCCD_L)
	c.ArmInterTiming(TCCD_S)
	c.ArmInterTiming(TCCD_L_WR)
	c.ArmInterTiming(TCCD_S_WR)
	c.ArmInterTiming(TCCD_L_RTW)
	c.ArmInterTiming(TCCD_S_RTW)
	c.ArmInterTiming(TCCD_L_WTR)
	c.ArmInterTiming(TCCD_S_WTR)
}

// CanIssueAct reports whether at least one tFAW counter is zero.
func (c *Chip) CanIssueAct() bool {
	for _, v := range c.tFAW {
		if v == 0 {
			return true
		}
	}
	return false
}

// ArmTFAW sets the first zero tFAW counter to the configured window,
// enforcing at most four activates per rolling tFAW window.
func (c *Chip) ArmTFAW() {
	for i := range c.tFAW {
		if c.tFAW[i] == 0 {
			c.tFAW[i] = c.config.TFAW
			return
		}
	}
}

func saturatingDec(v uint16) uint16 {
	if v == 0 {
		return 0
	}
	return v - 1
}

func (c *counters) decrementAll() {
	for i := range c.bankTiming {
		for j := range c.bankTiming[i] {
			for k := range c.bankTiming[i][j] {
				c.bankTiming[i][j][k] = saturatingDec(c.bankTiming[i][j][k])
			}
		}
	}
	for i := range c.interTiming {
		c.interTiming[i] = saturatingDec(c.interTiming[i])
	}
	for i := range c.tFAW {
		c.tFAW[i] = saturatingDec(c.tFAW[i])
	}
}
