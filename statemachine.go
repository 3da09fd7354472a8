// ═══════════════════════════════════════════════════════════════════════════
// REQUEST STATE MACHINE
// ═══════════════════════════════════════════════════════════════════════════
//
// Two flavors, selected by the policy engine: ClosedPage precharges after
// every access and never consults inter-command constraints; OpenPage
// leaves rows open across requests and honors the full inter-command and
// tFAW timing model. Both advance a request by at most one state per call
// and emit at most one command; a state whose guard fails this cycle
// retries next cycle untouched. Calling either with state==Complete is a
// no-op, satisfying the idempotence property.
//
// is_finished is "past the command-issue phase," not "done": in OpenPage
// RD1/WR1 set it, but BUFFER and BURST still have to run before COMPLETE;
// in ClosedPage the PRE command sets it. Only COMPLETE removes a request
// from the queue.
//
// ═══════════════════════════════════════════════════════════════════════════

package dimm

// ClosedPage advances r by one state under level-0 scheduling: every
// request precharges unconditionally (a read right after RD1, a write
// after its burst), page reuse never happens, and inter-command
// constraints are never consulted.
func (c *Chip) ClosedPage(r *Request, cycle uint64) (*Command, error) {
	if r.State == Pending {
		r.State = Act0
	}

	switch r.State {
	case Act0:
		if c.BankTimingMet(r, TRC) && c.BankTimingMet(r, TRP) {
			r.State = Act1
			return mkCmd(cycle, r, MnemonicAct0, 0), nil
		}
		return nil, nil

	case Act1:
		c.ActivateBank(r)
		c.ArmBankTiming(r, TRCD)
		c.ArmBankTiming(r, TRAS)
		c.ArmBankTiming(r, TRC)
		if r.Operation == DataWrite {
			r.State = Wr0
		} else {
			r.State = Rd0
		}
		return mkCmd(cycle, r, MnemonicAct1, 0), nil

	case Rd0, Wr0:
		if !c.BankTimingMet(r, TRCD) {
			return nil, nil
		}
		mnemonic, next := rdWrMnemonic(r, false), nextDataState(r.State)
		r.State = next
		return mkCmd(cycle, r, mnemonic, r.Column()), nil

	case Rd1:
		c.ArmBankTiming(r, TCL)
		c.ArmBankTiming(r, TRTP)
		r.State = Pre
		return mkCmd(cycle, r, rdWrMnemonic(r, true), r.Column()), nil

	case Wr1:
		c.ArmBankTiming(r, TCWL)
		r.State = Buffer
		return mkCmd(cycle, r, rdWrMnemonic(r, true), r.Column()), nil

	case Pre:
		if r.Operation == DataWrite {
			if c.BankTimingMet(r, TWR) && c.BankTimingMet(r, TRAS) {
				c.PrechargeBank(r)
				c.ArmBankTiming(r, TRP)
				r.IsFinished = true
				r.State = Complete
				return mkCmd(cycle, r, MnemonicPre, 0), nil
			}
			return nil, nil
		}
		if c.BankTimingMet(r, TRTP) && c.BankTimingMet(r, TRAS) {
			c.PrechargeBank(r)
			c.ArmBankTiming(r, TRP)
			r.IsFinished = true
			r.State = Buffer
			return mkCmd(cycle, r, MnemonicPre, 0), nil
		}
		return nil, nil

	case Buffer:
		met := c.BankTimingMet(r, TCL)
		if r.Operation == DataWrite {
			met = c.BankTimingMet(r, TCWL)
		}
		if met {
			c.ArmBankTiming(r, TBURST)
			r.State = Burst
		}
		return nil, nil

	case Burst:
		if c.BankTimingMet(r, TBURST) {
			if r.Operation == DataWrite {
				c.ArmBankTiming(r, TWR)
				r.State = Pre
			} else {
				r.State = Complete
			}
		}
		return nil, nil

	case Complete:
		return nil, nil

	default:
		return nil, newFault("unknown state encountered: %s", r.State)
	}
}

// OpenPage advances r by one state under levels 1-3 scheduling: rows stay
// open across requests, inter-command constraints and tFAW gate ACT0, and
// a page hit skips the precharge/activate phases entirely.
func (c *Chip) OpenPage(r *Request, cycle uint64) (*Command, error) {
	if r.State == Pending {
		switch {
		case c.IsPageHit(r):
			c.bank(r).LastRequestOperation = r.Operation
			if r.Operation == DataWrite {
				r.State = Wr0
			} else {
				r.State = Rd0
			}
		case c.IsPageMiss(r):
			r.State = Pre
		case c.IsPageEmpty(r):
			if !c.CanIssueAct() {
				return nil, nil
			}
			c.bank(r).LastRequestOperation = r.Operation
			r.State = Act0
		default:
			return nil, newFault("unknown page state encountered")
		}
	}

	switch r.State {
	case Pre:
		met := c.BankTimingMet(r, TRTP)
		if c.bank(r).LastRequestOperation == DataWrite {
			met = c.BankTimingMet(r, TCWL) && c.BankTimingMet(r, TBURST) && c.BankTimingMet(r, TWR)
		}
		if !(met && c.BankTimingMet(r, TRAS) && c.BankTimingMet(r, TRP)) {
			return nil, nil
		}
		c.PrechargeBank(r)
		c.LastInterfaceCmd = CmdPrecharge
		c.LastBankGroup = r.BankGroup
		c.bank(r).InProgress = true
		c.ArmBankTiming(r, TRP)
		r.State = Act0
		return mkCmd(cycle, r, MnemonicPre, 0), nil

	case Act0:
		if !c.CanIssueAct() {
			return nil, nil
		}
		if !(c.BankTimingMet(r, TRC) && c.BankTimingMet(r, TRP)) {
			return nil, nil
		}
		if c.LastInterfaceCmd == CmdActivate {
			constraint := TRRD_S
			if c.LastBankGroup == r.BankGroup {
				constraint = TRRD_L
			}
			if !c.InterTimingMet(constraint) {
				return nil, nil
			}
		}
		c.bank(r).InProgress = true
		r.State = Act1
		return mkCmd(cycle, r, MnemonicAct0, 0), nil

	case Act1:
		c.ActivateBank(r)
		c.LastInterfaceCmd = CmdActivate
		c.LastBankGroup = r.BankGroup
		c.ArmBankTiming(r, TRCD)
		c.ArmBankTiming(r, TRAS)
		c.ArmBankTiming(r, TRC)
		c.ArmTRRD()
		c.ArmTFAW()
		if r.Operation == DataWrite {
			r.State = Wr0
		} else {
			r.State = Rd0
		}
		return mkCmd(cycle, r, MnemonicAct1, 0), nil

	case Rd0:
		if !c.dataPhaseGuard(r, false) {
			return nil, nil
		}
		c.bank(r).InProgress = true
		r.State = Rd1
		return mkCmd(cycle, r, rdWrMnemonic(r, false), r.Column()), nil

	case Wr0:
		if !c.dataPhaseGuard(r, true) {
			return nil, nil
		}
		c.bank(r).InProgress = true
		r.State = Wr1
		return mkCmd(cycle, r, rdWrMnemonic(r, false), r.Column()), nil

	case Rd1:
		r.IsFinished = true
		c.LastInterfaceCmd = CmdRead
		c.LastBankGroup = r.BankGroup
		c.ArmBankTiming(r, TCL)
		c.ArmBankTiming(r, TRTP)
		c.ArmTCCD()
		r.State = Buffer
		return mkCmd(cycle, r, rdWrMnemonic(r, true), r.Column()), nil

	case Wr1:
		r.IsFinished = true
		c.LastInterfaceCmd = CmdWrite
		c.LastBankGroup = r.BankGroup
		c.ArmBankTiming(r, TCWL)
		c.ArmTCCD()
		r.State = Buffer
		return mkCmd(cycle, r, rdWrMnemonic(r, true), r.Column()), nil

	case Buffer:
		met := c.BankTimingMet(r, TCL)
		if r.Operation == DataWrite {
			met = c.BankTimingMet(r, TCWL)
		}
		if met {
			c.ArmBankTiming(r, TBURST)
			r.State = Burst
		}
		return nil, nil

	case Burst:
		if c.BankTimingMet(r, TBURST) {
			if r.Operation == DataWrite {
				c.ArmBankTiming(r, TWR)
			}
			r.State = Complete
			c.bank(r).InProgress = false
		}
		return nil, nil

	case Complete:
		return nil, nil

	default:
		return nil, newFault("unknown state encountered: %s", r.State)
	}
}

// dataPhaseGuard checks tRCD plus the inter-command constraint matching
// the last issued command and the write-ness of the phase being entered
// (isWritePhase selects the _WR/_RTW constraint pairs for WR0, the plain/
// _WTR pairs for RD0).
func (c *Chip) dataPhaseGuard(r *Request, isWritePhase bool) bool {
	if !c.BankTimingMet(r, TRCD) {
		return false
	}
	sameBG := c.LastBankGroup == r.BankGroup
	switch c.LastInterfaceCmd {
	case CmdWrite:
		if isWritePhase {
			if sameBG {
				return c.InterTimingMet(TCCD_L_WR)
			}
			return c.InterTimingMet(TCCD_S_WR)
		}
		if sameBG {
			return c.InterTimingMet(TCCD_L_WTR)
		}
		return c.InterTimingMet(TCCD_S_WTR)
	case CmdRead:
		if isWritePhase {
			if sameBG {
				return c.InterTimingMet(TCCD_L_RTW)
			}
			return c.InterTimingMet(TCCD_S_RTW)
		}
		if sameBG {
			return c.InterTimingMet(TCCD_L)
		}
		return c.InterTimingMet(TCCD_S)
	default:
		return true
	}
}

func rdWrMnemonic(r *Request, second bool) Mnemonic {
	if r.Operation == DataWrite {
		if second {
			return MnemonicWr1
		}
		return MnemonicWr0
	}
	if second {
		return MnemonicRd1
	}
	return MnemonicRd0
}

func nextDataState(s RequestState) RequestState {
	switch s {
	case Rd0:
		return Rd1
	case Wr0:
		return Wr1
	default:
		return s
	}
}

func mkCmd(cycle uint64, r *Request, mnemonic Mnemonic, column uint16) *Command {
	return &Command{
		Cycle:     cycle,
		Channel:   r.Channel,
		Mnemonic:  mnemonic,
		BankGroup: r.BankGroup,
		Bank:      r.Bank,
		Row:       r.Row,
		Column:    column,
	}
}
