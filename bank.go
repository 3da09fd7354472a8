// ═══════════════════════════════════════════════════════════════════════════
// BANK AND CHIP STATE
// ═══════════════════════════════════════════════════════════════════════════

package dimm

// Bank holds the open/closed-page state of a single DRAM bank.
type Bank struct {
	IsPrecharged         bool
	IsActive             bool
	ActiveRow            uint32
	LastRequestOperation Operation
	InProgress           bool
}

func newBank() Bank {
	return Bank{IsPrecharged: true, IsActive: false, ActiveRow: 0}
}

// InterfaceCmd is the last DDR5 interface command issued on a chip, used to
// pick the correct inter-command constraint for the next command.
type InterfaceCmd uint8

const (
	CmdNone InterfaceCmd = iota
	CmdActivate
	CmdRead
	CmdWrite
	CmdPrecharge
)

// Chip is one DDR5 die: its 32 banks plus the chip-global timing state
// (inter-command counters, tFAW window, last-issued-command context) that
// RD1/WR1/ACT1/PRE transitions mutate.
type Chip struct {
	Banks [NumBankGroups][NumBanksPerGroup]Bank

	LastInterfaceCmd InterfaceCmd
	LastBankGroup    uint8

	config Config
	counters
}

// NewChip builds a chip with every bank precharged and every timer at zero,
// per the recognized DIMM's power-on state.
func NewChip(cfg Config) *Chip {
	c := &Chip{config: cfg, LastInterfaceCmd: CmdNone}
	for i := range c.Banks {
		for j := range c.Banks[i] {
			c.Banks[i][j] = newBank()
		}
	}
	return c
}

func (c *Chip) bank(r *Request) *Bank {
	return &c.Banks[r.BankGroup][r.Bank]
}

// IsBankActive reports the target bank's is_active flag.
func (c *Chip) IsBankActive(r *Request) bool {
	return c.bank(r).IsActive
}

// IsBankPrecharged reports the target bank's is_precharged flag.
func (c *Chip) IsBankPrecharged(r *Request) bool {
	return c.bank(r).IsPrecharged
}

// IsPageHit: the bank is active and its open row matches the request's row.
func (c *Chip) IsPageHit(r *Request) bool {
	b := c.bank(r)
	return b.IsActive && b.ActiveRow == r.Row
}

// IsPageMiss: the bank is active but holds a different row.
func (c *Chip) IsPageMiss(r *Request) bool {
	b := c.bank(r)
	return b.IsActive && b.ActiveRow != r.Row
}

// IsPageEmpty: the bank is precharged and not active.
func (c *Chip) IsPageEmpty(r *Request) bool {
	b := c.bank(r)
	return b.IsPrecharged && !b.IsActive
}

// ActivateBank opens the request's row in the sense amps.
func (c *Chip) ActivateBank(r *Request) {
	b := c.bank(r)
	b.IsActive = true
	b.ActiveRow = r.Row
	b.IsPrecharged = false
}

// PrechargeBank closes the request's bank.
func (c *Chip) PrechargeBank(r *Request) {
	b := c.bank(r)
	b.IsPrecharged = true
	b.IsActive = false
}

// Tick decrements every per-bank, inter-command, and tFAW counter on this
// chip by one (saturating at zero). Called once per DRAM cycle by the
// driver, after the policy engine's call for that cycle returns — never by
// the state machine or policy functions themselves.
func (c *Chip) Tick() {
	c.decrementAll()
}
