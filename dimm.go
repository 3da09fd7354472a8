// ═══════════════════════════════════════════════════════════════════════════
// DIMM TOP LEVEL
// ═══════════════════════════════════════════════════════════════════════════

package dimm

import "io"

// Channel holds the chip(s) attached to one DIMM channel. Only one chip per
// channel is in scope (multi-chip-per-channel is a non-goal).
type Channel struct {
	Chip *Chip
}

// DIMM owns every channel/bank/counter and the output sink for the whole
// run.
type DIMM struct {
	Channels [NumChannels]Channel
	Emitter  *Emitter
	config   Config
}

// New builds a DIMM with every bank precharged, using cfg's timing table,
// writing issued commands to out.
func New(cfg Config, out io.Writer) *DIMM {
	d := &DIMM{Emitter: NewEmitter(out), config: cfg}
	for i := range d.Channels {
		d.Channels[i] = Channel{Chip: NewChip(cfg)}
	}
	return d
}

// Chip returns the chip servicing the given channel.
func (d *DIMM) Chip(channel uint8) *Chip {
	return d.Channels[channel].Chip
}

// Advance runs one request through the appropriate state-machine flavor
// for the channel's chip and emits any resulting command. openPage selects
// between the open-page (levels 1-3) and closed-page (level 0) flavor.
func (d *DIMM) Advance(r *Request, cycle uint64, openPage bool) (bool, error) {
	chip := d.Chip(r.Channel)
	var cmd *Command
	var err error
	if openPage {
		cmd, err = chip.OpenPage(r, cycle)
	} else {
		cmd, err = chip.ClosedPage(r, cycle)
	}
	if err != nil {
		return false, err
	}
	if cmd == nil {
		return false, nil
	}
	if err := d.Emitter.Emit(*cmd); err != nil {
		return false, err
	}
	return true, nil
}

// Tick decrements every counter on every chip in the DIMM by one,
// saturating at zero. Called once per DRAM cycle, after the policy
// engine's call for that cycle returns.
func (d *DIMM) Tick() {
	for i := range d.Channels {
		d.Channels[i].Chip.Tick()
	}
}
