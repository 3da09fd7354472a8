// ═══════════════════════════════════════════════════════════════════════════
// ADDRESS DECODER
// ═══════════════════════════════════════════════════════════════════════════
//
// Maps a 33-bit physical address to the DRAM hierarchy fields for the
// recognized 16 GiB PC5-38400, 2-channel DIMM. Field order, low to high:
//
//	byte-select[5:0]  col-low[7:6]  channel[8:8]  bank-group[11:9]
//	bank[13:12]  col-high[15:14]  row[32:16]
//
// The widths are not pinned down by spec.md ("the exact bit widths are
// {byte-select:?, col-low:?, channel:?, bg:3, bank:2, col-high:?, row:17}");
// the split below is the implementer-supplied choice, chosen to sum to 33
// bits with NUM_CHANNELS=2 (one channel bit). The decoder is total: every
// 33-bit value decodes without error.
//
// ═══════════════════════════════════════════════════════════════════════════

package dimm

const (
	byteSelectBits = 6
	colLowBits     = 2
	channelBits    = 1
	bankGroupBits  = 3
	bankBits       = 2
	colHighBits    = 2
	rowBits        = 17

	byteSelectShift = 0
	colLowShift     = byteSelectShift + byteSelectBits
	channelShift    = colLowShift + colLowBits
	bankGroupShift  = channelShift + channelBits
	bankShift       = bankGroupShift + bankGroupBits
	colHighShift    = bankShift + bankBits
	rowShift        = colHighShift + colHighBits

	byteSelectMask = (1 << byteSelectBits) - 1
	colLowMask     = (1 << colLowBits) - 1
	channelMask    = (1 << channelBits) - 1
	bankGroupMask  = (1 << bankGroupBits) - 1
	bankMask       = (1 << bankBits) - 1
	colHighMask    = (1 << colHighBits) - 1
	rowMask        = (1 << rowBits) - 1

	// AddressBits is the total width decoded; field widths above sum to it.
	AddressBits = byteSelectBits + colLowBits + channelBits + bankGroupBits + bankBits + colHighBits + rowBits
)

// DecodedAddress holds every field extracted from a physical address.
type DecodedAddress struct {
	ByteSelect uint8
	ColumnLow  uint8
	Channel    uint8
	BankGroup  uint8
	Bank       uint8
	ColumnHigh uint8
	Row        uint32
}

// Column concatenates column-high and column-low the way the command
// emitter reports RD/WR columns.
func (d DecodedAddress) Column() uint16 {
	return uint16(d.ColumnHigh)<<colLowBits | uint16(d.ColumnLow)
}

//go:inline
func DecodeAddress(addr uint64) DecodedAddress {
	return DecodedAddress{
		ByteSelect: uint8((addr >> byteSelectShift) & byteSelectMask),
		ColumnLow:  uint8((addr >> colLowShift) & colLowMask),
		Channel:    uint8((addr >> channelShift) & channelMask),
		BankGroup:  uint8((addr >> bankGroupShift) & bankGroupMask),
		Bank:       uint8((addr >> bankShift) & bankMask),
		ColumnHigh: uint8((addr >> colHighShift) & colHighMask),
		Row:        uint32((addr >> rowShift) & rowMask),
	}
}
