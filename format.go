package dimm

import "fmt"

func padCycleAndHeader(cycle uint64, channel uint8, mnemonic string) string {
	return fmt.Sprintf("%10d %d %-4s", cycle, channel, mnemonic)
}

func formatBank(bankGroup, bank uint8) string {
	return fmt.Sprintf(" %d %d", bankGroup, bank)
}

func formatBankAndHex(bankGroup, bank uint8, value uint32) string {
	return fmt.Sprintf(" %d %d 0x%04X", bankGroup, bank, value)
}
