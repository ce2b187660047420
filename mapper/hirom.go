package mapper

// hiROMMapper implements the HiROM topology:
//
//	banks $40-$7D and $C0-$FF, any offset -> ((bank & 0x3F) * 0x10000) + offset
//	banks $00-$3F and $80-$BF, offsets $8000-$FFFF -> mirror of the above
//
// https://snes.nesdev.org/wiki/Memory_map#HiROM
type hiROMMapper struct {
	baseMapper
}

func (m *hiROMMapper) LinearOffset(addr CpuAddress) (int, bool) {
	bank := addr.Bank
	switch {
	case bank >= 0x40 && bank <= 0x7D:
		return m.inRange(int(bank&0x3F)*0x10000 + int(addr.Offset))
	case bank >= 0xC0:
		return m.inRange(int(bank&0x3F)*0x10000 + int(addr.Offset))
	case (bank <= 0x3F || (bank >= 0x80 && bank <= 0xBF)) && addr.Offset >= 0x8000:
		return m.inRange(int(bank&0x3F)*0x10000 + int(addr.Offset))
	default:
		return 0, false
	}
}

func (m *hiROMMapper) Classify(addr CpuAddress) RegionKind {
	if addr.Bank == 0x7E || addr.Bank == 0x7F {
		return RegionWRAM
	}
	if addr.Bank <= 0x3F || (addr.Bank >= 0x80 && addr.Bank <= 0xBF) {
		if kind, ok := classifyLowBank(addr.Offset); ok {
			return kind
		}
	}
	if _, ok := m.LinearOffset(addr); ok {
		return RegionROM
	}
	return RegionOpenBus
}
