package cartridge

// CoprocessorKind tags an on-cartridge enhancement chip. It never changes
// how the main CPU's instruction stream is decoded — the coprocessor has
// its own CPU core, out of scope for this disassembler — it only informs
// mapper bank-remapping decisions made elsewhere (deferred, see
// mapper's package doc comment).
type CoprocessorKind int

const (
	CoprocessorNone CoprocessorKind = iota
	CoprocessorDSP
	CoprocessorSuperFX
	CoprocessorSA1
	CoprocessorSDD1
	CoprocessorSRTC
	CoprocessorOther
	CoprocessorSPC7110
	CoprocessorST01x
	CoprocessorCX4
	CoprocessorSPC7110RTC
)

func (c CoprocessorKind) String() string {
	switch c {
	case CoprocessorNone:
		return "none"
	case CoprocessorDSP:
		return "DSP"
	case CoprocessorSuperFX:
		return "SuperFX"
	case CoprocessorSA1:
		return "SA-1"
	case CoprocessorSDD1:
		return "S-DD1"
	case CoprocessorSRTC:
		return "S-RTC"
	case CoprocessorSPC7110:
		return "SPC7110"
	case CoprocessorST01x:
		return "ST01x"
	case CoprocessorCX4:
		return "CX4"
	case CoprocessorSPC7110RTC:
		return "SPC7110+RTC"
	default:
		return "other"
	}
}

// romTypeKind maps the cartridge-type byte (header+0x16) to a coprocessor
// for the common ROM-only/ROM+RAM/ROM+RAM+battery cases that carry no
// enhancement chip.
var romTypeKind = map[byte]CoprocessorKind{
	0x00: CoprocessorNone, // ROM
	0x01: CoprocessorNone, // ROM+RAM
	0x02: CoprocessorNone, // ROM+RAM+battery
}

// coprocessorByCartType maps the cartridge-type byte's high nibble range
// (0x3-0xF, "ROM+coprocessor...") to a specific coprocessor, following
// https://snes.nesdev.org/wiki/ROM_header#Cartridge_type. This collapses
// the real hardware's two-byte (type + subtype) encoding to the single
// cartType byte, sufficient to distinguish the coprocessor families this
// disassembler needs to tag.
var coprocessorByCartType = map[byte]CoprocessorKind{
	0x03: CoprocessorDSP,
	0x04: CoprocessorDSP,
	0x05: CoprocessorOther, // OBC1
	0x13: CoprocessorSuperFX,
	0x14: CoprocessorSuperFX,
	0x15: CoprocessorSuperFX,
	0x1A: CoprocessorSuperFX,
	0x23: CoprocessorSA1,
	0x32: CoprocessorSDD1,
	0x33: CoprocessorSDD1,
	0x34: CoprocessorSRTC,
	0x35: CoprocessorOther, // Z80GB (Super Game Boy)
	0xF5: CoprocessorSPC7110,
	0xF9: CoprocessorSPC7110RTC,
	0xE5: CoprocessorST01x,
	0xF6: CoprocessorCX4,
}

// classifyCoprocessor decodes header+0x16 (cartType) into a CoprocessorKind.
func classifyCoprocessor(cartType byte) CoprocessorKind {
	if kind, ok := romTypeKind[cartType]; ok {
		return kind
	}
	if kind, ok := coprocessorByCartType[cartType]; ok {
		return kind
	}
	if cartType>>4 == 0 {
		return CoprocessorNone
	}
	return CoprocessorOther
}
