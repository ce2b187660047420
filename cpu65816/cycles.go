package cpu65816

// Speed distinguishes FastROM (3.58 MHz, 6 cycles/byte) from SlowROM
// (2.68 MHz, 8 cycles/byte) memory access, per spec.md §4.5. It mirrors
// cartridge.Speed but cpu65816 does not import cartridge — the caller
// passes the bit in rather than this package taking on a dependency it
// otherwise has no use for.
type Speed int

const (
	SlowROM Speed = iota
	FastROM
)

// CycleInput bundles the context the estimator needs beyond the decoded
// instruction itself: whether a conditional branch is taken and whether it
// crosses a page, whether the direct-page register's low byte is non-zero,
// and whether the ROM bank backing this fetch runs at FastROM speed.
type CycleInput struct {
	BranchTaken    bool
	PageCrossed    bool
	DirectPageLow  bool // true if D register low byte is non-zero (spec.md §4.5 DP penalty)
	Speed          Speed
}

// EstimateCycles returns the cycle count for d under in, per spec.md §4.5:
// base cycles from the opcode table, +1 for a 16-bit M/X-affine operand,
// +1 for a taken conditional branch (+1 more if it also crosses a page in
// emulation mode), +1 for a non-zero direct-page low byte, and the
// FastROM/SlowROM adjustment applied per opcode byte fetched.
func EstimateCycles(d *DecodedInstruction, in CycleInput) int {
	desc := Lookup(d.Opcode)
	cycles := desc.BaseCycles

	if desc.Mode == Immediate {
		switch affinityOf(desc.Mnemonic) {
		case affinityA:
			if !d.ModeBefore.M {
				cycles++
			}
		case affinityX:
			if !d.ModeBefore.X {
				cycles++
			}
		}
	}

	if d.FlowType.Kind == ConditionalBranch {
		if in.BranchTaken {
			cycles++
			if d.ModeBefore.E && in.PageCrossed {
				cycles++
			}
		}
	}

	if in.DirectPageLow && usesDirectPage(desc.Mode) {
		cycles++
	}

	return applySpeed(cycles, d.TotalBytes, in.Speed)
}

func usesDirectPage(mode AddressingMode) bool {
	switch mode {
	case DirectPage, DirectPageX, DirectPageY, DirectIndirect, DirectIndirectX,
		DirectIndirectY, DirectIndirectLong, DirectIndirectLongY:
		return true
	default:
		return false
	}
}

// applySpeed rescales a base cycle count computed against the NTSC 2.68
// MHz slow-memory clock per totalBytes bytes fetched from ROM, per the
// shorter FastROM memory access (6 vs 8 master cycles per ROM access,
// spec.md §4.5): one cycle is subtracted per byte fetched. Only bytes actually fetched from the ROM-backed
// opcode stream are rescaled; cycles already spent on register-only work
// are a small, ignorable fraction of the base count for this estimator.
func applySpeed(baseCycles, totalBytes int, speed Speed) int {
	if speed != FastROM {
		return baseCycles
	}
	adjusted := baseCycles - totalBytes
	if adjusted < 1 {
		adjusted = 1
	}
	return adjusted
}
