package cpu65816

// ProcessorMode is the subset of 65C816 processor state that affects how an
// instruction stream is decoded: the E (emulation), M (accumulator width),
// X (index width), D (decimal), and C (carry) flags. It is immutable by
// value, the same way the teacher's nes/cpu.go status struct is
// encoded/decoded rather than mutated through pointers across call
// boundaries — here every transition produces a new ProcessorMode instead
// of mutating one in place, since the mode tracker must thread distinct
// values to distinct successors in the flow analyzer's worklist.
type ProcessorMode struct {
	E bool
	M bool
	X bool
	D bool
	C bool

	// Known is false after a PLP/RTI/RTS/RTL leaves the mode unknowable
	// statically; Unknown modes are conservatively treated as 8-bit (M=1,
	// X=1) per spec.md §4.4, but Known stays false so ModeConflict
	// resolution still applies the "unknown never overrides concrete"
	// rule.
	Known bool
}

// ResetMode is the mode at the reset vector: emulation mode forces M and X
// to 8-bit.
func ResetMode() ProcessorMode {
	return ProcessorMode{E: true, M: true, X: true, Known: true}
}

// UnknownMode is the conservative fallback mode after a PLP/RTI/RTS/RTL:
// 8-bit M and X (the width that never misreads a following byte as part of
// an immediate operand), Known=false so it never overrides a concrete mode
// supplied by another path.
func UnknownMode(e bool) ProcessorMode {
	return ProcessorMode{E: e, M: true, X: true, Known: false}
}

// applyEmulationForce clamps M and X to 1 while E is set, per the
// invariant in spec.md §3.
func (p ProcessorMode) applyEmulationForce() ProcessorMode {
	if p.E {
		p.M = true
		p.X = true
	}
	return p
}

// StatusBits used by REP/SEP, matching the 65C816 status register layout.
const (
	StatusC = 1 << 0
	StatusZ = 1 << 1
	StatusI = 1 << 2
	StatusD = 1 << 3
	StatusX = 1 << 4
	StatusM = 1 << 5
	StatusV = 1 << 6
	StatusN = 1 << 7
)

// Rep clears the bits of imm in the status byte (REP #imm). In emulation
// mode M and X cannot be cleared.
func (p ProcessorMode) Rep(imm byte) ProcessorMode {
	if imm&StatusC != 0 {
		p.C = false
	}
	if imm&StatusD != 0 {
		p.D = false
	}
	if imm&StatusX != 0 {
		p.X = false
	}
	if imm&StatusM != 0 {
		p.M = false
	}
	p.Known = true
	return p.applyEmulationForce()
}

// Sep sets the bits of imm in the status byte (SEP #imm).
func (p ProcessorMode) Sep(imm byte) ProcessorMode {
	if imm&StatusC != 0 {
		p.C = true
	}
	if imm&StatusD != 0 {
		p.D = true
	}
	if imm&StatusX != 0 {
		p.X = true
	}
	if imm&StatusM != 0 {
		p.M = true
	}
	p.Known = true
	return p
}

// Xce swaps E and C; entering emulation mode forces M and X to 1.
func (p ProcessorMode) Xce() ProcessorMode {
	p.E, p.C = p.C, p.E
	p.Known = true
	return p.applyEmulationForce()
}

// applyImplicitFlag updates a single named flag, for CLC/SEC/CLD/SED/CLI/
// SEI/CLV.
func (p ProcessorMode) applyImplicitFlag(mnemonic string) ProcessorMode {
	switch mnemonic {
	case "CLC":
		p.C = false
	case "SEC":
		p.C = true
	case "CLD":
		p.D = false
	case "SED":
		p.D = true
	}
	p.Known = true
	return p
}

// conflictResolution decides the mode in effect at an address reached by
// two different incoming edges, per spec.md §4.4's ordered rules:
//  1. keep the first-seen mode if concrete,
//  2. a later conflicting concrete mode triggers ModeConflict (conservative
//     re-decode under 8-bit assumption),
//  3. unknown paths never override concrete ones.
func conflictResolution(first, second ProcessorMode) (result ProcessorMode, conflict bool) {
	if !first.Known {
		return second, false
	}
	if !second.Known {
		return first, false
	}
	if first.M == second.M && first.X == second.X && first.E == second.E {
		return first, false
	}
	return UnknownMode(first.E), true
}

// ResolveModeConflict is conflictResolution's exported entry point for the
// flow analyzer, which lives in a different package.
func ResolveModeConflict(first, second ProcessorMode) (ProcessorMode, bool) {
	return conflictResolution(first, second)
}
