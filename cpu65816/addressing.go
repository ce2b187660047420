// Package cpu65816 decodes WDC 65C816 instructions: the opcode table, the
// addressing-mode resolution, the processor-mode (M/X/E/D/C) tracker that
// drives operand width, and the cycle estimator.
//
// This package never executes instructions — it has no register file beyond
// the ProcessorMode flags needed to choose operand widths. See nes/cpu.go
// in the teacher for the 6502 fetch/execute loop this decode-only design
// was generalized from.
package cpu65816

// AddressingMode enumerates every 65C816 addressing mode, one variant per
// spec.md §3.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	DirectPage
	DirectPageX
	DirectPageY
	DirectIndirect
	DirectIndirectX
	DirectIndirectY
	DirectIndirectLong
	DirectIndirectLongY
	Absolute
	AbsoluteX
	AbsoluteY
	AbsoluteIndirect
	AbsoluteIndirectLong
	AbsoluteIndexedIndirect
	AbsoluteLong
	AbsoluteLongX
	StackRelative
	StackRelativeIndirectIndexed
	Relative
	RelativeLong
	BlockMove
)

// operandWidth is the fixed, mode-dependent operand length in bytes for
// every addressing mode except Immediate, whose width depends on the
// current M/X flags and the instruction's register affinity (see
// affinityOf in opcodes.go).
var operandWidth = map[AddressingMode]int{
	Implied:                      0,
	Accumulator:                  0,
	Immediate:                    -1, // resolved dynamically
	DirectPage:                   1,
	DirectPageX:                  1,
	DirectPageY:                  1,
	DirectIndirect:               1,
	DirectIndirectX:              1,
	DirectIndirectY:              1,
	DirectIndirectLong:           1,
	DirectIndirectLongY:          1,
	Absolute:                     2,
	AbsoluteX:                    2,
	AbsoluteY:                    2,
	AbsoluteIndirect:             2,
	AbsoluteIndirectLong:         2,
	AbsoluteIndexedIndirect:      2,
	AbsoluteLong:                 3,
	AbsoluteLongX:                3,
	StackRelative:                1,
	StackRelativeIndirectIndexed: 1,
	Relative:                     1,
	RelativeLong:                 2,
	BlockMove:                    2,
}

func (m AddressingMode) String() string {
	switch m {
	case Implied:
		return "Implied"
	case Accumulator:
		return "Accumulator"
	case Immediate:
		return "Immediate"
	case DirectPage:
		return "DirectPage"
	case DirectPageX:
		return "DirectPageX"
	case DirectPageY:
		return "DirectPageY"
	case DirectIndirect:
		return "DirectIndirect"
	case DirectIndirectX:
		return "DirectIndirectX"
	case DirectIndirectY:
		return "DirectIndirectY"
	case DirectIndirectLong:
		return "DirectIndirectLong"
	case DirectIndirectLongY:
		return "DirectIndirectLongY"
	case Absolute:
		return "Absolute"
	case AbsoluteX:
		return "AbsoluteX"
	case AbsoluteY:
		return "AbsoluteY"
	case AbsoluteIndirect:
		return "AbsoluteIndirect"
	case AbsoluteIndirectLong:
		return "AbsoluteIndirectLong"
	case AbsoluteIndexedIndirect:
		return "AbsoluteIndexedIndirect"
	case AbsoluteLong:
		return "AbsoluteLong"
	case AbsoluteLongX:
		return "AbsoluteLongX"
	case StackRelative:
		return "StackRelative"
	case StackRelativeIndirectIndexed:
		return "StackRelativeIndirectIndexed"
	case Relative:
		return "Relative"
	case RelativeLong:
		return "RelativeLong"
	case BlockMove:
		return "BlockMove"
	default:
		return "Unknown"
	}
}

// indexed reports whether the effective address for mode depends on X or Y,
// the modes the cycle calculator must check for page-crossing.
func indexed(mode AddressingMode) bool {
	switch mode {
	case AbsoluteX, AbsoluteY, DirectIndirectY, DirectIndirectLongY, AbsoluteLongX:
		return true
	default:
		return false
	}
}
