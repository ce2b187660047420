package cpu65816

import (
	"errors"
	"fmt"
)

// FlowKind classifies how a decoded instruction affects control flow
// (spec.md §3 DecodedInstruction.flowType).
type FlowKind int

const (
	Sequential FlowKind = iota
	Branch
	ConditionalBranch
	Jump
	JumpIndirect
	Call
	CallIndirect
	Return
	Interrupt
	Halt
)

func (f FlowKind) String() string {
	switch f {
	case Sequential:
		return "Sequential"
	case Branch:
		return "Branch"
	case ConditionalBranch:
		return "ConditionalBranch"
	case Jump:
		return "Jump"
	case JumpIndirect:
		return "JumpIndirect"
	case Call:
		return "Call"
	case CallIndirect:
		return "CallIndirect"
	case Return:
		return "Return"
	case Interrupt:
		return "Interrupt"
	case Halt:
		return "Halt"
	default:
		return "Unknown"
	}
}

// FlowType pairs a FlowKind with its resolved target, when one exists.
type FlowType struct {
	Kind   FlowKind
	Target *uint32 // 24-bit CpuAddress.Long(), nil if unresolved/not applicable
}

// DecodedInstruction is the per-occurrence decode record (spec.md §3).
type DecodedInstruction struct {
	Bank   byte
	Offset uint16

	Opcode          byte
	Mnemonic        string
	AddressingMode  AddressingMode
	OperandBytes    []byte
	TotalBytes      int
	ResolvedOperand *uint32 // absolute target, when statically known
	Indirect        bool    // true if ResolvedOperand requires memory contents to finish resolving

	ModeBefore ProcessorMode
	ModeAfter  ProcessorMode

	Cycles int

	FlowType FlowType
	Comment  string

	// BlockMoveSrcBank/BlockMoveDestBank hold MVN/MVP's two operand bytes
	// in ROM order (destination-first, spec.md §4.3/S6): byte 0 is dest,
	// byte 1 is src. Both are preserved regardless of assembler syntax.
	BlockMoveSrcBank  byte
	BlockMoveDestBank byte
}

// Address returns the 24-bit CPU address of the opcode byte.
func (d *DecodedInstruction) Address() uint32 {
	return uint32(d.Bank)<<16 | uint32(d.Offset)
}

// ByteReader supplies bytes to the decoder by CPU address; disasm.flowAnalyzer
// implements this over a mapper.AddressMapper + cartridge.RomImage pair.
type ByteReader interface {
	// ReadByte returns the byte at (bank, offset) and whether it is
	// backed by mapped ROM.
	ReadByte(bank byte, offset uint16) (byte, bool)
}

var (
	// ErrDecodeAtUnmappedAddress is returned when the opcode byte itself
	// has no ROM backing.
	ErrDecodeAtUnmappedAddress = errors.New("cpu65816: decode at unmapped address")
	// ErrTruncatedOperand is returned when not enough mapped bytes follow
	// the opcode to satisfy its operand width.
	ErrTruncatedOperand = errors.New("cpu65816: truncated operand")
)

// Decode reads one instruction at (bank, offset) under mode, using r to
// fetch bytes. totalBytes never exceeds 4 and never crosses into an
// unmapped region (spec.md §4.3).
func Decode(r ByteReader, bank byte, offset uint16, mode ProcessorMode) (*DecodedInstruction, error) {
	opcode, ok := r.ReadByte(bank, offset)
	if !ok {
		return nil, ErrDecodeAtUnmappedAddress
	}
	desc := Lookup(opcode)

	width := operandWidthFor(desc, mode)
	totalBytes := 1 + width
	operand := make([]byte, 0, width)
	for i := 0; i < width; i++ {
		b, ok := r.ReadByte(bank, offset+uint16(1+i))
		if !ok {
			return nil, fmt.Errorf("%w: opcode %#02x at $%02X:%04X wants %d operand bytes", ErrTruncatedOperand, opcode, bank, offset, width)
		}
		operand = append(operand, b)
	}

	d := &DecodedInstruction{
		Bank:           bank,
		Offset:         offset,
		Opcode:         opcode,
		Mnemonic:       desc.Mnemonic,
		AddressingMode: desc.Mode,
		OperandBytes:   operand,
		TotalBytes:     totalBytes,
		ModeBefore:     mode,
	}

	resolveOperand(d, bank, offset, desc)
	d.ModeAfter = applyInstructionEffect(desc.Mnemonic, operand, mode)
	d.FlowType = classifyFlow(desc.Mnemonic, d)
	return d, nil
}

// operandWidthFor returns the number of operand bytes (excluding the
// opcode byte) for desc under mode, per spec.md §4.3.
func operandWidthFor(desc InstructionDescriptor, mode ProcessorMode) int {
	switch desc.Mnemonic {
	case "BRK", "COP", "WDM":
		// Implied in the opcode table, but both take a signature byte
		// (spec.md §4.3): BaseBytes=2.
		return desc.BaseBytes - 1
	}
	if desc.Mode != Immediate {
		return operandWidth[desc.Mode]
	}
	switch desc.Mnemonic {
	case "REP", "SEP":
		return 1
	}
	switch affinityOf(desc.Mnemonic) {
	case affinityA:
		if mode.M {
			return 1
		}
		return 2
	case affinityX:
		if mode.X {
			return 1
		}
		return 2
	default:
		return 1
	}
}

// le16 decodes a little-endian pair.
func le16(b []byte) uint16 {
	if len(b) < 2 {
		return uint16(b[0])
	}
	return uint16(b[0]) | uint16(b[1])<<8
}

func resolveOperand(d *DecodedInstruction, bank byte, offset uint16, desc InstructionDescriptor) {
	pcAfter := offset + uint16(d.TotalBytes)
	switch desc.Mode {
	case Relative:
		disp := int8(d.OperandBytes[0])
		target := uint32(bank)<<16 | uint32(pcAfter+uint16(int16(disp)))
		d.ResolvedOperand = &target
	case RelativeLong:
		disp := int16(le16(d.OperandBytes))
		target := uint32(bank)<<16 | uint32(pcAfter+uint16(disp))
		d.ResolvedOperand = &target
	case Absolute:
		target := uint32(bank)<<16 | uint32(le16(d.OperandBytes))
		d.ResolvedOperand = &target
	case AbsoluteLong:
		target := uint32(d.OperandBytes[2])<<16 | uint32(le16(d.OperandBytes[:2]))
		d.ResolvedOperand = &target
	case AbsoluteX, AbsoluteY:
		target := uint32(bank)<<16 | uint32(le16(d.OperandBytes))
		d.ResolvedOperand = &target
	case AbsoluteLongX:
		target := uint32(d.OperandBytes[2])<<16 | uint32(le16(d.OperandBytes[:2]))
		d.ResolvedOperand = &target
	case DirectPage, DirectPageX, DirectPageY:
		target := uint32(d.OperandBytes[0])
		d.ResolvedOperand = &target
	case AbsoluteIndirect, AbsoluteIndexedIndirect, AbsoluteIndirectLong,
		DirectIndirect, DirectIndirectX, DirectIndirectY,
		DirectIndirectLong, DirectIndirectLongY,
		StackRelative, StackRelativeIndirectIndexed:
		d.Indirect = true
	case BlockMove:
		// ROM order is destination-first (spec.md §4.3/S6 override).
		d.BlockMoveDestBank = d.OperandBytes[0]
		d.BlockMoveSrcBank = d.OperandBytes[1]
	}
}

// applyInstructionEffect updates mode per spec.md §4.4's transition table.
// Transitions take effect on the instruction following REP/SEP/XCE — the
// operand width of the REP/SEP/XCE instruction itself already used the
// pre-transition mode (handled by operandWidthFor, which never consults
// ModeAfter).
func applyInstructionEffect(mnemonic string, operand []byte, mode ProcessorMode) ProcessorMode {
	switch mnemonic {
	case "REP":
		return mode.Rep(operand[0])
	case "SEP":
		return mode.Sep(operand[0])
	case "XCE":
		return mode.Xce()
	case "CLC", "SEC", "CLD", "SED":
		return mode.applyImplicitFlag(mnemonic)
	case "CLI", "SEI", "CLV":
		mode.Known = true
		return mode
	case "PLP", "RTI":
		return UnknownMode(mode.E)
	case "RTS", "RTL":
		return UnknownMode(mode.E)
	default:
		return mode
	}
}

// branchMnemonics lists every conditional-branch opcode.
var branchMnemonics = map[string]bool{
	"BPL": true, "BMI": true, "BVC": true, "BVS": true,
	"BCC": true, "BCS": true, "BNE": true, "BEQ": true,
}

func classifyFlow(mnemonic string, d *DecodedInstruction) FlowType {
	switch mnemonic {
	case "BRA", "BRL":
		return FlowType{Kind: Branch, Target: d.ResolvedOperand}
	case "JMP", "JML":
		if d.Indirect {
			return FlowType{Kind: JumpIndirect}
		}
		return FlowType{Kind: Jump, Target: d.ResolvedOperand}
	case "JSR", "JSL":
		if d.Indirect {
			return FlowType{Kind: CallIndirect}
		}
		return FlowType{Kind: Call, Target: d.ResolvedOperand}
	case "RTS", "RTL", "RTI":
		return FlowType{Kind: Return}
	case "BRK", "COP":
		return FlowType{Kind: Interrupt}
	case "STP":
		return FlowType{Kind: Halt}
	case "WAI":
		// WAI resumes on the next interrupt; unlike STP it is not a dead
		// end, but the resuming mode isn't statically known (spec.md §4.3).
		return FlowType{Kind: Sequential}
	default:
		if branchMnemonics[mnemonic] {
			return FlowType{Kind: ConditionalBranch, Target: d.ResolvedOperand}
		}
		return FlowType{Kind: Sequential}
	}
}
