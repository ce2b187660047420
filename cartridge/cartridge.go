// Package cartridge ingests a raw SNES ROM byte stream and classifies its
// cartridge layout: mapper topology, ROM/SRAM sizes, speed, vectors, and
// coprocessor tag.
//
// References:
//   https://snes.nesdev.org/wiki/ROM_header
//   https://snes.nesdev.org/wiki/Memory_map
package cartridge

import "fmt"

// Mapper identifies a cartridge's address-translation topology. The
// coprocessor, if any, is a separate attribute (see CoprocessorKind) — it
// never changes how the main CPU's opcode stream is decoded, only how
// certain banks are mapped.
type Mapper int

const (
	LoROM Mapper = iota
	HiROM
	ExHiROM
	ExLoROM
)

func (m Mapper) String() string {
	switch m {
	case LoROM:
		return "LoROM"
	case HiROM:
		return "HiROM"
	case ExHiROM:
		return "ExHiROM"
	case ExLoROM:
		return "ExLoROM"
	default:
		return "Unknown"
	}
}

// Speed is the main CPU clock the cartridge runs at when accessing its own
// banks (FastROM banks run at 3.58 MHz, SlowROM at 2.68 MHz).
type Speed int

const (
	Slow Speed = iota
	Fast
)

// CartridgeInfo is the immutable record produced once per ROM by Classify.
type CartridgeInfo struct {
	Mapper       Mapper
	Coprocessor  CoprocessorKind
	RomSize      int // bytes
	SramSize     int // bytes
	Speed        Speed
	Title        string // 21 bytes, space-padded, as stored
	ResetVector  uint16
	NmiVector    uint16
	IrqVector    uint16
	CopVector    uint16
	BrkVector    uint16
	AbortVector  uint16
	Checksum     uint16
	ChecksumComp uint16

	// HeaderOffset is the linear offset (post copier-header-strip) of the
	// winning header candidate.
	HeaderOffset int
	// Score is the winning candidate's score, kept for diagnostics.
	Score int
}

// ChecksumOK reports whether the checksum invariant from spec.md §3 holds:
// checksum XOR complement == 0xFFFF.
func (ci *CartridgeInfo) ChecksumOK() bool {
	return ci.Checksum^ci.ChecksumComp == 0xFFFF
}

// Diagnostic carries the Kind and Message fields of disasm.Diagnostic
// (header-stage diagnostics have no address); they are collected here and
// merged into the final AnalysisResult by the disasm package.
type Diagnostic struct {
	Kind    string
	Message string
}

// ClassificationError is returned by Classify when no header candidate
// scores at or above minimumScore. The best-effort candidate is attached so
// the caller may override rather than retry blind.
type ClassificationError struct {
	BestEffort *CartridgeInfo
	BestScore  int
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("cartridge classification failed: best candidate scored %d (minimum %d)", e.BestScore, minimumScore)
}

const minimumScore = 10
