// Package mapper translates between 24-bit SNES CPU addresses and linear
// ROM offsets, respecting bank mirroring and mapper topology (LoROM, HiROM,
// ExHiROM, ExLoROM).
//
// Coprocessor cartridges (SA-1, SuperFX) remap some banks away from plain
// ROM; that remapping is out of scope here (see spec.md §9 and DESIGN.md).
// New always returns the plain topology translation for the cartridge's
// declared Mapper, regardless of CartridgeInfo.Coprocessor.
package mapper

import (
	"fmt"

	"github.com/Blankenship-Daniel/snes-disasm-sub002/cartridge"
)

// RegionKind classifies a CPU address by what backs it.
type RegionKind int

const (
	RegionROM RegionKind = iota
	RegionWRAM
	RegionSRAM
	RegionHardwareRegister
	RegionOpenBus
)

func (k RegionKind) String() string {
	switch k {
	case RegionROM:
		return "ROM"
	case RegionWRAM:
		return "WRAM"
	case RegionSRAM:
		return "SRAM"
	case RegionHardwareRegister:
		return "HardwareRegister"
	case RegionOpenBus:
		return "OpenBus"
	default:
		return "Unknown"
	}
}

// CpuAddress is a 24-bit address decomposed as bank:8 | offset:16.
type CpuAddress struct {
	Bank   byte
	Offset uint16
}

// Long packs the address into a single 24-bit integer (bank in bits 16-23).
func (a CpuAddress) Long() uint32 {
	return uint32(a.Bank)<<16 | uint32(a.Offset)
}

// FromLong unpacks a 24-bit integer into a CpuAddress.
func FromLong(v uint32) CpuAddress {
	return CpuAddress{Bank: byte(v >> 16), Offset: uint16(v)}
}

// String renders the canonical "$BB:OOOO" form.
func (a CpuAddress) String() string {
	return fmt.Sprintf("$%02X:%04X", a.Bank, a.Offset)
}

// AddressMapper answers linear-offset and region-classification queries for
// one cartridge's mapper topology. For any addr with LinearOffset returning
// (o, true), o < RomSize (the package invariant from spec.md §4.2).
type AddressMapper interface {
	LinearOffset(addr CpuAddress) (int, bool)
	Classify(addr CpuAddress) RegionKind
}

// New constructs the AddressMapper for ci's declared mapper topology.
func New(ci *cartridge.CartridgeInfo) AddressMapper {
	base := baseMapper{romSize: ci.RomSize}
	switch ci.Mapper {
	case cartridge.HiROM:
		return &hiROMMapper{base}
	case cartridge.ExHiROM:
		return &exHiROMMapper{base}
	case cartridge.ExLoROM:
		return &exLoROMMapper{base}
	default:
		return &loROMMapper{base}
	}
}

// baseMapper holds the ROM size every concrete mapper needs to bounds-check
// a computed linear offset.
type baseMapper struct {
	romSize int
}

func (b baseMapper) inRange(off int) (int, bool) {
	if off < 0 || off >= b.romSize {
		return 0, false
	}
	return off, true
}

// classifyLowBank reports the region kind when offset (within any bank) falls in the
// fixed low-memory region shared by every mapper: WRAM mirror, PPU/APU/CPU
// hardware registers, and the expansion/SRAM window below $8000.
func classifyLowBank(offset uint16) (RegionKind, bool) {
	switch {
	case offset < 0x2000:
		return RegionWRAM, true
	case offset < 0x6000:
		return RegionHardwareRegister, true
	case offset < 0x8000:
		return RegionSRAM, true
	default:
		return 0, false
	}
}
