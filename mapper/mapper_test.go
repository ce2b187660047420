package mapper

import (
	"testing"

	"github.com/Blankenship-Daniel/snes-disasm-sub002/cartridge"
)

func TestLoROMLinearOffset(t *testing.T) {
	m := New(&cartridge.CartridgeInfo{Mapper: cartridge.LoROM, RomSize: 0x8000})
	off, ok := m.LinearOffset(CpuAddress{Bank: 0x00, Offset: 0x8000})
	if !ok || off != 0 {
		t.Fatalf("LinearOffset($00:8000) = %d,%v, want 0,true", off, ok)
	}
	off, ok = m.LinearOffset(CpuAddress{Bank: 0x80, Offset: 0x8000})
	if !ok || off != 0 {
		t.Fatalf("mirror LinearOffset($80:8000) = %d,%v, want 0,true", off, ok)
	}
	if _, ok := m.LinearOffset(CpuAddress{Bank: 0x00, Offset: 0x1000}); ok {
		t.Fatalf("LinearOffset($00:1000) should be unmapped (WRAM/register area)")
	}
}

func TestHiROMLinearOffset(t *testing.T) {
	// S4: 1 MiB HiROM, $80:8000 mirrors $00:8000 which is linear offset
	// 0x8000 (bank&0x3F collapses both banks to the same base).
	m := New(&cartridge.CartridgeInfo{Mapper: cartridge.HiROM, RomSize: 1 << 20})
	off, ok := m.LinearOffset(CpuAddress{Bank: 0x80, Offset: 0x8000})
	if !ok || off != 0x8000 {
		t.Fatalf("LinearOffset($80:8000) = %d,%v, want 0x8000,true", off, ok)
	}
	off2, ok2 := m.LinearOffset(CpuAddress{Bank: 0x00, Offset: 0x8000})
	if !ok2 || off2 != off {
		t.Fatalf("mirror mismatch: %d vs %d", off, off2)
	}
}

func TestUnmappedWRAM(t *testing.T) {
	m := New(&cartridge.CartridgeInfo{Mapper: cartridge.LoROM, RomSize: 0x8000})
	if m.Classify(CpuAddress{Bank: 0x7E, Offset: 0x0000}) != RegionWRAM {
		t.Fatalf("Classify($7E:0000) should be WRAM")
	}
	if _, ok := m.LinearOffset(CpuAddress{Bank: 0x7E, Offset: 0x0000}); ok {
		t.Fatalf("LinearOffset($7E:0000) should be unmapped")
	}
}

func TestAddressRoundTrip(t *testing.T) {
	m := New(&cartridge.CartridgeInfo{Mapper: cartridge.LoROM, RomSize: 0x80000})
	for bank := byte(0x00); bank < 0x10; bank++ {
		addr := CpuAddress{Bank: bank, Offset: 0x9000}
		off, ok := m.LinearOffset(addr)
		if !ok {
			t.Fatalf("LinearOffset(%v) unmapped", addr)
		}
		// LoROM canonical mirror is the $00-$7D representative.
		back := CpuAddress{Bank: bank & 0x7F, Offset: uint16(off%0x8000) + 0x8000}
		off2, ok2 := m.LinearOffset(back)
		if !ok2 || off2 != off {
			t.Fatalf("round trip mismatch for %v: %d vs %d", addr, off, off2)
		}
	}
}
