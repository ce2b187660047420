package disasm

import "testing"

// buildLoROM is the S1 fixture: 32 KiB LoROM, reset vector -> $008000,
// code bytes SEI, CLC, XCE, RTL.
func buildLoROM() []byte {
	data := make([]byte, 0x8000)
	h := 0x7FC0
	copy(data[h:h+21], []byte("TEST ROM             "))
	data[h+0x15] = 0x20
	data[h+0x16] = 0x00
	data[h+0x17] = 0x08
	checksum := uint16(0x1234)
	comp := checksum ^ 0xFFFF
	data[h+0x1C] = byte(comp)
	data[h+0x1D] = byte(comp >> 8)
	data[h+0x1E] = byte(checksum)
	data[h+0x1F] = byte(checksum >> 8)
	data[h+0x3C] = 0x00
	data[h+0x3D] = 0x80
	data[0] = 0x78 // SEI
	data[1] = 0x18 // CLC
	data[2] = 0xFB // XCE
	data[3] = 0x6B // RTL
	return data
}

func TestAnalyzeMinimalLoROM(t *testing.T) {
	result, err := Analyze(buildLoROM(), DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Cartridge.Mapper.String() != "LoROM" {
		t.Fatalf("Mapper = %v, want LoROM", result.Cartridge.Mapper)
	}

	wantMnemonics := []string{"SEI", "CLC", "XCE", "RTL"}
	addr := uint32(0x008000)
	for _, want := range wantMnemonics {
		d, ok := result.Instructions[addr]
		if !ok {
			t.Fatalf("no instruction decoded at %#06x", addr)
		}
		if d.Mnemonic != want {
			t.Fatalf("at %#06x: mnemonic = %s, want %s", addr, d.Mnemonic, want)
		}
		addr += uint32(d.TotalBytes)
	}

	fn, ok := result.Functions[0x008000]
	if !ok {
		t.Fatalf("expected function entry at $008000")
	}
	if len(fn.Blocks) == 0 {
		t.Fatalf("function at $008000 has no blocks")
	}
}

func TestAnalyzeXCEEntersNativeMode(t *testing.T) {
	result, err := Analyze(buildLoROM(), DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	xce := result.Instructions[0x008002]
	if xce == nil || xce.Mnemonic != "XCE" {
		t.Fatalf("expected XCE at $008002")
	}
	if xce.ModeAfter.E {
		t.Fatalf("after XCE with C=0 entering, E should be false (native mode)")
	}
}

// buildHiROM is the S4 fixture: 1 MiB HiROM, reset vector -> $808000
// (mirror of $008000, linear offset 0x8000).
func buildHiROM() []byte {
	data := make([]byte, 1<<20)
	h := 0xFFC0
	copy(data[h:h+21], []byte("HIROM TEST           "))
	data[h+0x15] = 0x21
	data[h+0x16] = 0x00
	data[h+0x17] = 0x0B
	checksum := uint16(0xBEEF)
	comp := checksum ^ 0xFFFF
	data[h+0x1C] = byte(comp)
	data[h+0x1D] = byte(comp >> 8)
	data[h+0x1E] = byte(checksum)
	data[h+0x1F] = byte(checksum >> 8)
	data[h+0x3C] = 0x00
	data[h+0x3D] = 0x80
	data[0x8000] = 0x60 // RTS, trivial terminator
	return data
}

func TestAnalyzeHiROMMirror(t *testing.T) {
	result, err := Analyze(buildHiROM(), DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Cartridge.Mapper.String() != "HiROM" {
		t.Fatalf("Mapper = %v, want HiROM", result.Cartridge.Mapper)
	}
	d, ok := result.Instructions[0x808000]
	if !ok {
		t.Fatalf("expected a decoded instruction at $80:8000")
	}
	if d.Mnemonic != "RTS" {
		t.Fatalf("mnemonic = %s, want RTS", d.Mnemonic)
	}
}

func TestAnalyzeUnmappedJumpTarget(t *testing.T) {
	// S5: JML $7E0000 targets WRAM, which the mapper reports unmapped.
	rom := buildLoROM()
	rom[0] = 0x5C // JML
	rom[1] = 0x00
	rom[2] = 0x00
	rom[3] = 0x7E

	result, err := Analyze(rom, DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	d, ok := result.Instructions[0x008000]
	if !ok || d.Mnemonic != "JML" {
		t.Fatalf("expected JML at $008000")
	}
	if d.FlowType.Target == nil || *d.FlowType.Target != 0x7E0000 {
		t.Fatalf("JML should resolve its literal operand to $7E0000")
	}
	found := false
	for _, diag := range result.Diagnostics {
		if diag.Kind == KindUnmappedTarget {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an UnmappedTarget diagnostic")
	}
	if _, decoded := result.Instructions[0x7E0000]; decoded {
		t.Fatalf("WRAM target must not be enqueued for decoding")
	}
}

func TestAnalyzeCacheHitReturnsSameResult(t *testing.T) {
	c := NewCache(4)
	rom := buildLoROM()
	first, err := AnalyzeCached(c, rom, DefaultOptions())
	if err != nil {
		t.Fatalf("AnalyzeCached: %v", err)
	}
	second, err := AnalyzeCached(c, rom, DefaultOptions())
	if err != nil {
		t.Fatalf("AnalyzeCached: %v", err)
	}
	if first != second {
		t.Fatalf("expected the cached pointer to be reused on a repeat call")
	}
}

func TestAnalyzeFunctionReachability(t *testing.T) {
	// S7 property: a JSR target appears in the function list.
	rom := buildLoROM()
	rom[0] = 0x20 // JSR $9000
	rom[1] = 0x00
	rom[2] = 0x90
	rom[3] = 0x60 // RTS (fallthrough after JSR)
	rom[0x1000] = 0x60 // RTS at $009000

	result, err := Analyze(rom, DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if _, ok := result.Functions[0x009000]; !ok {
		t.Fatalf("expected a function entry for the JSR target $009000")
	}
}
