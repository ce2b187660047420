package disasm

import "testing"

func TestNoGapsWithinABasicBlock(t *testing.T) {
	// Property 8: no in-range unread bytes between adjacent instructions
	// within one basic block.
	result, err := Analyze(buildLoROM(), DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for _, block := range result.Blocks {
		for i := 1; i < len(block.Instructions); i++ {
			prev := block.Instructions[i-1]
			cur := block.Instructions[i]
			want := prev.Address() + uint32(prev.TotalBytes)
			if cur.Address() != want {
				t.Fatalf("gap in block %#06x: instruction at %#06x expected to follow at %#06x", block.Entry, cur.Address(), want)
			}
		}
	}
}

func TestByteLengthConsistency(t *testing.T) {
	result, err := Analyze(buildLoROM(), DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for addr, d := range result.Instructions {
		if d.TotalBytes < 1 || d.TotalBytes > 4 {
			t.Fatalf("instruction at %#06x has TotalBytes=%d, out of range", addr, d.TotalBytes)
		}
		if len(d.OperandBytes) != d.TotalBytes-1 {
			t.Fatalf("instruction at %#06x: OperandBytes len=%d, want %d", addr, len(d.OperandBytes), d.TotalBytes-1)
		}
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	// Property 3: two runs over the same inputs produce the same
	// instruction stream.
	rom := buildLoROM()
	first, err := Analyze(rom, DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, err := Analyze(rom, DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(first.Instructions) != len(second.Instructions) {
		t.Fatalf("instruction counts differ: %d vs %d", len(first.Instructions), len(second.Instructions))
	}
	for addr, d := range first.Instructions {
		d2, ok := second.Instructions[addr]
		if !ok || d2.Mnemonic != d.Mnemonic || d2.TotalBytes != d.TotalBytes {
			t.Fatalf("mismatch at %#06x between runs", addr)
		}
	}
}

func TestSymbolConflictSuppressesLaterUserName(t *testing.T) {
	tbl := newSymbolTable()
	if d := tbl.Put(Symbol{Address: 0x8000, Name: "start", Source: SourceUser}); d != nil {
		t.Fatalf("unexpected conflict on first insert: %v", d)
	}
	d := tbl.Put(Symbol{Address: 0x8000, Name: "begin", Source: SourceUser})
	if d == nil {
		t.Fatalf("expected a SymbolConflict diagnostic for a colliding user name")
	}
	sym, _ := tbl.Lookup(0x8000)
	if sym.Name != "start" {
		t.Fatalf("first user symbol should win, got %q", sym.Name)
	}
}

func TestUserSymbolOutranksAuto(t *testing.T) {
	tbl := newSymbolTable()
	tbl.Put(Symbol{Address: 0x9000, Name: "sub_009000", Source: SourceAuto})
	tbl.Put(Symbol{Address: 0x9000, Name: "InitGame", Source: SourceUser})
	sym, _ := tbl.Lookup(0x9000)
	if sym.Name != "InitGame" {
		t.Fatalf("user symbol should outrank auto, got %q", sym.Name)
	}
}
