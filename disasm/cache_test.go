package disasm

import "testing"

func TestHashRomDeterministic(t *testing.T) {
	data := buildLoROM()
	if hashRom(data) != hashRom(data) {
		t.Fatalf("hashRom is not deterministic over identical input")
	}
}

func TestHashRomDistinguishesContent(t *testing.T) {
	a := buildLoROM()
	b := buildLoROM()
	b[0] = 0xEA
	if hashRom(a) == hashRom(b) {
		t.Fatalf("hashRom collided for differing ROM content")
	}
}

func TestCacheEvictsUnderCapacity(t *testing.T) {
	c := NewCache(1)
	a := buildLoROM()
	b := buildHiROM()

	if _, err := AnalyzeCached(c, a, DefaultOptions()); err != nil {
		t.Fatalf("AnalyzeCached(a): %v", err)
	}
	if _, err := AnalyzeCached(c, b, DefaultOptions()); err != nil {
		t.Fatalf("AnalyzeCached(b): %v", err)
	}
	// a's entry should have been evicted (capacity 1); re-running should
	// still succeed rather than panic or return stale data.
	result, err := AnalyzeCached(c, a, DefaultOptions())
	if err != nil {
		t.Fatalf("AnalyzeCached(a) after eviction: %v", err)
	}
	if result.Cartridge.Mapper.String() != "LoROM" {
		t.Fatalf("Mapper = %v, want LoROM", result.Cartridge.Mapper)
	}
}

func TestNilCacheBehavesLikeAnalyze(t *testing.T) {
	rom := buildLoROM()
	result, err := AnalyzeCached(nil, rom, DefaultOptions())
	if err != nil {
		t.Fatalf("AnalyzeCached(nil): %v", err)
	}
	if len(result.Instructions) == 0 {
		t.Fatalf("expected decoded instructions")
	}
}
