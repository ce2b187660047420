package disasm

// Options is the closed configuration record spec.md §9 calls for in
// place of an open-ended option bag: every knob Analyze accepts is
// enumerated here.
type Options struct {
	StartAddress *uint32
	EndAddress   *uint32
	EntryPoints  []uint32
	UserSymbols  []Symbol

	EnableCycleCalc  bool
	EnableValidation bool

	// MaxInstructions guards against pathological ROMs (spec.md §4.6); 0
	// means unbounded.
	MaxInstructions int

	// CacheCapacity is an LRU bound for the analysis cache (spec.md
	// §4.8). Analyze and AnalyzeCached do not read it: a Cache's bound is
	// the capacity given to NewCache, and a nil *Cache disables caching.
	CacheCapacity int
}

// DefaultOptions mirrors the teacher's NewConsole/NewCPU
// constructor-with-defaults idiom: every field gets a sane zero-ish
// default, seeding only from the reset/NMI/IRQ vectors with no user
// entry points or symbols, cycle calc on, an instruction ceiling large
// enough for any real cartridge, and the cache sized per spec.md's
// documented default.
func DefaultOptions() Options {
	return Options{
		EnableCycleCalc:  true,
		EnableValidation: true,
		MaxInstructions:  2_000_000,
		CacheCapacity:    defaultCacheCapacity,
	}
}
