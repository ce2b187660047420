package disasm

import (
	"github.com/golang/glog"

	"github.com/Blankenship-Daniel/snes-disasm-sub002/cartridge"
	"github.com/Blankenship-Daniel/snes-disasm-sub002/cpu65816"
	"github.com/Blankenship-Daniel/snes-disasm-sub002/mapper"
)

// AnalysisResult is the full output of one Analyze pass: the decoded
// instruction stream plus every side table spec.md §6 names.
type AnalysisResult struct {
	Cartridge *cartridge.CartridgeInfo

	Instructions map[uint32]*cpu65816.DecodedInstruction
	Blocks       map[uint32]*BasicBlock
	Functions    map[uint32]*Function

	Xrefs   *XrefIndex
	Symbols *SymbolTable

	Diagnostics []Diagnostic

	// Partial is set when analysis stopped early due to
	// InstructionLimitExceeded.
	Partial bool
}

// Analyze is the pure top-level entry point (spec.md §6): given raw ROM
// bytes and Options, it classifies the cartridge, builds the address
// mapper, and runs the flow analyzer from the reset vector (plus NMI/IRQ
// and any user-supplied entry points). Only CartridgeClassificationFailed
// and malformed input are returned as a hard error; everything else
// recoverable is appended to the result's Diagnostics.
func Analyze(romBytes []byte, opt Options) (*AnalysisResult, error) {
	return analyzeWithCache(nil, romBytes, opt)
}

// AnalyzeCached behaves like Analyze but memoizes the full result keyed
// by (ROM content hash, options signature) in c, per spec.md §4.8. A nil
// Cache behaves exactly like Analyze.
func AnalyzeCached(c *Cache, romBytes []byte, opt Options) (*AnalysisResult, error) {
	return analyzeWithCache(c, romBytes, opt)
}

func analyzeWithCache(c *Cache, romBytes []byte, opt Options) (*AnalysisResult, error) {
	rom := cartridge.NewRomImage(romBytes)

	key := cacheKey{romHash: hashRom(rom.Bytes()), component: "Analyze", parameters: optionsSignature(opt)}

	var analyzeErr error
	compute := func() *AnalysisResult {
		r, err := runAnalysis(rom, opt)
		analyzeErr = err
		return r
	}
	result, _ := c.getOrCompute(key, compute)
	if analyzeErr != nil {
		return nil, analyzeErr
	}
	return result, nil
}

func optionsSignature(opt Options) string {
	sig := ""
	if opt.StartAddress != nil {
		sig += "s"
	}
	if opt.EndAddress != nil {
		sig += "e"
	}
	for _, a := range opt.EntryPoints {
		sig += "," + cpu65816FormatAddr(a)
	}
	if opt.EnableCycleCalc {
		sig += "c"
	}
	if opt.MaxInstructions > 0 {
		sig += "m"
	}
	return sig
}

func cpu65816FormatAddr(a uint32) string {
	return mapper.FromLong(a).String()
}

func runAnalysis(rom *cartridge.RomImage, opt Options) (*AnalysisResult, error) {
	ci, headerDiags, err := cartridge.Classify(rom)
	if err != nil {
		return nil, &AnalysisError{Kind: "CartridgeClassificationFailed", Err: err}
	}

	am := mapper.New(ci)
	result := &AnalysisResult{Cartridge: ci, Symbols: newSymbolTable()}
	for _, hd := range headerDiags {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{Kind: hd.Kind, Message: hd.Message})
	}
	if !ci.ChecksumOK() {
		glog.Infof("disasm: checksum mismatch for cartridge %q", ci.Title)
	}

	fa := newFlowAnalyzer(rom, am, ci, opt)

	seeds := seedEntryPoints(ci, am, opt)
	fa.run(seeds)

	result.Instructions = fa.instructions
	result.Diagnostics = append(result.Diagnostics, fa.diagnostics...)
	result.Partial = fa.limitHit

	result.Blocks = fa.basicBlocks()
	result.Functions = fa.functions(result.Blocks)

	result.Xrefs = fa.xrefs
	populateSymbols(result, fa)
	for _, sym := range opt.UserSymbols {
		sym.Source = SourceUser
		if d := result.Symbols.Put(sym); d != nil {
			result.Diagnostics = append(result.Diagnostics, *d)
		}
	}

	return result, nil
}

// seedEntryPoints builds the initial worklist: the reset vector and the
// non-zero NMI/IRQ vectors, each only when it resolves into ROM, and every
// user-supplied entry point (spec.md §4.6).
func seedEntryPoints(ci *cartridge.CartridgeInfo, am mapper.AddressMapper, opt Options) []worklistItem {
	var seeds []worklistItem

	addVectorSeed := func(offset uint16) {
		addr := mapper.CpuAddress{Bank: 0x00, Offset: offset}
		if _, ok := am.LinearOffset(addr); ok {
			seeds = append(seeds, worklistItem{addr: addr.Long(), mode: cpu65816.ResetMode()})
		}
	}
	addVectorSeed(ci.ResetVector)
	if ci.NmiVector != 0 {
		addVectorSeed(ci.NmiVector)
	}
	if ci.IrqVector != 0 {
		addVectorSeed(ci.IrqVector)
	}

	for _, e := range opt.EntryPoints {
		seeds = append(seeds, worklistItem{addr: e, mode: cpu65816.ResetMode()})
	}
	return seeds
}

// populateSymbols applies the auto-label policy (spec.md §4.7) over every
// discovered edge target; the caller overlays Options.UserSymbols
// afterward so User-sourced names always win.
func populateSymbols(result *AnalysisResult, fa *flowAnalyzer) {
	for addr := range fa.callTargets {
		sym := Symbol{Address: addr, Name: AutoLabel(addr, SymbolCode, 0), Kind: SymbolCode, Source: SourceAuto}
		if d := result.Symbols.Put(sym); d != nil {
			result.Diagnostics = append(result.Diagnostics, *d)
		}
	}
	for addr, edges := range fa.xrefs.to {
		for _, e := range edges {
			switch e.Kind {
			case CodeBranch, CodeExecute:
				if _, ok := result.Symbols.Lookup(addr); !ok {
					sym := Symbol{Address: addr, Name: BranchLabel(addr), Kind: SymbolCode, Source: SourceAuto}
					if d := result.Symbols.Put(sym); d != nil {
						result.Diagnostics = append(result.Diagnostics, *d)
					}
				}
			case DataRead, DataWrite:
				if _, ok := result.Symbols.Lookup(addr); !ok {
					sym := Symbol{Address: addr, Name: AutoLabel(addr, SymbolData, 1), Kind: SymbolData, Source: SourceAuto}
					if d := result.Symbols.Put(sym); d != nil {
						result.Diagnostics = append(result.Diagnostics, *d)
					}
				}
			}
		}
	}

	// Each vector's target is labelled with the name of the emulation-mode
	// vector slot it was read from.
	vectors := []struct{ slot, target uint16 }{
		{0xFFFC, result.Cartridge.ResetVector},
		{0xFFFA, result.Cartridge.NmiVector},
		{0xFFFE, result.Cartridge.IrqVector},
	}
	for _, v := range vectors {
		addr := mapper.CpuAddress{Bank: 0, Offset: v.target}.Long()
		sym := Symbol{Address: addr, Name: vectorName(v.slot), Kind: SymbolVector, Source: SourceAuto}
		if d := result.Symbols.Put(sym); d != nil {
			result.Diagnostics = append(result.Diagnostics, *d)
		}
	}
}
