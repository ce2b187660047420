package disasm

import (
	"github.com/golang/glog"

	"github.com/Blankenship-Daniel/snes-disasm-sub002/cartridge"
	"github.com/Blankenship-Daniel/snes-disasm-sub002/cpu65816"
	"github.com/Blankenship-Daniel/snes-disasm-sub002/mapper"
)

// BasicBlock is a maximal straight-line run of instructions with one
// entry and one exit (spec.md §3).
type BasicBlock struct {
	Entry        uint32
	Instructions []*cpu65816.DecodedInstruction
}

// Exit returns the block's terminating instruction.
func (b *BasicBlock) Exit() *cpu65816.DecodedInstruction {
	if len(b.Instructions) == 0 {
		return nil
	}
	return b.Instructions[len(b.Instructions)-1]
}

// Function is a connected subgraph rooted at an entry address (spec.md
// §3): a vector, a JSR/JSL target, or a user-supplied seed.
type Function struct {
	Entry       uint32
	Blocks      []uint32 // block entry addresses, discovery order
	Exits       []uint32 // addresses of RTS/RTL/RTI instructions
	Callers     []uint32
	Callees     []uint32
	ModeAtEntry cpu65816.ProcessorMode
}

// worklistItem is one (address, modeAtEntry) pair (spec.md §4.6).
type worklistItem struct {
	addr uint32
	mode cpu65816.ProcessorMode
}

// flowAnalyzer owns the single mutable analysis context for one pass
// (spec.md §5: a full pass is a pure function of its inputs, and all
// mutable state lives only for the run's duration).
type flowAnalyzer struct {
	rom *cartridge.RomImage
	am  mapper.AddressMapper
	ci  *cartridge.CartridgeInfo
	opt Options

	worklist []worklistItem

	instructions map[uint32]*cpu65816.DecodedInstruction
	// owner maps every decoded byte address to the instruction start
	// address that claims it, for CodeOverlap detection.
	owner map[uint32]uint32

	// seenMode records the first concrete mode an address was decoded
	// under, so a later conflicting concrete mode can be detected.
	seenMode       map[uint32]cpu65816.ProcessorMode
	conflictNoted  map[uint32]bool
	unmappedTarget map[uint32]bool

	callTargets map[uint32]bool
	entrySet    map[uint32]bool

	xrefs       *XrefIndex
	diagnostics []Diagnostic

	instructionCount int
	limitHit         bool
}

func newFlowAnalyzer(rom *cartridge.RomImage, am mapper.AddressMapper, ci *cartridge.CartridgeInfo, opt Options) *flowAnalyzer {
	return &flowAnalyzer{
		rom:            rom,
		am:             am,
		ci:             ci,
		opt:            opt,
		instructions:   make(map[uint32]*cpu65816.DecodedInstruction),
		owner:          make(map[uint32]uint32),
		seenMode:       make(map[uint32]cpu65816.ProcessorMode),
		conflictNoted:  make(map[uint32]bool),
		unmappedTarget: make(map[uint32]bool),
		callTargets:    make(map[uint32]bool),
		entrySet:       make(map[uint32]bool),
		xrefs:          newXrefIndex(),
	}
}

// ReadByte implements cpu65816.ByteReader over the mapper + ROM image.
func (f *flowAnalyzer) ReadByte(bank byte, offset uint16) (byte, bool) {
	off, ok := f.am.LinearOffset(mapper.CpuAddress{Bank: bank, Offset: offset})
	if !ok {
		return 0, false
	}
	return f.rom.ByteAt(off)
}

func (f *flowAnalyzer) enqueue(addr uint32, mode cpu65816.ProcessorMode) {
	f.worklist = append(f.worklist, worklistItem{addr: addr, mode: mode})
}

func (f *flowAnalyzer) addDiagnostic(d Diagnostic) {
	f.diagnostics = append(f.diagnostics, d)
}

// run drains the worklist, decoding one instruction per iteration and
// enqueueing successors per spec.md §4.6.
func (f *flowAnalyzer) run(seeds []worklistItem) {
	f.worklist = append(f.worklist, seeds...)
	for _, s := range seeds {
		f.entrySet[s.addr] = true
	}

	for len(f.worklist) > 0 {
		item := f.worklist[0]
		f.worklist = f.worklist[1:]

		if f.opt.MaxInstructions > 0 && f.instructionCount >= f.opt.MaxInstructions {
			if !f.limitHit {
				f.limitHit = true
				f.addDiagnostic(Diagnostic{Kind: KindInstructionLimit, Message: "instruction decode ceiling reached; partial result returned"})
				glog.Warningf("disasm: instruction limit %d reached, stopping", f.opt.MaxInstructions)
			}
			return
		}

		mode, skip := f.resolveEntryMode(item.addr, item.mode)
		if skip {
			continue
		}

		bank := byte(item.addr >> 16)
		offset := uint16(item.addr)
		d, err := cpu65816.Decode(f, bank, offset, mode)
		if err != nil {
			f.addDiagnostic(addrDiag(KindDecodeError, item.addr, "%v", err))
			continue
		}

		if f.recordOverlap(item.addr, d.TotalBytes) {
			continue
		}

		f.instructions[item.addr] = d
		f.instructionCount++
		f.recordEdges(d)
		f.enqueueSuccessors(d)
	}
}

// resolveEntryMode applies the mode-conflict rule from spec.md §4.4: keep
// the first concrete mode, flag and conservatively re-decode on a later
// differing concrete mode, never let unknown override concrete. skip is
// true when addr has already been fully decoded under a compatible mode.
func (f *flowAnalyzer) resolveEntryMode(addr uint32, mode cpu65816.ProcessorMode) (cpu65816.ProcessorMode, bool) {
	prior, ok := f.seenMode[addr]
	if !ok {
		f.seenMode[addr] = mode
		return mode, false
	}
	resolved, conflict := cpu65816.ResolveModeConflict(prior, mode)
	_, decoded := f.instructions[addr]
	if !conflict {
		// Same concrete mode (or one side unknown deferring to the
		// other): nothing new to learn from a repeat visit.
		return resolved, decoded
	}
	if !f.conflictNoted[addr] {
		f.conflictNoted[addr] = true
		f.addDiagnostic(addrDiag(KindModeConflict, addr, "conflicting processor modes reaching this address; re-decoding conservatively"))
		glog.Warningf("disasm: mode conflict at %#06x", addr)
	}
	f.seenMode[addr] = resolved
	// Allow exactly one conservative re-decode; a second conflict at the
	// same address is treated like any other repeat visit so the
	// worklist still terminates.
	delete(f.instructions, addr)
	for a, owner := range f.owner {
		if owner == addr {
			delete(f.owner, a)
		}
	}
	return resolved, false
}

// recordOverlap reports whether [addr, addr+n) overlaps a previously
// claimed instruction under a different start address (spec.md §4.6 step
// 5); the earlier decoding always wins.
func (f *flowAnalyzer) recordOverlap(addr uint32, n int) bool {
	for i := 0; i < n; i++ {
		a := addr + uint32(i)
		if owner, ok := f.owner[a]; ok && owner != addr {
			f.addDiagnostic(addrDiag(KindCodeOverlap, addr, "overlaps instruction at %#06x; keeping earlier decoding", owner))
			glog.Warningf("disasm: code overlap at %#06x vs %#06x", addr, owner)
			return true
		}
	}
	for i := 0; i < n; i++ {
		f.owner[addr+uint32(i)] = addr
	}
	return false
}

func (f *flowAnalyzer) recordEdges(d *cpu65816.DecodedInstruction) {
	src := d.Address()
	switch d.FlowType.Kind {
	case cpu65816.Branch, cpu65816.ConditionalBranch:
		f.addResolvedEdge(src, d.FlowType.Target, CodeBranch)
	case cpu65816.Jump:
		f.addResolvedEdge(src, d.FlowType.Target, CodeExecute)
	case cpu65816.JumpIndirect, cpu65816.CallIndirect:
		f.xrefs.Add(Edge{Source: src, Kind: CodeExecute})
	case cpu65816.Call:
		f.addResolvedEdge(src, d.FlowType.Target, CodeCall)
		if d.FlowType.Target != nil {
			f.callTargets[*d.FlowType.Target] = true
		}
	case cpu65816.Interrupt:
		if target := f.interruptVectorTarget(d.Mnemonic); target != nil {
			f.addResolvedEdge(src, target, CodeCall)
			f.callTargets[*target] = true
		} else {
			f.xrefs.Add(Edge{Source: src, Kind: CodeCall})
		}
	}
	if d.Indirect && d.ResolvedOperand == nil {
		// memory-resolved address modes with no statically known target:
		// nothing to record, per spec.md §4.3.
		return
	}
	if d.ResolvedOperand != nil && d.FlowType.Kind == cpu65816.Sequential {
		f.recordDataAccess(src, *d.ResolvedOperand, d.Mnemonic)
	}
}

// interruptVectorTarget resolves BRK/COP to the cartridge's declared
// vector, per spec.md §4.6 step 3 ("Interrupt: treat like Call to the
// corresponding vector").
func (f *flowAnalyzer) interruptVectorTarget(mnemonic string) *uint32 {
	if f.ci == nil {
		return nil
	}
	var offset uint16
	switch mnemonic {
	case "BRK":
		offset = f.ci.BrkVector
	case "COP":
		offset = f.ci.CopVector
	default:
		return nil
	}
	target := mapper.CpuAddress{Bank: 0, Offset: offset}.Long()
	return &target
}

func (f *flowAnalyzer) addResolvedEdge(src uint32, target *uint32, kind EdgeKind) {
	if target == nil {
		return
	}
	if _, ok := f.am.LinearOffset(mapper.FromLong(*target)); !ok {
		if !f.unmappedTarget[*target] {
			f.unmappedTarget[*target] = true
			f.addDiagnostic(addrDiag(KindUnmappedTarget, *target, "branch/jump/call target is not backed by ROM"))
		}
		return
	}
	f.xrefs.Add(Edge{Source: src, Target: target, Kind: kind})
}

var storeMnemonics = map[string]bool{"STA": true, "STX": true, "STY": true, "STZ": true}

func (f *flowAnalyzer) recordDataAccess(src uint32, target uint32, mnemonic string) {
	kind := DataRead
	if storeMnemonics[mnemonic] {
		kind = DataWrite
	}
	f.xrefs.Add(Edge{Source: src, Target: &target, Kind: kind})
}

func (f *flowAnalyzer) enqueueSuccessors(d *cpu65816.DecodedInstruction) {
	fallthroughAddr := d.Address() + uint32(d.TotalBytes)
	// A target the mapper cannot back is recorded as UnmappedTarget by
	// recordEdges and is not enqueued.
	target := d.FlowType.Target
	if target != nil {
		if _, ok := f.am.LinearOffset(mapper.FromLong(*target)); !ok {
			target = nil
		}
	}
	switch d.FlowType.Kind {
	case cpu65816.Sequential:
		f.enqueue(fallthroughAddr, d.ModeAfter)
	case cpu65816.ConditionalBranch:
		if target != nil {
			f.enqueue(*target, d.ModeAfter)
		}
		f.enqueue(fallthroughAddr, d.ModeAfter)
	case cpu65816.Branch, cpu65816.Jump:
		if target != nil {
			f.enqueue(*target, d.ModeAfter)
		}
	case cpu65816.JumpIndirect:
		// unresolved; nothing more to enqueue.
	case cpu65816.Call, cpu65816.CallIndirect:
		if target != nil {
			f.enqueue(*target, d.ModeAfter)
		}
		f.enqueue(fallthroughAddr, d.ModeAfter)
	case cpu65816.Interrupt:
		if target := f.interruptVectorTarget(d.Mnemonic); target != nil {
			if _, ok := f.am.LinearOffset(mapper.FromLong(*target)); ok {
				f.enqueue(*target, cpu65816.ResetMode())
			}
		}
		f.enqueue(fallthroughAddr, d.ModeAfter)
	case cpu65816.Return, cpu65816.Halt:
		// no fall-through.
	}
}

// basicBlocks partitions the decoded instructions into maximal
// straight-line runs (spec.md §4.6 "Basic-block partitioning"): after the
// worklist drains, every instruction address that is a branch/jump/call
// target or the worklist's own entry point starts a new block; a block
// ends at the first flow-terminating instruction or immediately before
// another block's start.
func (f *flowAnalyzer) basicBlocks() map[uint32]*BasicBlock {
	starts := make(map[uint32]bool)
	for addr := range f.entrySet {
		starts[addr] = true
	}
	for addr := range f.callTargets {
		starts[addr] = true
	}
	for _, edges := range f.xrefs.from {
		for _, e := range edges {
			if e.Target != nil && (e.Kind == CodeBranch || e.Kind == CodeExecute || e.Kind == CodeCall) {
				starts[*e.Target] = true
			}
		}
	}

	ordered := sortedAddrs(f.instructions)
	blocks := make(map[uint32]*BasicBlock)
	var cur *BasicBlock
	for i, addr := range ordered {
		d := f.instructions[addr]
		if cur == nil || starts[addr] {
			cur = &BasicBlock{Entry: addr}
			blocks[addr] = cur
		}
		cur.Instructions = append(cur.Instructions, d)
		terminates := d.FlowType.Kind != cpu65816.Sequential
		nextIsContiguous := i+1 < len(ordered) && ordered[i+1] == addr+uint32(d.TotalBytes)
		if terminates || !nextIsContiguous {
			cur = nil
		}
	}
	return blocks
}

func sortedAddrs(m map[uint32]*cpu65816.DecodedInstruction) []uint32 {
	addrs := make([]uint32, 0, len(m))
	for a := range m {
		addrs = append(addrs, a)
	}
	// insertion sort is fine: N is the instruction count, and this keeps
	// the package free of an extra sort.Slice closure per call site for
	// what is otherwise a single call per analysis pass.
	for i := 1; i < len(addrs); i++ {
		for j := i; j > 0 && addrs[j-1] > addrs[j]; j-- {
			addrs[j-1], addrs[j] = addrs[j], addrs[j-1]
		}
	}
	return addrs
}

// functions applies the heuristics from spec.md §4.6 "Function detection"
// in order: vector/JSR-JSL targets and user entry points become function
// roots; every block reachable from a root by following only
// Sequential/Branch/ConditionalBranch edges (never a call) belongs to
// that function, stopping at another root.
func (f *flowAnalyzer) functions(blocks map[uint32]*BasicBlock) map[uint32]*Function {
	roots := make(map[uint32]bool)
	for addr := range f.entrySet {
		roots[addr] = true
	}
	for addr := range f.callTargets {
		roots[addr] = true
	}

	fns := make(map[uint32]*Function)
	for root := range roots {
		if _, ok := blocks[root]; !ok {
			continue
		}
		fn := &Function{Entry: root}
		visited := map[uint32]bool{}
		stack := []uint32{root}
		for len(stack) > 0 {
			addr := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[addr] {
				continue
			}
			if addr != root && roots[addr] {
				continue
			}
			visited[addr] = true
			b, ok := blocks[addr]
			if !ok {
				continue
			}
			fn.Blocks = append(fn.Blocks, addr)
			exit := b.Exit()
			switch exit.FlowType.Kind {
			case cpu65816.Return:
				fn.Exits = append(fn.Exits, exit.Address())
			case cpu65816.Sequential:
				stack = append(stack, exit.Address()+uint32(exit.TotalBytes))
			case cpu65816.ConditionalBranch:
				if exit.FlowType.Target != nil {
					stack = append(stack, *exit.FlowType.Target)
				}
				stack = append(stack, exit.Address()+uint32(exit.TotalBytes))
			case cpu65816.Branch, cpu65816.Jump:
				if exit.FlowType.Target != nil {
					stack = append(stack, *exit.FlowType.Target)
				}
			case cpu65816.Call, cpu65816.CallIndirect, cpu65816.Interrupt:
				if exit.FlowType.Target != nil {
					fn.Callees = append(fn.Callees, *exit.FlowType.Target)
				}
				stack = append(stack, exit.Address()+uint32(exit.TotalBytes))
			}
		}
		if len(fn.Blocks) > 0 {
			if b, ok := blocks[root]; ok {
				fn.ModeAtEntry = b.Instructions[0].ModeBefore
			}
			fns[root] = fn
		}
	}
	for addr, edges := range f.xrefs.to {
		for _, e := range edges {
			if e.Kind == CodeCall {
				if fn, ok := fns[addr]; ok {
					fn.Callers = append(fn.Callers, e.Source)
				}
			}
		}
	}
	return fns
}
