package disasm

// EdgeKind classifies a CrossReference edge (spec.md §3).
type EdgeKind int

const (
	CodeRead EdgeKind = iota
	CodeWrite
	CodeExecute
	CodeCall
	CodeBranch
	DataRead
	DataWrite
)

func (k EdgeKind) String() string {
	switch k {
	case CodeRead:
		return "CodeRead"
	case CodeWrite:
		return "CodeWrite"
	case CodeExecute:
		return "CodeExecute"
	case CodeCall:
		return "CodeCall"
	case CodeBranch:
		return "CodeBranch"
	case DataRead:
		return "DataRead"
	case DataWrite:
		return "DataWrite"
	default:
		return "Unknown"
	}
}

// Edge is a directed source → target relation, with target nil when it
// could not be statically resolved (e.g. an indirect jump/call).
type Edge struct {
	Source uint32
	Target *uint32
	Kind   EdgeKind
}

// XrefIndex holds the two append-only maps spec.md §4.7 describes:
// xrefsFrom and xrefsTo.
type XrefIndex struct {
	from map[uint32][]Edge
	to   map[uint32][]Edge
}

func newXrefIndex() *XrefIndex {
	return &XrefIndex{from: make(map[uint32][]Edge), to: make(map[uint32][]Edge)}
}

// Add records an edge in both directions. An edge with a nil Target is
// still recorded under From so the unresolved-indirect count is visible.
func (x *XrefIndex) Add(e Edge) {
	x.from[e.Source] = append(x.from[e.Source], e)
	if e.Target != nil {
		x.to[*e.Target] = append(x.to[*e.Target], e)
	}
}

// From returns every edge originating at addr, in discovery order.
func (x *XrefIndex) From(addr uint32) []Edge {
	return x.from[addr]
}

// To returns every edge targeting addr, in discovery order.
func (x *XrefIndex) To(addr uint32) []Edge {
	return x.to[addr]
}
