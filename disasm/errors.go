package disasm

import "fmt"

// Diagnostic is a recoverable condition recorded on AnalysisResult rather
// than returned as an error, per spec.md §7's propagation policy: only
// CartridgeClassificationFailed and malformed input abort the pass.
type Diagnostic struct {
	Kind    string
	Address *uint32
	Message string
}

// Diagnostic kinds, matching the taxonomy in spec.md §7.
const (
	KindCopierHeaderAmbiguous = "CopierHeaderAmbiguous"
	KindChecksumMismatch      = "ChecksumMismatch"
	KindUnmappedAddress       = "UnmappedAddress"
	KindDecodeError           = "DecodeError"
	KindUnknownOpcode         = "UnknownOpcode"
	KindModeConflict          = "ModeConflict"
	KindCodeOverlap           = "CodeOverlap"
	KindSymbolConflict        = "SymbolConflict"
	KindCacheRecursion        = "CacheRecursion"
	KindInstructionLimit      = "InstructionLimitExceeded"
	KindUnmappedTarget        = "UnmappedTarget"
)

func addrDiag(kind string, addr uint32, format string, args ...any) Diagnostic {
	a := addr
	return Diagnostic{Kind: kind, Address: &a, Message: fmt.Sprintf(format, args...)}
}

// AnalysisError is the single hard-error type Analyze returns; every other
// recoverable condition becomes a Diagnostic instead.
type AnalysisError struct {
	Kind string
	Err  error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("disasm: %s: %v", e.Kind, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}
