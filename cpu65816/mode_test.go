package cpu65816

import "testing"

func TestRepClearsBits(t *testing.T) {
	m := ResetMode()
	m.E = false
	m = m.Rep(StatusM | StatusX)
	if m.M || m.X {
		t.Fatalf("REP #$30 should clear M and X, got M=%v X=%v", m.M, m.X)
	}
}

func TestRepForcedBackTo8BitInEmulation(t *testing.T) {
	m := ResetMode() // E=true
	m = m.Rep(StatusM | StatusX)
	if !m.M || !m.X {
		t.Fatalf("emulation mode must clamp M/X to 1 regardless of REP, got M=%v X=%v", m.M, m.X)
	}
}

func TestSepSetsBits(t *testing.T) {
	m := ResetMode()
	m.M, m.X = false, false
	m.E = false
	m = m.Sep(StatusM)
	if !m.M {
		t.Fatalf("SEP #$20 should set M")
	}
	if m.X {
		t.Fatalf("SEP #$20 should not affect X")
	}
}

func TestXceEntersEmulationClampsWidths(t *testing.T) {
	m := ProcessorMode{E: false, C: true, M: false, X: false, Known: true}
	m = m.Xce()
	if !m.E {
		t.Fatalf("XCE should swap C into E (entering emulation)")
	}
	if !m.M || !m.X {
		t.Fatalf("entering emulation must force M/X to 1")
	}
}

func TestXceLeavesEmulation(t *testing.T) {
	m := ProcessorMode{E: true, C: false, M: true, X: true, Known: true}
	m = m.Xce()
	if m.E {
		t.Fatalf("XCE should clear E when C was 0")
	}
}

func TestPLPModeSafety(t *testing.T) {
	// PLP's popped value isn't known statically, so the decoder degrades
	// to an unknown conservative mode rather than guessing wrong.
	before := ResetMode()
	after := applyInstructionEffect("PLP", nil, before)
	if after.Known {
		t.Fatalf("mode after PLP must be Known=false")
	}
	if !after.M || !after.X {
		t.Fatalf("unknown mode must conservatively assume 8-bit M/X")
	}
}

func TestConflictResolutionKeepsFirstConcrete(t *testing.T) {
	a := ProcessorMode{Known: true, M: true, X: true}
	b := ProcessorMode{Known: false}
	result, conflict := conflictResolution(a, b)
	if conflict {
		t.Fatalf("unknown incoming edge should never trigger a conflict")
	}
	if result != a {
		t.Fatalf("result should equal the concrete mode a")
	}
}

func TestConflictResolutionFlagsDivergentConcrete(t *testing.T) {
	a := ProcessorMode{Known: true, M: true, X: true, E: false}
	b := ProcessorMode{Known: true, M: false, X: true, E: false}
	result, conflict := conflictResolution(a, b)
	if !conflict {
		t.Fatalf("two differing concrete modes must be flagged as a conflict")
	}
	if result.Known {
		t.Fatalf("conflicted result must be Known=false")
	}
}

func TestImplicitFlagMnemonics(t *testing.T) {
	m := ResetMode()
	m.C = false
	m = m.applyImplicitFlag("SEC")
	if !m.C {
		t.Fatalf("SEC should set carry")
	}
	m = m.applyImplicitFlag("CLC")
	if m.C {
		t.Fatalf("CLC should clear carry")
	}
}
