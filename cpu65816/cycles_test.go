package cpu65816

import "testing"

func TestEstimateCyclesWidenedImmediate(t *testing.T) {
	r := newRomReader()
	r.put(0x00, 0x8000, 0xA9, 0x42, 0x00) // LDA #imm
	mode16 := ResetMode()
	mode16.M = false
	d, err := Decode(r, 0x00, 0x8000, mode16)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	base := Lookup(0xA9).BaseCycles
	got := EstimateCycles(d, CycleInput{Speed: SlowROM})
	if got != base+1 {
		t.Fatalf("cycles = %d, want %d (base+1 for 16-bit operand)", got, base+1)
	}
}

func TestEstimateCyclesBranchTakenAddsCycle(t *testing.T) {
	r := newRomReader()
	r.put(0x00, 0x8000, 0xD0, 0x05)
	d, err := Decode(r, 0x00, 0x8000, ResetMode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	notTaken := EstimateCycles(d, CycleInput{Speed: SlowROM})
	taken := EstimateCycles(d, CycleInput{Speed: SlowROM, BranchTaken: true})
	if taken != notTaken+1 {
		t.Fatalf("taken=%d, notTaken=%d; want taken == notTaken+1", taken, notTaken)
	}
}

func TestEstimateCyclesFastROMCheaper(t *testing.T) {
	r := newRomReader()
	r.put(0x00, 0x8000, 0xEA) // NOP
	d, err := Decode(r, 0x00, 0x8000, ResetMode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	slow := EstimateCycles(d, CycleInput{Speed: SlowROM})
	fast := EstimateCycles(d, CycleInput{Speed: FastROM})
	if fast >= slow {
		t.Fatalf("FastROM cycles (%d) should be cheaper than SlowROM (%d)", fast, slow)
	}
}
