package cartridge

// headerSize is the number of bytes a header candidate occupies, enough to
// cover the title, map-mode byte, cartridge-type byte, ROM/SRAM size bytes,
// checksum pair, and the six interrupt vectors for both emulation and
// native mode.
const headerSize = 0x40

// candidate is a probed header location, one of the four fixed offsets
// spec.md §4.1 names.
type candidate struct {
	mapper Mapper
	offset int
}

var candidates = []candidate{
	{LoROM, 0x7FC0},
	{HiROM, 0xFFC0},
	{ExHiROM, 0x40FFC0},
	{ExLoROM, 0x407FC0},
}

// Field offsets relative to a candidate's header offset.
const (
	titleOffset       = 0x00
	titleLen          = 21
	mapModeOffset     = 0x15
	cartTypeOffset    = 0x16
	romSizeOffset     = 0x17
	sramSizeOffset    = 0x18
	checksumCompOff   = 0x1C
	checksumOff       = 0x1E
	nativeCopVecOff   = 0x24
	nativeBrkVecOff   = 0x26
	nativeAbortVecOff = 0x28
	nativeNmiVecOff   = 0x2A
	nativeResetVecOff = 0x2C // unused on 65816 (reset is always emulation-mode)
	nativeIrqVecOff   = 0x2E
	emuCopVecOff      = 0x34
	emuAbortVecOff    = 0x38
	emuNmiVecOff      = 0x3A
	emuResetVecOff    = 0x3C
	emuIrqBrkVecOff   = 0x3E
)

// mapModeLowNibble is the low nibble of the map-mode byte expected for each
// mapper, per spec.md §4.1.
var mapModeLowNibble = map[Mapper]byte{
	LoROM:   0x0,
	HiROM:   0x1,
	ExLoROM: 0x2,
	ExHiROM: 0x5,
}

// tieBreakOrder resolves equal-score ties: HiROM, LoROM, ExHiROM, ExLoROM.
var tieBreakOrder = map[Mapper]int{
	HiROM:   0,
	LoROM:   1,
	ExHiROM: 2,
	ExLoROM: 3,
}

// scoreResult is one candidate's scoring outcome, kept for diagnostics.
type scoreResult struct {
	candidate candidate
	score     int
	info      CartridgeInfo
}

// scoreCandidate applies the weighted-signal rubric from spec.md §4.1 to one
// header location and returns its score together with a provisionally
// parsed CartridgeInfo.
func scoreCandidate(rom *RomImage, c candidate) (scoreResult, bool) {
	header, ok := rom.Slice(c.offset, headerSize)
	if !ok {
		return scoreResult{}, false
	}

	score := 0

	mapMode := header[mapModeOffset]
	if mapMode&0x0F == mapModeLowNibble[c.mapper] {
		score += 8
	}

	checksum := uint16(header[checksumOff]) | uint16(header[checksumOff+1])<<8
	checksumComp := uint16(header[checksumCompOff]) | uint16(header[checksumCompOff+1])<<8
	if checksum^checksumComp == 0xFFFF {
		score += 4
	}

	title := header[titleOffset : titleOffset+titleLen]
	if allPrintableASCII(title) {
		score += 3
	}

	romSizeByte := header[romSizeOffset]
	declaredSize := romSizeFromByte(romSizeByte)
	if declaredSize >= nextPowerOfTwo(rom.Size()) {
		score += 2
	}

	speed := Slow
	if mapMode&0x10 != 0 {
		speed = Fast
	}

	cartType := header[cartTypeOffset]

	resetVector := uint16(header[emuResetVecOff]) | uint16(header[emuResetVecOff+1])<<8
	if linearOffsetForScoring(c.mapper, resetVector, rom.Size()) {
		score += 2
	}

	score -= runsOfFilledBytes(title)

	info := CartridgeInfo{
		Mapper:       c.mapper,
		Coprocessor:  classifyCoprocessor(cartType),
		RomSize:      declaredSize,
		SramSize:     sramSizeFromByte(header[sramSizeOffset]),
		Speed:        speed,
		Title:        string(title),
		ResetVector:  resetVector,
		NmiVector:    uint16(header[emuNmiVecOff]) | uint16(header[emuNmiVecOff+1])<<8,
		IrqVector:    uint16(header[emuIrqBrkVecOff]) | uint16(header[emuIrqBrkVecOff+1])<<8,
		CopVector:    uint16(header[emuCopVecOff]) | uint16(header[emuCopVecOff+1])<<8,
		BrkVector:    uint16(header[emuIrqBrkVecOff]) | uint16(header[emuIrqBrkVecOff+1])<<8,
		AbortVector:  uint16(header[emuAbortVecOff]) | uint16(header[emuAbortVecOff+1])<<8,
		Checksum:     checksum,
		ChecksumComp: checksumComp,
		HeaderOffset: c.offset,
		Score:        score,
	}
	return scoreResult{candidate: c, score: score, info: info}, true
}

// Classify scores every header candidate location and returns the
// highest-scoring one, ties broken per tieBreakOrder. If no candidate
// reaches minimumScore, a *ClassificationError is returned wrapping the
// best-effort candidate for diagnostics.
func Classify(rom *RomImage) (*CartridgeInfo, []Diagnostic, error) {
	var results []scoreResult
	for _, c := range candidates {
		r, ok := scoreCandidate(rom, c)
		if ok {
			results = append(results, r)
		}
	}
	if len(results) == 0 {
		return nil, nil, &ClassificationError{BestScore: 0}
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.score > best.score {
			best = r
			continue
		}
		if r.score == best.score && tieBreakOrder[r.candidate.mapper] < tieBreakOrder[best.candidate.mapper] {
			best = r
		}
	}

	var diags []Diagnostic
	if !best.info.ChecksumOK() {
		diags = append(diags, Diagnostic{Kind: "ChecksumMismatch", Message: "header checksum XOR complement != 0xFFFF"})
	}

	if best.score < minimumScore {
		bestCopy := best.info
		return nil, diags, &ClassificationError{BestEffort: &bestCopy, BestScore: best.score}
	}

	info := best.info
	return &info, diags, nil
}

func allPrintableASCII(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}

// runsOfFilledBytes counts -4 per run of >=4 consecutive 0x00 or 0xFF bytes
// in the title area, per spec.md §4.1.
func runsOfFilledBytes(title []byte) int {
	penalty := 0
	run := 0
	var runByte byte
	flush := func() {
		if run >= 4 {
			penalty += 4
		}
		run = 0
	}
	for _, c := range title {
		if c == 0x00 || c == 0xFF {
			if run > 0 && c == runByte {
				run++
			} else {
				flush()
				run = 1
				runByte = c
			}
		} else {
			flush()
		}
	}
	flush()
	return penalty
}

func romSizeFromByte(b byte) int {
	if b == 0 {
		return 0
	}
	return 1 << (10 + int(b)) // 0x400 << b, i.e. 2^b KiB
}

func sramSizeFromByte(b byte) int {
	if b == 0 {
		return 0
	}
	return 1 << (10 + int(b))
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 0
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// linearOffsetForScoring reports whether resetVector maps into a plausible
// ROM-backed region for mapper, used only as a scoring signal (it does not
// need to be exact — the real mapper package is the authority once a
// CartridgeInfo has been chosen).
func linearOffsetForScoring(m Mapper, addr uint16, romSize int) bool {
	if addr < 0x8000 {
		return false
	}
	switch m {
	case LoROM, ExLoROM:
		return true
	case HiROM, ExHiROM:
		return true
	default:
		return false
	}
}
