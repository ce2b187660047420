package cartridge

// CopierHeaderSize is the size of an SMC/SFC copier header, detected when
// the raw file size modulo 1024 equals 512.
const CopierHeaderSize = 512

// RomImage owns the raw ROM bytes after any copier header has been
// stripped, and exposes random-access reads by linear offset. It is the
// byte source (C1): immutable once constructed.
type RomImage struct {
	data           []byte
	hadCopierHeader bool
}

// NewRomImage strips a copier header if present and returns the resulting
// image. N (len(data) after stripping) is always a whole number of 32 KiB
// banks for a well-formed SNES ROM, but RomImage does not enforce that —
// callers that care should check Size()%0x8000 == 0 themselves.
func NewRomImage(raw []byte) *RomImage {
	if len(raw)%1024 == CopierHeaderSize {
		return &RomImage{data: raw[CopierHeaderSize:], hadCopierHeader: true}
	}
	return &RomImage{data: raw}
}

// HadCopierHeader reports whether a 512-byte copier header was detected and
// stripped.
func (r *RomImage) HadCopierHeader() bool {
	return r.hadCopierHeader
}

// Size returns the number of bytes in the stripped image.
func (r *RomImage) Size() int {
	return len(r.data)
}

// ByteAt returns the byte at linear offset off, and whether off is in
// range.
func (r *RomImage) ByteAt(off int) (byte, bool) {
	if off < 0 || off >= len(r.data) {
		return 0, false
	}
	return r.data[off], true
}

// Slice returns a read-only view of [off, off+n). The second return value
// is false if the range falls outside the image.
func (r *RomImage) Slice(off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off+n > len(r.data) {
		return nil, false
	}
	return r.data[off : off+n], true
}

// Uint16At reads a little-endian 16-bit value at off.
func (r *RomImage) Uint16At(off int) (uint16, bool) {
	b, ok := r.Slice(off, 2)
	if !ok {
		return 0, false
	}
	return uint16(b[0]) | uint16(b[1])<<8, true
}

// Bytes exposes the full stripped buffer for content hashing (see
// disasm.Cache) and batch scanning. Callers must not mutate the result.
func (r *RomImage) Bytes() []byte {
	return r.data
}
