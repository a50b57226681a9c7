package sector

import "golang.org/x/xerrors"

// Sector binds a mutable byte slice of exactly sector_size bytes to its
// parsed header. Every mutation goes through WriteBytes so that the CRC
// (when enabled) and the on-media header stay consistent with the data
// region.
type Sector struct {
	buf    []byte
	header Header
}

// New creates a sector: the data region is filled with 0xFF, the header
// is written, and the CRC (if enabled) is computed over the freshly
// filled sector.
func New(buf []byte, header Header) (*Sector, error) {
	if len(buf) <= HeaderSize {
		return nil, xerrors.Errorf("sector: buffer of %d bytes too small for a header: %w", len(buf), ErrDecode)
	}
	s := &Sector{buf: buf, header: header}
	for i := HeaderSize; i < len(buf); i++ {
		buf[i] = 0xFF
	}
	s.recompute()
	return s, nil
}

// Attach parses an existing sector's header from its first HeaderSize
// bytes, leaving the data region untouched.
func Attach(buf []byte) (*Sector, error) {
	if len(buf) <= HeaderSize {
		return nil, xerrors.Errorf("sector: buffer of %d bytes too small for a header: %w", len(buf), ErrDecode)
	}
	h, err := UnpackHeader(buf[:HeaderSize])
	if err != nil {
		return nil, xerrors.Errorf("sector.Attach: %w", err)
	}
	return &Sector{buf: buf, header: h}, nil
}

// Header returns the sector's current header.
func (s *Sector) Header() Header { return s.header }

// UsableSize is the number of bytes available in the data region, i.e.
// sector_size - HeaderSize.
func (s *Sector) UsableSize() int { return len(s.buf) - HeaderSize }

// Fits reports whether [offset, offset+size) lies within the data
// region.
func (s *Sector) Fits(offset, size int) bool {
	if offset < 0 || size < 0 {
		return false
	}
	return offset+size <= s.UsableSize()
}

// WriteBytes writes data at offset (measured from the end of the
// header), recomputing the CRC and rewriting the header in place.
func (s *Sector) WriteBytes(offset int, data []byte) error {
	if !s.Fits(offset, len(data)) {
		return xerrors.Errorf("sector: write of %d bytes at offset %d does not fit in a %d-byte data region: %w", len(data), offset, s.UsableSize(), ErrDecode)
	}
	copy(s.buf[HeaderSize+offset:], data)
	s.recompute()
	return nil
}

// ReadChain decodes the chain header located at offset.
func (s *Sector) ReadChain(offset int) (Chain, error) {
	if !s.Fits(offset, ChainSize) {
		return Chain{}, xerrors.Errorf("sector: chain header at offset %d does not fit: %w", offset, ErrDecode)
	}
	start := HeaderSize + offset
	return UnpackChain(s.buf[start : start+ChainSize])
}

// ReadEntry decodes the directory entry header located at offset.
func (s *Sector) ReadEntry(offset, maxFilenameLen int) (Entry, error) {
	size := EntrySize(maxFilenameLen)
	if !s.Fits(offset, size) {
		return Entry{}, xerrors.Errorf("sector: entry header at offset %d does not fit: %w", offset, ErrDecode)
	}
	start := HeaderSize + offset
	return UnpackEntry(s.buf[start:start+size], maxFilenameLen)
}

// NextInChain decodes the chain header at the start of the data region
// and returns the next logical sector, or false at end-of-chain.
func (s *Sector) NextInChain() (uint16, bool, error) {
	ch, err := s.ReadChain(0)
	if err != nil {
		return 0, false, err
	}
	next, ok := ch.NextLogical()
	return next, ok, nil
}

// Bytes returns the full backing slice for this sector (header + data).
func (s *Sector) Bytes() []byte { return s.buf }

// recompute rewrites the header into the sector's first HeaderSize
// bytes, recomputing the CRC over (data region, SH bytes 0-2, status
// byte) first when CRC is enabled.
func (s *Sector) recompute() {
	if s.header.Status.CRCEnable {
		headPack := s.header.Pack()
		stream := make([]byte, 0, len(s.buf)-HeaderSize+4)
		stream = append(stream, s.buf[HeaderSize:]...)
		stream = append(stream, headPack[:3]...)
		stream = append(stream, s.header.Status.Pack())
		s.header.CRC = crc8CCITT(stream)
	}
	copy(s.buf[:HeaderSize], s.header.Pack())
}
