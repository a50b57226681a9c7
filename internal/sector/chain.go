package sector

import (
	"encoding/binary"
	"strconv"

	"golang.org/x/xerrors"
)

// ChainSize is the on-media size of a chain header (CH), in bytes.
const ChainSize = 5

// SectorType is the CH.Type field: what kind of content the sector holds.
type SectorType uint8

const (
	TypeDirectory SectorType = 1
	TypeFile      SectorType = 2
)

// Chain is the 5-byte chain header (CH) present at the start of every
// directory or file sector's data region.
type Chain struct {
	Type SectorType
	Next uint16 // UNSET for end-of-chain
	Used uint16 // UNSET ("sentinel/empty") in an unwritten sector
}

// Pack encodes the chain header.
func (c Chain) Pack() []byte {
	buf := make([]byte, ChainSize)
	buf[0] = byte(c.Type)
	binary.LittleEndian.PutUint16(buf[1:3], c.Next)
	binary.LittleEndian.PutUint16(buf[3:5], c.Used)
	return buf
}

// UnpackChain decodes a chain header from exactly ChainSize bytes.
func UnpackChain(b []byte) (Chain, error) {
	if len(b) != ChainSize {
		return Chain{}, xerrors.Errorf("sector: chain header must be %d bytes, got %d: %w", ChainSize, len(b), ErrDecode)
	}
	typ := SectorType(b[0])
	if typ != TypeDirectory && typ != TypeFile {
		return Chain{}, xerrors.Errorf("sector: unknown chain sector type %d: %w", typ, ErrDecode)
	}
	return Chain{
		Type: typ,
		Next: binary.LittleEndian.Uint16(b[1:3]),
		Used: binary.LittleEndian.Uint16(b[3:5]),
	}, nil
}

// NextLogical returns the next logical sector in the chain, or false at
// end-of-chain.
func (c Chain) NextLogical() (uint16, bool) {
	if c.Next == UNSET {
		return 0, false
	}
	return c.Next, true
}

func (c Chain) String() string {
	typ := "file"
	if c.Type == TypeDirectory {
		typ = "directory"
	}
	return "Chain(type=" + typ +
		", next=" + strconv.Itoa(int(c.Next)) +
		", used=" + strconv.Itoa(int(c.Used)) + ")"
}
