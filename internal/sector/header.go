package sector

import (
	"encoding/binary"
	"strconv"

	"golang.org/x/xerrors"
)

// HeaderSize is the on-media size of a v1 sector header (SH), in bytes.
const HeaderSize = 5

// UNSET is the sentinel value for "no sector"/"unused" in the unsigned
// 16-bit logical-sector slots used throughout the codec (CH.Next, CH.Used,
// EH.FirstSector). The same bit pattern, read as a signed 16-bit integer,
// is also "-1" in EH.FirstSector; compare against UNSET rather than
// relying on the sign.
const UNSET = 0xFFFF

// Header is the 5-byte v1 sector header (SH).
type Header struct {
	LogicalSector uint16
	Sequence      uint16 // low 16 bits of the sequence counter; only the low 8 are stored when CRC is enabled
	CRC           byte   // valid only when Status.CRCEnable is true
	Status        Status
}

// Pack encodes the header. When the status byte marks CRC as disabled,
// byte 3 holds the sequence number's high 8 bits; when CRC is enabled,
// byte 3 holds the CRC byte instead and the sequence number's high bits
// are not stored on media (this mirrors the reference SmartFS layout,
// which only ever runs with single-byte sequence numbers under CRC).
func (h Header) Pack() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(buf[0:2], h.LogicalSector)
	buf[2] = byte(h.Sequence & 0xFF)
	if h.Status.CRCEnable {
		buf[3] = h.CRC
	} else {
		buf[3] = byte((h.Sequence >> 8) & 0xFF)
	}
	buf[4] = h.Status.Pack()
	return buf
}

// UnpackHeader decodes a v1 sector header from exactly HeaderSize bytes.
func UnpackHeader(b []byte) (Header, error) {
	if len(b) != HeaderSize {
		return Header{}, xerrors.Errorf("sector: header must be %d bytes, got %d: %w", HeaderSize, len(b), ErrDecode)
	}
	status := UnpackStatus(b[4])
	if status.Version != Version1 {
		return Header{}, xerrors.Errorf("sector: unsupported header version %d: %w", status.Version, ErrDecode)
	}
	h := Header{
		LogicalSector: binary.LittleEndian.Uint16(b[0:2]),
		Status:        status,
	}
	if status.CRCEnable {
		h.CRC = b[3]
		h.Sequence = uint16(b[2])
	} else {
		h.Sequence = uint16(b[2]) | uint16(b[3])<<8
	}
	return h, nil
}

func (h Header) String() string {
	return "Header(logical_sector=" + strconv.Itoa(int(h.LogicalSector)) +
		", sequence=" + strconv.Itoa(int(h.Sequence)) +
		", crc=" + strconv.Itoa(int(h.CRC)) +
		", status=" + h.Status.String() + ")"
}

// crc8CCITT computes CRC-8/CCITT (polynomial 0x07, init 0x00, no
// reflection, no xor-out) over data.
func crc8CCITT(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
