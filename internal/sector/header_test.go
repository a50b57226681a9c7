package sector

import (
	"bytes"
	"testing"
)

func TestHeaderBitExact(t *testing.T) {
	h := Header{
		LogicalSector: 0x0010,
		Sequence:      0x0A23,
		Status: Status{
			Committed:  true,
			Released:   false,
			CRCEnable:  false,
			SectorSize: Size512,
			Version:    Version1,
		},
	}
	want := []byte{0x10, 0x00, 0x23, 0x0A, 0x45}
	if got := h.Pack(); !bytes.Equal(got, want) {
		t.Fatalf("Pack() = % x, want % x", got, want)
	}
}

func TestHeaderRoundTripNoCRC(t *testing.T) {
	h := Header{
		LogicalSector: 0x1234,
		Sequence:      0x5678,
		Status: Status{
			Committed:  false,
			Released:   true,
			CRCEnable:  false,
			SectorSize: Size1024,
			Version:    Version1,
		},
	}
	got, err := UnpackHeader(h.Pack())
	if err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	if got != h {
		t.Fatalf("round trip = %+v, want %+v", got, h)
	}
}

func TestHeaderRoundTripCRC(t *testing.T) {
	h := Header{
		LogicalSector: 0x0042,
		Sequence:      0x00AB,
		CRC:           0x7F,
		Status: Status{
			Committed:  true,
			Released:   false,
			CRCEnable:  true,
			SectorSize: Size4096,
			Version:    Version1,
		},
	}
	packed := h.Pack()
	got, err := UnpackHeader(packed)
	if err != nil {
		t.Fatalf("UnpackHeader: %v", err)
	}
	if got.LogicalSector != h.LogicalSector {
		t.Errorf("LogicalSector = %#x, want %#x", got.LogicalSector, h.LogicalSector)
	}
	if got.Sequence != h.Sequence&0xFF {
		t.Errorf("Sequence = %#x, want %#x", got.Sequence, h.Sequence&0xFF)
	}
	if !got.Status.CRCEnable {
		t.Error("expected CRC-enabled mode to round trip")
	}
	if got.CRC != h.CRC {
		t.Errorf("CRC = %#x, want %#x", got.CRC, h.CRC)
	}
}

func TestHeaderWrongLength(t *testing.T) {
	if _, err := UnpackHeader([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short header")
	}
}
