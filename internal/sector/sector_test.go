package sector

import "testing"

func newTestSector(t *testing.T, sectorSize int, crc bool) *Sector {
	t.Helper()
	sizeCode, err := SizeCodeFromBytes(sectorSize)
	if err != nil {
		t.Fatalf("SizeCodeFromBytes: %v", err)
	}
	buf := make([]byte, sectorSize)
	h := Header{
		LogicalSector: 5,
		Status: Status{
			Committed:  true,
			CRCEnable:  crc,
			SectorSize: sizeCode,
			Version:    Version1,
		},
	}
	s, err := New(buf, h)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSectorNewFillsData(t *testing.T) {
	s := newTestSector(t, 512, false)
	for i, b := range s.Bytes()[HeaderSize:] {
		if b != 0xFF {
			t.Fatalf("byte %d = %#x, want 0xFF", i, b)
		}
	}
}

func TestSectorWriteAndReadChain(t *testing.T) {
	s := newTestSector(t, 512, false)
	ch := Chain{Type: TypeDirectory, Next: UNSET, Used: UNSET}
	if err := s.WriteBytes(0, ch.Pack()); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	got, err := s.ReadChain(0)
	if err != nil {
		t.Fatalf("ReadChain: %v", err)
	}
	if got != ch {
		t.Fatalf("ReadChain() = %+v, want %+v", got, ch)
	}
}

func TestSectorCRCRecomputedOnWrite(t *testing.T) {
	s := newTestSector(t, 512, true)
	before := s.Header().CRC
	if err := s.WriteBytes(0, []byte{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	after := s.Header().CRC
	if before == after {
		t.Error("expected CRC to change after a data write")
	}

	attached, err := Attach(s.Bytes())
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if attached.Header().CRC != after {
		t.Errorf("Attach() CRC = %#x, want %#x", attached.Header().CRC, after)
	}
}

func TestSectorFitsRejectsOverflow(t *testing.T) {
	s := newTestSector(t, 256, false)
	if s.Fits(s.UsableSize()-1, 2) {
		t.Error("expected Fits to reject a write that runs past the data region")
	}
	if err := s.WriteBytes(s.UsableSize()-1, []byte{1, 2}); err == nil {
		t.Error("expected WriteBytes to reject an overflowing write")
	}
}

func TestSectorAttachRejectsBadVersion(t *testing.T) {
	buf := make([]byte, 512)
	h := Header{Status: Status{SectorSize: Size512, Version: 2}}
	copy(buf[:HeaderSize], h.Pack())
	if _, err := Attach(buf); err == nil {
		t.Fatal("expected Attach to reject an unsupported version")
	}
}
