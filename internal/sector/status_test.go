package sector

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStatusRoundTrip(t *testing.T) {
	for _, committed := range []bool{true, false} {
		for _, released := range []bool{true, false} {
			for _, crc := range []bool{true, false} {
				for size := Size256; size <= Size32768; size++ {
					for _, version := range []Version{0, 1, 2, 3} {
						want := Status{
							Committed:  committed,
							Released:   released,
							CRCEnable:  crc,
							SectorSize: size,
							Version:    version,
						}
						got := UnpackStatus(want.Pack())
						if diff := cmp.Diff(want, got); diff != "" {
							t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
						}
					}
				}
			}
		}
	}
}

func TestStatusBitExact(t *testing.T) {
	s := Status{
		Committed:  true,
		Released:   false,
		CRCEnable:  false,
		SectorSize: Size512,
		Version:    Version1,
	}
	if got, want := s.Pack(), byte(0x45); got != want {
		t.Fatalf("Pack() = %#02x, want %#02x", got, want)
	}
}

func TestSizeCodeBytes(t *testing.T) {
	cases := map[SizeCode]int{
		Size256: 256, Size512: 512, Size1024: 1024, Size2048: 2048,
		Size4096: 4096, Size8192: 8192, Size16384: 16384, Size32768: 32768,
	}
	for code, want := range cases {
		if got := code.Bytes(); got != want {
			t.Errorf("SizeCode(%d).Bytes() = %d, want %d", code, got, want)
		}
		back, err := SizeCodeFromBytes(want)
		if err != nil {
			t.Errorf("SizeCodeFromBytes(%d): %v", want, err)
		}
		if back != code {
			t.Errorf("SizeCodeFromBytes(%d) = %d, want %d", want, back, code)
		}
	}
	if _, err := SizeCodeFromBytes(100); err == nil {
		t.Error("SizeCodeFromBytes(100) should fail")
	}
}
