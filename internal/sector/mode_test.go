package sector

import "testing"

func TestPBitsInt(t *testing.T) {
	cases := []struct {
		p    PBits
		want uint8
	}{
		{PBits{R: true}, 0x04},
		{PBits{W: true}, 0x02},
		{PBits{X: true}, 0x01},
		{PBits{R: true, W: true, X: true}, 0x07},
	}
	for _, c := range cases {
		if got := c.p.Int(); got != c.want {
			t.Errorf("%+v.Int() = %#x, want %#x", c.p, got, c.want)
		}
	}
}

func TestModeOctalRoundTrip(t *testing.T) {
	for _, s := range []string{"000", "777", "644", "755", "123", "406"} {
		m, err := ModeFromOctalString(s)
		if err != nil {
			t.Fatalf("ModeFromOctalString(%q): %v", s, err)
		}
		got := ModeFromUint16(m.Uint16())
		if got != m {
			t.Fatalf("round trip of %q = %+v, want %+v", s, got, m)
		}
	}
}

func TestModeOctalRejectsBadInput(t *testing.T) {
	for _, s := range []string{"", "77", "7777", "abc", "789"} {
		if _, err := ModeFromOctalString(s); err == nil {
			t.Errorf("ModeFromOctalString(%q) should fail", s)
		}
	}
}

func TestModeUnixBitsMatchPosix(t *testing.T) {
	m, err := ModeFromOctalString("755")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := m.Uint16(), uint16(0o755); got != want {
		t.Fatalf("Uint16() = %#o, want %#o", got, want)
	}
}
