package sector

import (
	"strconv"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

// PBits is one rwx triplet (owner, group, or other).
type PBits struct {
	R, W, X bool
}

// Int returns the 3-bit value of this triplet (r=4, w=2, x=1).
func (p PBits) Int() uint8 {
	var v uint8
	if p.R {
		v |= 4
	}
	if p.W {
		v |= 2
	}
	if p.X {
		v |= 1
	}
	return v
}

// PBitsFromInt decodes a 3-bit rwx triplet. Bits outside 0-7 are an error.
func PBitsFromInt(v uint8) (PBits, error) {
	if v > 7 {
		return PBits{}, xerrors.Errorf("sector: invalid permission triplet %#o: %w", v, ErrDecode)
	}
	return PBits{R: v&4 != 0, W: v&2 != 0, X: v&1 != 0}, nil
}

// Mode is the 9-bit POSIX-style permission mode stored in an EH's flags:
// owner rwx, group rwx, other rwx, matching the low 9 bits of a standard
// Unix mode (and, bit for bit, golang.org/x/sys/unix's S_IRUSR..S_IXOTH
// constants).
type Mode struct {
	Owner, Group, Other PBits
}

// Uint16 packs the mode into its 9-bit representation.
func (m Mode) Uint16() uint16 {
	var v uint16
	if m.Owner.R {
		v |= unix.S_IRUSR
	}
	if m.Owner.W {
		v |= unix.S_IWUSR
	}
	if m.Owner.X {
		v |= unix.S_IXUSR
	}
	if m.Group.R {
		v |= unix.S_IRGRP
	}
	if m.Group.W {
		v |= unix.S_IWGRP
	}
	if m.Group.X {
		v |= unix.S_IXGRP
	}
	if m.Other.R {
		v |= unix.S_IROTH
	}
	if m.Other.W {
		v |= unix.S_IWOTH
	}
	if m.Other.X {
		v |= unix.S_IXOTH
	}
	return v
}

// ModeFromUint16 decodes a 9-bit permission mode. Bits above bit 8 are
// ignored by the caller (the flags field reserves them separately).
func ModeFromUint16(v uint16) Mode {
	return Mode{
		Owner: PBits{R: v&unix.S_IRUSR != 0, W: v&unix.S_IWUSR != 0, X: v&unix.S_IXUSR != 0},
		Group: PBits{R: v&unix.S_IRGRP != 0, W: v&unix.S_IWGRP != 0, X: v&unix.S_IXGRP != 0},
		Other: PBits{R: v&unix.S_IROTH != 0, W: v&unix.S_IWOTH != 0, X: v&unix.S_IXOTH != 0},
	}
}

// ModeFromOctalString parses a three-octal-digit mode string such as
// "755", each digit 0-7, as required by spec.md §6.2.
func ModeFromOctalString(s string) (Mode, error) {
	if len(s) != 3 {
		return Mode{}, xerrors.Errorf("sector: mode %q must be exactly three octal digits: %w", s, ErrDecode)
	}
	digits := make([]uint8, 3)
	for i := 0; i < 3; i++ {
		c := s[i]
		if c < '0' || c > '7' {
			return Mode{}, xerrors.Errorf("sector: mode %q must be exactly three octal digits: %w", s, ErrDecode)
		}
		digits[i] = c - '0'
	}
	owner, err := PBitsFromInt(digits[0])
	if err != nil {
		return Mode{}, err
	}
	group, err := PBitsFromInt(digits[1])
	if err != nil {
		return Mode{}, err
	}
	other, err := PBitsFromInt(digits[2])
	if err != nil {
		return Mode{}, err
	}
	return Mode{Owner: owner, Group: group, Other: other}, nil
}

func (m Mode) String() string {
	s := strconv.FormatUint(uint64(m.Owner.Int()), 8) +
		strconv.FormatUint(uint64(m.Group.Int()), 8) +
		strconv.FormatUint(uint64(m.Other.Int()), 8)
	return "Mode(" + s + ")"
}
