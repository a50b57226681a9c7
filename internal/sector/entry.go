package sector

import (
	"encoding/binary"
	"strconv"

	"golang.org/x/xerrors"
)

// EntryFlags is the 2-byte flags field of a directory entry header (EH).
//
//	bit 15:    empty (1 when slot never used)
//	bit 14:    active (1 for every live entry this builder writes)
//	bit 13:    type (0 = file, 1 = directory)
//	bit 12:    deleting
//	bit 11-9:  reserved, always 1
//	bit 8-0:   9-bit permission mode
//
// The builder never deletes or reactivates entries, so Active and
// Deleting are always left at their "normal" value of true for any entry
// it writes; see DESIGN.md for why this repo treats Active=true (not
// Active=false) as the steady state for a live entry, which is what
// spec.md §4.3's creation recipe produces.
type EntryFlags struct {
	Empty    bool
	Active   bool
	IsDir    bool
	Deleting bool
	Mode     Mode
}

const entryReservedBits = 0b111 << 9

// Pack encodes the flags field.
func (f EntryFlags) Pack() uint16 {
	var v uint16
	if f.Empty {
		v |= 1 << 15
	}
	if f.Active {
		v |= 1 << 14
	}
	if f.IsDir {
		v |= 1 << 13
	}
	if f.Deleting {
		v |= 1 << 12
	}
	v |= entryReservedBits
	v |= f.Mode.Uint16() & 0x1FF
	return v
}

// UnpackEntryFlags decodes a flags field.
func UnpackEntryFlags(v uint16) EntryFlags {
	return EntryFlags{
		Empty:    v&(1<<15) != 0,
		Active:   v&(1<<14) != 0,
		IsDir:    v&(1<<13) != 0,
		Deleting: v&(1<<12) != 0,
		Mode:     ModeFromUint16(v & 0x1FF),
	}
}

// Entry is a directory entry header (EH): 2 (flags) + 2 (first sector) +
// 4 (UTC seconds) + max_filename_len (ASCII name, zero-padded) bytes.
type Entry struct {
	Flags       EntryFlags
	FirstSector uint16 // UNSET == -1 == unused slot
	UTC         uint32 // seconds since epoch, UTC
	Name        string
}

// EntrySize returns the on-media size of an EH for the given
// max_filename_len.
func EntrySize(maxFilenameLen int) int {
	return 2 + 2 + 4 + maxFilenameLen
}

// Pack encodes the entry header, padding or validating Name against
// maxFilenameLen.
func (e Entry) Pack(maxFilenameLen int) ([]byte, error) {
	if len(e.Name) > maxFilenameLen {
		return nil, xerrors.Errorf("sector: name %q longer than max_filename_len %d: %w", e.Name, maxFilenameLen, ErrDecode)
	}
	buf := make([]byte, EntrySize(maxFilenameLen))
	binary.LittleEndian.PutUint16(buf[0:2], e.Flags.Pack())
	binary.LittleEndian.PutUint16(buf[2:4], e.FirstSector)
	binary.LittleEndian.PutUint32(buf[4:8], e.UTC)
	copy(buf[8:8+len(e.Name)], e.Name)
	return buf, nil
}

// UnpackEntry decodes an entry header. b must be exactly
// EntrySize(maxFilenameLen) bytes.
func UnpackEntry(b []byte, maxFilenameLen int) (Entry, error) {
	want := EntrySize(maxFilenameLen)
	if len(b) != want {
		return Entry{}, xerrors.Errorf("sector: entry header must be %d bytes, got %d: %w", want, len(b), ErrDecode)
	}
	name := ""
	if b[8] != 0xFF {
		end := 8
		for end < len(b) && b[end] != 0 {
			end++
		}
		name = string(b[8:end])
	}
	return Entry{
		Flags:       UnpackEntryFlags(binary.LittleEndian.Uint16(b[0:2])),
		FirstSector: binary.LittleEndian.Uint16(b[2:4]),
		UTC:         binary.LittleEndian.Uint32(b[4:8]),
		Name:        name,
	}, nil
}

func (f EntryFlags) String() string {
	return "EntryFlags(empty=" + boolStr(f.Empty) +
		", active=" + boolStr(f.Active) +
		", is_dir=" + boolStr(f.IsDir) +
		", deleting=" + boolStr(f.Deleting) +
		", mode=" + f.Mode.String() + ")"
}

func (e Entry) String() string {
	return "Entry(flags=" + e.Flags.String() +
		", first_sector=" + strconv.Itoa(int(e.FirstSector)) +
		", utc=" + strconv.Itoa(int(e.UTC)) +
		", name=" + strconv.Quote(e.Name) + ")"
}
