// Package fsimage implements the SmartFS directory and file layer on top
// of the MTD block layer (package mtd) and the sector codec (package
// sector): resolving paths to directory entries, creating directories and
// files, and writing file content across a chain of sectors.
package fsimage

import (
	"path"
	"strings"

	"github.com/shizacat/smartfs-tools/internal/clock"
	"github.com/shizacat/smartfs-tools/internal/mtd"
	"github.com/shizacat/smartfs-tools/internal/sector"
	"golang.org/x/xerrors"
)

// DirEntry identifies a resolved directory (or the root) by the location
// of its own entry header, plus the first sector of its content chain.
type DirEntry struct {
	FirstSector uint16 // first sector of this directory's content chain
	DirSector   uint16 // logical sector holding this entry's EH (zero for root)
	DirOffset   int    // offset of this entry's EH within DirSector
	Name        string
	IsRoot      bool
}

// Builder walks and mutates a single SmartFS image via an *mtd.MTD.
type Builder struct {
	m     *mtd.MTD
	clock clock.Clock
}

// New wraps m with a directory/file layer. clk supplies the timestamp
// stamped into every entry header it creates.
func New(m *mtd.MTD, clk clock.Clock) *Builder {
	return &Builder{m: m, clock: clk}
}

// Root returns the DirEntry for "/".
func (b *Builder) Root() DirEntry {
	return DirEntry{FirstSector: mtd.FirstRootDirSector, IsRoot: true, Name: "/"}
}

// FindDirEntry resolves an absolute, slash-separated path to the
// directory or file entry it names, walking each path component's
// sector chain for a matching name.
func (b *Builder) FindDirEntry(pathAbs string) (DirEntry, error) {
	if !strings.HasPrefix(pathAbs, "/") {
		return DirEntry{}, xerrors.Errorf("fsimage: path %q is not absolute: %w", pathAbs, ErrDomain)
	}
	current := b.Root()
	if pathAbs == "/" {
		return current, nil
	}
	for _, c := range strings.Split(strings.Trim(pathAbs, "/"), "/") {
		next, err := b.findChild(current, c)
		if err != nil {
			return DirEntry{}, xerrors.Errorf("fsimage: resolving %q: %w", pathAbs, err)
		}
		current = next
	}
	return current, nil
}

// findChild scans parent's sector chain for an entry named name.
func (b *Builder) findChild(parent DirEntry, name string) (DirEntry, error) {
	entrySize := sector.EntrySize(b.m.MaxFilenameLen)
	logical := parent.FirstSector
	for {
		sec, err := b.m.SectorByLogical(logical)
		if err != nil {
			return DirEntry{}, xerrors.Errorf("fsimage: %w", err)
		}
		offset := sector.ChainSize
		found := false
		var result DirEntry
		for sec.Fits(offset, entrySize) {
			eh, err := sec.ReadEntry(offset, b.m.MaxFilenameLen)
			if err != nil {
				return DirEntry{}, xerrors.Errorf("fsimage: %w", err)
			}
			if eh.FirstSector == sector.UNSET {
				break
			}
			if eh.Name == name {
				result = DirEntry{
					FirstSector: eh.FirstSector,
					DirSector:   logical,
					DirOffset:   offset,
					Name:        name,
				}
				found = true
				break
			}
			offset += entrySize
		}
		if found {
			return result, nil
		}
		ch, err := sec.ReadChain(0)
		if err != nil {
			return DirEntry{}, xerrors.Errorf("fsimage: %w", err)
		}
		next, ok := ch.NextLogical()
		if !ok {
			return DirEntry{}, xerrors.Errorf("fsimage: %q not found: %w", name, ErrDomain)
		}
		logical = next
	}
}

// CreateEntry adds a new entry named name inside parent, allocating a
// fresh content sector for it and, if parent's directory chain has no
// empty slot left, a fresh directory sector too. mode supplies the
// 9-bit permission bits; isDir selects the entry type.
func (b *Builder) CreateEntry(parent DirEntry, name string, isDir bool, mode sector.Mode) (sector.Entry, error) {
	if len(name) > b.m.MaxFilenameLen {
		return sector.Entry{}, xerrors.Errorf("fsimage: name %q longer than max_filename_len %d: %w", name, b.m.MaxFilenameLen, ErrDomain)
	}

	entrySize := sector.EntrySize(b.m.MaxFilenameLen)
	logical := parent.FirstSector
	sec, err := b.m.SectorByLogical(logical)
	if err != nil {
		return sector.Entry{}, xerrors.Errorf("fsimage: %w", err)
	}
	offset := sector.ChainSize

	for {
		if !sec.Fits(offset, entrySize) {
			ch, err := sec.ReadChain(0)
			if err != nil {
				return sector.Entry{}, xerrors.Errorf("fsimage: %w", err)
			}
			next, ok := ch.NextLogical()
			if !ok {
				next, err = b.m.Allocate(sector.UNSET, nil)
				if err != nil {
					return sector.Entry{}, xerrors.Errorf("fsimage: extending directory chain: %w", err)
				}
				newSec, err := b.m.SectorByLogical(next)
				if err != nil {
					return sector.Entry{}, xerrors.Errorf("fsimage: %w", err)
				}
				newCH := sector.Chain{Type: sector.TypeDirectory, Next: sector.UNSET, Used: sector.UNSET}
				if err := newSec.WriteBytes(0, newCH.Pack()); err != nil {
					return sector.Entry{}, xerrors.Errorf("fsimage: %w", err)
				}
				ch.Next = next
				if err := sec.WriteBytes(0, ch.Pack()); err != nil {
					return sector.Entry{}, xerrors.Errorf("fsimage: %w", err)
				}
			}
			sec, err = b.m.SectorByLogical(next)
			if err != nil {
				return sector.Entry{}, xerrors.Errorf("fsimage: %w", err)
			}
			logical = next
			offset = sector.ChainSize
			continue
		}

		eh, err := sec.ReadEntry(offset, b.m.MaxFilenameLen)
		if err != nil {
			return sector.Entry{}, xerrors.Errorf("fsimage: %w", err)
		}
		if eh.FirstSector == sector.UNSET {
			break
		}
		offset += entrySize
	}

	contentType := sector.TypeFile
	if isDir {
		contentType = sector.TypeDirectory
	}
	contentLogical, err := b.m.Allocate(sector.UNSET, nil)
	if err != nil {
		return sector.Entry{}, xerrors.Errorf("fsimage: allocating content sector for %q: %w", name, err)
	}
	contentSec, err := b.m.SectorByLogical(contentLogical)
	if err != nil {
		return sector.Entry{}, xerrors.Errorf("fsimage: %w", err)
	}
	contentCH := sector.Chain{Type: contentType, Next: sector.UNSET, Used: sector.UNSET}
	if err := contentSec.WriteBytes(0, contentCH.Pack()); err != nil {
		return sector.Entry{}, xerrors.Errorf("fsimage: %w", err)
	}

	entry := sector.Entry{
		Flags: sector.EntryFlags{
			Empty:    false,
			Active:   true,
			IsDir:    isDir,
			Deleting: true,
			Mode:     mode,
		},
		FirstSector: contentLogical,
		UTC:         uint32(b.clock.Now().Unix()),
		Name:        name,
	}
	packed, err := entry.Pack(b.m.MaxFilenameLen)
	if err != nil {
		return sector.Entry{}, xerrors.Errorf("fsimage: %w", err)
	}
	if err := sec.WriteBytes(offset, packed); err != nil {
		return sector.Entry{}, xerrors.Errorf("fsimage: %w", err)
	}

	return entry, nil
}

// Mkdir creates the directory named by pathAbs. Its parent must already
// exist.
func (b *Builder) Mkdir(pathAbs string, mode sector.Mode) error {
	if pathAbs == "/" {
		return xerrors.Errorf("fsimage: cannot create the root directory: %w", ErrDomain)
	}
	parent, err := b.FindDirEntry(path.Dir(pathAbs))
	if err != nil {
		return xerrors.Errorf("fsimage: mkdir %q: %w", pathAbs, err)
	}
	if _, err := b.CreateEntry(parent, path.Base(pathAbs), true, mode); err != nil {
		return xerrors.Errorf("fsimage: mkdir %q: %w", pathAbs, err)
	}
	return nil
}

// CreateFile creates the file named by pathAbs with the given content.
// Its parent must already exist. Content is split across as many chained
// sectors as needed, each sector's chain header recording how many bytes
// of its data region are in use.
func (b *Builder) CreateFile(pathAbs string, content []byte, mode sector.Mode) error {
	parent, err := b.FindDirEntry(path.Dir(pathAbs))
	if err != nil {
		return xerrors.Errorf("fsimage: create_file %q: %w", pathAbs, err)
	}
	entry, err := b.CreateEntry(parent, path.Base(pathAbs), false, mode)
	if err != nil {
		return xerrors.Errorf("fsimage: create_file %q: %w", pathAbs, err)
	}
	if err := b.writeFileContent(entry.FirstSector, content); err != nil {
		return xerrors.Errorf("fsimage: create_file %q: %w", pathAbs, err)
	}
	return nil
}

// writeFileContent streams content into the chain rooted at firstLogical,
// allocating additional sectors as needed. firstLogical's sector already
// carries an empty file chain header, written by CreateEntry.
func (b *Builder) writeFileContent(firstLogical uint16, content []byte) error {
	sec, err := b.m.SectorByLogical(firstLogical)
	if err != nil {
		return xerrors.Errorf("fsimage: %w", err)
	}
	payloadSize := sec.UsableSize() - sector.ChainSize

	if len(content) == 0 {
		ch := sector.Chain{Type: sector.TypeFile, Next: sector.UNSET, Used: 0}
		return sec.WriteBytes(0, ch.Pack())
	}

	for i := 0; i < len(content); i += payloadSize {
		end := i + payloadSize
		if end > len(content) {
			end = len(content)
		}
		chunk := content[i:end]

		if i > 0 {
			nextLogical, err := b.m.Allocate(sector.UNSET, nil)
			if err != nil {
				return xerrors.Errorf("fsimage: allocating file chain sector: %w", err)
			}
			prevCH, err := sec.ReadChain(0)
			if err != nil {
				return xerrors.Errorf("fsimage: %w", err)
			}
			prevCH.Next = nextLogical
			if err := sec.WriteBytes(0, prevCH.Pack()); err != nil {
				return xerrors.Errorf("fsimage: %w", err)
			}
			sec, err = b.m.SectorByLogical(nextLogical)
			if err != nil {
				return xerrors.Errorf("fsimage: %w", err)
			}
		}

		if err := sec.WriteBytes(sector.ChainSize, chunk); err != nil {
			return xerrors.Errorf("fsimage: %w", err)
		}
		ch := sector.Chain{Type: sector.TypeFile, Next: sector.UNSET, Used: uint16(len(chunk))}
		if err := sec.WriteBytes(0, ch.Pack()); err != nil {
			return xerrors.Errorf("fsimage: %w", err)
		}
	}
	return nil
}

// ReadFile is deliberately unimplemented: the builder only ever writes a
// fresh image, it never needs to read file content back out of one.
func (b *Builder) ReadFile(pathAbs string) ([]byte, error) {
	return nil, xerrors.Errorf("fsimage: read_file %q: %w", pathAbs, ErrUnsupported)
}

// Dump returns the finished image buffer.
func (b *Builder) Dump() []byte {
	return b.m.Dump()
}
