package mtd

import (
	"github.com/shizacat/smartfs-tools/internal/sector"
	"golang.org/x/xerrors"
)

// Signature is the 4-byte ASCII magic written to the format sector.
var Signature = [4]byte{'S', 'M', 'R', 'T'}

// MTD owns the entire image buffer and the bookkeeping needed to place
// sectors within it: free/allocated maps per erase block, the logical to
// physical sector map, and the free-sector count.
type MTD struct {
	Derived

	buf []byte

	freeSectorMap  [][]bool // [eraseBlock][sectorInBlock]
	smap           []uint16 // logical -> physical, UNSET when unmapped
	freeSectors    int
	lastAllocBlock int
}

// New wraps buf (which must be exactly g.ImageSize bytes) with an MTD
// block layer. When formatted is true, the buffer is erased, the
// low-level format and root directory sectors are written, and physical
// sector 0 is marked allocated. When false, buf is accepted as-is and
// nothing is rebuilt from its contents: every logical sector maps to
// physical sector 0 and no sector is free, so neither allocation nor
// directory-entry lookups work on the result.
func New(buf []byte, g Geometry, formatted bool) (*MTD, error) {
	d, err := g.Validate()
	if err != nil {
		return nil, err
	}
	if int64(len(buf)) != d.ImageSize {
		return nil, xerrors.Errorf("mtd: buffer is %d bytes, geometry wants %d: %w", len(buf), d.ImageSize, ErrInvariant)
	}

	m := &MTD{
		Derived:        d,
		buf:            buf,
		freeSectorMap:  make([][]bool, d.NEraseBlocks),
		smap:           make([]uint16, d.TotalSectors),
		lastAllocBlock: -1,
	}
	for i := range m.freeSectorMap {
		m.freeSectorMap[i] = make([]bool, d.SectorsPerEB)
	}

	if !formatted {
		return m, nil
	}

	for i := range buf {
		buf[i] = 0xFF
	}
	for l := range m.smap {
		m.smap[l] = sector.UNSET
	}
	for _, row := range m.freeSectorMap {
		for i := range row {
			row[i] = true
		}
	}
	m.freeSectors = d.TotalSectors

	if err := m.lowLevelFormat(); err != nil {
		return nil, err
	}
	if err := m.writeRootDirs(); err != nil {
		return nil, err
	}
	m.freeSectorMap[0][0] = false

	return m, nil
}

// lowLevelFormat writes the format sector (logical/physical 0): the
// "SMRT" signature, version, max_filename_len and
// number_extra_root_dirs, per spec.md §4.2.1.
func (m *MTD) lowLevelFormat() error {
	phys := 0
	logical, err := m.Allocate(FormatSector, &phys)
	if err != nil {
		return xerrors.Errorf("mtd: low-level format: %w", err)
	}
	sec, err := m.SectorByLogical(logical)
	if err != nil {
		return xerrors.Errorf("mtd: low-level format: %w", err)
	}
	payload := append([]byte{}, Signature[:]...)
	payload = append(payload, byte(m.Version), byte(m.MaxFilenameLen), byte(m.NumberExtraRootDirs))
	if err := sec.WriteBytes(0, payload); err != nil {
		return xerrors.Errorf("mtd: low-level format: %w", err)
	}
	return nil
}

// writeRootDirs allocates and stamps the root directory sectors
// (spec.md §4.2.2): logical FirstRootDirSector through
// FirstRootDirSector+NumberExtraRootDirs, each pinned, each holding an
// empty directory chain header.
func (m *MTD) writeRootDirs() error {
	for i := 0; i <= m.NumberExtraRootDirs; i++ {
		logical := uint16(FirstRootDirSector + i)
		if _, err := m.Allocate(logical, nil); err != nil {
			return xerrors.Errorf("mtd: root dir %d: %w", i, err)
		}
		sec, err := m.SectorByLogical(logical)
		if err != nil {
			return xerrors.Errorf("mtd: root dir %d: %w", i, err)
		}
		ch := sector.Chain{Type: sector.TypeDirectory, Next: sector.UNSET, Used: sector.UNSET}
		if err := sec.WriteBytes(0, ch.Pack()); err != nil {
			return xerrors.Errorf("mtd: root dir %d: %w", i, err)
		}
	}
	return nil
}

// Allocate assigns a logical sector (optionally pinned to requested) to
// a physical sector (optionally pinned to physical), writes its header,
// and fills its data region with 0xFF, per spec.md §4.2.3.
func (m *MTD) Allocate(requested uint16, physical *int) (uint16, error) {
	if m.freeSectors < m.SectorsPerEB+4 {
		return 0, xerrors.Errorf("mtd: only %d free sectors left, need at least %d: %w", m.freeSectors, m.SectorsPerEB+4, ErrCapacity)
	}

	logical := requested
	if requested != sector.UNSET {
		if int(requested) >= m.TotalSectors {
			return 0, xerrors.Errorf("mtd: requested logical sector %d is out of range (total %d): %w", requested, m.TotalSectors, ErrInvariant)
		}
		if m.smap[requested] != sector.UNSET {
			return 0, xerrors.Errorf("mtd: logical sector %d is already allocated: %w", requested, ErrInvariant)
		}
	} else {
		found := false
		for l := FirstGeneralSector; l < m.TotalSectors; l++ {
			if m.smap[l] == sector.UNSET {
				logical = uint16(l)
				found = true
				break
			}
		}
		if !found {
			return 0, xerrors.Errorf("mtd: no logical sector available: %w", ErrCapacity)
		}
	}

	var phys int
	if physical != nil {
		phys = *physical
		b, i := phys/m.SectorsPerEB, phys%m.SectorsPerEB
		if b >= m.NEraseBlocks || !m.freeSectorMap[b][i] {
			return 0, xerrors.Errorf("mtd: requested physical sector %d is not free: %w", phys, ErrInvariant)
		}
	} else {
		b, err := m.pickEraseBlock()
		if err != nil {
			return 0, xerrors.Errorf("mtd: %w", err)
		}
		i := m.lowestFreeInBlock(b)
		if i == -1 {
			return 0, xerrors.Errorf("mtd: erase block %d has no free sector: %w", b, ErrInvariant)
		}
		phys = b*m.SectorsPerEB + i
	}

	sizeCode, err := sector.SizeCodeFromBytes(m.SectorSize)
	if err != nil {
		return 0, xerrors.Errorf("mtd: %w", err)
	}
	header := sector.Header{
		LogicalSector: logical,
		Sequence:      0,
		Status: sector.Status{
			Committed:  true,
			Released:   false,
			CRCEnable:  m.CRCMode != sector.CRCNone,
			SectorSize: sizeCode,
			Version:    m.Version,
		},
	}
	start := phys * m.SectorSize
	if _, err := sector.New(m.buf[start:start+m.SectorSize], header); err != nil {
		return 0, xerrors.Errorf("mtd: %w", err)
	}

	m.smap[logical] = uint16(phys)
	m.freeSectors--
	b, i := phys/m.SectorsPerEB, phys%m.SectorsPerEB
	m.freeSectorMap[b][i] = false

	return logical, nil
}

// SectorByPhysical returns a writable view over physical sector n. The
// bound here is PhysicalSectors, not the (possibly smaller) logical
// TotalSectors: at the exact 16-bit sector cap, spec.md §3 reserves the
// top two sectors out of the logical address space, but those sectors
// are still physically present and allocatable.
func (m *MTD) SectorByPhysical(n int) (*sector.Sector, error) {
	if n < 0 || n >= m.PhysicalSectors {
		return nil, xerrors.Errorf("mtd: physical sector %d out of range (total %d): %w", n, m.PhysicalSectors, ErrInvariant)
	}
	start := n * m.SectorSize
	return sector.Attach(m.buf[start : start+m.SectorSize])
}

// SectorByLogical returns a writable view over the sector currently
// mapped to logical sector l.
func (m *MTD) SectorByLogical(l uint16) (*sector.Sector, error) {
	if int(l) >= len(m.smap) {
		return nil, xerrors.Errorf("mtd: logical sector %d out of range: %w", l, ErrInvariant)
	}
	phys := m.smap[l]
	if phys == sector.UNSET {
		return nil, xerrors.Errorf("mtd: logical sector %d is not mapped: %w", l, ErrInvariant)
	}
	return m.SectorByPhysical(int(phys))
}

// FreeSectors returns the current free-sector count.
func (m *MTD) FreeSectors() int { return m.freeSectors }

// Dump returns the backing image buffer.
func (m *MTD) Dump() []byte { return m.buf }
