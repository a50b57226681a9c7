// Package mtd implements the MTD block layer: it owns the entire image
// buffer, divides it into erase blocks and fixed-size physical sectors,
// and exposes sector allocation and access primitives on top of the
// sector codec (package sector).
package mtd

import (
	"github.com/shizacat/smartfs-tools/internal/sector"
	"golang.org/x/xerrors"
)

// Reserved logical sector numbers, per spec.md §3.
const (
	FormatSector         = 0
	FirstRootDirSector   = 3
	FirstGeneralSector   = 12
	maxLogicalSectors    = 65536
	reservedTopTwoEffect = 2
)

// Geometry is the immutable partition layout supplied at construction.
type Geometry struct {
	ImageSize           int64
	EraseBlockSize      int
	SectorSize          int
	Version             sector.Version
	CRCMode             sector.CRCMode
	MaxFilenameLen      int
	NumberExtraRootDirs int
}

// Derived holds the values computed from a Geometry once validated.
type Derived struct {
	Geometry
	SectorsPerEB int
	NEraseBlocks int
	// TotalSectors is the logical sector space: NEraseBlocks*SectorsPerEB,
	// minus 2 at the exact 16-bit cap (spec.md §3's reserved-top-two-
	// sectors case).
	TotalSectors int
	// PhysicalSectors is NEraseBlocks*SectorsPerEB, never reduced. The
	// two sectors spec.md §3 reserves out of the logical space at the
	// 16-bit cap are still physically real and allocatable; bounds
	// checks against a physical sector number must use this, not
	// TotalSectors.
	PhysicalSectors int
}

// Validate checks the geometry's divisibility and capacity invariants
// and returns the derived, ready-to-use layout.
func (g Geometry) Validate() (Derived, error) {
	if _, err := sector.SizeCodeFromBytes(g.SectorSize); err != nil {
		return Derived{}, xerrors.Errorf("mtd: %w", err)
	}
	if g.Version != sector.Version1 {
		return Derived{}, xerrors.Errorf("mtd: unsupported version %d: %w", g.Version, ErrInvariant)
	}
	if g.MaxFilenameLen <= 0 || g.MaxFilenameLen > 255 {
		return Derived{}, xerrors.Errorf("mtd: max_filename_len %d out of range (1-255): %w", g.MaxFilenameLen, ErrInvariant)
	}
	if g.NumberExtraRootDirs < 0 {
		return Derived{}, xerrors.Errorf("mtd: number_extra_root_dirs must be >= 0: %w", ErrInvariant)
	}
	if g.EraseBlockSize <= 0 || g.EraseBlockSize%g.SectorSize != 0 {
		return Derived{}, xerrors.Errorf("mtd: erase_block_size %d does not divide evenly by sector_size %d: %w", g.EraseBlockSize, g.SectorSize, ErrInvariant)
	}
	if g.ImageSize <= 0 || g.ImageSize%int64(g.EraseBlockSize) != 0 {
		return Derived{}, xerrors.Errorf("mtd: image_size %d does not divide evenly by erase_block_size %d: %w", g.ImageSize, g.EraseBlockSize, ErrInvariant)
	}

	sectorsPerEB := g.EraseBlockSize / g.SectorSize
	nEraseBlocks := int(g.ImageSize / int64(g.EraseBlockSize))
	physical := nEraseBlocks * sectorsPerEB
	if physical > maxLogicalSectors {
		return Derived{}, xerrors.Errorf("mtd: total_sectors %d exceeds the 16-bit sector number space: %w", physical, ErrInvariant)
	}
	total := physical
	if total == maxLogicalSectors {
		total -= reservedTopTwoEffect
	}
	if total <= FirstGeneralSector {
		return Derived{}, xerrors.Errorf("mtd: total_sectors %d leaves no sectors for general allocation: %w", total, ErrInvariant)
	}

	return Derived{
		Geometry:        g,
		SectorsPerEB:    sectorsPerEB,
		NEraseBlocks:    nEraseBlocks,
		TotalSectors:    total,
		PhysicalSectors: physical,
	}, nil
}
