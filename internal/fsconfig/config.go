// Package fsconfig holds the configuration surface consumed by the CLI
// front end (package cmd/smartfsimg) and handed down to the mtd and
// fsimage packages: storage geometry, on-media format parameters, default
// permission modes, and the input/output paths.
package fsconfig

import (
	"github.com/shizacat/smartfs-tools/internal/mtd"
	"github.com/shizacat/smartfs-tools/internal/sector"
	"golang.org/x/xerrors"
)

// Config is the fully-resolved build configuration, after flag defaults
// have been applied and mode strings parsed.
type Config struct {
	StorageSize         int64
	EraseBlockSize      int
	SectorSize          int
	Version             sector.Version
	CRCMode             sector.CRCMode
	MaxFilenameLen      int
	NumberExtraRootDirs int

	DefaultDirMode  sector.Mode
	DefaultFileMode sector.Mode

	BaseDir string
	OutPath string
}

// Default returns a Config carrying every spec-mandated default, with
// StorageSize, BaseDir and OutPath left zero for the caller to fill in.
func Default() Config {
	dirMode, _ := sector.ModeFromOctalString("777")
	fileMode, _ := sector.ModeFromOctalString("666")
	return Config{
		EraseBlockSize:      4096,
		SectorSize:          1024,
		Version:             sector.Version1,
		CRCMode:             sector.CRCNone,
		MaxFilenameLen:      16,
		NumberExtraRootDirs: 0,
		DefaultDirMode:      dirMode,
		DefaultFileMode:     fileMode,
	}
}

// Geometry projects the subset of Config that package mtd needs.
func (c Config) Geometry() mtd.Geometry {
	return mtd.Geometry{
		ImageSize:           c.StorageSize,
		EraseBlockSize:      c.EraseBlockSize,
		SectorSize:          c.SectorSize,
		Version:             c.Version,
		CRCMode:             c.CRCMode,
		MaxFilenameLen:      c.MaxFilenameLen,
		NumberExtraRootDirs: c.NumberExtraRootDirs,
	}
}

// Validate checks the fields Config itself is responsible for (a positive
// storage size and both paths); the CRC mode spelling is checked by
// ParseCRCMode, and geometry invariants are left to
// Geometry().Validate(), which the caller runs once it has allocated the
// image buffer.
func (c Config) Validate() error {
	if c.StorageSize <= 0 {
		return xerrors.Errorf("fsconfig: storage_size must be positive: %w", ErrInvalid)
	}
	if c.BaseDir == "" {
		return xerrors.Errorf("fsconfig: base-dir is required: %w", ErrInvalid)
	}
	if c.OutPath == "" {
		return xerrors.Errorf("fsconfig: out is required: %w", ErrInvalid)
	}
	return nil
}

// ParseCRCMode accepts the two spellings the CLI surface recognizes.
func ParseCRCMode(s string) (sector.CRCMode, error) {
	switch s {
	case "none":
		return sector.CRCNone, nil
	case "crc8":
		return sector.CRC8, nil
	default:
		return 0, xerrors.Errorf("fsconfig: crc mode %q must be one of none, crc8: %w", s, ErrInvalid)
	}
}
