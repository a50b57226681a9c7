// Command smartfsimg builds a SmartFS flash image offline from a host
// directory tree.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/xerrors"

	"github.com/shizacat/smartfs-tools/internal/clock"
	"github.com/shizacat/smartfs-tools/internal/fsconfig"
	"github.com/shizacat/smartfs-tools/internal/fsimage"
	"github.com/shizacat/smartfs-tools/internal/hostwalk"
	"github.com/shizacat/smartfs-tools/internal/mtd"
	"github.com/shizacat/smartfs-tools/internal/sector"
	"github.com/shizacat/smartfs-tools/internal/sink"
)

var (
	baseDir  = flag.String("base-dir", "", "directory to build the image from")
	out      = flag.String("out", "", "output image file path")
	storage  = flag.Int64("storage-size", 0, "size of the partition in bytes")
	ebSize   = flag.Int("smart-erase-block-size", 4096, "size of an erase block in bytes")
	secSize  = flag.Int("smart-sector-size", 1024, "SmartFS sector size in bytes")
	version  = flag.Int("smart-version", 1, "SmartFS on-media format version")
	crc      = flag.String("smart-crc", "none", "CRC mode: none or crc8")
	maxLen   = flag.Int("smart-max-len-filename", 16, "maximum filename length")
	numRoot  = flag.Int("smart-number-root-dir", 0, "number of extra root directories")
	dirMode  = flag.String("dir-mode", "777", "default directory mode, three octal digits")
	fileMode = flag.String("file-mode", "666", "default file mode, three octal digits")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := fsconfig.Default()
	cfg.BaseDir = *baseDir
	cfg.OutPath = *out
	cfg.StorageSize = *storage
	cfg.EraseBlockSize = *ebSize
	cfg.SectorSize = *secSize
	cfg.Version = sector.Version(*version)
	cfg.NumberExtraRootDirs = *numRoot

	crcMode, err := fsconfig.ParseCRCMode(*crc)
	if err != nil {
		return err
	}
	cfg.CRCMode = crcMode
	cfg.MaxFilenameLen = *maxLen

	cfg.DefaultDirMode, err = sector.ModeFromOctalString(*dirMode)
	if err != nil {
		return xerrors.Errorf("smartfsimg: --dir-mode: %w", err)
	}
	cfg.DefaultFileMode, err = sector.ModeFromOctalString(*fileMode)
	if err != nil {
		return xerrors.Errorf("smartfsimg: --file-mode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	progress("building SmartFS image from %s", cfg.BaseDir)

	geom := cfg.Geometry()
	buf := make([]byte, cfg.StorageSize)
	block, err := mtd.New(buf, geom, true)
	if err != nil {
		return xerrors.Errorf("smartfsimg: formatting image: %w", err)
	}
	progress("formatted image: %d sectors, %d free", block.TotalSectors, block.FreeSectors())

	builder := fsimage.New(block, clock.Real{})

	tree, err := hostwalk.Walk(cfg.BaseDir)
	if err != nil {
		return xerrors.Errorf("smartfsimg: walking %s: %w", cfg.BaseDir, err)
	}

	for _, dir := range tree.Dirs {
		if err := builder.Mkdir(dir, cfg.DefaultDirMode); err != nil {
			return xerrors.Errorf("smartfsimg: mkdir %s: %w", dir, err)
		}
	}
	progress("created %d directories", len(tree.Dirs))

	for _, f := range tree.Files {
		if err := builder.CreateFile(f.Path, f.Content, cfg.DefaultFileMode); err != nil {
			return xerrors.Errorf("smartfsimg: writing %s: %w", f.Path, err)
		}
	}
	progress("wrote %d files", len(tree.Files))

	if err := sink.WriteImage(cfg.OutPath, builder.Dump()); err != nil {
		return xerrors.Errorf("smartfsimg: %w", err)
	}
	progress("image written to %s", cfg.OutPath)

	return nil
}

// progress prints a build-progress line, decorated with a marker only
// when stdout is a terminal a human is watching.
func progress(format string, args ...interface{}) {
	prefix := ""
	if isatty.IsTerminal(os.Stdout.Fd()) {
		prefix = "==> "
	}
	fmt.Fprintf(os.Stderr, prefix+format+"\n", args...)
}
