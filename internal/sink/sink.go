// Package sink writes a finished image buffer to its output path
// atomically: the buffer is written to a temporary file in the same
// directory, then renamed into place, so a reader never observes a
// partially-written image file.
package sink

import (
	"github.com/google/renameio"
	"golang.org/x/xerrors"
)

// WriteImage atomically writes buf to path.
func WriteImage(path string, buf []byte) error {
	out, err := renameio.TempFile("", path)
	if err != nil {
		return xerrors.Errorf("sink: creating temp file for %q: %w", path, err)
	}
	defer out.Cleanup()

	if _, err := out.Write(buf); err != nil {
		return xerrors.Errorf("sink: writing %q: %w", path, err)
	}
	if err := out.CloseAtomicallyReplace(); err != nil {
		return xerrors.Errorf("sink: replacing %q: %w", path, err)
	}
	return nil
}
