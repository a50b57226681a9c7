// Package hostwalk enumerates a host directory tree into the two
// ordered lists the builder needs: directories (parents before
// children, so each Mkdir's parent already exists) and regular files.
package hostwalk

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/xerrors"
)

// File is a regular file discovered under baseDir, with its content
// already read into memory.
type File struct {
	// Path is the SmartFS-style absolute path ("/" separated, rooted at
	// baseDir) this file should be created at.
	Path    string
	Content []byte
}

// Tree is the result of walking baseDir: every directory (sorted so a
// parent always precedes its children) and every regular file.
type Tree struct {
	Dirs  []string
	Files []File
}

// Walk reads baseDir from the host filesystem and returns its directory
// and file listing. Symlinks, device files and other non-regular,
// non-directory entries are skipped.
func Walk(baseDir string) (Tree, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return Tree{}, xerrors.Errorf("hostwalk: %q does not exist: %w", baseDir, ErrNotFound)
		}
		return Tree{}, xerrors.Errorf("hostwalk: %w", err)
	}
	if !info.IsDir() {
		return Tree{}, xerrors.Errorf("hostwalk: %q is not a directory: %w", baseDir, ErrNotFound)
	}

	var dirs []string
	var files []File

	err = filepath.WalkDir(baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == baseDir {
			return nil
		}
		rel, err := filepath.Rel(baseDir, p)
		if err != nil {
			return err
		}
		smartPath := "/" + filepath.ToSlash(rel)

		switch {
		case d.IsDir():
			dirs = append(dirs, smartPath)
		case d.Type().IsRegular():
			content, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			files = append(files, File{Path: smartPath, Content: content})
		}
		return nil
	})
	if err != nil {
		return Tree{}, xerrors.Errorf("hostwalk: walking %q: %w", baseDir, err)
	}

	// Lexicographic order on "/"-joined paths already puts every parent
	// before its children, since a prefix sorts before anything longer
	// that extends it.
	sort.Strings(dirs)
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	return Tree{Dirs: dirs, Files: files}, nil
}
