package hostwalk

import "errors"

// ErrNotFound is returned when the requested base directory does not
// exist or is not a directory.
var ErrNotFound = errors.New("hostwalk: base directory not found")
