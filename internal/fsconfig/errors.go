package fsconfig

import "errors"

// ErrInvalid is the sentinel for a malformed configuration: a missing
// required path, a non-positive storage size, or an unrecognized CRC
// mode spelling.
var ErrInvalid = errors.New("fsconfig: invalid configuration")
