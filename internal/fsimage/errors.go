package fsimage

import "errors"

// ErrDomain is the sentinel for a domain-level error: a path is not
// absolute or does not resolve, the root directory is passed to Mkdir, or
// a name is longer than max_filename_len. Creating an entry whose name
// already exists in its parent is not reported as an error.
var ErrDomain = errors.New("fsimage: domain error")

// ErrUnsupported is returned by ReadFile: the builder does not read file
// content back out of an image. It has no directory-listing operation.
var ErrUnsupported = errors.New("fsimage: unsupported operation")
