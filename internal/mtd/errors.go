package mtd

import "errors"

// ErrInvariant is the sentinel for an invariant violation: a requested
// logical sector is already allocated, total_sectors exceeds the 16-bit
// sector space, an erase block has no free sector during allocation, or
// free_sectors would fall below the sectors_per_eb+4 floor.
var ErrInvariant = errors.New("mtd: invariant violation")

// ErrCapacity is the sentinel for a capacity error: no free logical or
// physical sector is available for a request.
var ErrCapacity = errors.New("mtd: capacity exhausted")
