package sector

import "errors"

// ErrDecode is the sentinel structural-decode error: a header's field is
// out of range, the input is the wrong length, or the version/CRC code is
// unknown. Wrap it with xerrors.Errorf to add context; callers use
// errors.Is(err, sector.ErrDecode) to classify.
var ErrDecode = errors.New("sector: structural decode error")
