package ports

import "errors"

// ErrInvalid marks a request rejected at the boundary: unknown mode, match
// type or sort key, missing campaign, malformed params.
var ErrInvalid = errors.New("invalid input")
