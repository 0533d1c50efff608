package version

import "errors"

// ErrInvalidArgument is returned for malformed version strings, zero
// versions, and unparseable constraints.
var ErrInvalidArgument = errors.New("invalid argument")
