package versions

import "errors"

// ErrNotFound indicates a version does not exist.
var ErrNotFound = errors.New("version not found")
