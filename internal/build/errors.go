package build

import "errors"

// Sentinel errors carried inside classified build errors; test with errors.Is.
var (
	ErrSourceNotFound    = errors.New("source document not found")
	ErrUnsafeCleanTarget = errors.New("unsafe clean target")
)
