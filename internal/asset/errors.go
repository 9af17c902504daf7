package asset

import "errors"

// Sentinel errors returned by client implementations. Callers match them
// with errors.Is; the CLI maps ErrNotFound onto the "Error: Not Found"
// diagnostic the test driver greps for.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrNotAFolder    = errors.New("not a folder")
	ErrChannelClosed = errors.New("channel closed")
)
