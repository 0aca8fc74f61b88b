package memory

import "errors"

// ErrClosed is returned by drivers used after Close.
var ErrClosed = errors.New("memory driver closed")
