package storage

import "errors"

var (
	// ErrNilExchange is returned by Insert when given a nil exchange.
	ErrNilExchange = errors.New("cannot store nil exchange")

	// ErrClosed is returned by drivers used after Close.
	ErrClosed = errors.New("storage driver closed")
)

// UnknownDriverError is returned when the configured driver name is not one
// of the supported backends.
type UnknownDriverError struct {
	Name string
}

func (e UnknownDriverError) Error() string {
	return "unknown storage driver: " + e.Name
}
