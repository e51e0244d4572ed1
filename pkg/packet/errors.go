package packet

import "errors"

var (
	// ErrTransportClosed is returned when sending on a closed transport
	ErrTransportClosed = errors.New("transport closed")

	// ErrNoDestination is returned when no transport has been configured
	ErrNoDestination = errors.New("no packet destination configured")
)
