package probe

import "errors"

var (
	// ErrNotConnected means the handshake did not finish within the connect wait
	ErrNotConnected = errors.New("connection was not established in time")

	// ErrConnectionClosed means the connection ended before all input was sent
	ErrConnectionClosed = errors.New("connection closed before input was exhausted")
)
