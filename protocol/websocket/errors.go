package websocket

import (
	"errors"
	"fmt"
)

// ErrInvalidAddress matches every InvalidAddressError through errors.Is
var ErrInvalidAddress = errors.New("invalid websocket address")

// InvalidAddressError means the target handed to New is not an absolute ws:// or
// wss:// URI without a fragment. It is the only error the adapter ever returns.
type InvalidAddressError struct {
	Address  string
	Reason   string
	InnerErr error
}

func (e *InvalidAddressError) Error() string {
	if e.InnerErr != nil {
		return fmt.Sprintf("%s %q: %s: %s", ErrInvalidAddress, e.Address, e.Reason, e.InnerErr)
	}
	return fmt.Sprintf("%s %q: %s", ErrInvalidAddress, e.Address, e.Reason)
}

func (e *InvalidAddressError) Unwrap() error { return e.InnerErr }

func (e *InvalidAddressError) Is(target error) bool { return target == ErrInvalidAddress }
