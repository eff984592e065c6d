package stealthmem

import (
	"fmt"

	"golang.org/x/sys/unix"

	e "stealthmem/error"
)

// OpenError is returned when the control device cannot be opened.
type OpenError struct {
	Path string
	Err  error
}

func (oe *OpenError) Error() string {
	return fmt.Sprintf("could not open device file %s: %v", oe.Path, oe.Err)
}

func (oe *OpenError) Unwrap() error {
	return oe.Err
}

func (oe *OpenError) Is(target error) bool {
	return target == e.OpenFailed
}

// TransferError is returned when the control call fails, either because the
// driver rejected the request or because the call itself could not be made.
type TransferError struct {
	Cmd    Command
	Target Target
	Size   uint
	Errno  unix.Errno
}

func (te *TransferError) Error() string {
	verb, prep := "read", "from"
	if te.Cmd == Write {
		verb, prep = "write", "to"
	}
	return fmt.Sprintf("failed to %s memory: %d bytes %s %v: %v", verb, te.Size, prep, te.Target, te.Errno)
}

func (te *TransferError) Unwrap() error {
	return te.Errno
}

func (te *TransferError) Is(target error) bool {
	return target == e.TransferFailed
}
