package error

import (
	"errors"
	"fmt"
)

// Error kinds. Concrete errors returned by the resolve and stealthmem
// packages match exactly one of these through errors.Is.
var (
	ParseFailed      = errors.New("malformed input")
	OpenFailed       = errors.New("could not open device file")
	TransferFailed   = errors.New("control call failed")
	AllocationFailed = errors.New("buffer allocation failed")
)

type kindError struct {
	kind error
	msg  string
}

func (k *kindError) Error() string {
	return k.msg
}

func (k *kindError) Is(target error) bool {
	return target == k.kind
}

// Newf returns an error with the formatted message that reports itself as kind.
func Newf(kind error, format string, args ...interface{}) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}
