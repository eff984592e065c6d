// Package resolve turns the textual command line operands into the typed
// scalars a memory transaction is built from.
package resolve

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	e "stealthmem/error"
)

const (
	hexPrefix      = "0x"
	hexPrefixUpper = "0X"
)

// ParseError is returned when an operand is not a valid literal.
type ParseError struct {
	Field string
	Input string
	Err   error
}

func (pe *ParseError) Error() string {
	return fmt.Sprintf("invalid %s: %q: %v", pe.Field, pe.Input, pe.Err)
}

func (pe *ParseError) Unwrap() error {
	return pe.Err
}

func (pe *ParseError) Is(target error) bool {
	return target == e.ParseFailed
}

func newParseError(field, input string, err error) *ParseError {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		err = ne.Err
	}
	return &ParseError{Field: field, Input: input, Err: err}
}

// Args is a resolved (pid, address, size) triple. No semantic checks are
// applied: address ranges and size limits are up to the driver.
type Args struct {
	Pid     int32
	Address uint64
	Size    uint
}

// Parse resolves the three operands of a read.
func Parse(pid, address, size string) (Args, error) {
	var (
		a   Args
		err error
	)

	if a.Pid, err = Pid(pid); err != nil {
		return Args{}, err
	}
	if a.Address, err = Address(address); err != nil {
		return Args{}, err
	}
	if a.Size, err = Size(size); err != nil {
		return Args{}, err
	}

	return a, nil
}

// Pid parses a signed 32-bit process identifier.
func Pid(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, newParseError("pid", s, err)
	}
	return int32(v), nil
}

// Address parses a 64-bit address, in base 16 when s carries a 0x or 0X
// prefix and in base 10 otherwise.
func Address(s string) (uint64, error) {
	digits, base := s, 10
	if strings.HasPrefix(s, hexPrefix) || strings.HasPrefix(s, hexPrefixUpper) {
		digits, base = s[len(hexPrefix):], 16
	}

	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, newParseError("address", s, err)
	}
	return v, nil
}

// Size parses a word-sized byte count. There is no upper bound.
func Size(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, strconv.IntSize)
	if err != nil {
		return 0, newParseError("size", s, err)
	}
	return uint(v), nil
}

// Payload decodes the hex-encoded bytes of a write, e.g. "deadbeef" or
// "0xDEADBEEF".
func Payload(s string) ([]byte, error) {
	digits := s
	if strings.HasPrefix(s, hexPrefix) || strings.HasPrefix(s, hexPrefixUpper) {
		digits = s[len(hexPrefix):]
	}
	if digits == "" {
		return nil, &ParseError{Field: "data", Input: s, Err: errors.New("no bytes")}
	}

	b, err := hex.DecodeString(digits)
	if err != nil {
		return nil, &ParseError{Field: "data", Input: s, Err: err}
	}
	return b, nil
}
