package stealthmem

import (
	"fmt"
	"unsafe"
)

// Command is the ioctl type (magic) byte selecting the transfer direction.
type Command uint8

const (
	// Read copies remote memory into the request buffer.
	Read Command = 0xBC
	// Write copies the request buffer into remote memory.
	Write Command = 0xBD
)

// Generic Linux ioctl number encoding (asm-generic/ioctl.h).
const (
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	iocWrite = 1
	iocRead  = 2
)

// memoryParamsNr is the ioctl sequence number both commands are declared with.
const memoryParamsNr = 1

func iowr(typ, nr, size uintptr) uintptr {
	return (iocRead|iocWrite)<<iocDirShift |
		size<<iocSizeShift |
		typ<<iocTypeShift |
		nr<<iocNRShift
}

// Request returns the ioctl request number for c, i.e.
// _IOWR(c, 1, struct memory_params).
func (c Command) Request() uintptr {
	return iowr(uintptr(c), memoryParamsNr, unsafe.Sizeof(MemoryParams{}))
}

func (c Command) valid() bool {
	return c == Read || c == Write
}

func (c Command) String() string {
	switch c {
	case Read:
		return "READ"
	case Write:
		return "WRITE"
	default:
		return fmt.Sprintf("Command(%#x)", uint8(c))
	}
}
