// Package stealthmem implements the userspace side of the /dev/stealthmem
// control protocol: the memory_params wire struct, the READ and WRITE
// command codes, and the device channel that carries them.
package stealthmem

import (
	"fmt"
	"unsafe"

	e "stealthmem/error"
)

// MemoryParams mirrors struct memory_params of the driver header:
//
//	struct memory_params {
//	    pid_t pid;
//	    unsigned long addr;
//	    size_t size;
//	    void *buf;
//	};
//
// Field order, widths and padding are part of the driver ABI. It is shared
// by Device and by every test double so layout drift shows up everywhere.
type MemoryParams struct {
	Pid  int32
	_    [4]byte
	Addr uint64
	Size uint
	Buf  unsafe.Pointer
}

// memoryParamsSize is sizeof(struct memory_params) on the supported 64-bit
// targets. The two array declarations below fail to compile if the Go
// layout ever stops matching it.
const memoryParamsSize = 32

var _ [memoryParamsSize - unsafe.Sizeof(MemoryParams{})]byte
var _ [unsafe.Sizeof(MemoryParams{}) - memoryParamsSize]byte

// Target identifies a location in a remote address space.
type Target struct {
	Pid     int32
	Address uint64
}

func (t Target) String() string {
	return fmt.Sprintf("pid %d at %#x", t.Pid, t.Address)
}

// Request is a single memory transaction: the wire params plus the buffer
// they point at. A Request owns its buffer and is meant to be used for
// exactly one Call.
type Request struct {
	params MemoryParams
	buf    []byte
}

// NewRequest builds a request over buf. params.Size is always len(buf).
func NewRequest(t Target, buf []byte) *Request {
	r := &Request{buf: buf}
	r.params = MemoryParams{
		Pid:  t.Pid,
		Addr: t.Address,
		Size: uint(len(buf)),
	}
	if len(buf) > 0 {
		r.params.Buf = unsafe.Pointer(&buf[0])
	}
	return r
}

// NewReadRequest allocates a zeroed buffer of size bytes and builds a
// request over it. A size beyond what a slice can hold returns an
// AllocationFailed error; a representable size the system cannot back is a
// fatal out of memory error, as with any Go allocation.
func NewReadRequest(t Target, size uint) (*Request, error) {
	buf, err := allocBuffer(size)
	if err != nil {
		return nil, err
	}
	return NewRequest(t, buf), nil
}

// NewWriteRequest builds a request over a private copy of data.
func NewWriteRequest(t Target, data []byte) *Request {
	buf := make([]byte, len(data))
	copy(buf, data)
	return NewRequest(t, buf)
}

// allocBuffer turns the makeslice length panic into an error. Running out
// of memory is not a panic and cannot be recovered.
func allocBuffer(size uint) (buf []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = e.Newf(e.AllocationFailed, "could not allocate %d byte buffer: %v", size, r)
		}
	}()
	return make([]byte, size), nil
}

// Target returns the remote location the request addresses.
func (r *Request) Target() Target {
	return Target{Pid: r.params.Pid, Address: r.params.Addr}
}

// Params returns the wire struct handed to the driver.
func (r *Request) Params() *MemoryParams {
	return &r.params
}

// Buffer returns the local buffer. After a READ it holds the remote bytes.
func (r *Request) Buffer() []byte {
	return r.buf
}

// consistent reports whether params still describe buf exactly.
func (r *Request) consistent() bool {
	if r.params.Size != uint(len(r.buf)) {
		return false
	}
	if len(r.buf) == 0 {
		return r.params.Buf == nil
	}
	return r.params.Buf == unsafe.Pointer(&r.buf[0])
}
