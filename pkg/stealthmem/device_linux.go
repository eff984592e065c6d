package stealthmem

import (
	"os"
	"runtime"
	"unsafe"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"stealthmem/pkg/logflags"
)

// DefaultPath is where the driver registers its control device.
const DefaultPath = "/dev/stealthmem"

// Device is an open handle on the control device.
type Device struct {
	path string
	f    *os.File
	log  logflags.Logger
}

// Open opens the control device at path for reading and writing.
func Open(path string) (*Device, error) {
	log := logflags.DeviceLogger()

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		log.Warnf("open %s: %v", path, err)
		return nil, &OpenError{Path: path, Err: err}
	}

	log.Debugf("opened %s", path)
	return &Device{path: path, f: f, log: log}, nil
}

// Path returns the device path the handle was opened from.
func (d *Device) Path() string {
	return d.path
}

// Call issues cmd carrying req and returns the transfer count reported by
// the driver. It blocks for as long as the driver takes.
func (d *Device) Call(cmd Command, req *Request) (int, error) {
	var id string
	if logflags.Device() {
		id = uuid.New().String()
	}
	t := req.Target()
	fail := func(errno unix.Errno) (int, error) {
		d.log.Warnw("control call failed", "id", id, "cmd", cmd, "pid", t.Pid, "addr", t.Address, "size", req.params.Size, "errno", errno)
		return 0, &TransferError{Cmd: cmd, Target: t, Size: req.params.Size, Errno: errno}
	}

	switch {
	case !cmd.valid():
		return fail(unix.ENOTTY)
	case !req.consistent():
		return fail(unix.EINVAL)
	case d.f == nil:
		return fail(unix.EBADF)
	}

	d.log.Debugw("control call", "id", id, "cmd", cmd, "request", cmd.Request(), "pid", t.Pid, "addr", t.Address, "size", req.params.Size)

	rc, err := d.f.SyscallConn()
	if err != nil {
		return fail(unix.EBADF)
	}

	var (
		n     uintptr
		errno unix.Errno
	)
	err = rc.Control(func(fd uintptr) {
		n, errno = ioctl(fd, cmd.Request(), &req.params)
	})
	runtime.KeepAlive(req)
	if err != nil {
		return fail(unix.EBADF)
	}
	if errno != 0 {
		return fail(errno)
	}

	d.log.Debugw("control call done", "id", id, "count", int(n))
	return int(n), nil
}

// ioctl is the only place a raw pointer crosses into the kernel. Callers
// guarantee p.Buf points at p.Size bytes that stay reachable for the whole
// call; the driver writes at most p.Size bytes through it.
func ioctl(fd, op uintptr, p *MemoryParams) (uintptr, unix.Errno) {
	r, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, op, uintptr(unsafe.Pointer(p)))
	return r, errno
}

// Close releases the handle. It is safe to call more than once.
func (d *Device) Close() error {
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	d.log.Debugf("closed %s", d.path)
	return err
}
