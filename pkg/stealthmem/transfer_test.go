package stealthmem

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"

	e "stealthmem/error"
)

// stubChannel fakes the driver on top of the production MemoryParams.
type stubChannel struct {
	pattern []byte
	errno   unix.Errno
	count   int
	calls   []Command
	wrote   []byte
	closed  bool
}

func (s *stubChannel) Call(cmd Command, req *Request) (int, error) {
	s.calls = append(s.calls, cmd)
	p := req.Params()
	if p.Size != uint(len(req.Buffer())) {
		return 0, &TransferError{Cmd: cmd, Target: req.Target(), Size: p.Size, Errno: unix.EINVAL}
	}
	if s.errno != 0 {
		return 0, &TransferError{Cmd: cmd, Target: req.Target(), Size: p.Size, Errno: s.errno}
	}

	buf := unsafe.Slice((*byte)(p.Buf), p.Size)
	switch cmd {
	case Read:
		copy(buf, s.pattern)
	case Write:
		s.wrote = append([]byte(nil), buf...)
	}
	if s.count != 0 {
		return s.count, nil
	}
	return len(buf), nil
}

func (s *stubChannel) Close() error {
	s.closed = true
	return nil
}

func TestReadMemory(t *testing.T) {
	pattern := []byte{0xef, 0xcd, 0xab, 0x90, 0x78, 0x56, 0x34, 0x12}
	ch := &stubChannel{pattern: pattern}

	res, err := ReadMemory(ch, Target{Pid: 1234, Address: 0x1000}, 8)
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 8 || res.Cmd != Read {
		t.Fatalf("unexpected result %+v", res)
	}
	if !bytes.Equal(res.Data, pattern) {
		t.Fatalf("Data = %x, want %x", res.Data, pattern)
	}
	if res.Target != (Target{Pid: 1234, Address: 0x1000}) {
		t.Fatalf("unexpected target %v", res.Target)
	}
	if len(ch.calls) != 1 || ch.calls[0] != Read {
		t.Fatalf("unexpected calls %v", ch.calls)
	}
}

func TestWriteMemory(t *testing.T) {
	ch := &stubChannel{}
	res, err := WriteMemory(ch, Target{Pid: 1234, Address: 0x1000}, []byte("goodbye, me"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != 11 || res.Cmd != Write {
		t.Fatalf("unexpected result %+v", res)
	}
	if string(ch.wrote) != "goodbye, me" {
		t.Fatalf("driver saw %q", ch.wrote)
	}
}

func TestReadMemoryTransferError(t *testing.T) {
	ch := &stubChannel{errno: unix.ESRCH}
	res, err := ReadMemory(ch, Target{Pid: 99999, Address: 0x1000}, 8)
	if res != nil {
		t.Fatalf("expected no result, got %+v", res)
	}
	var te *TransferError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransferError, got %T", err)
	}
	if te.Errno != unix.ESRCH || te.Cmd != Read || te.Size != 8 {
		t.Fatalf("unexpected error fields %+v", te)
	}
	if !errors.Is(err, e.TransferFailed) || !errors.Is(err, unix.ESRCH) {
		t.Fatalf("error does not match its kind and errno")
	}
	want := "failed to read memory: 8 bytes from pid 99999 at 0x1000: no such process"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestResultTransferred(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	tests := []struct {
		count int
		want  []byte
	}{
		{4, data},
		{2, data[:2]},
		{9, data},
		{-1, []byte{}},
	}
	for _, tt := range tests {
		r := &Result{Count: tt.count, Data: data}
		if got := r.Transferred(); !bytes.Equal(got, tt.want) {
			t.Fatalf("Transferred() with count %d = %v, want %v", tt.count, got, tt.want)
		}
	}
}

func TestOpenMissingDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stealthmem")
	d, err := Open(path)
	if d != nil {
		t.Fatalf("expected nil device")
	}
	var oe *OpenError
	if !errors.As(err, &oe) || oe.Path != path {
		t.Fatalf("expected *OpenError for %s, got %v", path, err)
	}
	if !errors.Is(err, e.OpenFailed) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error does not match its kind and cause: %v", err)
	}
}

func TestDeviceCallRejectsBeforeKernel(t *testing.T) {
	// A regular file stands in for the device: none of these calls may
	// reach the ioctl.
	path := filepath.Join(t.TempDir(), "dev")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}
	d, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	req := NewRequest(Target{Pid: 1}, make([]byte, 4))
	if _, err := d.Call(Command(0x42), req); !errors.Is(err, unix.ENOTTY) {
		t.Fatalf("unknown command: expected ENOTTY, got %v", err)
	}

	req.params.Size = 8
	if _, err := d.Call(Read, req); !errors.Is(err, unix.EINVAL) {
		t.Fatalf("inconsistent request: expected EINVAL, got %v", err)
	}

	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	req.params.Size = 4
	if _, err := d.Call(Read, req); !errors.Is(err, unix.EBADF) {
		t.Fatalf("closed device: expected EBADF, got %v", err)
	}
}

func TestDeviceCallOnRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}
	d, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	_, err = ReadMemory(d, Target{Pid: int32(os.Getpid()), Address: 0x1000}, 8)
	if !errors.Is(err, unix.ENOTTY) {
		t.Fatalf("expected ENOTTY from a regular file, got %v", err)
	}
}
