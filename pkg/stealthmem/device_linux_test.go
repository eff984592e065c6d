package stealthmem

import (
	"bytes"
	"os"
	"testing"
	"unsafe"
)

// Driver targets live at fixed addresses for the whole call.
var (
	driverValue uint64
	driverArea  [12]byte
)

func openDriver(t testing.TB) *Device {
	if _, err := os.Stat(DefaultPath); err != nil {
		t.Skipf("%s not available: %v", DefaultPath, err)
	}
	d, err := Open(DefaultPath)
	if err != nil {
		t.Skipf("could not open %s: %v", DefaultPath, err)
	}
	return d
}

func TestDriverReadWriteSelf(t *testing.T) {
	d := openDriver(t)
	defer d.Close()

	copy(driverArea[:], "hello world\x00")
	source := driverArea[:]
	target := Target{
		Pid:     int32(os.Getpid()),
		Address: uint64(uintptr(unsafe.Pointer(&source[0]))),
	}

	res, err := ReadMemory(d, target, uint(len(source)))
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != len(source) || !bytes.Equal(res.Data, source) {
		t.Fatalf("read %d bytes %q, want %q", res.Count, res.Data, source)
	}

	replacement := []byte("goodbye, me\x00")
	if _, err := WriteMemory(d, target, replacement); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(source, replacement) {
		t.Fatalf("source is %q after write, want %q", source, replacement)
	}
}

func BenchmarkDriverRead(b *testing.B) {
	d := openDriver(b)
	defer d.Close()

	driverValue = 0x1234567890abcdef
	req := NewRequest(Target{
		Pid:     int32(os.Getpid()),
		Address: uint64(uintptr(unsafe.Pointer(&driverValue))),
	}, make([]byte, 8))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := d.Call(Read, req); err != nil {
			b.Fatal(err)
		}
	}
	b.StopTimer()
}
