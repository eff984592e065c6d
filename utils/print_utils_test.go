package utils

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"stealthmem/pkg/stealthmem"
)

func TestPrintResult(t *testing.T) {
	res := &stealthmem.Result{
		Cmd:    stealthmem.Read,
		Target: stealthmem.Target{Pid: 1234, Address: 0x1000},
		Count:  8,
		Data:   []byte{0xef, 0xcd, 0xab, 0x90, 0x78, 0x56, 0x34, 0x12},
	}

	var buf bytes.Buffer
	PrintResult(&buf, res, false)

	want := "read 8 bytes from pid 1234 at 0x1000\nvalue: [ef, cd, ab, 90, 78, 56, 34, 12]\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestPrintResultShortTransfer(t *testing.T) {
	res := &stealthmem.Result{
		Cmd:    stealthmem.Read,
		Target: stealthmem.Target{Pid: 1, Address: 0x10},
		Count:  2,
		Data:   []byte{1, 2, 0, 0},
	}

	var buf bytes.Buffer
	PrintResult(&buf, res, false)
	if !strings.HasSuffix(buf.String(), "value: [01, 02]\n") {
		t.Fatalf("unexpected report %q", buf.String())
	}
}

func TestPrintResultWriteColor(t *testing.T) {
	res := &stealthmem.Result{
		Cmd:    stealthmem.Write,
		Target: stealthmem.Target{Pid: 7, Address: 0xdeadbeef},
		Count:  1,
		Data:   []byte{0xff},
	}

	var buf bytes.Buffer
	PrintResult(&buf, res, true)
	out := buf.String()
	if !strings.HasPrefix(out, "\033[32mwrote 1 bytes to pid 7 at 0xdeadbeef\033[0m\n") {
		t.Fatalf("unexpected header %q", out)
	}
	if !strings.HasSuffix(out, "value: [ff]\n") {
		t.Fatalf("unexpected value line %q", out)
	}
}

func TestFormatBytes(t *testing.T) {
	if got := FormatBytes(nil); got != "[]" {
		t.Fatalf("FormatBytes(nil) = %q", got)
	}
	if got := FormatBytes([]byte{0, 10, 255}); got != "[00, 0a, ff]" {
		t.Fatalf("FormatBytes = %q", got)
	}
}

func TestCheckPid(t *testing.T) {
	if !CheckPid(int32(os.Getpid())) {
		t.Fatalf("own pid not found under /proc")
	}
	if CheckPid(-1) {
		t.Fatalf("pid -1 should not exist")
	}
}
