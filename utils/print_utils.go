package utils

import (
	"fmt"
	"io"
	"strings"

	"stealthmem/pkg/stealthmem"
)

const (
	terminalHighlightEscapeCode string = "\033[%2dm"
	terminalResetEscapeCode     string = "\033[0m"

	highlightColor = 32
)

// PrintResult writes the report of a successful transfer:
//
//	read 8 bytes from pid 1234 at 0x1000
//	value: [ef, cd, ab, 90, 78, 56, 34, 12]
//
// The header is highlighted when color is set.
func PrintResult(w io.Writer, res *stealthmem.Result, color bool) {
	header := ResultHeader(res)
	if color {
		header = fmt.Sprintf(terminalHighlightEscapeCode, highlightColor) + header + terminalResetEscapeCode
	}
	fmt.Fprintln(w, header)
	fmt.Fprintf(w, "value: %s\n", FormatBytes(res.Transferred()))
}

// ResultHeader describes the transfer count, pid and address of res.
func ResultHeader(res *stealthmem.Result) string {
	if res.Cmd == stealthmem.Write {
		return fmt.Sprintf("wrote %d bytes to pid %d at %#x", res.Count, res.Target.Pid, res.Target.Address)
	}
	return fmt.Sprintf("read %d bytes from pid %d at %#x", res.Count, res.Target.Pid, res.Target.Address)
}

// FormatBytes renders bs as a bracketed list of two-digit hex bytes.
func FormatBytes(bs []byte) string {
	var buf strings.Builder
	buf.WriteByte('[')
	for i, b := range bs {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%02x", b)
	}
	buf.WriteByte(']')
	return buf.String()
}
