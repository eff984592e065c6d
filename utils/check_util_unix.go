package utils

import (
	"os"
	"path/filepath"
	"strconv"
)

// CheckPid reports whether pid currently has an entry under /proc.
func CheckPid(pid int32) bool {
	path := filepath.Join("/proc", strconv.Itoa(int(pid)))
	_, err := os.Stat(path)
	return err == nil
}
