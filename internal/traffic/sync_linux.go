//go:build linux

package traffic

import (
	"os"

	"golang.org/x/sys/unix"
)

// dataSync flushes file data, skipping metadata that is not needed to read
// it back.
func dataSync(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
