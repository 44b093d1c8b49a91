//go:build darwin

package traffic

import (
	"os"

	"golang.org/x/sys/unix"
)

func dataSync(f *os.File) error {
	return unix.Fsync(int(f.Fd()))
}
