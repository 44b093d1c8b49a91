//go:build darwin || linux

package health

import (
	"golang.org/x/sys/unix"
)

// readable checks read permission with access(2), as the server sees it.
func readable(path string) error {
	return unix.Access(path, unix.R_OK)
}

// freeBytes returns the bytes available to unprivileged users on the
// filesystem holding path.
func freeBytes(path string) (int64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return int64(st.Bavail) * int64(st.Bsize), nil
}
