//go:build !darwin && !linux

package health

import (
	"errors"
	"os"
)

func readable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}

func freeBytes(string) (int64, error) {
	return 0, errors.New("free space not supported on this platform")
}
