//go:build !linux && !darwin

package traffic

import "os"

func dataSync(f *os.File) error {
	return f.Sync()
}
