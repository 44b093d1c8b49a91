package health

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/FairForge/nfstraffic/internal/cfenv"
)

// NFSLabel is the VCAP_SERVICES label of volume services.
const NFSLabel = "nfs"

// Detail values reported per mount.
const (
	DetailReadable   = "Read permission enabled."
	DetailUnreadable = "No read permission."
	DetailProblem    = "Problems accessing nfs mount."
)

var (
	// ErrNoBinding means no nfs service is bound to the app.
	ErrNoBinding = errors.New("no nfs service binding")
	// ErrMountUnreadable means at least one bound mount cannot be read.
	ErrMountUnreadable = errors.New("nfs mount not readable")
)

// ServicesFunc returns the services bound to the app.
type ServicesFunc func() (cfenv.Services, error)

// MountCheck verifies that the container directory of every bound nfs
// service is readable. Each mount is reported under "{service}:{dir}".
func MountCheck(services ServicesFunc) CheckFunc {
	return func(ctx context.Context) (Details, error) {
		svcs, err := services()
		if errors.Is(err, cfenv.ErrNotSet) {
			return nil, ErrNoBinding
		}
		if err != nil {
			return nil, fmt.Errorf("read service bindings: %w", err)
		}
		nfs := svcs.ByLabel(NFSLabel)
		if len(nfs) == 0 {
			return nil, ErrNoBinding
		}

		details := make(Details)
		healthy := true
		for _, svc := range nfs {
			for _, m := range svc.VolumeMounts {
				if err := ctx.Err(); err != nil {
					return details, err
				}
				if m.ContainerDir == "" {
					healthy = false
					details[svc.Name] = DetailProblem
					continue
				}

				key := svc.Name + ":" + m.ContainerDir
				if err := readable(m.ContainerDir); err != nil {
					healthy = false
					details[key] = DetailUnreadable
					continue
				}
				details[key] = DetailReadable
			}
		}

		if !healthy {
			return details, ErrMountUnreadable
		}
		return details, nil
	}
}

// DirectoryCheck verifies that dir exists, is a directory and can be read.
// Free space is reported where the platform exposes it.
func DirectoryCheck(dir string) CheckFunc {
	return func(ctx context.Context) (Details, error) {
		details := Details{"directory": dir}

		info, err := os.Stat(dir)
		if err != nil {
			return details, fmt.Errorf("stat %s: %w", dir, err)
		}
		if !info.IsDir() {
			return details, fmt.Errorf("%s is not a directory", dir)
		}
		if err := readable(dir); err != nil {
			return details, fmt.Errorf("%s: %w", dir, err)
		}

		if free, err := freeBytes(dir); err == nil {
			details["free_bytes"] = fmt.Sprintf("%d", free)
		}
		return details, nil
	}
}
