// Package cfenv reads the Cloud Foundry environment: the application
// description in VCAP_APPLICATION and the bound services in VCAP_SERVICES.
package cfenv

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Environment variable names set by Cloud Foundry.
const (
	EnvApplication   = "VCAP_APPLICATION"
	EnvServices      = "VCAP_SERVICES"
	EnvInstanceIndex = "CF_INSTANCE_INDEX"
)

var (
	// ErrNotSet is returned when the variable is absent or empty.
	ErrNotSet = errors.New("cfenv: variable not set")
	// ErrNoVolumeMount is returned when a service has no volume mount.
	ErrNoVolumeMount = errors.New("cfenv: no volume mount")
)

// Application is the subset of VCAP_APPLICATION we use.
type Application struct {
	ID      string   `json:"application_id"`
	Name    string   `json:"application_name"`
	URIs    []string `json:"application_uris"`
	SpaceID string   `json:"space_id"`
}

// VolumeMount is one entry of a volume service's volume_mounts.
type VolumeMount struct {
	ContainerDir string `json:"container_dir"`
	Mode         string `json:"mode"`
	DeviceType   string `json:"device_type"`
}

// Service is one bound service instance.
type Service struct {
	Name         string                 `json:"name"`
	Label        string                 `json:"label"`
	Tags         []string               `json:"tags"`
	Plan         string                 `json:"plan"`
	Credentials  map[string]interface{} `json:"credentials"`
	VolumeMounts []VolumeMount          `json:"volume_mounts"`
}

// Services maps a service label (e.g. "nfs") to its bound instances.
type Services map[string][]Service

// ParseApplication decodes a VCAP_APPLICATION document.
func ParseApplication(raw string) (*Application, error) {
	if raw == "" {
		return nil, ErrNotSet
	}
	var app Application
	if err := json.Unmarshal([]byte(raw), &app); err != nil {
		return nil, fmt.Errorf("cfenv: parse %s: %w", EnvApplication, err)
	}
	return &app, nil
}

// ParseServices decodes a VCAP_SERVICES document.
func ParseServices(raw string) (Services, error) {
	if raw == "" {
		return nil, ErrNotSet
	}
	var svcs Services
	if err := json.Unmarshal([]byte(raw), &svcs); err != nil {
		return nil, fmt.Errorf("cfenv: parse %s: %w", EnvServices, err)
	}
	return svcs, nil
}

// CurrentApplication reads VCAP_APPLICATION from the process environment.
func CurrentApplication() (*Application, error) {
	return ParseApplication(os.Getenv(EnvApplication))
}

// CurrentServices reads VCAP_SERVICES from the process environment.
func CurrentServices() (Services, error) {
	return ParseServices(os.Getenv(EnvServices))
}

// InstanceIndex returns CF_INSTANCE_INDEX, or 0 when unset or malformed.
func InstanceIndex() int {
	if v := os.Getenv(EnvInstanceIndex); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
	}
	return 0
}

// ByLabel returns the instances bound under label.
func (s Services) ByLabel(label string) []Service {
	return s[label]
}

// ByName finds a bound instance by its service name, whatever its label.
func (s Services) ByName(name string) (Service, bool) {
	for _, list := range s {
		for _, svc := range list {
			if svc.Name == name {
				return svc, true
			}
		}
	}
	return Service{}, false
}

// VolumeMount returns the container directory of the first volume mount of
// the service named name.
func (s Services) VolumeMount(name string) (string, error) {
	svc, ok := s.ByName(name)
	if !ok {
		return "", fmt.Errorf("cfenv: service %q not bound", name)
	}
	if len(svc.VolumeMounts) == 0 || svc.VolumeMounts[0].ContainerDir == "" {
		return "", fmt.Errorf("%w for service %q", ErrNoVolumeMount, name)
	}
	return svc.VolumeMounts[0].ContainerDir, nil
}
