package traffic

import (
	"fmt"
	"path/filepath"
)

// WorkerIdentity names the file a worker owns. Including the process ID and
// instance index keeps workers of different app instances sharing one mount
// from colliding.
type WorkerIdentity struct {
	Directory     string
	BaseName      string
	ProcessID     string
	InstanceIndex int
	ThreadIndex   int
}

// Base is the name shared by every thread of one mode in this process.
func (id WorkerIdentity) Base() string {
	return fmt.Sprintf("%s-%s-i%d", id.BaseName, id.ProcessID, id.InstanceIndex)
}

// Name is the worker's file name: {base}-{process}-i{instance}-t{thread}.
func (id WorkerIdentity) Name() string {
	return fmt.Sprintf("%s-t%d", id.Base(), id.ThreadIndex)
}

// Path is the absolute location of the worker's file.
func (id WorkerIdentity) Path() string {
	return filepath.Join(id.Directory, id.Name())
}

func (id WorkerIdentity) String() string {
	return id.Name()
}
