//go:build darwin || linux

package health

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeBytes(t *testing.T) {
	free, err := freeBytes(t.TempDir())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, free, int64(0))

	_, err = freeBytes(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestDirectoryCheck_ReportsFreeSpace(t *testing.T) {
	details, err := DirectoryCheck(t.TempDir())(context.Background())
	require.NoError(t, err)

	free, err := strconv.ParseInt(details["free_bytes"], 10, 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, free, int64(0))
}
