package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/FairForge/nfstraffic/internal/traffic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSummary(t *testing.T) {
	id := func(base string, thread int) traffic.WorkerIdentity {
		return traffic.WorkerIdentity{Directory: "/mnt", BaseName: base, ProcessID: "app", ThreadIndex: thread}
	}
	reports := []traffic.WorkerReport{
		{
			Identity: id("nfs-read-test", 0),
			Mode:     traffic.ModeRead,
			Loop: traffic.LoopResult{
				State: traffic.LoopCompleted, Passes: 120, Bytes: 1_200_000, Elapsed: 2 * time.Second,
			},
		},
		{
			Identity: id("nfs-read-test", 1),
			Mode:     traffic.ModeRead,
			Err:      errors.New("create file: permission denied"),
		},
		{
			Identity: id("nfs-write-test", 0),
			Mode:     traffic.ModeWrite,
			Loop: traffic.LoopResult{
				State: traffic.LoopCancelled, Passes: 3, Failures: 1, Bytes: 30_000, Elapsed: time.Second,
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, renderSummary(&buf, reports))

	out := buf.String()
	assert.Contains(t, out, "nfs-read-test-app-i0-t0")
	assert.Contains(t, out, "nfs-write-test-app-i0-t0")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "cancelled")
	assert.Contains(t, out, "permission denied")
	assert.Contains(t, out, "1,200,000")
	assert.Contains(t, out, "600,000")
	assert.Contains(t, out, "Total bytes: 1,230,000")
}

func TestRenderSummary_NoWorkers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderSummary(&buf, nil))
	assert.Contains(t, buf.String(), "no workers ran")
}
