// Package traffic generates sustained read and write load against a
// mounted directory, typically an NFS volume.
//
// # Overview
//
// A run is made of independent workers. Each worker owns exactly one file in
// the target directory and repeatedly sweeps it:
//
//   - Write workers recreate and fill their file on every pass.
//   - Read workers create their file once, then read it end to end on every
//     pass.
//
// Every pass is a full write-to-size or read-to-size sweep performed with
// unbuffered chunk-sized system calls, so each chunk is an observable I/O
// operation on the mount. Bytes moved are accumulated per worker and logged
// as a bytes-per-second rate once per log interval:
//
//	Bytes written per second: 48,211,002
//
// # Quick Start
//
//	cfg := traffic.WorkloadConfig{
//	    Directory:   "/var/vcap/data/nfs",
//	    ProcessID:   "nfs-load",
//	    LogInterval: 10 * time.Second,
//	    Write: traffic.ModeConfig{
//	        Threads:   4,
//	        FileName:  "nfs-write-test",
//	        ChunkSize: 8 * 1024,
//	        FileSize:  10 * 1024 * 1024,
//	        Duration:  time.Hour,
//	    },
//	}
//
//	controller := traffic.NewController(cfg, logger)
//	go controller.Start(ctx)
//	defer controller.Stop()
//
// # Shutdown
//
// Cancellation is cooperative. Controller.Stop sets a write-once flag that
// every TimedLoop checks after each pass, then waits for all workers to exit.
// A pass is never interrupted, so shutdown latency is bounded by the duration
// of one pass.
package traffic
