package traffic

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// materializeChunkSize is used when a read worker creates the file it reads.
const materializeChunkSize = 8 * 1024

// FileIO performs single write or read passes over a file. Writes go straight
// to the file descriptor, one system call per chunk, so the runtime never
// coalesces them.
type FileIO struct {
	logger  *zap.Logger
	limiter *rate.Limiter
	sync    bool
}

// FileIOOption configures a FileIO.
type FileIOOption func(*FileIO)

// WithSync syncs file data to the server after every written chunk.
func WithSync(enabled bool) FileIOOption {
	return func(f *FileIO) {
		f.sync = enabled
	}
}

// WithBandwidthLimit caps throughput at bytesPerSecond. Zero disables the cap.
func WithBandwidthLimit(bytesPerSecond int) FileIOOption {
	return func(f *FileIO) {
		if bytesPerSecond <= 0 {
			f.limiter = nil
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(bytesPerSecond), bytesPerSecond)
	}
}

// NewFileIO creates a FileIO that logs through logger.
func NewFileIO(logger *zap.Logger, opts ...FileIOOption) *FileIO {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &FileIO{logger: logger}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WriteFile removes any existing file at path, then writes targetSize bytes of
// random data to it in chunkSize writes. On failure it returns the number of
// bytes written so far along with the error.
func (f *FileIO) WriteFile(path string, targetSize int64, chunkSize int) (int64, error) {
	var buf []byte
	if targetSize > 0 && chunkSize > 0 {
		buf = make([]byte, chunkSize)
		if _, err := rand.Read(buf); err != nil {
			return 0, fmt.Errorf("generate chunk data: %w", err)
		}
	}

	if err := removeFile(path); err != nil {
		return 0, fmt.Errorf("remove existing file: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	var written int64
	if buf != nil {
		written, err = f.writeChunks(file, buf, targetSize)
	}

	if cerr := file.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("close file: %w", cerr)
	}
	return written, err
}

func (f *FileIO) writeChunks(w io.Writer, buf []byte, targetSize int64) (int64, error) {
	file, _ := w.(*os.File)

	var written int64
	for written < targetSize {
		n := int(min(int64(len(buf)), targetSize-written))
		f.wait(n)

		m, err := w.Write(buf[:n])
		written += int64(m)
		if err != nil {
			return written, fmt.Errorf("write chunk at offset %d: %w", written-int64(m), err)
		}

		if f.sync && file != nil {
			if err := dataSync(file); err != nil {
				return written, fmt.Errorf("sync chunk at offset %d: %w", written-int64(m), err)
			}
		}
	}
	return written, nil
}

// ReadFile reads up to targetSize bytes from path in chunkSize reads.
// Short reads are logged and counted as is. Reaching the end of the file
// early stops the pass without an error.
func (f *FileIO) ReadFile(path string, targetSize int64, chunkSize int) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if targetSize <= 0 || chunkSize <= 0 {
		return 0, nil
	}
	return f.readChunks(file, make([]byte, chunkSize), targetSize)
}

func (f *FileIO) readChunks(r io.Reader, buf []byte, targetSize int64) (int64, error) {
	var total int64
	for total < targetSize {
		want := int(min(int64(len(buf)), targetSize-total))
		f.wait(want)

		n, err := r.Read(buf[:want])
		total += int64(n)

		if err != nil && !errors.Is(err, io.EOF) {
			return total, fmt.Errorf("read chunk at offset %d: %w", total-int64(n), err)
		}
		if n == 0 || err != nil {
			if total < targetSize {
				f.logger.Warn("Read past end of stream",
					zap.Int64("bytes_read", total),
					zap.Int64("target_size", targetSize))
			}
			return total, nil
		}
		if n != want {
			f.logger.Warn(fmt.Sprintf("Read returned %d bytes when %d bytes was requested.", n, want))
		}
	}
	return total, nil
}

// wait blocks until the limiter admits n bytes.
func (f *FileIO) wait(n int) {
	if f.limiter == nil {
		return
	}
	burst := f.limiter.Burst()
	for n > 0 {
		step := min(n, burst)
		if err := f.limiter.WaitN(context.Background(), step); err != nil {
			f.logger.Debug("bandwidth limiter wait failed", zap.Error(err))
			return
		}
		n -= step
	}
}

// removeFile deletes path. A missing file is not an error.
func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
