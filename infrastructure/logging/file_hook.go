package logging

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// fileHookBufferSize is the capacity of the pending log line queue
const fileHookBufferSize = 256

// FileHook writes log entries to a file from a single background goroutine.
// Fire never blocks: when the queue is full the line is dropped and counted.
type FileHook struct {
	fallbackLogger logrus.FieldLogger
	formatter      logrus.Formatter
	loglines       chan []byte
	path           string
	w              io.WriteCloser
	bw             *bufio.Writer
	levels         []logrus.Level
	dropped        atomic.Int64
	done           chan struct{}
}

// NewFileHook opens path on fs and starts the writer goroutine. The file is
// flushed and closed once ctx is done; Done is closed after that.
func NewFileHook(ctx context.Context, fs afero.Fs, path string, levels []logrus.Level, fallbackLogger logrus.FieldLogger) (*FileHook, error) {
	if path == "" {
		return nil, fmt.Errorf("filepath must not be empty")
	}

	h := &FileHook{
		fallbackLogger: fallbackLogger,
		formatter: &logrus.TextFormatter{
			FullTimestamp: true,
			DisableColors: true,
		},
		path:   path,
		levels: levels,
		done:   make(chan struct{}),
	}

	if err := h.openFile(fs); err != nil {
		return nil, err
	}
	h.loglines = h.loop(ctx)

	return h, nil
}

// openFile opens the log file and initializes writers
func (h *FileHook) openFile(fs afero.Fs) error {
	if err := fs.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", filepath.Dir(h.path), err)
	}

	file, err := fs.OpenFile(h.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open logfile %s: %w", h.path, err)
	}

	h.w = file
	h.bw = bufio.NewWriter(file)
	return nil
}

func (h *FileHook) loop(ctx context.Context) chan []byte {
	loglines := make(chan []byte, fileHookBufferSize)

	go func() {
		defer close(h.done)
		for {
			select {
			case line := <-loglines:
				h.write(line)
			case <-ctx.Done():
			drain:
				for {
					select {
					case line := <-loglines:
						h.write(line)
					default:
						break drain
					}
				}

				if err := h.bw.Flush(); err != nil {
					h.fallbackLogger.Errorf("failed to flush buffer: %v", err)
				}
				if err := h.w.Close(); err != nil {
					h.fallbackLogger.Errorf("failed to close logfile: %v", err)
				}
				if n := h.dropped.Load(); n > 0 {
					h.fallbackLogger.Warnf("%d log lines were dropped from %s", n, h.path)
				}
				return
			}
		}
	}()

	return loglines
}

func (h *FileHook) write(line []byte) {
	if _, err := h.bw.Write(line); err != nil {
		h.fallbackLogger.Errorf("failed to write a log message to a logfile: %v", err)
	}
}

// Fire queues the formatted entry for the writer goroutine
func (h *FileHook) Fire(entry *logrus.Entry) error {
	message, err := h.formatter.Format(entry)
	if err != nil {
		return fmt.Errorf("failed to get a log entry bytes: %w", err)
	}

	select {
	case h.loglines <- message:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// Levels returns the levels written to the file
func (h *FileHook) Levels() []logrus.Level {
	return h.levels
}

// Path returns the log file path
func (h *FileHook) Path() string {
	return h.path
}

// Dropped returns how many lines were discarded because the queue was full
func (h *FileHook) Dropped() int64 {
	return h.dropped.Load()
}

// Done is closed after the file has been flushed and closed
func (h *FileHook) Done() <-chan struct{} {
	return h.done
}
