// Package logging configures the run logger: a console sink at the
// configured level and a per-run log file that receives every level.
package logging

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
	"github.com/spf13/afero"
)

// FileName returns the log file name of a run started at t
func FileName(t time.Time) string {
	return fmt.Sprintf("test_run_%s.log", t.Format("20060102_150405"))
}

// Options configures New
type Options struct {
	// Level is the console level; the file always receives every level
	Level string
	// Dir receives the run log file; empty disables the file
	Dir     string
	Console io.Writer
	Fs      afero.Fs
	Now     func() time.Time
}

// New builds the run logger. The returned hook is nil when no file is
// written. Cancel ctx and wait on hook.Done to flush the file.
func New(ctx context.Context, opts Options) (*logrus.Logger, *FileHook, error) {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("unknown log level %s", opts.Level)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.TraceLevel)
	logger.SetOutput(io.Discard)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if opts.Console != nil {
		logger.AddHook(&writer.Hook{
			Writer:    opts.Console,
			LogLevels: levelsUpTo(level),
		})
	}

	if opts.Dir == "" {
		logger.SetLevel(level)
		return logger, nil, nil
	}

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	fallback := logrus.New()
	fallback.SetOutput(opts.Console)
	if opts.Console == nil {
		fallback.SetOutput(io.Discard)
	}

	hook, err := NewFileHook(ctx, fs, filepath.Join(opts.Dir, FileName(now())), logrus.AllLevels, fallback)
	if err != nil {
		return nil, nil, err
	}
	logger.AddHook(hook)

	return logger, hook, nil
}

// levelsUpTo returns every level at least as severe as lvl
func levelsUpTo(lvl logrus.Level) []logrus.Level {
	index := sort.Search(len(logrus.AllLevels), func(i int) bool {
		return logrus.AllLevels[i] > lvl
	})
	return logrus.AllLevels[:index]
}
