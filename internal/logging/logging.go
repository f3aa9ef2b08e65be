// Package logging sends structured logs to a rotated file
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ayoisaiah/focusguard/internal/osutil"
)

const (
	maxSizeMB  = 5
	maxBackups = 3
	maxAgeDays = 28
)

// Options configures Initialize.
type Options struct {
	// Path of the log file. Logs are discarded when empty.
	Path  string
	Debug bool
}

// Initialize installs the default slog logger. The returned closer releases
// the log file.
func Initialize(opts Options) (io.Closer, error) {
	if opts.Path == "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(io.Discard, nil)))
		return io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), osutil.DirPermission); err != nil {
		return nil, errLogDir.Wrap(err)
	}

	w := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}

	slog.SetDefault(New(w, opts.Debug))

	return w, nil
}

// New returns a JSON logger writing to w.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

// Dump returns a debug attribute with a readable rendering of v. Nothing is
// rendered unless debug logging is on.
func Dump(key string, v any) slog.Attr {
	return slog.Any(key, lazyDump{v})
}

type lazyDump struct {
	v any
}

func (d lazyDump) LogValue() slog.Value {
	return slog.StringValue(strings.TrimSpace(dumper.Sdump(d.v)))
}
