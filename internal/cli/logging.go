package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/cableclub/internal/config"
)

// logFileName is created inside log_dir when one is configured.
const logFileName = "server.log"

// newLogger builds the process logger. --verbose forces debug level. When
// log_dir is set, records are also appended to log_dir/server.log; the
// returned function closes that file.
func newLogger(cfg *config.Config, verbose bool, stderr io.Writer) (*slog.Logger, func() error, error) {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}

	w := stderr
	closeFn := func() error { return nil }
	if cfg.LogDir != "" {
		path := filepath.Join(cfg.LogDir, logFileName)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(stderr, f)
		closeFn = f.Close
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler), closeFn, nil
}
