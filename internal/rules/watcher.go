package rules

import (
	"errors"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"slices"
	"time"
)

// Watcher polls a rules directory and keeps the current snapshot.
// It is not safe for concurrent use; the server loop owns it.
type Watcher struct {
	dir     string
	stamps  map[string]time.Time
	current *RuleSet
	logger  *slog.Logger
}

// NewWatcher creates a watcher and performs the initial load. A missing
// directory yields an empty snapshot.
func NewWatcher(dir string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		dir:     dir,
		stamps:  map[string]time.Time{},
		current: Empty,
		logger:  logger,
	}
	if _, err := w.Check(); err != nil {
		return nil, err
	}
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Current returns the active snapshot. The pointer only changes after a
// successful reload.
func (w *Watcher) Current() *RuleSet {
	return w.current
}

// Check compares modification times with the previous scan and reloads
// every file when anything differs. A failed reload keeps the previous
// snapshot and is retried on the next check.
func (w *Watcher) Check() (bool, error) {
	stamps, err := scan(w.dir)
	if errors.Is(err, fs.ErrNotExist) {
		w.logger.Debug("rules directory missing", "dir", w.dir)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if maps.Equal(stamps, w.stamps) {
		return false, nil
	}

	names := make([]string, 0, len(stamps))
	for name := range stamps {
		names = append(names, name)
	}
	slices.Sort(names)
	set, err := Load(w.dir, names)
	if err != nil {
		return false, err
	}
	w.logger.Debug("refreshing rules due to changes", "dir", w.dir, "rules", set.Len())
	w.stamps = stamps
	w.current = set
	return true, nil
}

func scan(dir string) (map[string]time.Time, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	stamps := make(map[string]time.Time, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		stamps[e.Name()] = info.ModTime()
	}
	return stamps, nil
}
