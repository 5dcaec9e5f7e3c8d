package rules

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Notifier turns filesystem events in the rules directory into hints that
// a Check is worth running early. The periodic check still runs; a hint
// only shortens the wait.
type Notifier struct {
	watcher *fsnotify.Watcher
	hints   chan struct{}
	stop    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// Notify starts watching dir.
func Notify(dir string, logger *slog.Logger) (*Notifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("rules notifier: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("rules notifier: watch %s: %w", dir, err)
	}

	n := &Notifier{
		watcher: fw,
		hints:   make(chan struct{}, 1),
		stop:    make(chan struct{}),
		logger:  logger,
	}
	n.wg.Add(1)
	go n.run()
	return n, nil
}

// Hints delivers at most one pending hint at a time.
func (n *Notifier) Hints() <-chan struct{} {
	return n.hints
}

// Close stops the notifier.
func (n *Notifier) Close() error {
	var err error
	n.once.Do(func() {
		close(n.stop)
		err = n.watcher.Close()
		n.wg.Wait()
	})
	return err
}

func (n *Notifier) run() {
	defer n.wg.Done()
	for {
		select {
		case <-n.stop:
			return
		case ev, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			n.logger.Debug("rules directory event", "event", ev.String())
			select {
			case n.hints <- struct{}{}:
			default:
			}
		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			n.logger.Warn("rules notifier error", "error", err)
		}
	}
}
