package wizard

import (
	"path/filepath"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/mark3labs/regexr/internal/logger"
)

const watchDebounce = 100 * time.Millisecond

// dirChangedMsg is sent when entries are created, removed or renamed in the
// directory the upload browser shows.
type dirChangedMsg struct {
	dir string
}

// dirWatcher watches a single directory with fsnotify. Watch moves it to a
// new directory; Wait returns a command that blocks until the next change.
type dirWatcher struct {
	watcher *fsnotify.Watcher
	mu      sync.Mutex
	dir     string
}

func newDirWatcher() (*dirWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &dirWatcher{watcher: w}, nil
}

// Watch replaces the watched directory with dir.
func (d *dirWatcher) Watch(dir string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dir == dir {
		return
	}
	if d.dir != "" {
		_ = d.watcher.Remove(d.dir)
	}
	d.dir = ""
	if err := d.watcher.Add(dir); err != nil {
		logger.Warn("Failed to watch %s: %v", dir, err)
		return
	}
	d.dir = dir
}

// Wait returns a command that delivers the next dirChangedMsg. Bursts of
// events within watchDebounce collapse into one message. The command
// returns nil once the watcher is closed.
func (d *dirWatcher) Wait() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-d.watcher.Events:
				if !ok {
					return nil
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				d.drain()
				return dirChangedMsg{dir: filepath.Dir(ev.Name)}
			case err, ok := <-d.watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn("Directory watch error: %v", err)
			}
		}
	}
}

// drain swallows events until watchDebounce passes without one.
func (d *dirWatcher) drain() {
	timer := time.NewTimer(watchDebounce)
	defer timer.Stop()
	for {
		select {
		case _, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			timer.Reset(watchDebounce)
		case <-timer.C:
			return
		}
	}
}

// Close stops the watcher.
func (d *dirWatcher) Close() error {
	return d.watcher.Close()
}
