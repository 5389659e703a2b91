package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor produces when it
// saves a file.
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls OnChange after any of a set of files changed. Events within
// the debounce window are coalesced into one call.
type Watcher struct {
	files    map[string]bool
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onChange func(ctx context.Context) error
	logger   *log.Logger
}

// NewWatcher watches files. The parent directories are watched rather than
// the files themselves, so atomic replace-by-rename saves are seen too.
func NewWatcher(files []string, debounce time.Duration, logger *log.Logger, onChange func(ctx context.Context) error) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]bool, len(files)),
		fsw:      fsw,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run processes events until ctx is done. A failing OnChange is logged and
// watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if !w.files[filepath.Clean(evt.Name)] {
				continue
			}
			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("configuration file changed", "file", evt.Name, "op", evt.Op.String())
			fire = time.After(w.debounce)

		case <-fire:
			fire = nil
			if err := w.onChange(ctx); err != nil {
				w.logger.Error("reload failed, keeping the current configuration", "err", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}
