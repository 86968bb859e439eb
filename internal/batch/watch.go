package batch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

type WatchConfig struct {
	Roots       []string // directories to watch (recursive)
	Extensions  []string // empty means constants.AllowedExtensions
	InitialScan bool     // emit files already present
	SkipHidden  bool
	Debounce    time.Duration // coalesce rapid write bursts
}

// Watch emits the paths of supported files created or rewritten under the
// configured roots. Both channels close when ctx is done.
func Watch(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("no roots provided")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	exts := extSet(cfg.Extensions)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}

	// addTree watches every directory under root and hands each supported
	// file to found.
	addTree := func(root string, found func(path string)) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if cfg.SkipHidden && path != root && IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if allowed(path, exts) {
				found(path)
			}
			return nil
		})
	}

	var initial []string
	collect := func(path string) {
		if cfg.InitialScan {
			initial = append(initial, path)
		}
	}
	for _, r := range cfg.Roots {
		if err := addTree(r, collect); err != nil {
			logger.Error("failed to add root directory", "root", r, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		defer close(evCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("failed to close watcher", "error", err)
			}
		}()

		for _, p := range initial {
			select {
			case evCh <- p:
			case <-ctx.Done():
				return
			}
		}

		var (
			pending = map[string]struct{}{}
			ready   = make(chan struct{}, 1)
			timer   *time.Timer
		)
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		// The timer only signals ready; pending is owned by this goroutine.
		schedule := func() {
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(cfg.Debounce, func() {
				select {
				case ready <- struct{}{}:
				default:
				}
			})
		}
		queue := func(path string) { pending[path] = struct{}{} }
		flush := func() {
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			sort.Strings(paths)
			for _, p := range paths {
				select {
				case evCh <- p:
				case <-ctx.Done():
					return
				}
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-ready:
				flush()
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if cfg.SkipHidden && IsHidden(e.Name) {
					continue
				}
				if e.Op&fsnotify.Create != 0 {
					if fi, err := os.Stat(e.Name); err == nil && fi.IsDir() {
						// Files can land in a new directory before it is watched.
						before := len(pending)
						if err := addTree(e.Name, queue); err != nil {
							logger.Warn("failed to add new directory to watcher", "path", e.Name, "error", err)
						}
						if len(pending) > before {
							schedule()
						}
						continue
					}
				}
				if !allowed(e.Name, exts) || e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				queue(e.Name)
				schedule()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}
