// Package watcher monitors a drop folder and hands newly arrived media
// files to a processing callback.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler processes one newly arrived file.
type Handler func(ctx context.Context, path string) error

var mediaExtensions = map[string]struct{}{
	".mkv": {}, ".mp4": {}, ".m4v": {}, ".mov": {}, ".webm": {}, ".avi": {},
	".flac": {}, ".mp3": {}, ".m4a": {}, ".ogg": {}, ".opus": {}, ".wav": {},
}

// Options tunes watcher behavior. The zero value gets sensible defaults
// from New.
type Options struct {
	// MaxConcurrent bounds how many files are processed at once.
	MaxConcurrent int
	// SettleInterval is how long a file's size must hold steady before it
	// is considered fully written.
	SettleInterval time.Duration
	// SettleTimeout bounds the total wait for a file to settle.
	SettleTimeout time.Duration
}

// Watcher monitors a single directory for new media files.
type Watcher struct {
	dir       string
	handler   Handler
	logger    *slog.Logger
	fsw       *fsnotify.Watcher
	opts      Options
	semaphore chan struct{}
	wg        sync.WaitGroup

	mu   sync.Mutex
	seen map[string]struct{}
}

// New creates a watcher on dir. The directory must exist.
func New(dir string, handler Handler, logger *slog.Logger, opts Options) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("watcher: handler is required")
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.SettleInterval <= 0 {
		opts.SettleInterval = 500 * time.Millisecond
	}
	if opts.SettleTimeout <= 0 {
		opts.SettleTimeout = 10 * time.Minute
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:       dir,
		handler:   handler,
		logger:    logger,
		fsw:       fsw,
		opts:      opts,
		semaphore: make(chan struct{}, opts.MaxConcurrent),
		seen:      make(map[string]struct{}),
	}, nil
}

// Run blocks monitoring the directory until ctx is canceled. In-flight
// handlers are waited for before returning.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	w.logger.Info("watching for media files",
		"directory", w.dir,
		"max_concurrent", w.opts.MaxConcurrent)

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			w.logger.Info("watcher stopped")
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !IsMediaFile(event.Name) {
				continue
			}
			if !w.markSeen(event.Name) {
				continue
			}
			select {
			case w.semaphore <- struct{}{}:
			case <-ctx.Done():
				w.wg.Wait()
				return ctx.Err()
			}
			w.wg.Add(1)
			go w.process(ctx, event.Name)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				w.wg.Wait()
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	defer w.wg.Done()
	defer func() { <-w.semaphore }()
	defer w.forget(path)

	if err := w.awaitSettled(ctx, path); err != nil {
		w.logger.Warn("file never settled", "file", path, "error", err)
		return
	}
	w.logger.Info("processing new file", "file", path)
	if err := w.handler(ctx, path); err != nil {
		w.logger.Error("processing failed", "file", path, "error", err)
		return
	}
	w.logger.Info("processing complete", "file", path)
}

// awaitSettled waits until the file's size stops changing, so partially
// copied files are not picked up mid-write.
func (w *Watcher) awaitSettled(ctx context.Context, path string) error {
	deadline := time.Now().Add(w.opts.SettleTimeout)
	lastSize := int64(-1)
	for {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == lastSize && info.Size() > 0 {
			return nil
		}
		lastSize = info.Size()
		if time.Now().After(deadline) {
			return fmt.Errorf("still growing after %s", w.opts.SettleTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.opts.SettleInterval):
		}
	}
}

func (w *Watcher) markSeen(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.seen[path]; ok {
		return false
	}
	w.seen[path] = struct{}{}
	return true
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.seen, path)
}

// IsMediaFile reports whether path has a recognized audio or video
// extension.
func IsMediaFile(path string) bool {
	_, ok := mediaExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
