package storage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 300 * time.Millisecond

// Watcher turns completed writes under the watched prefixes of a Local store
// into ObjectEvents.
type Watcher struct {
	store      *Local
	prefixes   []string
	onFinalize func(ctx context.Context, ev ObjectEvent)
	debounce   time.Duration
	logger     *zap.Logger

	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	debounceMap map[string]*time.Timer
	ctx         context.Context
	done        chan struct{}
	stopOnce    sync.Once
}

type WatcherOption func(*Watcher)

func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher watches the given top-level prefixes (e.g. "uploads") of store.
func NewWatcher(store *Local, prefixes []string, onFinalize func(ctx context.Context, ev ObjectEvent), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		store:       store,
		prefixes:    prefixes,
		onFinalize:  onFinalize,
		debounce:    defaultDebounce,
		logger:      zap.NewNop(),
		debounceMap: make(map[string]*time.Timer),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. Objects already present are not replayed.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.watcher = fw
	w.ctx = ctx
	w.mu.Unlock()

	for _, prefix := range w.prefixes {
		dir := filepath.Join(w.store.Root(), filepath.FromSlash(prefix))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fw.Close()
			return err
		}
		if err := w.addTree(dir); err != nil {
			fw.Close()
			return err
		}
	}

	go w.run(ctx)
	w.logger.Info("storage watcher started", zap.Strings("prefixes", w.prefixes))
	return nil
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		defer w.mu.Unlock()
		for path, t := range w.debounceMap {
			t.Stop()
			delete(w.debounceMap, path)
		}
		if w.watcher != nil {
			w.watcher.Close()
		}
	})
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("storage watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(ev.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		// Files can land before the new directory is watched, so sweep it.
		if err := w.addTree(ev.Name); err != nil {
			w.logger.Warn("storage watcher failed to add directory", zap.String("path", ev.Name), zap.Error(err))
		}
		w.sweep(ev.Name)
		return
	}

	if IsObjectFile(filepath.Base(ev.Name)) {
		w.debounceFinalize(ev.Name)
	}
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) sweep(dir string) {
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && IsObjectFile(d.Name()) {
			w.debounceFinalize(path)
		}
		return nil
	})
}

func (w *Watcher) debounceFinalize(full string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.debounceMap[full]; ok {
		t.Stop()
	}
	w.debounceMap[full] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.debounceMap, full)
		ctx := w.ctx
		w.mu.Unlock()

		select {
		case <-w.done:
			return
		default:
		}
		w.finalize(ctx, full)
	})
}

func (w *Watcher) finalize(ctx context.Context, full string) {
	objectPath, ok := w.store.objectPath(full)
	if !ok || !w.watched(objectPath) {
		return
	}
	ev, err := w.store.Event(ctx, objectPath)
	if err != nil {
		w.logger.Warn("storage watcher could not read object", zap.String("path", objectPath), zap.Error(err))
		return
	}
	w.logger.Debug("object finalized", zap.String("path", objectPath), zap.String("content_type", ev.ContentType))
	w.onFinalize(ctx, ev)
}

func (w *Watcher) watched(objectPath string) bool {
	for _, prefix := range w.prefixes {
		if strings.HasPrefix(objectPath, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}
