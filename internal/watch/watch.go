package watch

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/in-nis/lessonboard/internal/pipeline"
)

// Handler receives the triggers collected during one debounce period.
type Handler func(ctx context.Context, triggers []pipeline.Trigger)

// Watcher turns files landing in the input bucket directory into pipeline
// triggers. Only orders/ and instructors/ are watched.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	bucket   string
	handler  Handler
	logger   *zap.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New watches <root>/<bucket>/orders and <root>/<bucket>/instructors.
func New(root, bucket string, handler Handler, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		watcher:  fw,
		root:     root,
		bucket:   bucket,
		handler:  handler,
		logger:   logger,
		debounce: 500 * time.Millisecond,
		pending:  map[string]time.Time{},
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start is non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, prefix := range []string{pipeline.OrdersPrefix, pipeline.InstructorsPrefix} {
		dir := filepath.Join(w.root, w.bucket, filepath.FromSlash(prefix))
		err := os.MkdirAll(dir, 0o755)
		if err == nil {
			err = w.watcher.Add(dir)
		}
		if err != nil {
			// no event loop was started, so Stop must not wait for one
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return err
		}
		w.logger.Info("watching input directory", zap.String("dir", dir))
	}

	go w.run(ctx)
	return nil
}

// Stop ends the event loop and releases the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		w.logger.Error("closing watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", zap.Error(err))
		case <-ticker.C:
			w.flush(ctx, time.Now())
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	key, ok := KeyFor(filepath.Join(w.root, w.bucket), event.Name)
	if !ok {
		return
	}
	w.mu.Lock()
	w.pending[key] = time.Now()
	w.mu.Unlock()
}

// flush hands over every key that has been quiet for the debounce period.
func (w *Watcher) flush(ctx context.Context, now time.Time) {
	w.mu.Lock()
	var keys []string
	for key, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			keys = append(keys, key)
			delete(w.pending, key)
		}
	}
	w.mu.Unlock()

	if len(keys) == 0 {
		return
	}
	sort.Strings(keys)

	triggers := make([]pipeline.Trigger, len(keys))
	for i, k := range keys {
		triggers[i] = pipeline.Trigger{Bucket: w.bucket, Key: k}
	}
	w.logger.Info("input changed", zap.Strings("keys", keys))
	w.handler(ctx, triggers)
}

// KeyFor maps a file path under the bucket directory to its object key.
// Temporary files and unsupported extensions are ignored.
func KeyFor(bucketDir, name string) (string, bool) {
	rel, err := filepath.Rel(bucketDir, name)
	if err != nil || !filepath.IsLocal(rel) {
		return "", false
	}
	key := filepath.ToSlash(rel)
	if strings.HasPrefix(path.Base(key), ".") {
		return "", false
	}

	switch {
	case strings.HasPrefix(key, pipeline.OrdersPrefix):
		ext := strings.ToLower(path.Ext(key))
		return key, ext == ".tsv" || ext == ".xlsx"
	case strings.HasPrefix(key, pipeline.InstructorsPrefix):
		return key, strings.EqualFold(path.Ext(key), ".json")
	}
	return "", false
}
