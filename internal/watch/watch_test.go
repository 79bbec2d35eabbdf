package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/in-nis/lessonboard/internal/pipeline"
)

func TestKeyFor(t *testing.T) {
	dir := filepath.Join("data", "input")
	cases := []struct {
		name string
		key  string
		ok   bool
	}{
		{"orders/orders-2025-12-28-090000.tsv", "orders/orders-2025-12-28-090000.tsv", true},
		{"orders/export.XLSX", "orders/export.XLSX", true},
		{"instructors/roster-2025-12-28.json", "instructors/roster-2025-12-28.json", true},
		{"instructors/profiles.json", "instructors/profiles.json", true},
		{"orders/.tmp-1234", "", false},
		{"orders/notes.txt", "", false},
		{"instructors/photo.jpg", "", false},
		{"other/file.tsv", "", false},
	}
	for _, tc := range cases {
		key, ok := KeyFor(dir, filepath.Join(dir, filepath.FromSlash(tc.name)))
		assert.Equal(t, tc.ok, ok, tc.name)
		if tc.ok {
			assert.Equal(t, tc.key, key)
		}
	}

	_, ok := KeyFor(dir, filepath.Join("elsewhere", "orders", "a.tsv"))
	assert.False(t, ok)
}

func TestFlush_Debounces(t *testing.T) {
	var got []pipeline.Trigger
	w := &Watcher{
		bucket:   "input",
		logger:   zap.NewNop(),
		debounce: time.Second,
		pending:  map[string]time.Time{},
		handler: func(_ context.Context, ts []pipeline.Trigger) {
			got = append(got, ts...)
		},
	}
	start := time.Now()
	w.pending["orders/b.tsv"] = start
	w.pending["orders/a.tsv"] = start
	w.pending["instructors/profiles.json"] = start.Add(800 * time.Millisecond)

	w.flush(context.Background(), start.Add(500*time.Millisecond))
	assert.Empty(t, got)

	w.flush(context.Background(), start.Add(1200*time.Millisecond))
	assert.Equal(t, []pipeline.Trigger{
		{Bucket: "input", Key: "orders/a.tsv"},
		{Bucket: "input", Key: "orders/b.tsv"},
	}, got)
	assert.Len(t, w.pending, 1)
}

func TestWatcher_DeliversNewFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	var (
		mu  sync.Mutex
		got []pipeline.Trigger
	)
	w, err := New(root, "input", func(_ context.Context, ts []pipeline.Trigger) {
		mu.Lock()
		got = append(got, ts...)
		mu.Unlock()
	}, zap.NewNop())
	require.NoError(t, err)
	w.debounce = 50 * time.Millisecond

	require.NoError(t, w.Start(context.Background()))

	path := filepath.Join(root, "input", "orders", "orders-2025-12-28-090000.tsv")
	require.NoError(t, os.WriteFile(path, []byte("date_lesson\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "input", "orders", "ignore.txt"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 1
	}, 5*time.Second, 20*time.Millisecond)

	w.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, pipeline.Trigger{Bucket: "input", Key: "orders/orders-2025-12-28-090000.tsv"}, got[0])
}

func TestWatcher_StopAfterFailedStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	// the bucket is a plain file, so the watched directories cannot be created
	require.NoError(t, os.WriteFile(filepath.Join(root, "input"), []byte("x"), 0o644))

	w, err := New(root, "input", func(context.Context, []pipeline.Trigger) {}, zap.NewNop())
	require.NoError(t, err)
	require.Error(t, w.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked after a failed Start")
	}
}
