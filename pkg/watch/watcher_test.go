package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/stepdown/pkg/config"
)

func newTestWatcher(t *testing.T, dir string, debounce time.Duration) *Watcher {
	t.Helper()
	w, err := NewWatcher(dir, config.DefaultConfig(), debounce, WithOutput(io.Discard))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	t.Cleanup(func() { w.Stop() })
	return w
}

func TestNewWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		debounce time.Duration
		want     time.Duration
	}{
		{"default debounce", 0, 500 * time.Millisecond},
		{"custom debounce", time.Second, time.Second},
		{"negative debounce defaults", -time.Second, 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWatcher(t, tmpDir, tt.debounce)
			if w.fsWatcher == nil {
				t.Error("fsWatcher should not be nil")
			}
			if w.path != tmpDir {
				t.Errorf("path = %v, want %v", w.path, tmpDir)
			}
			if w.debounce != tt.want {
				t.Errorf("debounce = %v, want %v", w.debounce, tt.want)
			}
		})
	}
}

func TestNewWatcherNilConfig(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), nil, 0)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()
	if w.config == nil {
		t.Error("nil config should fall back to defaults")
	}
}

func TestWatcher_handleEvent(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, time.Second)

	tests := []struct {
		name    string
		event   fsnotify.Event
		pending bool
	}{
		{"java write", fsnotify.Event{Name: filepath.Join(tmpDir, "A.java"), Op: fsnotify.Write}, true},
		{"java create", fsnotify.Event{Name: filepath.Join(tmpDir, "B.java"), Op: fsnotify.Create}, true},
		{"java remove", fsnotify.Event{Name: filepath.Join(tmpDir, "C.java"), Op: fsnotify.Remove}, false},
		{"other language", fsnotify.Event{Name: filepath.Join(tmpDir, "main.go"), Op: fsnotify.Write}, false},
		{"excluded dir", fsnotify.Event{Name: filepath.Join(tmpDir, "target", "D.java"), Op: fsnotify.Write}, false},
		{"excluded pattern", fsnotify.Event{Name: filepath.Join(tmpDir, "package-info.java"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.handleEvent(tt.event)
			w.mu.Lock()
			_, ok := w.pending[tt.event.Name]
			w.mu.Unlock()
			if ok != tt.pending {
				t.Errorf("pending = %v, want %v", ok, tt.pending)
			}
		})
	}
}

func TestWatcher_processPending(t *testing.T) {
	w := newTestWatcher(t, t.TempDir(), 10*time.Millisecond)

	called := make(chan string, 2)
	w.SetCallback(func(path string) { called <- path })

	w.mu.Lock()
	w.pending["/ready/A.java"] = time.Now().Add(-time.Second)
	w.pending["/fresh/B.java"] = time.Now().Add(time.Hour)
	w.mu.Unlock()

	w.processPending()

	select {
	case path := <-called:
		if path != "/ready/A.java" {
			t.Errorf("callback path = %v", path)
		}
	case <-time.After(time.Second):
		t.Fatal("callback not called for a settled file")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.pending["/fresh/B.java"]; !ok {
		t.Error("file inside the debounce window should stay pending")
	}
	if _, ok := w.pending["/ready/A.java"]; ok {
		t.Error("processed file should leave the pending set")
	}
}

func TestWatcher_SettleSuppressesSelfWrites(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, 10*time.Millisecond)

	var calls atomic.Int32
	w.SetCallback(func(string) { calls.Add(1) })

	path := filepath.Join(tmpDir, "A.java")
	content := []byte("class A {}\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	w.Settle(path, content)

	w.mu.Lock()
	w.pending[path] = time.Now().Add(-time.Second)
	w.mu.Unlock()
	w.processPending()

	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 0 {
		t.Error("a file holding settled content should not trigger the callback")
	}

	// A user edit afterwards is picked up again.
	if err := os.WriteFile(path, []byte("class A { void a() {} }\n"), 0644); err != nil {
		t.Fatal(err)
	}
	w.mu.Lock()
	w.pending[path] = time.Now().Add(-time.Second)
	w.mu.Unlock()
	w.processPending()

	deadline := time.Now().Add(time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if calls.Load() != 1 {
		t.Errorf("callback calls = %d, want 1", calls.Load())
	}
}

func TestWatcher_Start_Context(t *testing.T) {
	w := newTestWatcher(t, t.TempDir(), 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("Start() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Error("Start() did not return after context cancellation")
	}
}

func TestWatcher_Start_FileChange(t *testing.T) {
	tmpDir := t.TempDir()
	w := newTestWatcher(t, tmpDir, 50*time.Millisecond)

	var mu sync.Mutex
	var paths []string
	w.SetCallback(func(path string) {
		mu.Lock()
		paths = append(paths, path)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	time.Sleep(100 * time.Millisecond)

	testFile := filepath.Join(tmpDir, "Demo.java")
	if err := os.WriteFile(testFile, []byte("class Demo {}\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(paths)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(paths) == 0 {
		t.Fatal("callback should be called when a Java file is created")
	}
	if paths[0] != testFile {
		t.Errorf("callback path = %v, want %v", paths[0], testFile)
	}
}

func TestWatcher_Start_ExcludedDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, "target", "classes"), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "src"), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	w := newTestWatcher(t, tmpDir, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	time.Sleep(100 * time.Millisecond)

	var sawSrc bool
	for _, path := range w.WatchedFiles() {
		switch filepath.Base(path) {
		case "target", "classes":
			t.Errorf("%s should not be watched", path)
		case "src":
			sawSrc = true
		}
	}
	if !sawSrc {
		t.Error("src should be watched")
	}
}
