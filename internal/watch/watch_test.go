package watch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestFilters(t *testing.T) {
	tests := []struct {
		path   string
		image  bool
		lesson bool
	}{
		{"strip.png", true, false},
		{"STRIP.JPEG", true, false},
		{"a/b/c.webp", true, false},
		{"deck.lesson", false, true},
		{"deck.LESSON", false, true},
		{"notes.txt", false, false},
		{"noext", false, false},
	}
	for _, tt := range tests {
		if got := IsImage(tt.path); got != tt.image {
			t.Errorf("IsImage(%q) = %v", tt.path, got)
		}
		if got := IsLesson(tt.path); got != tt.lesson {
			t.Errorf("IsLesson(%q) = %v", tt.path, got)
		}
	}
}

func TestRelevantOps(t *testing.T) {
	if relevant(fsnotify.Chmod) {
		t.Errorf("chmod should be ignored")
	}
	for _, op := range []fsnotify.Op{fsnotify.Write, fsnotify.Create, fsnotify.Rename, fsnotify.Remove} {
		if !relevant(op) {
			t.Errorf("%v should be relevant", op)
		}
	}
}

func TestWatcherReportsWatchedFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "strip.png")
	if err := os.WriteFile(target, []byte("a"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	w, err := NewWatcher(nil, target)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	// sibling files in the same directory are filtered out
	if err := os.WriteFile(filepath.Join(dir, "other.png"), []byte("b"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.WriteFile(target, []byte("c"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case got := <-w.Events:
		if got != target {
			t.Fatalf("event for %q, want %q", got, target)
		}
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("no event for %s", target)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(nil, t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if _, ok := <-w.Events; ok {
		t.Fatalf("Events still open")
	}
}

func nextEvent(t *testing.T, w *Watcher, timeout time.Duration) (string, bool) {
	t.Helper()
	select {
	case got := <-w.Events:
		return got, true
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(timeout):
	}
	return "", false
}

func appendFile(t *testing.T, path, data string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if _, err := f.WriteString(data); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestWatcherReportsWriteAfterEvent(t *testing.T) {
	target := filepath.Join(t.TempDir(), "strip.png")
	if err := os.WriteFile(target, nil, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	w, err := NewWatcher(nil, target)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	appendFile(t, target, "half")
	if _, ok := nextEvent(t, w, 5*time.Second); !ok {
		t.Fatalf("no event for first write")
	}
	// Finishing the save right after the first event must still be seen
	appendFile(t, target, "-complete")
	if _, ok := nextEvent(t, w, 5*time.Second); !ok {
		t.Fatalf("no event for the write that completed the file")
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "half-complete" {
		t.Fatalf("content = %q", data)
	}
}

func TestWatcherCollapsesBurstAfterLastWrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "strip.png")
	if err := os.WriteFile(target, nil, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	const debounce = 300 * time.Millisecond
	w, err := newWatcher(nil, debounce, target)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	chunks := []string{"a", "b", "c", "d", "e"}
	for _, c := range chunks {
		appendFile(t, target, c)
		time.Sleep(20 * time.Millisecond)
	}
	lastWrite := time.Now()

	if _, ok := nextEvent(t, w, 5*time.Second); !ok {
		t.Fatalf("no event for burst")
	}
	if since := time.Since(lastWrite); since < debounce/2 {
		t.Fatalf("event %v after the last write, want it to wait for quiet", since)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != strings.Join(chunks, "") {
		t.Fatalf("content = %q", data)
	}
	if got, ok := nextEvent(t, w, 2*debounce); ok {
		t.Fatalf("burst produced a second event for %s", got)
	}
}
