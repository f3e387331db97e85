package manager

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestNewFileWatcher(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFileWatcher([]string{filepath.Join(dir, "policy.json")}, 0, quietLogger())
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v, want nil", err)
	}
	if w.debounce.interval != DefaultDebounceInterval {
		t.Errorf("debounce interval = %v, want %v", w.debounce.interval, DefaultDebounceInterval)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v, want nil", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v, want nil", err)
	}
}

func TestNewFileWatcher_NoPaths(t *testing.T) {
	if _, err := NewFileWatcher(nil, 0, nil); err == nil {
		t.Error("NewFileWatcher(nil) error = nil, want error")
	}
}

func TestFileWatcher_ShouldProcessEvent(t *testing.T) {
	dir := t.TempDir()
	policy := filepath.Join(dir, "policy.json")
	w, err := NewFileWatcher([]string{policy}, 0, quietLogger())
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}
	defer w.Stop()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write to watched file", fsnotify.Event{Name: policy, Op: fsnotify.Write}, true},
		{"create of watched file", fsnotify.Event{Name: policy, Op: fsnotify.Create}, true},
		{"chmod only", fsnotify.Event{Name: policy, Op: fsnotify.Chmod}, false},
		{"sibling file", fsnotify.Event{Name: filepath.Join(dir, "other.json"), Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.shouldProcessEvent(tt.event); got != tt.want {
				t.Errorf("shouldProcessEvent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFileWatcher_TriggersOnChange(t *testing.T) {
	dir := t.TempDir()
	policy := filepath.Join(dir, "policy.json")
	writeFile(t, policy, `{}`)

	w, err := NewFileWatcher([]string{policy}, 20*time.Millisecond, quietLogger())
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func() error {
			calls.Add(1)
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "unrelated.json"), `{}`)
	writeFile(t, policy, `{"a.com": {}}`)

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if calls.Load() == 0 {
		t.Error("onChange was not called")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v, want nil", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v, want nil", err)
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Errorf("callback ran %d times, want 1", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })
	time.Sleep(60 * time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Errorf("callback ran %d times after Stop, want 0", got)
	}
}
