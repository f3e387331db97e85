package scheduler

import (
	"context"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_Add(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		wantError bool
	}{
		{"every descriptor", Every(15 * time.Minute), false},
		{"standard cron", "0 3 * * *", false},
		{"hourly descriptor", "@hourly", false},
		{"invalid", "invalid cron", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil)
			err := s.Add("job", tt.spec, func(context.Context) {})
			if (err != nil) != tt.wantError {
				t.Errorf("Add() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestScheduler_JobsAndRemove(t *testing.T) {
	s := New(nil)
	noop := func(context.Context) {}

	if err := s.Add("sweep", Every(time.Minute), noop); err != nil {
		t.Fatal(err)
	}
	if err := s.Add("refresh", Every(time.Minute), noop); err != nil {
		t.Fatal(err)
	}
	if err := s.Add("refresh", Every(time.Hour), noop); err != nil {
		t.Fatal(err)
	}

	if got := s.Jobs(); !reflect.DeepEqual(got, []string{"refresh", "sweep"}) {
		t.Errorf("Jobs() = %v", got)
	}

	s.Remove("sweep")
	s.Remove("unknown")
	if got := s.Jobs(); !reflect.DeepEqual(got, []string{"refresh"}) {
		t.Errorf("Jobs() after Remove = %v", got)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(nil)
	if err := s.Add("refresh", Every(time.Hour), func(context.Context) {}); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.NextRun("refresh"); ok {
		t.Error("NextRun() known before Start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}

	next, ok := s.NextRun("refresh")
	if !ok {
		t.Fatal("NextRun() unknown while running")
	}
	if until := time.Until(next); until <= 0 || until > time.Hour {
		t.Errorf("NextRun() in %v, want within the hour", until)
	}

	s.Stop()
	s.Stop()
	if s.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := New(nil)
	var runs atomic.Int32
	ran := make(chan struct{}, 1)

	if err := s.Add("tick", Every(time.Second), func(ctx context.Context) {
		if ctx.Err() != nil {
			t.Error("job received a canceled context")
		}
		runs.Add(1)
		select {
		case ran <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
	if runs.Load() < 1 {
		t.Error("runs = 0")
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	s := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for s.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.IsRunning() {
		t.Error("scheduler still running after context cancel")
	}
}
