package search

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestDebouncer_RunsAfterDelay(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	done := make(chan string, 1)

	d.Schedule(context.Background(), func(ctx context.Context, still func() bool) {
		if still() {
			done <- "ran"
		}
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestDebouncer_RapidKeystrokesCancelAndReplace(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var mu sync.Mutex
	var ran []string
	done := make(chan struct{}, 1)

	for _, query := range []string{"9", "98", "984"} {
		q := query
		d.Schedule(context.Background(), func(ctx context.Context, still func() bool) {
			if !still() {
				return
			}
			mu.Lock()
			ran = append(ran, q)
			mu.Unlock()
			done <- struct{}{}
		})
		time.Sleep(2 * time.Millisecond) // faster than the debounce delay
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("final task never ran")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(ran) != 1 || ran[0] != "984" {
		t.Fatalf("ran = %v, want only the final query", ran)
	}
}

func TestDebouncer_StaleResponseGuard(t *testing.T) {
	d := NewDebouncer(5 * time.Millisecond)

	firstStarted := make(chan struct{})
	release := make(chan struct{})
	committed := make(chan string, 2)

	// First task starts, then blocks mid-"fetch" until released.
	d.Schedule(context.Background(), func(ctx context.Context, still func() bool) {
		close(firstStarted)
		<-release
		if still() {
			committed <- "stale"
		}
	})

	<-firstStarted

	// A newer search supersedes it while its fetch is in flight.
	d.Schedule(context.Background(), func(ctx context.Context, still func() bool) {
		if still() {
			committed <- "fresh"
		}
	})

	close(release)

	select {
	case got := <-committed:
		if got != "fresh" {
			t.Fatalf("committed %q, want fresh", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no task committed")
	}

	// The stale task must never commit.
	select {
	case got := <-committed:
		t.Fatalf("unexpected second commit %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(5 * time.Millisecond)
	ran := make(chan struct{}, 1)

	d.Schedule(context.Background(), func(ctx context.Context, still func() bool) {
		ran <- struct{}{}
	})
	d.Cancel()

	select {
	case <-ran:
		t.Fatal("cancelled task must not run")
	case <-time.After(50 * time.Millisecond):
	}
}
