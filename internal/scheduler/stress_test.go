package scheduler

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// Concurrent producers schedule rebuilds while half of them are cancelled
// before they fire; only the survivors may be delivered.
func TestEngineConcurrentScheduleAndCancel(t *testing.T) {
	engine := NewEngine(1024)
	engine.Start()
	defer engine.Stop()

	const workers = 8
	const perWorker = 50
	day := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ev := Event{ID: fmt.Sprintf("rebuild-%d-%d", w, i), Kind: KindDelayedRebuild, Day: day}
				if err := engine.After(300*time.Millisecond+time.Duration(i)*time.Millisecond, ev); err != nil {
					t.Errorf("schedule %s: %v", ev.ID, err)
					return
				}
				if w%2 == 1 {
					if n := engine.Cancel(ev.ID); n != 1 {
						t.Errorf("cancel %s removed %d events", ev.ID, n)
						return
					}
				}
			}
		}()
	}
	wg.Wait()

	want := workers / 2 * perWorker
	if got := engine.Pending(); got != want {
		t.Fatalf("expected %d pending events, got %d", want, got)
	}

	deadline := time.After(5 * time.Second)
	seen := make(map[string]bool, want)
	for len(seen) < want {
		select {
		case <-deadline:
			t.Fatalf("timeout: received=%d want=%d dropped=%d", len(seen), want, engine.Dropped())
		case ev := <-engine.C():
			var w, i int
			if _, err := fmt.Sscanf(ev.ID, "rebuild-%d-%d", &w, &i); err != nil || w%2 == 1 {
				t.Fatalf("unexpected event delivered: %q", ev.ID)
			}
			seen[ev.ID] = true
		}
	}
	if engine.Dropped() != 0 {
		t.Fatalf("expected zero drops with an active consumer, got %d", engine.Dropped())
	}
}
