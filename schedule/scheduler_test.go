package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/yeti47/reelpress/logging"
)

func TestNextDailyDelay(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		hour int
		want time.Duration
	}{
		{
			name: "later today",
			now:  time.Date(2026, 8, 23, 17, 0, 0, 0, time.UTC),
			hour: 18,
			want: time.Hour,
		},
		{
			name: "exactly at the hour rolls to tomorrow",
			now:  time.Date(2026, 8, 23, 18, 0, 0, 0, time.UTC),
			hour: 18,
			want: 24 * time.Hour,
		},
		{
			name: "already past rolls to tomorrow",
			now:  time.Date(2026, 8, 23, 19, 30, 0, 0, time.UTC),
			hour: 18,
			want: 22*time.Hour + 30*time.Minute,
		},
		{
			name: "midnight hour",
			now:  time.Date(2026, 8, 23, 23, 0, 0, 0, time.UTC),
			hour: 0,
			want: time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextDailyDelay(tt.now, tt.hour); got != tt.want {
				t.Errorf("nextDailyDelay(%v, %d) = %v, want %v", tt.now, tt.hour, got, tt.want)
			}
		})
	}
}

func TestScheduler_IntervalTakesPrecedence(t *testing.T) {
	s := NewScheduler(logging.NopLogger, 20*time.Minute, 18, func(ctx context.Context) error { return nil })

	if got := s.nextDelay(time.Now()); got != 20*time.Minute {
		t.Errorf("expected the interval trigger, got %v", got)
	}
}

func TestScheduler_RunsImmediatelyAndRearmsAfterError(t *testing.T) {
	sweeps := make(chan struct{}, 16)
	s := NewScheduler(logging.NopLogger, 10*time.Millisecond, -1, func(ctx context.Context) error {
		sweeps <- struct{}{}
		// A failing sweep must not stop the loop.
		return context.DeadlineExceeded
	})

	stopChan := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go s.Start(stopChan, &wg)

	// Immediate first sweep plus at least one re-armed run.
	for i := 0; i < 2; i++ {
		select {
		case <-sweeps:
		case <-time.After(2 * time.Second):
			t.Fatalf("sweep %d did not run", i+1)
		}
	}

	if s.NextRun().IsZero() {
		t.Error("NextRun should be set once the loop is armed")
	}

	close(stopChan)
	wg.Wait()
}
