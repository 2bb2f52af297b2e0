package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/yeti47/reelpress/logging"
)

// SweepFunc runs one full pass over the source folder.
type SweepFunc func(ctx context.Context) error

// Scheduler drives sweeps one at a time from a single background goroutine.
// It fires either on a fixed interval or at a daily wall-clock hour, and
// re-arms after every sweep, including sweeps that errored. An immediate
// first sweep runs on start.
type Scheduler struct {
	logger    logging.Logger
	interval  time.Duration // >0 selects the fixed-interval trigger
	dailyHour int           // used when interval is 0; 0-23
	sweep     SweepFunc

	mu      sync.Mutex
	nextRun time.Time
}

// NewScheduler creates a scheduler. When interval is positive it takes
// precedence over dailyHour.
func NewScheduler(logger logging.Logger, interval time.Duration, dailyHour int, sweep SweepFunc) *Scheduler {
	if logger == nil {
		logger = logging.NopLogger
	}

	return &Scheduler{
		logger:    logger,
		interval:  interval,
		dailyHour: dailyHour,
		sweep:     sweep,
	}
}

// NextRun returns when the next scheduled sweep will fire.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

func (s *Scheduler) setNextRun(t time.Time) {
	s.mu.Lock()
	s.nextRun = t
	s.mu.Unlock()
}

// Start begins the sweep loop. It runs until stopChan closes and signals wg
// when done.
func (s *Scheduler) Start(stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	s.runSweep()

	for {
		delay := s.nextDelay(time.Now())
		s.setNextRun(time.Now().Add(delay))
		s.logger.Info("Next sweep scheduled", "at", time.Now().Add(delay).Format(time.RFC3339))

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
			s.runSweep()
		case <-stopChan:
			timer.Stop()
			s.logger.Info("Scheduler stopping")
			return
		}
	}
}

// runSweep executes one sweep, absorbing its error so the loop always
// re-arms.
func (s *Scheduler) runSweep() {
	start := time.Now()
	if err := s.sweep(context.Background()); err != nil {
		s.logger.Error("Sweep failed", "error", err.Error())
		return
	}
	s.logger.Info("Sweep completed", "elapsed", time.Since(start).String())
}

// nextDelay computes the wait until the next trigger.
func (s *Scheduler) nextDelay(now time.Time) time.Duration {
	if s.interval > 0 {
		return s.interval
	}
	return nextDailyDelay(now, s.dailyHour)
}

// nextDailyDelay returns the time until the next occurrence of hour:00,
// strictly in the future.
func nextDailyDelay(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
