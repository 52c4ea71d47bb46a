package activity

import (
	"context"
	"log"
	"time"

	"github.com/kiran0823/tour-booking-backend/utils"
)

// Scheduler triggers the status sweep on a fixed interval. It owns its
// stop signal and is started/stopped by the process lifecycle; drift or
// skipped ticks cost nothing because the sweep is a pure function of
// the time it actually runs at.
type Scheduler struct {
	sweeper  *Sweeper
	clock    utils.Clock
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewScheduler(sweeper *Sweeper, clock utils.Clock, interval time.Duration) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		clock:    clock,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		log.Printf("✅ Activity sweep scheduler started (interval=%s)", s.interval)

		// One sweep at startup so a long downtime is caught up
		// immediately instead of after the first interval.
		s.tick(ctx)

		for {
			select {
			case <-ctx.Done():
				log.Println("Activity sweep scheduler stopped (context cancelled)")
				return
			case <-s.stop:
				log.Println("Activity sweep scheduler stopped")
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop signals the loop to exit and waits for it.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) tick(ctx context.Context) {
	// Sweeps are idempotent, so the lease is an optimization: it spares
	// scaled-out instances from redundant reads, not a correctness need.
	if !utils.AcquireSweepLease(ctx, s.interval/2) {
		return
	}

	changes, err := s.sweeper.SweepOnce(ctx, s.clock.Now())
	if err != nil {
		log.Printf("⚠️ Activity sweep failed: %v", err)
		return
	}
	if len(changes) > 0 {
		log.Printf("✅ Activity sweep applied %d transitions", len(changes))
	}
}
