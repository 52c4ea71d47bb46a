package activity

import (
	"context"
	"log"
	"time"
)

// StatusChange records one transition applied by a sweep.
type StatusChange struct {
	ActivityID string         `json:"activity_id"`
	OldStatus  ActivityStatus `json:"old_status"`
	NewStatus  ActivityStatus `json:"new_status"`
}

// BookingSettler completes the paid bookings of an activity once the
// activity expires. Implemented by the booking repository; kept as a
// local interface so this package does not import booking.
type BookingSettler interface {
	SettleCompleted(ctx context.Context, activityID string, completedAt time.Time) (int64, error)
}

// Sweeper derives each activity's status from the clock and its date
// fields. It is a pure function of wall-clock time: running it twice at
// the same instant changes nothing the second time, and a skipped tick
// is fully caught up by the next one.
type Sweeper struct {
	repo    Repository
	settler BookingSettler
}

func NewSweeper(repo Repository, settler BookingSettler) *Sweeper {
	return &Sweeper{repo: repo, settler: settler}
}

// ComputeStatus returns the status an activity should carry at now,
// evaluated first-match-wins over the effective (possibly rescheduled)
// dates. Callers must not apply the result to sweep-skipped rows.
func ComputeStatus(a *Activity, now time.Time) ActivityStatus {
	start := a.EffectiveStart()
	end := a.EffectiveEnd()

	switch {
	case end.Before(now):
		return StatusExpired
	case !start.After(now): // start <= now <= end
		return StatusActive
	default: // start > now
		return StatusPending
	}
}

// SweepOnce applies ComputeStatus to every candidate activity and
// persists the transitions. A failure on one row is logged and skipped;
// the rest of the sweep continues.
func (s *Sweeper) SweepOnce(ctx context.Context, now time.Time) ([]StatusChange, error) {
	candidates, err := s.repo.ListSweepCandidates(ctx)
	if err != nil {
		return nil, err
	}

	var changes []StatusChange
	for i := range candidates {
		a := &candidates[i]
		if a.Status.SweepSkipped() {
			// Guard against rows that changed between load and here.
			continue
		}

		newStatus := ComputeStatus(a, now)
		if newStatus == a.Status {
			continue
		}

		applied, err := s.repo.UpdateStatus(ctx, a.ID, newStatus, now)
		if err != nil {
			log.Printf("⚠️ Sweep: failed to update activity %s: %v", a.ID, err)
			continue
		}
		if !applied {
			// Another instance got there first; nothing to record.
			continue
		}

		changes = append(changes, StatusChange{
			ActivityID: a.ID,
			OldStatus:  a.Status,
			NewStatus:  newStatus,
		})

		if newStatus == StatusExpired && s.settler != nil {
			if n, err := s.settler.SettleCompleted(ctx, a.ID, now); err != nil {
				log.Printf("⚠️ Sweep: failed to settle bookings for activity %s: %v", a.ID, err)
			} else if n > 0 {
				log.Printf("✅ Sweep: completed %d paid bookings for expired activity %s", n, a.ID)
			}
		}
	}

	return changes, nil
}
