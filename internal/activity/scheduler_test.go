package activity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kiran0823/tour-booking-backend/utils"
)

func TestScheduler_SweepsImmediatelyOnStart(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo(
		testActivity("over", StatusActive, now.Add(-48*time.Hour), now.Add(-1*time.Hour)),
	)
	sched := NewScheduler(NewSweeper(repo, nil), utils.FixedClock{T: now}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched.Start(ctx)
	defer sched.Stop()

	// The startup sweep runs before the first interval elapses.
	assert.Eventually(t, func() bool {
		a, err := repo.GetByID(context.Background(), "over")
		return err == nil && a.Status == StatusExpired
	}, time.Second, 10*time.Millisecond)
}

func TestScheduler_StopWaitsForLoopExit(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo()
	sched := NewScheduler(NewSweeper(repo, nil), utils.FixedClock{T: now}, time.Hour)

	sched.Start(context.Background())

	done := make(chan struct{})
	go func() {
		sched.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo()
	sched := NewScheduler(NewSweeper(repo, nil), utils.FixedClock{T: now}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	sched.Start(ctx)
	cancel()

	select {
	case <-sched.done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancel")
	}
}
