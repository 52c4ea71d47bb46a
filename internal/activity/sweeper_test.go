package activity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory Repository for sweeper tests.
type fakeRepo struct {
	mu         sync.Mutex
	activities map[string]*Activity
}

func newFakeRepo(activities ...*Activity) *fakeRepo {
	m := make(map[string]*Activity)
	for _, a := range activities {
		m[a.ID] = a
	}
	return &fakeRepo{activities: m}
}

func (f *fakeRepo) Create(_ context.Context, a *Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activities[a.ID] = a
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.activities[id]
	if !ok {
		return nil, ErrActivityNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeRepo) Update(_ context.Context, a *Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activities[a.ID] = a
	return nil
}

func (f *fakeRepo) ListWithFilters(_ context.Context, _ ActivityFilter) ([]Activity, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Activity
	for _, a := range f.activities {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) ListSweepCandidates(_ context.Context) ([]Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Activity
	for _, a := range f.activities {
		if !a.Status.SweepSkipped() {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id string, newStatus ActivityStatus, updatedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.activities[id]
	if !ok || a.Status == newStatus {
		return false, nil
	}
	a.Status = newStatus
	a.UpdatedAt = updatedAt
	return true, nil
}

func (f *fakeRepo) ConditionalDecrementSlots(_ context.Context, id string, n int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.activities[id]
	if !ok || !a.Status.Bookable() || a.AvailableSlots < n {
		return false, nil
	}
	a.AvailableSlots -= n
	return true, nil
}

func (f *fakeRepo) ConditionalIncrementSlots(_ context.Context, id string, n int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.activities[id]
	if !ok {
		return false, nil
	}
	a.AvailableSlots += n
	if a.AvailableSlots > a.TotalCapacity {
		a.AvailableSlots = a.TotalCapacity
	}
	return true, nil
}

type fakeSettler struct {
	mu      sync.Mutex
	settled map[string]int
}

func newFakeSettler() *fakeSettler {
	return &fakeSettler{settled: make(map[string]int)}
}

func (f *fakeSettler) SettleCompleted(_ context.Context, activityID string, _ time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settled[activityID]++
	return 1, nil
}

func testActivity(id string, status ActivityStatus, start, end time.Time) *Activity {
	return &Activity{
		ID:             id,
		ProviderID:     1,
		CategoryID:     1,
		Name:           "City Walking Tour",
		Price:          25,
		TotalCapacity:  10,
		AvailableSlots: 10,
		StartDate:      start,
		EndDate:        end,
		Status:         status,
	}
}

func TestComputeStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  ActivityStatus
	}{
		{"future activity stays pending", now.Add(24 * time.Hour), now.Add(48 * time.Hour), StatusPending},
		{"running activity is active", now.Add(-1 * time.Hour), now.Add(1 * time.Hour), StatusActive},
		{"finished activity expires", now.Add(-48 * time.Hour), now.Add(-1 * time.Hour), StatusExpired},
		{"starts exactly now is active", now, now.Add(1 * time.Hour), StatusActive},
		{"ends exactly now is still active", now.Add(-1 * time.Hour), now, StatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testActivity("a1", StatusPending, tt.start, tt.end)
			assert.Equal(t, tt.want, ComputeStatus(a, now))
		})
	}
}

func TestComputeStatus_RescheduledDatesTakePrecedence(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// Original window is over, but the provider rescheduled into the
	// future: the activity must come back as pending, not expired.
	a := testActivity("a1", StatusPending, now.Add(-72*time.Hour), now.Add(-48*time.Hour))
	newStart := now.Add(24 * time.Hour)
	newEnd := now.Add(48 * time.Hour)
	a.RescheduledStartDate = &newStart
	a.RescheduledEndDate = &newEnd

	assert.Equal(t, StatusPending, ComputeStatus(a, now))
}

func TestSweepOnce_AppliesTransitions(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo(
		testActivity("future", StatusPending, now.Add(24*time.Hour), now.Add(48*time.Hour)),
		testActivity("running", StatusPending, now.Add(-1*time.Hour), now.Add(1*time.Hour)),
		testActivity("over", StatusActive, now.Add(-48*time.Hour), now.Add(-1*time.Hour)),
	)
	sweeper := NewSweeper(repo, newFakeSettler())

	changes, err := sweeper.SweepOnce(context.Background(), now)
	require.NoError(t, err)
	assert.Len(t, changes, 2)

	running, _ := repo.GetByID(context.Background(), "running")
	assert.Equal(t, StatusActive, running.Status)

	over, _ := repo.GetByID(context.Background(), "over")
	assert.Equal(t, StatusExpired, over.Status)

	future, _ := repo.GetByID(context.Background(), "future")
	assert.Equal(t, StatusPending, future.Status)
}

func TestSweepOnce_Idempotent(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo(
		testActivity("running", StatusPending, now.Add(-1*time.Hour), now.Add(1*time.Hour)),
		testActivity("over", StatusActive, now.Add(-48*time.Hour), now.Add(-1*time.Hour)),
	)
	sweeper := NewSweeper(repo, newFakeSettler())

	first, err := sweeper.SweepOnce(context.Background(), now)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	// Same instant again: nothing left to change.
	second, err := sweeper.SweepOnce(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, second)
}

// Sweeping at t1 and then at t2 lands every row in the same state as
// a single sweep at t2, so a skipped tick costs nothing but latency.
func TestSweepOnce_SequentialSweepsMatchSingleSweep(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	t1 := now
	t2 := now.Add(36 * time.Hour)

	fixtures := func() []*Activity {
		return []*Activity{
			testActivity("starts-soon", StatusPending, now.Add(1*time.Hour), now.Add(12*time.Hour)),
			testActivity("running", StatusPending, now.Add(-1*time.Hour), now.Add(48*time.Hour)),
			testActivity("ends-between", StatusActive, now.Add(-24*time.Hour), now.Add(24*time.Hour)),
			testActivity("far-future", StatusPending, now.Add(72*time.Hour), now.Add(96*time.Hour)),
			testActivity("delayed", StatusDelayed, now.Add(-24*time.Hour), now.Add(-12*time.Hour)),
		}
	}
	ids := []string{"starts-soon", "running", "ends-between", "far-future", "delayed"}

	twoStep := newFakeRepo(fixtures()...)
	oneStep := newFakeRepo(fixtures()...)

	sweepTwice := NewSweeper(twoStep, newFakeSettler())
	_, err := sweepTwice.SweepOnce(context.Background(), t1)
	require.NoError(t, err)
	_, err = sweepTwice.SweepOnce(context.Background(), t2)
	require.NoError(t, err)

	sweepOnce := NewSweeper(oneStep, newFakeSettler())
	_, err = sweepOnce.SweepOnce(context.Background(), t2)
	require.NoError(t, err)

	for _, id := range ids {
		a, err := twoStep.GetByID(context.Background(), id)
		require.NoError(t, err)
		b, err := oneStep.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, b.Status, a.Status, "two sweeps and one sweep disagree on %s", id)
	}
}

func TestSweepOnce_SkipsTerminalAndDelayed(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	pastEnd := now.Add(-24 * time.Hour)

	repo := newFakeRepo(
		testActivity("cancelled", StatusCancelled, past, pastEnd),
		testActivity("rejected", StatusRejected, past, pastEnd),
		testActivity("delayed", StatusDelayed, past, pastEnd),
		testActivity("expired", StatusExpired, past, pastEnd),
		testActivity("inactive", StatusInactive, past, pastEnd),
	)
	sweeper := NewSweeper(repo, newFakeSettler())

	changes, err := sweeper.SweepOnce(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, changes)

	for _, id := range []string{"cancelled", "rejected", "delayed", "expired", "inactive"} {
		a, _ := repo.GetByID(context.Background(), id)
		assert.Equal(t, ActivityStatus(id), a.Status, "status of %s must not move", id)
	}
}

func TestSweepOnce_ExpirySettlesBookings(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo(
		testActivity("over", StatusActive, now.Add(-48*time.Hour), now.Add(-1*time.Hour)),
		testActivity("running", StatusPending, now.Add(-1*time.Hour), now.Add(1*time.Hour)),
	)
	settler := newFakeSettler()
	sweeper := NewSweeper(repo, settler)

	_, err := sweeper.SweepOnce(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, settler.settled["over"], "expired activity settles its bookings")
	assert.Zero(t, settler.settled["running"], "non-expired activity must not settle")
}

func TestSweepOnce_ExpiredFromAnyStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	// A pending activity whose whole window slipped past (e.g. the
	// service was down) must jump straight to expired.
	repo := newFakeRepo(
		testActivity("missed", StatusPending, now.Add(-48*time.Hour), now.Add(-24*time.Hour)),
	)
	sweeper := NewSweeper(repo, newFakeSettler())

	changes, err := sweeper.SweepOnce(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, StatusExpired, changes[0].NewStatus)
	assert.Equal(t, StatusPending, changes[0].OldStatus)
}
