package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiran0823/tour-booking-backend/internal/activity"
	"github.com/kiran0823/tour-booking-backend/internal/auditlog"
)

type fakeRepo struct {
	reviews   map[uint]*Review
	completed map[uint]map[string]bool // userID -> activityID -> done
	nextID    uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		reviews:   make(map[uint]*Review),
		completed: make(map[uint]map[string]bool),
	}
}

func (f *fakeRepo) markCompleted(userID uint, activityID string) {
	if f.completed[userID] == nil {
		f.completed[userID] = make(map[string]bool)
	}
	f.completed[userID][activityID] = true
}

func (f *fakeRepo) Create(_ context.Context, r *Review) error {
	f.nextID++
	r.ID = f.nextID
	f.reviews[r.ID] = r
	return nil
}

func (f *fakeRepo) Update(_ context.Context, r *Review) error {
	f.reviews[r.ID] = r
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uint) error {
	delete(f.reviews, id)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uint) (*Review, error) {
	if r, ok := f.reviews[id]; ok {
		return r, nil
	}
	return nil, ErrReviewNotFound
}

func (f *fakeRepo) GetByUserAndActivity(_ context.Context, userID uint, activityID string) (*Review, error) {
	for _, r := range f.reviews {
		if r.UserID == userID && r.ActivityID == activityID {
			return r, nil
		}
	}
	return nil, ErrReviewNotFound
}

func (f *fakeRepo) ListByActivity(_ context.Context, activityID string) ([]Review, error) {
	var out []Review
	for _, r := range f.reviews {
		if r.ActivityID == activityID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) AverageRating(_ context.Context, activityID string) (float64, error) {
	var sum, n float64
	for _, r := range f.reviews {
		if r.ActivityID == activityID {
			sum += float64(r.Rating)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / n, nil
}

func (f *fakeRepo) HasCompletedBooking(_ context.Context, userID uint, activityID string) (bool, error) {
	return f.completed[userID][activityID], nil
}

type fakeActivityRepo struct {
	ids map[string]bool
}

func (f *fakeActivityRepo) GetByID(_ context.Context, id string) (*activity.Activity, error) {
	if f.ids[id] {
		return &activity.Activity{ID: id, Status: activity.StatusCompleted}, nil
	}
	return nil, activity.ErrActivityNotFound
}

func (f *fakeActivityRepo) Create(_ context.Context, _ *activity.Activity) error { return nil }
func (f *fakeActivityRepo) Update(_ context.Context, _ *activity.Activity) error { return nil }
func (f *fakeActivityRepo) ListWithFilters(_ context.Context, _ activity.ActivityFilter) ([]activity.Activity, int64, error) {
	return nil, 0, nil
}
func (f *fakeActivityRepo) ListSweepCandidates(_ context.Context) ([]activity.Activity, error) {
	return nil, nil
}
func (f *fakeActivityRepo) UpdateStatus(_ context.Context, _ string, _ activity.ActivityStatus, _ time.Time) (bool, error) {
	return false, nil
}
func (f *fakeActivityRepo) ConditionalDecrementSlots(_ context.Context, _ string, _ int) (bool, error) {
	return false, nil
}
func (f *fakeActivityRepo) ConditionalIncrementSlots(_ context.Context, _ string, _ int) (bool, error) {
	return false, nil
}

type nopAudit struct{}

func (nopAudit) LogAction(_ context.Context, _ *uint, _ string, _ map[string]interface{}, _ string, _ string) error {
	return nil
}
func (nopAudit) GetAuditLogs(_ context.Context, _ auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return nil, nil
}
func (nopAudit) GetAuditLogByID(_ context.Context, _ uint) (*auditlog.AuditLog, error) {
	return nil, nil
}

const actID = "11111111-1111-1111-1111-111111111111"

func newTestService() (Service, *fakeRepo) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeActivityRepo{ids: map[string]bool{actID: true}}, nopAudit{})
	return svc, repo
}

func TestCreateReview_RequiresCompletedBooking(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateReview(context.Background(), 1, &CreateReviewRequest{
		ActivityID: actID,
		Rating:     5,
	}, "127.0.0.1")
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestCreateReview_OnePerUserPerActivity(t *testing.T) {
	svc, repo := newTestService()
	repo.markCompleted(1, actID)

	_, err := svc.CreateReview(context.Background(), 1, &CreateReviewRequest{
		ActivityID: actID,
		Rating:     4,
		Comment:    "great guide",
	}, "127.0.0.1")
	require.NoError(t, err)

	_, err = svc.CreateReview(context.Background(), 1, &CreateReviewRequest{
		ActivityID: actID,
		Rating:     5,
	}, "127.0.0.1")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestListByActivity_AveragesRatings(t *testing.T) {
	svc, repo := newTestService()
	repo.markCompleted(1, actID)
	repo.markCompleted(2, actID)

	_, err := svc.CreateReview(context.Background(), 1, &CreateReviewRequest{ActivityID: actID, Rating: 5}, "127.0.0.1")
	require.NoError(t, err)
	_, err = svc.CreateReview(context.Background(), 2, &CreateReviewRequest{ActivityID: actID, Rating: 2}, "127.0.0.1")
	require.NoError(t, err)

	reviews, avg, err := svc.ListByActivity(context.Background(), actID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
	assert.InDelta(t, 3.5, avg, 0.001)
}

func TestUpdateAndDeleteReview_OwnerOrAdmin(t *testing.T) {
	svc, repo := newTestService()
	repo.markCompleted(1, actID)

	rev, err := svc.CreateReview(context.Background(), 1, &CreateReviewRequest{ActivityID: actID, Rating: 3}, "127.0.0.1")
	require.NoError(t, err)

	_, err = svc.UpdateReview(context.Background(), 2, rev.ID, &UpdateReviewRequest{Rating: 1}, "127.0.0.1")
	assert.ErrorIs(t, err, ErrNotYourReview)

	err = svc.DeleteReview(context.Background(), 2, "tourist", rev.ID, "127.0.0.1")
	assert.ErrorIs(t, err, ErrNotYourReview)

	err = svc.DeleteReview(context.Background(), 2, "admin", rev.ID, "127.0.0.1")
	assert.NoError(t, err)
}
