package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiran0823/tour-booking-backend/internal/activity"
	"github.com/kiran0823/tour-booking-backend/internal/auditlog"
	"github.com/kiran0823/tour-booking-backend/internal/auth"
	"github.com/kiran0823/tour-booking-backend/utils"
)

// fakeBookingRepo keeps the activity's slot counter and the bookings in
// one place so the admission contract (guarded decrement + insert as a
// single atomic step) can be exercised without a database.
type fakeBookingRepo struct {
	mu       sync.Mutex
	activity *activity.Activity
	bookings map[string]*Booking
	nextID   int
}

func newFakeBookingRepo(a *activity.Activity) *fakeBookingRepo {
	return &fakeBookingRepo{activity: a, bookings: make(map[string]*Booking)}
}

func (f *fakeBookingRepo) CreateWithAdmission(_ context.Context, b *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.activity == nil || f.activity.ID != b.ActivityID {
		return activity.ErrActivityNotFound
	}
	if !f.activity.Status.Bookable() {
		return activity.ErrActivityNotBookable
	}
	if f.activity.AvailableSlots < b.NumberOfPeople {
		return activity.ErrInsufficientSlots
	}

	f.activity.AvailableSlots -= b.NumberOfPeople
	f.nextID++
	b.ID = fmt.Sprintf("booking-%d", f.nextID)
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookingRepo) CancelWithRestore(_ context.Context, id string) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	if !b.Status.Cancelable() {
		return nil, ErrBookingNotCancelable
	}

	b.Status = BookingCanceled
	f.activity.AvailableSlots += b.NumberOfPeople
	if f.activity.AvailableSlots > f.activity.TotalCapacity {
		f.activity.AvailableSlots = f.activity.TotalCapacity
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	cp := *b
	cp.Activity = f.activity
	return &cp, nil
}

func (f *fakeBookingRepo) ListByUser(_ context.Context, userID uint) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListByActivity(_ context.Context, activityID string) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.bookings {
		if b.ActivityID == activityID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListByProvider(_ context.Context, _ uint) ([]Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) MarkPaid(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != BookingPending || b.PaymentStatus != PaymentPending {
		return false, nil
	}
	b.Status = BookingConfirmed
	b.PaymentStatus = PaymentPaid
	return true, nil
}

func (f *fakeBookingRepo) MarkPaymentFailed(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[id]; ok && b.PaymentStatus == PaymentPending {
		b.PaymentStatus = PaymentFailed
	}
	return nil
}

func (f *fakeBookingRepo) SettleCompleted(_ context.Context, activityID string, _ time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.bookings {
		if b.ActivityID == activityID && b.Status == BookingConfirmed && b.PaymentStatus == PaymentPaid {
			b.Status = BookingCompleted
			n++
		}
	}
	return n, nil
}

// fakeActivityRepo serves the price-freezing read in CreateBooking.
type fakeActivityRepo struct {
	activity *activity.Activity
}

func (f *fakeActivityRepo) GetByID(_ context.Context, id string) (*activity.Activity, error) {
	if f.activity == nil || f.activity.ID != id {
		return nil, activity.ErrActivityNotFound
	}
	cp := *f.activity
	return &cp, nil
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

type fakeAuthSvc struct {
	users map[uint]*auth.User
}

func (f *fakeAuthSvc) Register(_ context.Context, _ *auth.RegisterRequest) (*auth.User, error) {
	return nil, nil
}
func (f *fakeAuthSvc) Login(_ context.Context, _ *auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, nil
}
func (f *fakeAuthSvc) GetUserByID(_ context.Context, id uint) (*auth.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, auth.ErrInvalidCredentials
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

func bookableActivity(slots int) *activity.Activity {
	return &activity.Activity{
		ID:             "11111111-1111-1111-1111-111111111111",
		ProviderID:     7,
		Name:           "Kayak Safari",
		Price:          40,
		TotalCapacity:  slots,
		AvailableSlots: slots,
		StartDate:      time.Now().Add(24 * time.Hour),
		EndDate:        time.Now().Add(48 * time.Hour),
		Status:         activity.StatusActive,
	}
}

func newTestService(a *activity.Activity) (Service, *fakeBookingRepo) {
	repo := newFakeBookingRepo(a)
	authSvc := &fakeAuthSvc{users: map[uint]*auth.User{
		1: {ID: 1, FullName: "Asha", Email: "asha@example.com", Role: auth.RoleTourist},
	}}
	svc := NewService(repo, &fakeActivityRepo{activity: a}, authSvc, nopAudit{}, utils.SystemClock{})
	return svc, repo
}

func tourist(id uint) *auth.User {
	return &auth.User{ID: id, FullName: "Asha", Email: "asha@example.com", Role: auth.RoleTourist}
}

func TestCreateBooking_FreezesTotalPrice(t *testing.T) {
	a := bookableActivity(10)
	svc, _ := newTestService(a)

	b, err := svc.CreateBooking(context.Background(), tourist(1), &CreateBookingRequest{
		ActivityID:     a.ID,
		NumberOfPeople: 3,
	}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 120.0, b.TotalPrice)
	assert.Equal(t, BookingPending, b.Status)
	assert.Equal(t, PaymentPending, b.PaymentStatus)

	// A later price change must not touch the captured total.
	a.Price = 99
	got, err := svc.GetBooking(context.Background(), tourist(1), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 120.0, got.TotalPrice)
}

func TestCreateBooking_PeopleBounds(t *testing.T) {
	a := bookableActivity(100)
	svc, _ := newTestService(a)

	for _, people := range []int{0, -1, 51} {
		_, err := svc.CreateBooking(context.Background(), tourist(1), &CreateBookingRequest{
			ActivityID:     a.ID,
			NumberOfPeople: people,
		}, "127.0.0.1")
		assert.ErrorIs(t, err, ErrInvalidPeople, "people=%d", people)
	}
}

func TestCreateBooking_NotBookable(t *testing.T) {
	a := bookableActivity(10)
	a.Status = activity.StatusCancelled
	svc, _ := newTestService(a)

	_, err := svc.CreateBooking(context.Background(), tourist(1), &CreateBookingRequest{
		ActivityID:     a.ID,
		NumberOfPeople: 2,
	}, "127.0.0.1")
	assert.ErrorIs(t, err, activity.ErrActivityNotBookable)
}

func TestCreateBooking_InsufficientSlots(t *testing.T) {
	a := bookableActivity(1)
	svc, _ := newTestService(a)

	_, err := svc.CreateBooking(context.Background(), tourist(1), &CreateBookingRequest{
		ActivityID:     a.ID,
		NumberOfPeople: 2,
	}, "127.0.0.1")
	assert.ErrorIs(t, err, activity.ErrInsufficientSlots)
}

func TestCreateBooking_ConcurrentAdmission(t *testing.T) {
	// Three slots left and two racing requests for two each: exactly
	// one wins, and the counter never goes negative.
	a := bookableActivity(3)
	svc, _ := newTestService(a)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(context.Background(), tourist(1), &CreateBookingRequest{
				ActivityID:     a.ID,
				NumberOfPeople: 2,
			}, "127.0.0.1")
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, activity.ErrInsufficientSlots)
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 1, a.AvailableSlots)
}

func TestCancelBooking_RestoresSlots(t *testing.T) {
	a := bookableActivity(5)
	svc, _ := newTestService(a)

	b, err := svc.CreateBooking(context.Background(), tourist(1), &CreateBookingRequest{
		ActivityID:     a.ID,
		NumberOfPeople: 4,
	}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 1, a.AvailableSlots)

	canceled, err := svc.CancelBooking(context.Background(), tourist(1), b.ID, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, BookingCanceled, canceled.Status)
	assert.Equal(t, 5, a.AvailableSlots)

	// Second cancel must not restore slots again.
	_, err = svc.CancelBooking(context.Background(), tourist(1), b.ID, "127.0.0.1")
	assert.ErrorIs(t, err, ErrBookingNotCancelable)
	assert.Equal(t, 5, a.AvailableSlots)
}

func TestCancelBooking_AuthorizedActorsOnly(t *testing.T) {
	a := bookableActivity(5)
	svc, _ := newTestService(a)

	b, err := svc.CreateBooking(context.Background(), tourist(1), &CreateBookingRequest{
		ActivityID:     a.ID,
		NumberOfPeople: 1,
	}, "127.0.0.1")
	require.NoError(t, err)

	// Another tourist may not cancel it.
	stranger := &auth.User{ID: 2, Role: auth.RoleTourist}
	_, err = svc.CancelBooking(context.Background(), stranger, b.ID, "127.0.0.1")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// The owning provider may.
	provider := &auth.User{ID: a.ProviderID, Role: auth.RoleProvider}
	_, err = svc.CancelBooking(context.Background(), provider, b.ID, "127.0.0.1")
	assert.NoError(t, err)
}

func TestConfirmPaid_Idempotent(t *testing.T) {
	a := bookableActivity(5)
	svc, repo := newTestService(a)

	b, err := svc.CreateBooking(context.Background(), tourist(1), &CreateBookingRequest{
		ActivityID:     a.ID,
		NumberOfPeople: 2,
	}, "127.0.0.1")
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmPaid(context.Background(), b.ID, "127.0.0.1"))
	got, err := repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, BookingConfirmed, got.Status)
	assert.Equal(t, PaymentPaid, got.PaymentStatus)

	// Second confirmation is a no-op, not an error.
	require.NoError(t, svc.ConfirmPaid(context.Background(), b.ID, "127.0.0.1"))
}

func TestSettleCompleted_OnlyPaidConfirmed(t *testing.T) {
	a := bookableActivity(10)
	svc, repo := newTestService(a)

	paid, err := svc.CreateBooking(context.Background(), tourist(1), &CreateBookingRequest{
		ActivityID: a.ID, NumberOfPeople: 2,
	}, "127.0.0.1")
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmPaid(context.Background(), paid.ID, "127.0.0.1"))

	unpaid, err := svc.CreateBooking(context.Background(), tourist(1), &CreateBookingRequest{
		ActivityID: a.ID, NumberOfPeople: 1,
	}, "127.0.0.1")
	require.NoError(t, err)

	n, err := repo.SettleCompleted(context.Background(), a.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	gotPaid, _ := repo.GetByID(context.Background(), paid.ID)
	assert.Equal(t, BookingCompleted, gotPaid.Status)

	gotUnpaid, _ := repo.GetByID(context.Background(), unpaid.ID)
	assert.Equal(t, BookingPending, gotUnpaid.Status)
}
