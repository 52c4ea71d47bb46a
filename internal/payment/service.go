package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jung-kurt/gofpdf"
	razorpay "github.com/razorpay/razorpay-go"

	"github.com/kiran0823/tour-booking-backend/config"
	"github.com/kiran0823/tour-booking-backend/internal/auditlog"
	"github.com/kiran0823/tour-booking-backend/internal/auth"
	"github.com/kiran0823/tour-booking-backend/internal/booking"
	"github.com/kiran0823/tour-booking-backend/utils"
)

var (
	ErrNotYourBooking  = errors.New("booking does not belong to you")
	ErrBookingNotOpen  = errors.New("booking is not awaiting payment")
	ErrInvalidSig      = errors.New("invalid payment signature")
	ErrReceiptNotReady = errors.New("receipt is only available for paid bookings")
)

// amountInPaise converts a rupee amount to integer paise. Rounding,
// not truncation: 24.60 stores as 2459.999... in a float64 and must
// still charge 2460.
func amountInPaise(rupees float64) int {
	return int(math.Round(rupees * 100))
}

type Service interface {
	StartPayment(ctx context.Context, user *auth.User, req *StartPaymentRequest, ip string) (*StartPaymentResponse, error)
	VerifyAndSettle(ctx context.Context, req *VerifyPaymentRequest, ip string) error
	GenerateReceipt(ctx context.Context, user *auth.User, bookingID string) ([]byte, string, error)
}

type service struct {
	repo       Repository
	bookingSvc booking.Service
	client     *razorpay.Client
	cfg        *config.Config
	auditSvc   auditlog.Service
	clock      utils.Clock
}

func NewService(repo Repository, bookingSvc booking.Service, cfg *config.Config, auditSvc auditlog.Service, clock utils.Clock) Service {
	client := razorpay.NewClient(cfg.RazorpayKey, cfg.RazorpaySecret)
	return &service{
		repo:       repo,
		bookingSvc: bookingSvc,
		client:     client,
		cfg:        cfg,
		auditSvc:   auditSvc,
		clock:      clock,
	}
}

// ==============================
// 💳 Start Payment
// ==============================

// StartPayment creates the Razorpay order for a pending booking and
// records a created payment row. Re-calling for the same booking
// returns the existing order instead of opening a second one.
func (s *service) StartPayment(ctx context.Context, user *auth.User, req *StartPaymentRequest, ip string) (*StartPaymentResponse, error) {
	b, err := s.bookingSvc.GetBooking(ctx, user, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != user.ID {
		return nil, ErrNotYourBooking
	}
	if b.Status != booking.BookingPending || b.PaymentStatus != booking.PaymentPending {
		return nil, ErrBookingNotOpen
	}

	if existing, err := s.repo.GetByBookingID(ctx, b.ID); err == nil && existing.Status == StateCreated {
		return &StartPaymentResponse{
			OrderID:     existing.OrderID,
			Amount:      existing.Amount,
			Currency:    existing.Currency,
			RazorpayKey: s.cfg.RazorpayKey,
		}, nil
	}

	data := map[string]interface{}{
		"amount":          amountInPaise(b.TotalPrice),
		"currency":        "INR",
		"payment_capture": 1,
		"notes": map[string]interface{}{
			"booking_id":  b.ID,
			"activity_id": b.ActivityID,
			"user_id":     user.ID,
		},
	}

	order, err := s.client.Order.Create(data, nil)
	if err != nil {
		s.auditSvc.LogAction(ctx, &user.ID, "PAYMENT_INITIATED", map[string]interface{}{
			"booking_id": b.ID,
			"amount":     b.TotalPrice,
			"error":      err.Error(),
		}, ip, "failure")
		return nil, fmt.Errorf("razorpay order creation failed: %w", err)
	}

	orderID, ok := order["id"].(string)
	if !ok {
		return nil, errors.New("unable to extract order_id from Razorpay response")
	}

	p := &Payment{
		BookingID: b.ID,
		UserID:    user.ID,
		Amount:    b.TotalPrice,
		Currency:  "INR",
		OrderID:   orderID,
		Status:    StateCreated,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}

	s.auditSvc.LogAction(ctx, &user.ID, "PAYMENT_INITIATED", map[string]interface{}{
		"booking_id": b.ID,
		"order_id":   orderID,
		"amount":     b.TotalPrice,
	}, ip, "success")

	return &StartPaymentResponse{
		OrderID:     orderID,
		Amount:      b.TotalPrice,
		Currency:    "INR",
		RazorpayKey: s.cfg.RazorpayKey,
	}, nil
}

// ==============================
// ✅ Verify and Settle
// ==============================

// VerifyAndSettle checks the Razorpay signature, fetches the payment
// from Razorpay, records the outcome and confirms (or fails) the
// booking. This is the only path that marks a booking paid.
func (s *service) VerifyAndSettle(ctx context.Context, req *VerifyPaymentRequest, ip string) error {
	expected := hmac.New(sha256.New, []byte(s.cfg.RazorpaySecret))
	expected.Write([]byte(req.OrderID + "|" + req.PaymentID))
	computedSignature := hex.EncodeToString(expected.Sum(nil))

	if !hmac.Equal([]byte(computedSignature), []byte(req.RazorpaySig)) {
		s.auditSvc.LogAction(ctx, nil, "PAYMENT_VERIFICATION_FAILED", map[string]interface{}{
			"order_id":   req.OrderID,
			"payment_id": req.PaymentID,
			"reason":     "invalid payment signature",
		}, ip, "failure")
		return ErrInvalidSig
	}

	p, err := s.repo.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		return err
	}
	if p.Status == StatePaid {
		// Already processed.
		return nil
	}

	rp, err := s.client.Payment.Fetch(req.PaymentID, nil, nil)
	if err != nil {
		s.auditSvc.LogAction(ctx, &p.UserID, "PAYMENT_VERIFICATION_FAILED", map[string]interface{}{
			"order_id":   req.OrderID,
			"payment_id": req.PaymentID,
			"error":      err.Error(),
		}, ip, "failure")
		return fmt.Errorf("razorpay payment fetch failed: %w", err)
	}

	status, ok := rp["status"].(string)
	if !ok {
		return errors.New("invalid payment status format")
	}

	var amount float64
	switch val := rp["amount"].(type) {
	case float64:
		amount = val / 100
	case json.Number:
		paise, _ := val.Float64()
		amount = paise / 100
	}

	method := "UNKNOWN"
	if m, ok := rp["method"].(string); ok {
		method = m
	}

	if status != "captured" {
		if err := s.repo.UpdateOutcome(ctx, req.OrderID, OutcomeParams{
			Status:    StateFailed,
			PaymentID: &req.PaymentID,
			Method:    method,
		}); err != nil {
			return err
		}
		if err := s.bookingSvc.FailPayment(ctx, p.BookingID); err != nil {
			return err
		}
		s.auditSvc.LogAction(ctx, &p.UserID, "PAYMENT_FAILED", map[string]interface{}{
			"order_id":        req.OrderID,
			"payment_id":      req.PaymentID,
			"razorpay_status": status,
		}, ip, "failure")
		return nil
	}

	now := s.clock.Now()
	if err := s.repo.UpdateOutcome(ctx, req.OrderID, OutcomeParams{
		Status:    StatePaid,
		PaymentID: &req.PaymentID,
		Method:    method,
		PaidAt:    &now,
	}); err != nil {
		return err
	}

	if err := s.bookingSvc.ConfirmPaid(ctx, p.BookingID, ip); err != nil {
		return err
	}

	s.auditSvc.LogAction(ctx, &p.UserID, "PAYMENT_SUCCESS", map[string]interface{}{
		"order_id":   req.OrderID,
		"payment_id": req.PaymentID,
		"amount":     amount,
		"method":     method,
	}, ip, "success")

	return nil
}

// ==============================
// 🧾 Receipt
// ==============================

func (s *service) GenerateReceipt(ctx context.Context, user *auth.User, bookingID string) ([]byte, string, error) {
	b, err := s.bookingSvc.GetBooking(ctx, user, bookingID)
	if err != nil {
		return nil, "", err
	}

	p, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if p.Status != StatePaid {
		return nil, "", ErrReceiptNotReady
	}

	activityName := ""
	location := ""
	if b.Activity != nil {
		activityName = b.Activity.Name
		location = b.Activity.Location
	}

	transactionID := p.OrderID
	if p.PaymentID != nil {
		transactionID = *p.PaymentID
	}
	paidAt := p.CreatedAt
	if p.PaidAt != nil {
		paidAt = *p.PaidAt
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Booking Payment Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	rows := [][2]string{
		{"Receipt No", fmt.Sprintf("RCP-%s", p.ID[:8])},
		{"Booking ID", b.ID},
		{"Activity", activityName},
		{"Location", location},
		{"People", fmt.Sprint(b.NumberOfPeople)},
		{"Amount", fmt.Sprintf("%.2f %s", p.Amount, p.Currency)},
		{"Payment Method", p.Method},
		{"Transaction ID", transactionID},
		{"Paid At", paidAt.Format("2006-01-02 15:04:05")},
	}
	for _, row := range rows {
		pdf.CellFormat(50, 8, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(130, 8, row[1], "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("receipt_%s_%d.pdf", b.ID[:8], time.Now().Unix())
	return buf.Bytes(), filename, nil
}
