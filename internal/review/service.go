package review

import (
	"context"
	"errors"

	"github.com/kiran0823/tour-booking-backend/internal/activity"
	"github.com/kiran0823/tour-booking-backend/internal/auditlog"
)

var (
	ErrNotEligible   = errors.New("only tourists who completed the activity can review it")
	ErrAlreadyExists = errors.New("you already reviewed this activity")
	ErrNotYourReview = errors.New("not allowed to modify this review")
)

type Service interface {
	CreateReview(ctx context.Context, userID uint, req *CreateReviewRequest, ip string) (*Review, error)
	UpdateReview(ctx context.Context, userID uint, id uint, req *UpdateReviewRequest, ip string) (*Review, error)
	DeleteReview(ctx context.Context, userID uint, role string, id uint, ip string) error
	ListByActivity(ctx context.Context, activityID string) ([]Review, float64, error)
}

type service struct {
	repo         Repository
	activityRepo activity.Repository
	auditSvc     auditlog.Service
}

func NewService(repo Repository, activityRepo activity.Repository, auditSvc auditlog.Service) Service {
	return &service{repo: repo, activityRepo: activityRepo, auditSvc: auditSvc}
}

func (s *service) CreateReview(ctx context.Context, userID uint, req *CreateReviewRequest, ip string) (*Review, error) {
	if _, err := s.activityRepo.GetByID(ctx, req.ActivityID); err != nil {
		return nil, err
	}

	eligible, err := s.repo.HasCompletedBooking(ctx, userID, req.ActivityID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, ErrNotEligible
	}

	if _, err := s.repo.GetByUserAndActivity(ctx, userID, req.ActivityID); err == nil {
		return nil, ErrAlreadyExists
	}

	rev := &Review{
		UserID:     userID,
		ActivityID: req.ActivityID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := s.repo.Create(ctx, rev); err != nil {
		return nil, err
	}

	s.auditSvc.LogAction(ctx, &userID, "REVIEW_CREATED", map[string]interface{}{
		"review_id":   rev.ID,
		"activity_id": req.ActivityID,
		"rating":      req.Rating,
	}, ip, "success")

	return rev, nil
}

func (s *service) UpdateReview(ctx context.Context, userID uint, id uint, req *UpdateReviewRequest, ip string) (*Review, error) {
	rev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rev.UserID != userID {
		return nil, ErrNotYourReview
	}

	rev.Rating = req.Rating
	rev.Comment = req.Comment
	if err := s.repo.Update(ctx, rev); err != nil {
		return nil, err
	}

	s.auditSvc.LogAction(ctx, &userID, "REVIEW_UPDATED", map[string]interface{}{
		"review_id": id,
		"rating":    req.Rating,
	}, ip, "success")

	return rev, nil
}

func (s *service) DeleteReview(ctx context.Context, userID uint, role string, id uint, ip string) error {
	rev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rev.UserID != userID && role != "admin" {
		return ErrNotYourReview
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.LogAction(ctx, &userID, "REVIEW_DELETED", map[string]interface{}{
		"review_id": id,
	}, ip, "success")

	return nil
}

func (s *service) ListByActivity(ctx context.Context, activityID string) ([]Review, float64, error) {
	reviews, err := s.repo.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, 0, err
	}
	avg, err := s.repo.AverageRating(ctx, activityID)
	if err != nil {
		return nil, 0, err
	}
	return reviews, avg, nil
}
