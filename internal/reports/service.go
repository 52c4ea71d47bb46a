package reports

import (
	"context"

	"gorm.io/gorm"
)

type Service interface {
	ProviderBookingsReport(ctx context.Context, providerID uint, format string) ([]byte, string, string, error)
	ActivitiesReport(ctx context.Context, format string) ([]byte, string, string, error)
}

type service struct {
	db       *gorm.DB
	exporter Exporter
}

func NewService(db *gorm.DB, exporter Exporter) Service {
	return &service{db: db, exporter: exporter}
}

func (s *service) ProviderBookingsReport(ctx context.Context, providerID uint, format string) ([]byte, string, string, error) {
	var rows []BookingReportRow
	err := s.db.WithContext(ctx).
		Table("bookings").
		Select(`bookings.id AS booking_id,
			activities.name AS activity_name,
			users.full_name AS tourist_name,
			bookings.number_of_people AS people,
			bookings.total_price,
			bookings.status,
			bookings.created_at`).
		Joins("JOIN activities ON activities.id = bookings.activity_id").
		Joins("JOIN users ON users.id = bookings.user_id").
		Where("activities.provider_id = ?", providerID).
		Order("bookings.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, "", "", err
	}

	return s.exporter.ExportBookings(format, rows)
}

func (s *service) ActivitiesReport(ctx context.Context, format string) ([]byte, string, string, error) {
	var rows []ActivityReportRow
	err := s.db.WithContext(ctx).
		Table("activities").
		Select(`activities.id AS activity_id,
			activities.name,
			users.full_name AS provider_name,
			activities.status,
			activities.total_capacity,
			activities.available_slots AS available,
			activities.start_date,
			activities.end_date`).
		Joins("JOIN users ON users.id = activities.provider_id").
		Order("activities.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, "", "", err
	}

	return s.exporter.ExportActivities(format, rows)
}
