package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"lablinc/constants"
	"lablinc/dto"
	"lablinc/errors"
	"lablinc/models"
	"lablinc/services/logger"
	"lablinc/utils"
	"lablinc/validator"

	"gorm.io/gorm"
)

type ReviewService struct {
	db       *gorm.DB
	logger   logger.Logger
	notifier *NotificationService
	catalog  *InstrumentService
}

type ReviewServiceOptions struct {
	DB       *gorm.DB
	Logger   logger.Logger
	Notifier *NotificationService
	Catalog  *InstrumentService
}

func NewReviewService(opts ReviewServiceOptions) *ReviewService {
	return &ReviewService{
		db:       opts.DB,
		logger:   opts.Logger,
		notifier: opts.Notifier,
		catalog:  opts.Catalog,
	}
}

// Create stores a review for a completed booking and refreshes the
// instrument's rating.
func (s *ReviewService) Create(ctx context.Context, userID uint, input dto.CreateReviewInput) (*models.Review, error) {
	if err := validator.ValidateRating(input.Rating); err != nil {
		return nil, err
	}

	var (
		review  *models.Review
		booking models.Booking
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Instrument").First(&booking, input.BookingID).Error
		if stderrors.Is(err, gorm.ErrRecordNotFound) || (err == nil && booking.UserID != userID) {
			return errors.NotFound("Booking")
		}
		if err != nil {
			return errors.DB(err)
		}
		if booking.Status != models.BookingStatusCompleted {
			return errors.NewAppError(errors.ErrCodeInvalidStatus, "Only completed bookings can be reviewed", nil)
		}

		var existing int64
		if err := tx.Model(&models.Review{}).Where("booking_id = ?", booking.ID).Count(&existing).Error; err != nil {
			return errors.DB(err)
		}
		if existing > 0 {
			return errors.NewAppError(errors.ErrCodeAlreadyReviewed, "This booking has already been reviewed", nil)
		}

		review = &models.Review{
			InstrumentID: booking.InstrumentID,
			UserID:       userID,
			BookingID:    booking.ID,
			Rating:       input.Rating,
			Comment:      strings.TrimSpace(input.Comment),
		}
		if err := tx.Create(review).Error; err != nil {
			return errors.DB(err)
		}
		return refreshRating(tx, booking.InstrumentID)
	})
	if err != nil {
		return nil, err
	}

	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
	if s.notifier != nil {
		msg := fmt.Sprintf("%s received a %d-star review.", instrumentName(&booking), review.Rating)
		if _, err := s.notifier.Notify(ctx, booking.InstituteID, constants.NotificationReview, "New review", msg, &booking.InstrumentID); err != nil {
			s.logger.Error("notify review %d: %v", review.ID, err)
		}
	}
	return review, nil
}

func refreshRating(tx *gorm.DB, instrumentID uint) error {
	var agg struct {
		Count int64
		Avg   float64
	}
	if err := tx.Model(&models.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS avg").
		Where("instrument_id = ?", instrumentID).
		Scan(&agg).Error; err != nil {
		return errors.DB(err)
	}
	return tx.Model(&models.Instrument{}).Where("id = ?", instrumentID).Updates(map[string]interface{}{
		"average_rating": agg.Avg,
		"review_count":   agg.Count,
	}).Error
}

func (s *ReviewService) ListForInstrument(ctx context.Context, instrumentID uint, page utils.Page) ([]models.Review, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Review{}).Where("instrument_id = ?", instrumentID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.DB(err)
	}
	var items []models.Review
	if err := q.Preload("User").Order("id DESC").Offset(page.Offset()).Limit(page.Limit).Find(&items).Error; err != nil {
		return nil, 0, errors.DB(err)
	}
	return items, total, nil
}
