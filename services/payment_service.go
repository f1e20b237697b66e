package services

import (
	"context"
	stderrors "errors"
	"fmt"

	"lablinc/commands"
	"lablinc/constants"
	"lablinc/dto"
	"lablinc/errors"
	"lablinc/models"
	"lablinc/payments"
	"lablinc/services/logger"
	"lablinc/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentService struct {
	db       *gorm.DB
	logger   logger.Logger
	gateway  payments.Gateway
	notifier *NotificationService
	audit    *AuditService
}

type PaymentServiceOptions struct {
	DB       *gorm.DB
	Logger   logger.Logger
	Gateway  payments.Gateway
	Notifier *NotificationService
	Audit    *AuditService
}

func NewPaymentService(opts PaymentServiceOptions) *PaymentService {
	return &PaymentService{
		db:       opts.DB,
		logger:   opts.Logger,
		gateway:  opts.Gateway,
		notifier: opts.Notifier,
		audit:    opts.Audit,
	}
}

// Create charges the booking total through the gateway. Only the MSME that
// made a confirmed, unpaid booking may pay for it.
func (s *PaymentService) Create(ctx context.Context, userID uint, input dto.CreatePaymentInput) (*models.Payment, error) {
	var (
		booking models.Booking
		p       *models.Payment
	)
	// The booking row lock and the open-payment check make sure only one
	// request per booking reaches the gateway.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).First(&booking, input.BookingID).Error
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Booking")
		}
		if err != nil {
			return errors.DB(err)
		}
		if booking.UserID != userID {
			return errors.NotFound("Booking")
		}
		if booking.Status != models.BookingStatusConfirmed {
			return errors.NewAppError(errors.ErrCodeInvalidStatus, "Only confirmed bookings can be paid", nil)
		}
		if booking.PaymentStatus == constants.BookingPaid {
			return errors.NewAppError(errors.ErrCodeAlreadyPaid, "Booking is already paid", nil)
		}
		if booking.TotalAmount < 0 {
			return errors.NewAppError(errors.ErrCodeInvalidAmount, "Booking has an invalid amount", nil)
		}

		var open []models.Payment
		if err := tx.Where("booking_id = ? AND status IN ?", booking.ID,
			[]string{constants.PaymentStatusPending, constants.PaymentStatusPaid}).
			Find(&open).Error; err != nil {
			return errors.DB(err)
		}
		for _, existing := range open {
			if existing.Status == constants.PaymentStatusPaid {
				return errors.NewAppError(errors.ErrCodeAlreadyPaid, "Booking is already paid", nil)
			}
		}
		if len(open) > 0 {
			return errors.NewAppError(errors.ErrCodePaymentInProgress, "A payment for this booking is already being processed", nil)
		}

		p = &models.Payment{
			BookingID: booking.ID,
			UserID:    userID,
			Amount:    booking.TotalAmount,
			Currency:  constants.DefaultCurrency,
			Method:    input.Method,
			Provider:  payments.ProviderMercadoPago,
			Reference: "BK" + fmt.Sprint(booking.ID) + "-" + uuid.NewString(),
			Status:    constants.PaymentStatusPending,
		}
		if err := tx.Create(p).Error; err != nil {
			return errors.DB(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Preload("Instrument").Preload("User").First(&booking, booking.ID).Error; err != nil {
		s.logger.Error("reload booking %d: %v", booking.ID, err)
	}

	charge := payments.Charge{
		Reference:   p.Reference,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Description: fmt.Sprintf("LabLinc booking #%d", booking.ID),
		Method:      input.Method,
	}
	if booking.User != nil {
		charge.PayerEmail = booking.User.Email
	}

	result, gwErr := s.gateway.CreatePayment(ctx, charge)
	if gwErr != nil {
		s.logger.Error("payment %s for booking %d failed: %v", p.Reference, booking.ID, gwErr)
		if err := s.db.WithContext(ctx).Model(p).Update("status", constants.PaymentStatusFailed).Error; err != nil {
			s.logger.Error("mark payment %d failed: %v", p.ID, err)
		}
		return nil, errors.NewAppError(errors.ErrCodePaymentFailed, "Payment could not be processed", gwErr)
	}

	p.Provider = result.Provider
	p.ProviderPaymentID = result.ProviderPaymentID
	p.ProviderResponse = result.Raw
	p.Status = constants.PaymentStatusFailed
	if result.Approved() {
		p.Status = constants.PaymentStatusPaid
		paidAt := s.db.NowFunc()
		p.PaidAt = &paidAt
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(p).Updates(map[string]interface{}{
			"provider":            p.Provider,
			"provider_payment_id": p.ProviderPaymentID,
			"provider_response":   p.ProviderResponse,
			"status":              p.Status,
			"paid_at":             p.PaidAt,
		}).Error; err != nil {
			return errors.DB(err)
		}
		if p.Status == constants.PaymentStatusPaid {
			if err := commands.NewMarkBookingPaidCommand(booking.ID, constants.BookingPaid, tx).Execute(ctx); err != nil {
				return errors.DB(err)
			}
		}
		return s.audit.Record(ctx, tx, userID, constants.AuditPaymentCreated, "payment", p.ID, map[string]interface{}{
			"bookingId": booking.ID,
			"amount":    p.Amount,
			"status":    p.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	if p.Status == constants.PaymentStatusPaid && s.notifier != nil {
		name := instrumentName(&booking)
		for _, recipient := range []uint{booking.UserID, booking.InstituteID} {
			title := "Payment received"
			msg := fmt.Sprintf("Payment of %d %s for booking #%d (%s) was received.", p.Amount, p.Currency, booking.ID, name)
			if _, err := s.notifier.Notify(ctx, recipient, constants.NotificationPayment, title, msg, &booking.ID); err != nil {
				s.logger.Error("notify payment %d: %v", p.ID, err)
			}
		}
	}
	if p.Status != constants.PaymentStatusPaid {
		return p, errors.NewAppError(errors.ErrCodePaymentFailed, "Payment was not approved", nil)
	}
	return p, nil
}

func (s *PaymentService) List(ctx context.Context, userID uint, role int, page utils.Page) ([]models.Payment, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Payment{})
	switch role {
	case constants.RoleAdmin:
	case constants.RoleInstitute:
		q = q.Where("booking_id IN (?)", s.db.Model(&models.Booking{}).Select("id").Where("institute_id = ?", userID))
	default:
		q = q.Where("user_id = ?", userID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.DB(err)
	}
	var items []models.Payment
	if err := q.Order("id DESC").Offset(page.Offset()).Limit(page.Limit).Find(&items).Error; err != nil {
		return nil, 0, errors.DB(err)
	}
	return items, total, nil
}

func (s *PaymentService) Get(ctx context.Context, userID uint, role int, id uint) (*models.Payment, error) {
	var p models.Payment
	err := s.db.WithContext(ctx).Preload("Booking").First(&p, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("Payment")
	}
	if err != nil {
		return nil, errors.DB(err)
	}
	allowed := role == constants.RoleAdmin || p.UserID == userID ||
		(role == constants.RoleInstitute && p.Booking != nil && p.Booking.InstituteID == userID)
	if !allowed {
		return nil, errors.NotFound("Payment")
	}
	return &p, nil
}
