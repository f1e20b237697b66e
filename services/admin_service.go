package services

import (
	"context"
	stderrors "errors"
	"strings"

	"lablinc/constants"
	"lablinc/dto"
	"lablinc/errors"
	"lablinc/models"
	"lablinc/services/logger"

	"gorm.io/gorm"
)

type AdminService struct {
	db       *gorm.DB
	logger   logger.Logger
	audit    *AuditService
	notifier *NotificationService
}

type AdminServiceOptions struct {
	DB       *gorm.DB
	Logger   logger.Logger
	Audit    *AuditService
	Notifier *NotificationService
}

func NewAdminService(opts AdminServiceOptions) *AdminService {
	return &AdminService{
		db:       opts.DB,
		logger:   opts.Logger,
		audit:    opts.Audit,
		notifier: opts.Notifier,
	}
}

func (s *AdminService) ListUsers(ctx context.Context, filter dto.UserFilter) ([]models.User, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != nil {
		q = q.Where("role = ?", *filter.Role)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if query := strings.TrimSpace(filter.Query); query != "" {
		like := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(organization) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.DB(err)
	}
	var users []models.User
	if err := q.Order("id DESC").Offset(filter.Page.Offset()).Limit(filter.Page.Limit).Find(&users).Error; err != nil {
		return nil, 0, errors.DB(err)
	}
	return users, total, nil
}

func (s *AdminService) loadUser(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	err := tx.WithContext(ctx).First(&user, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NewAppError(errors.ErrCodeUserNotFound, "User not found", nil)
	}
	if err != nil {
		return nil, errors.DB(err)
	}
	return &user, nil
}

// SetUserStatus activates or deactivates an account. Admins cannot
// deactivate themselves.
func (s *AdminService) SetUserStatus(ctx context.Context, actorID, userID uint, status int) (*models.User, error) {
	if status != constants.UserStatusActive && status != constants.UserStatusInactive {
		return nil, errors.NewAppError(errors.ErrCodeInvalidStatus, "Unknown user status", nil)
	}
	if actorID == userID && status == constants.UserStatusInactive {
		return nil, errors.Validation("You cannot deactivate your own account")
	}

	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if user, err = s.loadUser(ctx, tx, userID); err != nil {
			return err
		}
		from := user.Status
		if err := tx.Model(user).Update("status", status).Error; err != nil {
			return errors.DB(err)
		}
		return s.audit.Record(ctx, tx, actorID, constants.AuditUserStatus, "user", userID, map[string]interface{}{
			"from": from,
			"to":   status,
		})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyInstitute marks an institute account as verified.
func (s *AdminService) VerifyInstitute(ctx context.Context, actorID, userID uint) (*models.User, error) {
	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if user, err = s.loadUser(ctx, tx, userID); err != nil {
			return err
		}
		if user.Role != constants.RoleInstitute {
			return errors.NewAppError(errors.ErrCodeInvalidRole, "Only institutes can be verified", nil)
		}
		if err := tx.Model(user).Update("is_verified", true).Error; err != nil {
			return errors.DB(err)
		}
		return s.audit.Record(ctx, tx, actorID, constants.AuditInstituteVerified, "user", userID, nil)
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if _, err := s.notifier.Notify(ctx, userID, constants.NotificationSystem, "Institute verified",
			"Your institute has been verified. Your instruments now show a verified badge.", nil); err != nil {
			s.logger.Error("notify verification of user %d: %v", userID, err)
		}
	}
	return user, nil
}

// Stats summarises the platform. Revenue is the sum of paid payments.
func (s *AdminService) Stats(ctx context.Context) (*dto.PlatformStats, error) {
	db := s.db.WithContext(ctx)
	stats := &dto.PlatformStats{BookingsByState: map[string]int64{}}

	if err := db.Model(&models.User{}).Count(&stats.Users).Error; err != nil {
		return nil, errors.DB(err)
	}
	if err := db.Model(&models.User{}).Where("role = ?", constants.RoleInstitute).Count(&stats.Institutes).Error; err != nil {
		return nil, errors.DB(err)
	}
	if err := db.Model(&models.User{}).Where("role = ?", constants.RoleMSME).Count(&stats.MSMEs).Error; err != nil {
		return nil, errors.DB(err)
	}
	if err := db.Model(&models.Instrument{}).Count(&stats.Instruments).Error; err != nil {
		return nil, errors.DB(err)
	}

	var rows []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Booking{}).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, errors.DB(err)
	}
	for _, status := range []string{
		models.BookingStatusPending, models.BookingStatusConfirmed, models.BookingStatusRejected,
		models.BookingStatusCompleted, models.BookingStatusCancelled,
	} {
		stats.BookingsByState[status] = 0
	}
	for _, r := range rows {
		stats.BookingsByState[r.Status] = r.Count
	}

	if err := db.Model(&models.Payment{}).
		Where("status = ?", constants.PaymentStatusPaid).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.Revenue).Error; err != nil {
		return nil, errors.DB(err)
	}
	return stats, nil
}
