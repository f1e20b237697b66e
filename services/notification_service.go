package services

import (
	"context"

	"lablinc/errors"
	"lablinc/models"
	"lablinc/services/logger"
	"lablinc/services/notification"
	"lablinc/utils"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

type NotificationService struct {
	db     *gorm.DB
	logger logger.Logger
	push   notification.Service
	sms    SMSSender
}

type NotificationServiceOptions struct {
	DB     *gorm.DB
	Logger logger.Logger
	Push   notification.Service
	SMS    SMSSender
}

func NewNotificationService(opts NotificationServiceOptions) *NotificationService {
	s := &NotificationService{
		db:     opts.DB,
		logger: opts.Logger,
		push:   opts.Push,
		sms:    opts.SMS,
	}
	if s.push == nil {
		s.push = notification.Nop{}
	}
	if s.sms == nil {
		s.sms = NewLogSMSSender(opts.Logger)
	}
	return s
}

// Notify stores a notification, pushes it to the user's live sessions and
// sends an SMS when the user opted in. Delivery failures are logged only.
func (s *NotificationService) Notify(ctx context.Context, userID uint, kind, title, message string, relatedID *uint) (*models.Notification, error) {
	n := &models.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      kind,
		RelatedID: relatedID,
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, errors.DB(err)
	}

	if payload, err := json.Marshal(n); err == nil {
		if err := s.push.SendToUser(userID, payload); err != nil {
			s.logger.Error("push notification %d to user %d: %v", n.ID, userID, err)
		}
	}

	var user models.User
	if err := s.db.WithContext(ctx).Select("id", "phone_number", "sms_notifications").First(&user, userID).Error; err != nil {
		s.logger.Error("load user %d for sms: %v", userID, err)
		return n, nil
	}
	if user.SMSNotifications && user.PhoneNumber != "" {
		if err := s.sms.Send(ctx, user.PhoneNumber, title+": "+message); err != nil {
			s.logger.Error("sms to user %d: %v", userID, err)
		}
	}
	return n, nil
}

func (s *NotificationService) List(ctx context.Context, userID uint, page utils.Page) ([]models.Notification, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.DB(err)
	}
	var items []models.Notification
	if err := q.Order("created_at DESC, id DESC").Offset(page.Offset()).Limit(page.Limit).Find(&items).Error; err != nil {
		return nil, 0, errors.DB(err)
	}
	return items, total, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, errors.DB(err)
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return errors.DB(res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NotFound("Notification")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, errors.DB(res.Error)
	}
	return res.RowsAffected, nil
}
