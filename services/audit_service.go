package services

import (
	"context"

	"lablinc/dto"
	"lablinc/errors"
	"lablinc/models"
	"lablinc/services/logger"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

type AuditService struct {
	db     *gorm.DB
	logger logger.Logger
}

func NewAuditService(db *gorm.DB, log logger.Logger) *AuditService {
	return &AuditService{db: db, logger: log}
}

// Record writes an audit entry using tx when given, so the entry commits
// together with the change it describes.
func (s *AuditService) Record(ctx context.Context, tx *gorm.DB, actorID uint, action, entityType string, entityID uint, details interface{}) error {
	if tx == nil {
		tx = s.db
	}
	entry := models.AuditLog{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return err
		}
		entry.Details = b
	}
	if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
		s.logger.Error("audit %s %s#%d failed: %v", action, entityType, entityID, err)
		return errors.DB(err)
	}
	return nil
}

func (s *AuditService) List(ctx context.Context, filter dto.AuditFilter) ([]models.AuditLog, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.ActorID != 0 {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		q = q.Where("entity_type = ?", filter.EntityType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.DB(err)
	}
	var logs []models.AuditLog
	if err := q.Order("id DESC").Offset(filter.Page.Offset()).Limit(filter.Page.Limit).Find(&logs).Error; err != nil {
		return nil, 0, errors.DB(err)
	}
	return logs, total, nil
}
