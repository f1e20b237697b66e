package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"lablinc/cache"
	"lablinc/constants"
	"lablinc/dto"
	"lablinc/errors"
	"lablinc/models"
	"lablinc/services/logger"
	"lablinc/validator"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
)

const instrumentCachePrefix = "instruments:"

type InstrumentService struct {
	db       *gorm.DB
	cache    cache.Store
	cacheTTL time.Duration
	logger   logger.Logger
	audit    *AuditService
}

type InstrumentServiceOptions struct {
	DB       *gorm.DB
	Cache    cache.Store
	CacheTTL time.Duration
	Logger   logger.Logger
	Audit    *AuditService
}

func NewInstrumentService(opts InstrumentServiceOptions) *InstrumentService {
	return &InstrumentService{
		db:       opts.DB,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   opts.Logger,
		audit:    opts.Audit,
	}
}

type instrumentPage struct {
	Items []models.Instrument `json:"items"`
	Total int64               `json:"total"`
}

func listCacheKey(f dto.InstrumentFilter) string {
	rate := func(p *float64) string {
		if p == nil {
			return "-"
		}
		return fmt.Sprintf("%g", *p)
	}
	return fmt.Sprintf("%slist:c=%s|city=%s|s=%s|q=%s|inst=%d|min=%s|max=%s|p=%d|l=%d",
		instrumentCachePrefix,
		strings.ToLower(f.Category), strings.ToLower(f.City), f.Status, normalizeInput(f.Query),
		f.InstituteID, rate(f.MinDailyRate), rate(f.MaxDailyRate), f.Page.Page, f.Page.Limit)
}

func detailCacheKey(id uint) string {
	return fmt.Sprintf("%sdetail:%d", instrumentCachePrefix, id)
}

func (s *InstrumentService) cacheGet(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, target)
	if err != nil {
		s.logger.Error("cache get %s: %v", key, err)
		return false
	}
	return hit
}

func (s *InstrumentService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Error("cache set %s: %v", key, err)
	}
}

func (s *InstrumentService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, instrumentCachePrefix); err != nil {
		s.logger.Error("cache invalidate instruments: %v", err)
	}
}

func applyInstrumentInput(inst *models.Instrument, input dto.InstrumentInput) error {
	inst.Name = strings.TrimSpace(input.Name)
	inst.Category = strings.TrimSpace(input.Category)
	inst.Description = input.Description
	inst.Manufacturer = input.Manufacturer
	inst.Model = input.Model
	inst.Location = input.Location
	inst.City = strings.TrimSpace(input.City)
	inst.Specifications = nil
	if len(input.Specifications) > 0 && string(input.Specifications) != "null" {
		if !json.Valid(input.Specifications) {
			return errors.NewAppError(errors.ErrCodeInvalidFormat, "Specifications must be valid JSON", nil)
		}
		inst.Specifications = input.Specifications
	}
	inst.Images = nil
	if len(input.Images) > 0 {
		b, err := json.Marshal(input.Images)
		if err != nil {
			return err
		}
		inst.Images = b
	}
	inst.Image = input.Image
	if inst.Image == "" && len(input.Images) > 0 {
		inst.Image = input.Images[0]
	}
	inst.HourlyRate = input.HourlyRate
	inst.DailyRate = input.DailyRate
	inst.WeeklyRate = input.WeeklyRate
	inst.MonthlyRate = input.MonthlyRate
	if input.Status != "" {
		if !validator.IsInstrumentStatus(input.Status) {
			return errors.NewAppError(errors.ErrCodeInvalidStatus, "Unknown instrument status", nil)
		}
		inst.Status = input.Status
	}
	return validator.ValidateRateCard(inst.RateCard())
}

func (s *InstrumentService) Create(ctx context.Context, actorID uint, role int, input dto.InstrumentInput) (*models.Instrument, error) {
	if role != constants.RoleInstitute {
		return nil, errors.Forbidden("Only institutes can list instruments")
	}
	inst := &models.Instrument{InstituteID: actorID, Status: constants.InstrumentStatusAvailable}
	if err := applyInstrumentInput(inst, input); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(inst).Error; err != nil {
			return errors.DB(err)
		}
		return s.audit.Record(ctx, tx, actorID, constants.AuditInstrumentCreated, "instrument", inst.ID, map[string]interface{}{"name": inst.Name})
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return inst, nil
}

// Get returns an instrument by id, served from cache when possible.
func (s *InstrumentService) Get(ctx context.Context, id uint) (*models.Instrument, error) {
	var inst models.Instrument
	key := detailCacheKey(id)
	if s.cacheGet(ctx, key, &inst) {
		return &inst, nil
	}
	inst, err := s.load(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, inst)
	return &inst, nil
}

func (s *InstrumentService) load(ctx context.Context, db *gorm.DB, id uint) (models.Instrument, error) {
	var inst models.Instrument
	err := db.WithContext(ctx).Preload("Institute").First(&inst, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return inst, errors.NotFound("Instrument")
	}
	if err != nil {
		return inst, errors.DB(err)
	}
	return inst, nil
}

func (s *InstrumentService) owned(ctx context.Context, tx *gorm.DB, actorID uint, role int, id uint) (*models.Instrument, error) {
	inst, err := s.load(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if role != constants.RoleAdmin && !(role == constants.RoleInstitute && inst.InstituteID == actorID) {
		return nil, errors.Forbidden("You do not manage this instrument")
	}
	return &inst, nil
}

func (s *InstrumentService) Update(ctx context.Context, actorID uint, role int, id uint, input dto.InstrumentInput) (*models.Instrument, error) {
	var inst *models.Instrument
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		inst, err = s.owned(ctx, tx, actorID, role, id)
		if err != nil {
			return err
		}
		if err := applyInstrumentInput(inst, input); err != nil {
			return err
		}
		inst.Institute = nil
		if err := tx.Omit("CreatedAt", "AverageRating", "ReviewCount").Save(inst).Error; err != nil {
			return errors.DB(err)
		}
		return s.audit.Record(ctx, tx, actorID, constants.AuditInstrumentUpdated, "instrument", inst.ID, input)
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return inst, nil
}

func (s *InstrumentService) Delete(ctx context.Context, actorID uint, role int, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inst, err := s.owned(ctx, tx, actorID, role, id)
		if err != nil {
			return err
		}
		var active int64
		if err := tx.Model(&models.Booking{}).
			Where("instrument_id = ? AND status IN ? AND end_date > ?", id,
				activeBookingStatuses, time.Now().UTC()).
			Count(&active).Error; err != nil {
			return errors.DB(err)
		}
		if active > 0 {
			return errors.NewAppError(errors.ErrCodeBookingConflict, "Instrument has upcoming bookings", nil)
		}
		if err := tx.Delete(&models.Instrument{}, inst.ID).Error; err != nil {
			return errors.DB(err)
		}
		return s.audit.Record(ctx, tx, actorID, constants.AuditInstrumentDeleted, "instrument", inst.ID, nil)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// List returns a filtered page. A free-text query is ranked by fuzzy
// similarity before paging.
func (s *InstrumentService) List(ctx context.Context, filter dto.InstrumentFilter) ([]models.Instrument, int64, error) {
	key := listCacheKey(filter)
	var page instrumentPage
	if s.cacheGet(ctx, key, &page) {
		return page.Items, page.Total, nil
	}

	q := s.db.WithContext(ctx).Model(&models.Instrument{})
	if filter.Category != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(filter.Category))
	}
	if filter.City != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(filter.City))
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.InstituteID != 0 {
		q = q.Where("institute_id = ?", filter.InstituteID)
	}
	if filter.MinDailyRate != nil {
		q = q.Where("daily_rate >= ?", *filter.MinDailyRate)
	}
	if filter.MaxDailyRate != nil {
		q = q.Where("daily_rate <= ?", *filter.MaxDailyRate)
	}

	if strings.TrimSpace(filter.Query) != "" {
		var all []models.Instrument
		if err := q.Order("id DESC").Find(&all).Error; err != nil {
			return nil, 0, errors.DB(err)
		}
		ranked := rankInstruments(filter.Query, all)
		page.Total = int64(len(ranked))
		start := filter.Page.Offset()
		if start > len(ranked) {
			start = len(ranked)
		}
		end := start + filter.Page.Limit
		if end > len(ranked) {
			end = len(ranked)
		}
		page.Items = ranked[start:end]
	} else {
		if err := q.Count(&page.Total).Error; err != nil {
			return nil, 0, errors.DB(err)
		}
		if err := q.Order("id DESC").Offset(filter.Page.Offset()).Limit(filter.Page.Limit).Find(&page.Items).Error; err != nil {
			return nil, 0, errors.DB(err)
		}
	}
	if page.Items == nil {
		page.Items = []models.Instrument{}
	}

	s.cacheSet(ctx, key, page)
	return page.Items, page.Total, nil
}

// Invalidate drops cached listings after changes made outside this service.
func (s *InstrumentService) Invalidate(ctx context.Context) {
	s.invalidate(ctx)
}
