package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"lablinc/builders"
	"lablinc/commands"
	"lablinc/constants"
	"lablinc/dto"
	"lablinc/errors"
	"lablinc/models"
	"lablinc/services/logger"
	"lablinc/services/notification"
	"lablinc/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var activeBookingStatuses = []string{models.BookingStatusPending, models.BookingStatusConfirmed}

type BookingService struct {
	db       *gorm.DB
	logger   logger.Logger
	notifier *NotificationService
	audit    *AuditService
	loc      *time.Location
	now      func() time.Time
}

type BookingServiceOptions struct {
	DB       *gorm.DB
	Logger   logger.Logger
	Notifier *NotificationService
	Audit    *AuditService
	Location *time.Location
	Now      func() time.Time
}

func NewBookingService(opts BookingServiceOptions) *BookingService {
	s := &BookingService{
		db:       opts.DB,
		logger:   opts.Logger,
		notifier: opts.Notifier,
		audit:    opts.Audit,
		loc:      opts.Location,
		now:      opts.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *BookingService) parseWindow(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := utils.ParseTimestamp(startStr, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrCodeInvalidFormat, "Invalid start date", err)
	}
	end, err := utils.ParseTimestamp(endStr, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrCodeInvalidFormat, "Invalid end date", err)
	}
	return start.UTC(), end.UTC(), nil
}

// lockForUpdate takes a row lock on the rows read by the returned query.
// SQLite has no row locks and drops the clause.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (s *BookingService) loadInstrument(ctx context.Context, db *gorm.DB, id uint) (*models.Instrument, error) {
	var inst models.Instrument
	err := db.WithContext(ctx).First(&inst, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("Instrument")
	}
	if err != nil {
		return nil, errors.DB(err)
	}
	return &inst, nil
}

// Quote is the submission-time estimate. It always reads the stored rate
// card so clients never price a booking themselves.
func (s *BookingService) Quote(ctx context.Context, input dto.QuoteInput) (*dto.QuoteResponse, error) {
	start, end, err := s.parseWindow(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}
	return s.QuoteWindow(ctx, input.InstrumentID, start, end)
}

func (s *BookingService) QuoteWindow(ctx context.Context, instrumentID uint, start, end time.Time) (*dto.QuoteResponse, error) {
	inst, err := s.loadInstrument(ctx, s.db, instrumentID)
	if err != nil {
		return nil, err
	}
	q, err := quoteWithMetrics(QuoteSourceEstimate, inst, start, end)
	if err != nil {
		return nil, err
	}
	return &dto.QuoteResponse{InstrumentID: inst.ID, StartDate: start.UTC(), EndDate: end.UTC(), Quote: q}, nil
}

// Create prices and stores a pending booking. The price is recomputed from
// the stored rate card and the overlap check runs in the same transaction
// as the insert.
func (s *BookingService) Create(ctx context.Context, userID uint, role int, input dto.CreateBookingInput) (*models.Booking, error) {
	if role != constants.RoleMSME {
		return nil, errors.Forbidden("Only MSME accounts can book instruments")
	}
	start, end, err := s.parseWindow(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	var (
		booking *models.Booking
		inst    *models.Instrument
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		// Concurrent creates for one instrument queue on this lock, so the
		// overlap count below sees every committed booking.
		inst, err = s.loadInstrument(ctx, lockForUpdate(tx), input.InstrumentID)
		if err != nil {
			return err
		}
		q, err := quoteWithMetrics(QuoteSourceBooking, inst, start, end)
		if err != nil {
			return err
		}
		if start.Before(s.now()) {
			return errors.Validation("Start date cannot be in the past")
		}
		if inst.Status != constants.InstrumentStatusAvailable {
			return errors.NewAppError(errors.ErrCodeInstrumentNotReady, "Instrument is not available for booking", nil)
		}

		var conflicts int64
		if err := tx.Model(&models.Booking{}).
			Where("instrument_id = ? AND status IN ? AND start_date < ? AND end_date > ?",
				inst.ID, activeBookingStatuses, end, start).
			Count(&conflicts).Error; err != nil {
			return errors.DB(err)
		}
		if conflicts > 0 {
			return errors.NewAppError(errors.ErrCodeBookingConflict, "The instrument is already booked for part of this window", nil)
		}

		booking = builders.NewBookingBuilder().
			ForInstrument(inst).
			WithUser(userID).
			WithWindow(start, end).
			WithNotes(strings.TrimSpace(input.Notes)).
			WithQuote(q).
			Build()
		if err := commands.NewCreateBookingCommand(booking, tx).Execute(ctx); err != nil {
			return errors.DB(err)
		}
		return s.audit.Record(ctx, tx, userID, constants.AuditBookingCreated, "booking", booking.ID, map[string]interface{}{
			"instrumentId": inst.ID,
			"totalAmount":  booking.TotalAmount,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking %d created for instrument %d by user %d, total %d", booking.ID, inst.ID, userID, booking.TotalAmount)
	s.notifyBooking(ctx, booking, inst.Name, "created", booking.InstituteID)
	return booking, nil
}

func (s *BookingService) notifyBooking(ctx context.Context, b *models.Booking, instrumentName, event string, recipients ...uint) {
	if s.notifier == nil {
		return
	}
	title, message := notification.NewMessageBuilder(b.ID, instrumentName).
		WithWindow(b.StartDate, b.EndDate).
		WithReason(b.RejectionReason).
		In(s.loc).
		Build(event)
	id := b.ID
	for _, userID := range recipients {
		if _, err := s.notifier.Notify(ctx, userID, constants.NotificationBooking, title, message, &id); err != nil {
			s.logger.Error("notify user %d about booking %d: %v", userID, b.ID, err)
		}
	}
}

func scopeBookings(q *gorm.DB, userID uint, role int) *gorm.DB {
	switch role {
	case constants.RoleAdmin:
		return q
	case constants.RoleInstitute:
		return q.Where("bookings.institute_id = ?", userID)
	default:
		return q.Where("bookings.user_id = ?", userID)
	}
}

func canView(b *models.Booking, userID uint, role int) bool {
	switch role {
	case constants.RoleAdmin:
		return true
	case constants.RoleInstitute:
		return b.InstituteID == userID
	default:
		return b.UserID == userID
	}
}

func (s *BookingService) List(ctx context.Context, userID uint, role int, filter dto.BookingFilter) ([]models.Booking, int64, error) {
	q := scopeBookings(s.db.WithContext(ctx).Model(&models.Booking{}), userID, role)
	if filter.Status != "" {
		q = q.Where("bookings.status = ?", filter.Status)
	}
	if filter.InstrumentID != 0 {
		q = q.Where("bookings.instrument_id = ?", filter.InstrumentID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.DB(err)
	}
	var items []models.Booking
	if err := q.Preload("Instrument").Preload("User").
		Order("bookings.start_date DESC, bookings.id DESC").
		Offset(filter.Page.Offset()).Limit(filter.Page.Limit).
		Find(&items).Error; err != nil {
		return nil, 0, errors.DB(err)
	}
	return items, total, nil
}

func (s *BookingService) Get(ctx context.Context, userID uint, role int, id uint) (*models.Booking, error) {
	var b models.Booking
	err := s.db.WithContext(ctx).Preload("Instrument").Preload("User").First(&b, id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("Booking")
	}
	if err != nil {
		return nil, errors.DB(err)
	}
	if !canView(&b, userID, role) {
		return nil, errors.NotFound("Booking")
	}
	return &b, nil
}

func authorizeAction(b *models.Booking, action models.BookingAction, userID uint, role int) error {
	owner := role == constants.RoleInstitute && b.InstituteID == userID
	switch {
	case role == constants.RoleAdmin, owner:
		return nil
	case action == models.ActionCancel && role == constants.RoleMSME && b.UserID == userID:
		return nil
	}
	return errors.Forbidden("You are not allowed to " + string(action) + " this booking")
}

// UpdateStatus applies a lifecycle action on behalf of a user.
func (s *BookingService) UpdateStatus(ctx context.Context, userID uint, role int, id uint, input dto.BookingStatusInput) (*models.Booking, error) {
	action := models.BookingAction(input.Action)
	var b models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Instrument").First(&b, id).Error
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Booking")
		}
		if err != nil {
			return errors.DB(err)
		}
		if !canView(&b, userID, role) {
			return errors.NotFound("Booking")
		}
		if err := authorizeAction(&b, action, userID, role); err != nil {
			return err
		}
		return s.transition(ctx, tx, &b, action, strings.TrimSpace(input.Reason), userID)
	})
	if err != nil {
		return nil, err
	}

	var recipients []uint
	switch userID {
	case b.UserID:
		recipients = []uint{b.InstituteID}
	case b.InstituteID:
		recipients = []uint{b.UserID}
	default:
		recipients = []uint{b.UserID, b.InstituteID}
	}
	s.notifyBooking(ctx, &b, instrumentName(&b), b.Status, recipients...)
	return &b, nil
}

func (s *BookingService) transition(ctx context.Context, tx *gorm.DB, b *models.Booking, action models.BookingAction, reason string, actorID uint) error {
	from := b.Status
	if err := b.Apply(action, reason, s.now().UTC()); err != nil {
		if stderrors.Is(err, models.ErrInvalidTransition) {
			return errors.NewAppError(errors.ErrCodeInvalidTransition, "Cannot "+string(action)+" a "+from+" booking", err)
		}
		return err
	}
	if err := commands.NewUpdateBookingStatusCommand(b, tx).Execute(ctx); err != nil {
		return errors.DB(err)
	}
	return s.audit.Record(ctx, tx, actorID, constants.AuditBookingStatus, "booking", b.ID, map[string]interface{}{
		"from":   from,
		"to":     b.Status,
		"reason": reason,
	})
}

func instrumentName(b *models.Booking) string {
	if b.Instrument != nil {
		return b.Instrument.Name
	}
	return "instrument"
}

// Availability lists the slots already held on an instrument within [from, to).
func (s *BookingService) Availability(ctx context.Context, instrumentID uint, from, to time.Time) ([]dto.BusyWindow, error) {
	if _, err := s.loadInstrument(ctx, s.db, instrumentID); err != nil {
		return nil, err
	}
	if from.IsZero() {
		from = s.now()
	}
	if to.IsZero() {
		to = from.AddDate(0, 0, 30)
	}
	if !to.After(from) {
		return nil, errors.NewAppError(errors.ErrCodeInvalidWindow, "End date must be after start date", nil)
	}

	var bookings []models.Booking
	if err := s.db.WithContext(ctx).
		Where("instrument_id = ? AND status IN ? AND start_date < ? AND end_date > ?",
			instrumentID, activeBookingStatuses, to.UTC(), from.UTC()).
		Order("start_date ASC").
		Find(&bookings).Error; err != nil {
		return nil, errors.DB(err)
	}

	windows := make([]dto.BusyWindow, 0, len(bookings))
	for _, b := range bookings {
		windows = append(windows, dto.BusyWindow{
			BookingID: b.ID,
			StartDate: b.StartDate,
			EndDate:   b.EndDate,
			Status:    b.Status,
		})
	}
	return windows, nil
}

func (s *BookingService) sweep(ctx context.Context, where string, args []interface{}, action models.BookingAction, event string, notifyInstitute bool) (int, error) {
	var due []models.Booking
	if err := s.db.WithContext(ctx).Preload("Instrument").Where(where, args...).Find(&due).Error; err != nil {
		return 0, errors.DB(err)
	}

	done := 0
	for i := range due {
		b := &due[i]
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.transition(ctx, tx, b, action, "", 0)
		})
		if err != nil {
			s.logger.Error("%s booking %d: %v", action, b.ID, err)
			continue
		}
		done++
		recipients := []uint{b.UserID}
		if notifyInstitute {
			recipients = append(recipients, b.InstituteID)
		}
		s.notifyBooking(ctx, b, instrumentName(b), event, recipients...)
	}
	return done, nil
}

// CompleteFinished marks confirmed bookings whose end has passed as completed.
func (s *BookingService) CompleteFinished(ctx context.Context) (int, error) {
	now := s.now().UTC()
	return s.sweep(ctx, "status = ? AND end_date <= ?", []interface{}{models.BookingStatusConfirmed, now},
		models.ActionComplete, "completed", false)
}

// ExpirePending cancels pending bookings that were never confirmed before
// their start.
func (s *BookingService) ExpirePending(ctx context.Context) (int, error) {
	now := s.now().UTC()
	return s.sweep(ctx, "status = ? AND start_date <= ?", []interface{}{models.BookingStatusPending, now},
		models.ActionCancel, "expired", true)
}

// SendReminders notifies both parties of confirmed bookings starting within
// the next 24 hours.
func (s *BookingService) SendReminders(ctx context.Context) (int, error) {
	now := s.now().UTC()
	var upcoming []models.Booking
	if err := s.db.WithContext(ctx).Preload("Instrument").
		Where("status = ? AND start_date > ? AND start_date <= ?", models.BookingStatusConfirmed, now, now.Add(24*time.Hour)).
		Find(&upcoming).Error; err != nil {
		return 0, errors.DB(err)
	}
	for i := range upcoming {
		b := &upcoming[i]
		s.notifyBooking(ctx, b, instrumentName(b), "reminder", b.UserID, b.InstituteID)
	}
	return len(upcoming), nil
}
