package services

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"lablinc/constants"
	"lablinc/dto"
	apperrors "lablinc/errors"
	"lablinc/models"
	"lablinc/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestBookingService_QuoteMatchesPersistedBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	institute := env.user(t, constants.RoleInstitute)
	msme := env.user(t, constants.RoleMSME)

	rng := rand.New(rand.NewSource(42))
	optional := func(limit int) *float64 {
		if rng.Intn(3) == 0 {
			return nil
		}
		return rate(float64(rng.Intn(limit)) + rng.Float64())
	}

	checked := 0
	for i := 0; i < 200; i++ {
		inst := env.instrument(t, institute.ID, func(inst *models.Instrument) {
			inst.HourlyRate = optional(2000)
			inst.DailyRate = optional(20000)
			inst.WeeklyRate = optional(100000)
			inst.MonthlyRate = optional(300000)
		})

		start := testNow.Add(time.Duration(1+rng.Intn(500)) * time.Hour)
		d := time.Duration(rng.Int63n(int64(45 * 24 * time.Hour)))
		startStr, endStr := start.Format(time.RFC3339Nano), start.Add(d).Format(time.RFC3339Nano)

		quote, quoteErr := env.bookings.Quote(ctx, dto.QuoteInput{InstrumentID: inst.ID, StartDate: startStr, EndDate: endStr})
		booking, createErr := env.bookings.Create(ctx, msme.ID, constants.RoleMSME, dto.CreateBookingInput{
			InstrumentID: inst.ID, StartDate: startStr, EndDate: endStr,
		})

		if quoteErr != nil {
			require.Error(t, createErr, "quote failed but booking was created")
			assert.Equal(t, apperrors.GetAppError(quoteErr).Code, apperrors.GetAppError(createErr).Code)
			continue
		}
		require.NoError(t, createErr)
		checked++

		assert.Equal(t, string(quote.RateType), booking.RateType)
		assert.Equal(t, quote.UnitRate, booking.UnitRate)
		assert.Equal(t, quote.UnitsCharged, booking.UnitsCharged)
		assert.Equal(t, quote.BaseAmount, booking.BaseAmount)
		assert.Equal(t, quote.SecurityFeeAmount, booking.SecurityFeeAmount)
		assert.Equal(t, quote.TaxAmount, booking.TaxAmount)
		assert.Equal(t, quote.TotalAmount, booking.TotalAmount)
		assert.GreaterOrEqual(t, booking.TotalAmount, booking.BaseAmount)

		var stored models.Booking
		require.NoError(t, env.db.First(&stored, booking.ID).Error)
		assert.Equal(t, quote.TotalAmount, stored.TotalAmount)

		_, err := env.bookings.UpdateStatus(ctx, msme.ID, constants.RoleMSME, booking.ID, dto.BookingStatusInput{Action: "cancel"})
		require.NoError(t, err)
	}
	assert.Greater(t, checked, 100)
}

func TestBookingService_QuoteExamples(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	institute := env.user(t, constants.RoleInstitute)

	dailyOnly := env.instrument(t, institute.ID, func(i *models.Instrument) {
		i.HourlyRate = nil
		i.DailyRate = rate(1000)
	})
	both := env.instrument(t, institute.ID, func(i *models.Instrument) {
		i.HourlyRate = rate(100)
		i.DailyRate = rate(1000)
	})
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	q, err := env.bookings.QuoteWindow(ctx, dailyOnly.ID, start, start.Add(8*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, pricing.TierDaily, q.RateType)
	assert.Equal(t, int64(1280), q.TotalAmount)

	q, err = env.bookings.QuoteWindow(ctx, both.ID, start, start.Add(8*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, pricing.TierHourly, q.RateType)
	assert.Equal(t, int64(1024), q.TotalAmount)

	_, err = env.bookings.QuoteWindow(ctx, both.ID, start, start)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidWindow))

	_, err = env.bookings.QuoteWindow(ctx, 9999, start, start.Add(time.Hour))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	_, err = env.bookings.Quote(ctx, dto.QuoteInput{InstrumentID: both.ID, StartDate: "yesterday", EndDate: "today"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidFormat))
}

func TestBookingService_QuoteWithoutRates(t *testing.T) {
	env := newTestEnv(t)
	institute := env.user(t, constants.RoleInstitute)
	inst := env.instrument(t, institute.ID, func(i *models.Instrument) {
		i.HourlyRate = nil
		i.DailyRate = nil
	})

	_, err := env.bookings.QuoteWindow(context.Background(), inst.ID, testNow, testNow.Add(time.Hour))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNoApplicableTier))
}

func TestBookingService_CreateRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	institute := env.user(t, constants.RoleInstitute)
	msme := env.user(t, constants.RoleMSME)
	inst := env.instrument(t, institute.ID, nil)

	start := testNow.Add(24 * time.Hour)
	s, e := window(start, 4*time.Hour)
	input := dto.CreateBookingInput{InstrumentID: inst.ID, StartDate: s, EndDate: e, Notes: "  bring samples "}

	_, err := env.bookings.Create(ctx, institute.ID, constants.RoleInstitute, input)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))

	b, err := env.bookings.Create(ctx, msme.ID, constants.RoleMSME, input)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, b.Status)
	assert.Equal(t, constants.BookingUnpaid, b.PaymentStatus)
	assert.Equal(t, institute.ID, b.InstituteID)
	assert.Equal(t, "bring samples", b.Notes)
	assert.Equal(t, int64(2000+200+360), b.TotalAmount)

	t.Run("overlap", func(t *testing.T) {
		s, e := window(start.Add(2*time.Hour), 4*time.Hour)
		_, err := env.bookings.Create(ctx, msme.ID, constants.RoleMSME, dto.CreateBookingInput{InstrumentID: inst.ID, StartDate: s, EndDate: e})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeBookingConflict))
	})

	t.Run("adjacent window is free", func(t *testing.T) {
		s, e := window(start.Add(4*time.Hour), 2*time.Hour)
		_, err := env.bookings.Create(ctx, msme.ID, constants.RoleMSME, dto.CreateBookingInput{InstrumentID: inst.ID, StartDate: s, EndDate: e})
		assert.NoError(t, err)
	})

	t.Run("past start", func(t *testing.T) {
		s, e := window(testNow.Add(-time.Hour), 2*time.Hour)
		_, err := env.bookings.Create(ctx, msme.ID, constants.RoleMSME, dto.CreateBookingInput{InstrumentID: inst.ID, StartDate: s, EndDate: e})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
	})

	t.Run("instrument under maintenance", func(t *testing.T) {
		down := env.instrument(t, institute.ID, func(i *models.Instrument) { i.Status = constants.InstrumentStatusMaintenance })
		_, err := env.bookings.QuoteWindow(ctx, down.ID, start, start.Add(time.Hour))
		require.NoError(t, err)
		s, e := window(start, time.Hour)
		_, err = env.bookings.Create(ctx, msme.ID, constants.RoleMSME, dto.CreateBookingInput{InstrumentID: down.ID, StartDate: s, EndDate: e})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInstrumentNotReady))
	})

	var notes []models.Notification
	require.NoError(t, env.db.Where("user_id = ?", institute.ID).Find(&notes).Error)
	assert.Len(t, notes, 2)

	var audits int64
	require.NoError(t, env.db.Model(&models.AuditLog{}).Where("action = ?", constants.AuditBookingCreated).Count(&audits).Error)
	assert.Equal(t, int64(2), audits)
}

func TestBookingService_StatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	institute := env.user(t, constants.RoleInstitute)
	other := env.user(t, constants.RoleInstitute)
	msme := env.user(t, constants.RoleMSME)
	admin := env.user(t, constants.RoleAdmin)
	inst := env.instrument(t, institute.ID, nil)

	book := func(offset time.Duration) *models.Booking {
		s, e := window(testNow.Add(offset), 2*time.Hour)
		b, err := env.bookings.Create(ctx, msme.ID, constants.RoleMSME, dto.CreateBookingInput{InstrumentID: inst.ID, StartDate: s, EndDate: e})
		require.NoError(t, err)
		return b
	}

	b := book(24 * time.Hour)

	_, err := env.bookings.UpdateStatus(ctx, msme.ID, constants.RoleMSME, b.ID, dto.BookingStatusInput{Action: "confirm"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))

	_, err = env.bookings.UpdateStatus(ctx, other.ID, constants.RoleInstitute, b.ID, dto.BookingStatusInput{Action: "confirm"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	got, err := env.bookings.UpdateStatus(ctx, institute.ID, constants.RoleInstitute, b.ID, dto.BookingStatusInput{Action: "confirm"})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, got.Status)

	_, err = env.bookings.UpdateStatus(ctx, institute.ID, constants.RoleInstitute, b.ID, dto.BookingStatusInput{Action: "reject"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidTransition))

	got, err = env.bookings.UpdateStatus(ctx, admin.ID, constants.RoleAdmin, b.ID, dto.BookingStatusInput{Action: "complete"})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCompleted, got.Status)

	_, err = env.bookings.UpdateStatus(ctx, msme.ID, constants.RoleMSME, b.ID, dto.BookingStatusInput{Action: "cancel"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidTransition))

	r := book(48 * time.Hour)
	got, err = env.bookings.UpdateStatus(ctx, institute.ID, constants.RoleInstitute, r.ID, dto.BookingStatusInput{Action: "reject", Reason: " calibration due "})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusRejected, got.Status)
	assert.Equal(t, "calibration due", got.RejectionReason)

	// A rejected slot can be booked again.
	book(48 * time.Hour)

	c := book(72 * time.Hour)
	got, err = env.bookings.UpdateStatus(ctx, msme.ID, constants.RoleMSME, c.ID, dto.BookingStatusInput{Action: "cancel"})
	require.NoError(t, err)
	require.NotNil(t, got.CancelledAt)
	assert.True(t, got.CancelledAt.Equal(testNow))

	var stored models.Booking
	require.NoError(t, env.db.First(&stored, c.ID).Error)
	assert.Equal(t, models.BookingStatusCancelled, stored.Status)
	require.NotNil(t, stored.CancelledAt)

	logs, total, err := env.audit.List(ctx, dto.AuditFilter{Action: constants.AuditBookingStatus, Page: pageOf(10)})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, logs, 4)
}

func TestBookingService_ListAndGetAreScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	institute := env.user(t, constants.RoleInstitute)
	other := env.user(t, constants.RoleInstitute)
	msme := env.user(t, constants.RoleMSME)
	msme2 := env.user(t, constants.RoleMSME)
	inst := env.instrument(t, institute.ID, nil)
	otherInst := env.instrument(t, other.ID, nil)

	for i, u := range []*models.User{msme, msme2} {
		s, e := window(testNow.Add(time.Duration(i+1)*24*time.Hour), time.Hour)
		_, err := env.bookings.Create(ctx, u.ID, constants.RoleMSME, dto.CreateBookingInput{InstrumentID: inst.ID, StartDate: s, EndDate: e})
		require.NoError(t, err)
	}
	s, e := window(testNow.Add(24*time.Hour), time.Hour)
	foreign, err := env.bookings.Create(ctx, msme.ID, constants.RoleMSME, dto.CreateBookingInput{InstrumentID: otherInst.ID, StartDate: s, EndDate: e})
	require.NoError(t, err)

	_, total, err := env.bookings.List(ctx, msme.ID, constants.RoleMSME, dto.BookingFilter{Page: pageOf(10)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	items, total, err := env.bookings.List(ctx, institute.ID, constants.RoleInstitute, dto.BookingFilter{Page: pageOf(10)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.NotNil(t, items[0].Instrument)

	_, total, err = env.bookings.List(ctx, 0, constants.RoleAdmin, dto.BookingFilter{Status: models.BookingStatusPending, Page: pageOf(10)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	_, err = env.bookings.Get(ctx, institute.ID, constants.RoleInstitute, foreign.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
	_, err = env.bookings.Get(ctx, msme2.ID, constants.RoleMSME, foreign.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
	got, err := env.bookings.Get(ctx, other.ID, constants.RoleInstitute, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, foreign.ID, got.ID)
}

func TestBookingService_Availability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	institute := env.user(t, constants.RoleInstitute)
	msme := env.user(t, constants.RoleMSME)
	inst := env.instrument(t, institute.ID, nil)

	s, e := window(testNow.Add(24*time.Hour), 3*time.Hour)
	held, err := env.bookings.Create(ctx, msme.ID, constants.RoleMSME, dto.CreateBookingInput{InstrumentID: inst.ID, StartDate: s, EndDate: e})
	require.NoError(t, err)
	s, e = window(testNow.Add(48*time.Hour), 3*time.Hour)
	dropped, err := env.bookings.Create(ctx, msme.ID, constants.RoleMSME, dto.CreateBookingInput{InstrumentID: inst.ID, StartDate: s, EndDate: e})
	require.NoError(t, err)
	_, err = env.bookings.UpdateStatus(ctx, msme.ID, constants.RoleMSME, dropped.ID, dto.BookingStatusInput{Action: "cancel"})
	require.NoError(t, err)

	busy, err := env.bookings.Availability(ctx, inst.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, busy, 1)
	assert.Equal(t, held.ID, busy[0].BookingID)

	_, err = env.bookings.Availability(ctx, inst.ID, testNow, testNow)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidWindow))
}

func TestBookingService_Jobs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	institute := env.user(t, constants.RoleInstitute)
	msme := env.user(t, constants.RoleMSME)
	inst := env.instrument(t, institute.ID, nil)

	create := func(offset, d time.Duration) *models.Booking {
		s, e := window(env.now.Add(offset), d)
		b, err := env.bookings.Create(ctx, msme.ID, constants.RoleMSME, dto.CreateBookingInput{InstrumentID: inst.ID, StartDate: s, EndDate: e})
		require.NoError(t, err)
		return b
	}
	confirm := func(b *models.Booking) {
		_, err := env.bookings.UpdateStatus(ctx, institute.ID, constants.RoleInstitute, b.ID, dto.BookingStatusInput{Action: "confirm"})
		require.NoError(t, err)
	}

	soon := create(2*time.Hour, 2*time.Hour)
	confirm(soon)
	later := create(3*24*time.Hour, 2*time.Hour)
	confirm(later)
	stale := create(time.Hour, time.Hour)

	n, err := env.bookings.SendReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	env.now = env.now.Add(5 * time.Hour)

	n, err = env.bookings.ExpirePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = env.bookings.CompleteFinished(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	status := func(id uint) string {
		var b models.Booking
		require.NoError(t, env.db.First(&b, id).Error)
		return b.Status
	}
	assert.Equal(t, models.BookingStatusCompleted, status(soon.ID))
	assert.Equal(t, models.BookingStatusConfirmed, status(later.ID))
	assert.Equal(t, models.BookingStatusCancelled, status(stale.ID))

	n, err = env.bookings.CompleteFinished(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBookingService_ConcurrentCreatesBookOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	institute := env.user(t, constants.RoleInstitute)
	inst := env.instrument(t, institute.ID, nil)
	msmes := make([]*models.User, 8)
	for i := range msmes {
		msmes[i] = env.user(t, constants.RoleMSME)
	}

	s, e := window(testNow.Add(24*time.Hour), 3*time.Hour)
	errs := make(chan error, len(msmes))
	var wg sync.WaitGroup
	for _, u := range msmes {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := env.bookings.Create(ctx, userID, constants.RoleMSME, dto.CreateBookingInput{InstrumentID: inst.ID, StartDate: s, EndDate: e})
			errs <- err
		}(u.ID)
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeBookingConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, created)

	var stored int64
	require.NoError(t, env.db.Model(&models.Booking{}).Where("instrument_id = ?", inst.ID).Count(&stored).Error)
	assert.Equal(t, int64(1), stored)
}

func TestLockForUpdate_AddsRowLock(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=lablinc dbname=lablinc sslmode=disable"}),
		&gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	var inst models.Instrument
	stmt := lockForUpdate(db).First(&inst, 7).Statement
	assert.Contains(t, stmt.SQL.String(), "FOR UPDATE")

	stmt = db.First(&inst, 7).Statement
	assert.NotContains(t, stmt.SQL.String(), "FOR UPDATE")
}

func TestBookingService_AdminActionNotifiesBothParties(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	institute := env.user(t, constants.RoleInstitute)
	msme := env.user(t, constants.RoleMSME)
	admin := env.user(t, constants.RoleAdmin)
	inst := env.instrument(t, institute.ID, nil)

	s, e := window(testNow.Add(24*time.Hour), 2*time.Hour)
	b, err := env.bookings.Create(ctx, msme.ID, constants.RoleMSME, dto.CreateBookingInput{InstrumentID: inst.ID, StartDate: s, EndDate: e})
	require.NoError(t, err)

	notesFor := func(userID uint) int64 {
		var n int64
		require.NoError(t, env.db.Model(&models.Notification{}).Where("user_id = ? AND related_id = ?", userID, b.ID).Count(&n).Error)
		return n
	}
	instituteBefore, msmeBefore := notesFor(institute.ID), notesFor(msme.ID)

	_, err = env.bookings.UpdateStatus(ctx, admin.ID, constants.RoleAdmin, b.ID, dto.BookingStatusInput{Action: "confirm"})
	require.NoError(t, err)
	assert.Equal(t, instituteBefore+1, notesFor(institute.ID))
	assert.Equal(t, msmeBefore+1, notesFor(msme.ID))
	assert.Zero(t, notesFor(admin.ID))

	// The institute acting on its own booking only notifies the MSME.
	_, err = env.bookings.UpdateStatus(ctx, institute.ID, constants.RoleInstitute, b.ID, dto.BookingStatusInput{Action: "cancel"})
	require.NoError(t, err)
	assert.Equal(t, instituteBefore+1, notesFor(institute.ID))
	assert.Equal(t, msmeBefore+2, notesFor(msme.ID))
}
