package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"lablinc/cache"
	"lablinc/constants"
	"lablinc/models"
	"lablinc/payments"
	"lablinc/services/logger"
	"lablinc/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func rate(v float64) *float64 {
	return &v
}

type testEnv struct {
	db          *gorm.DB
	log         logger.Logger
	audit       *AuditService
	notifier    *NotificationService
	instruments *InstrumentService
	bookings    *BookingService
	payments    *PaymentService
	reviews     *ReviewService
	admin       *AdminService
	now         time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{db: newTestDB(t), log: logger.NewNop(), now: testNow}

	env.audit = NewAuditService(env.db, env.log)
	env.notifier = NewNotificationService(NotificationServiceOptions{DB: env.db, Logger: env.log})
	env.instruments = NewInstrumentService(InstrumentServiceOptions{
		DB:       env.db,
		Cache:    cache.NewMemoryStore(cache.NewMemory()),
		CacheTTL: time.Minute,
		Logger:   env.log,
		Audit:    env.audit,
	})
	env.bookings = NewBookingService(BookingServiceOptions{
		DB:       env.db,
		Logger:   env.log,
		Notifier: env.notifier,
		Audit:    env.audit,
		Now:      func() time.Time { return env.now },
	})
	gateway, err := payments.NewMercadoPagoGateway("", true, env.log)
	require.NoError(t, err)
	env.payments = NewPaymentService(PaymentServiceOptions{
		DB:       env.db,
		Logger:   env.log,
		Gateway:  gateway,
		Notifier: env.notifier,
		Audit:    env.audit,
	})
	env.reviews = NewReviewService(ReviewServiceOptions{
		DB:       env.db,
		Logger:   env.log,
		Notifier: env.notifier,
		Catalog:  env.instruments,
	})
	env.admin = NewAdminService(AdminServiceOptions{
		DB:       env.db,
		Logger:   env.log,
		Audit:    env.audit,
		Notifier: env.notifier,
	})
	return env
}

func (e *testEnv) user(t *testing.T, role int) *models.User {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.User{}).Count(&n).Error)
	u := &models.User{
		Name:        fmt.Sprintf("%s %d", constants.RoleName(role), n+1),
		Email:       fmt.Sprintf("user%d@example.com", n+1),
		PhoneNumber: fmt.Sprintf("98765%05d", n+1),
		Role:        role,
		Status:      constants.UserStatusActive,
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) instrument(t *testing.T, instituteID uint, card func(*models.Instrument)) *models.Instrument {
	t.Helper()
	inst := &models.Instrument{
		InstituteID: instituteID,
		Name:        "Scanning Electron Microscope",
		Category:    "Microscopy",
		City:        "Pune",
		Status:      constants.InstrumentStatusAvailable,
		HourlyRate:  rate(500),
		DailyRate:   rate(8000),
	}
	if card != nil {
		card(inst)
	}
	require.NoError(t, e.db.Create(inst).Error)
	return inst
}

func window(start time.Time, d time.Duration) (string, string) {
	return start.Format(time.RFC3339), start.Add(d).Format(time.RFC3339)
}

func pageOf(limit int) utils.Page {
	return utils.Page{Page: 0, Limit: limit}
}
