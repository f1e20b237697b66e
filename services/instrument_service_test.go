package services

import (
	"context"
	"testing"
	"time"

	"lablinc/constants"
	"lablinc/dto"
	apperrors "lablinc/errors"
	"lablinc/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instrumentInput(name string) dto.InstrumentInput {
	return dto.InstrumentInput{
		Name:           name,
		Category:       "Spectroscopy",
		City:           "Bengaluru",
		Manufacturer:   "Bruker",
		Specifications: []byte(`{"range":"400-4000 cm-1"}`),
		Images:         []string{"https://img.example/ftir.jpg"},
		HourlyRate:     rate(750),
	}
}

func TestInstrumentService_CreateRequiresInstitute(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	msme := env.user(t, constants.RoleMSME)
	institute := env.user(t, constants.RoleInstitute)

	_, err := env.instruments.Create(ctx, msme.ID, constants.RoleMSME, instrumentInput("FTIR"))
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))

	bad := instrumentInput("FTIR")
	bad.HourlyRate = nil
	_, err = env.instruments.Create(ctx, institute.ID, constants.RoleInstitute, bad)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNoApplicableTier))

	bad = instrumentInput("FTIR")
	bad.DailyRate = rate(1e19)
	_, err = env.instruments.Create(ctx, institute.ID, constants.RoleInstitute, bad)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidAmount))

	bad = instrumentInput("FTIR")
	bad.Specifications = []byte(`{not json`)
	_, err = env.instruments.Create(ctx, institute.ID, constants.RoleInstitute, bad)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidFormat))

	inst, err := env.instruments.Create(ctx, institute.ID, constants.RoleInstitute, instrumentInput(" FTIR Spectrometer "))
	require.NoError(t, err)
	assert.Equal(t, "FTIR Spectrometer", inst.Name)
	assert.Equal(t, constants.InstrumentStatusAvailable, inst.Status)
	assert.Equal(t, "https://img.example/ftir.jpg", inst.Image)
	assert.JSONEq(t, `["https://img.example/ftir.jpg"]`, string(inst.Images))

	got, err := env.instruments.Get(ctx, inst.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Institute)
	assert.Equal(t, institute.ID, got.Institute.ID)
}

func TestInstrumentService_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, constants.RoleInstitute)
	other := env.user(t, constants.RoleInstitute)
	admin := env.user(t, constants.RoleAdmin)
	msme := env.user(t, constants.RoleMSME)

	inst, err := env.instruments.Create(ctx, owner.ID, constants.RoleInstitute, instrumentInput("FTIR"))
	require.NoError(t, err)

	update := instrumentInput("FTIR v2")
	update.DailyRate = rate(5000)
	update.Status = constants.InstrumentStatusMaintenance

	_, err = env.instruments.Update(ctx, other.ID, constants.RoleInstitute, inst.ID, update)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeForbidden))

	updated, err := env.instruments.Update(ctx, owner.ID, constants.RoleInstitute, inst.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "FTIR v2", updated.Name)
	assert.Equal(t, constants.InstrumentStatusMaintenance, updated.Status)
	require.NotNil(t, updated.DailyRate)

	update.Status = constants.InstrumentStatusAvailable
	_, err = env.instruments.Update(ctx, admin.ID, constants.RoleAdmin, inst.ID, update)
	require.NoError(t, err)

	s, e := window(time.Now().Add(48*time.Hour).Truncate(time.Second), 2*time.Hour)
	env.now = time.Now()
	b, err := env.bookings.Create(ctx, msme.ID, constants.RoleMSME, dto.CreateBookingInput{InstrumentID: inst.ID, StartDate: s, EndDate: e})
	require.NoError(t, err)

	err = env.instruments.Delete(ctx, owner.ID, constants.RoleInstitute, inst.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeBookingConflict))

	_, err = env.bookings.UpdateStatus(ctx, msme.ID, constants.RoleMSME, b.ID, dto.BookingStatusInput{Action: "cancel"})
	require.NoError(t, err)
	require.NoError(t, env.instruments.Delete(ctx, owner.ID, constants.RoleInstitute, inst.ID))

	_, err = env.instruments.Get(ctx, inst.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	var audits []models.AuditLog
	require.NoError(t, env.db.Where("entity_type = ?", "instrument").Order("id").Find(&audits).Error)
	require.Len(t, audits, 4)
	assert.Equal(t, constants.AuditInstrumentDeleted, audits[3].Action)
}

func TestInstrumentService_ListFiltersAndCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	institute := env.user(t, constants.RoleInstitute)

	env.instrument(t, institute.ID, nil)
	env.instrument(t, institute.ID, func(i *models.Instrument) {
		i.Name = "Gas Chromatograph"
		i.Category = "Chromatography"
		i.City = "Hyderabad"
		i.DailyRate = rate(3000)
	})
	env.instrument(t, institute.ID, func(i *models.Instrument) {
		i.Name = "HPLC System"
		i.Category = "Chromatography"
		i.City = "Pune"
		i.DailyRate = rate(12000)
	})

	items, total, err := env.instruments.List(ctx, dto.InstrumentFilter{Category: "chromatography", Page: pageOf(10)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)

	_, total, err = env.instruments.List(ctx, dto.InstrumentFilter{City: "pune", MaxDailyRate: rate(9000), Page: pageOf(10)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	items, total, err = env.instruments.List(ctx, dto.InstrumentFilter{Page: pageOf(2)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 2)

	// Rows written behind the service's back stay invisible until invalidation.
	env.instrument(t, institute.ID, func(i *models.Instrument) { i.Name = "XRD" })
	_, total, err = env.instruments.List(ctx, dto.InstrumentFilter{Page: pageOf(2)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	env.instruments.Invalidate(ctx)
	_, total, err = env.instruments.List(ctx, dto.InstrumentFilter{Page: pageOf(2)})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestInstrumentService_FuzzySearch(t *testing.T) {
	env := newTestEnv(t)
	institute := env.user(t, constants.RoleInstitute)

	env.instrument(t, institute.ID, nil)
	env.instrument(t, institute.ID, func(i *models.Instrument) {
		i.Name = "Gas Chromatograph"
		i.Category = "Chromatography"
		i.City = "Hyderabad"
	})

	items, total, err := env.instruments.List(context.Background(), dto.InstrumentFilter{Query: "chromatograf", Page: pageOf(10)})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, "Gas Chromatograph", items[0].Name)

	items, _, err = env.instruments.List(context.Background(), dto.InstrumentFilter{Query: "microscope pune", Page: pageOf(10)})
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.Equal(t, "Scanning Electron Microscope", items[0].Name)
}
