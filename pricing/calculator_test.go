package pricing

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rate(v float64) *float64 { return &v }

var jan1 = time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC)

func TestCalculate_DailyFallbackForSubDayWindow(t *testing.T) {
	q, err := Calculate(RateCard{Daily: rate(1000)}, jan1, jan1.Add(8*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, TierDaily, q.RateType)
	assert.Equal(t, int64(1), q.UnitsCharged)
	assert.Equal(t, int64(1000), q.BaseAmount)
	assert.Equal(t, int64(100), q.SecurityFeeAmount)
	assert.Equal(t, int64(180), q.TaxAmount)
	assert.Equal(t, int64(1280), q.TotalAmount)
	assert.InDelta(t, 8.0/24.0, q.TotalDays, 1e-9)
}

func TestCalculate_HourlyWinsForSubDayWindow(t *testing.T) {
	q, err := Calculate(RateCard{Hourly: rate(100), Daily: rate(1000)}, jan1, jan1.Add(8*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, TierHourly, q.RateType)
	assert.Equal(t, int64(8), q.UnitsCharged)
	assert.Equal(t, int64(800), q.BaseAmount)
	assert.Equal(t, int64(80), q.SecurityFeeAmount)
	assert.Equal(t, int64(144), q.TaxAmount)
	assert.Equal(t, int64(1024), q.TotalAmount)
}

func TestCalculate_Boundaries(t *testing.T) {
	tests := []struct {
		name  string
		card  RateCard
		dur   time.Duration
		tier  Tier
		units int64
	}{
		{"exactly 7 days picks weekly", RateCard{Daily: rate(1000), Weekly: rate(6000)}, 7 * 24 * time.Hour, TierWeekly, 1},
		{"just under 7 days stays daily", RateCard{Daily: rate(1000), Weekly: rate(6000)}, 7*24*time.Hour - time.Millisecond, TierDaily, 7},
		{"exactly 30 days picks monthly", RateCard{Daily: rate(1000), Weekly: rate(6000), Monthly: rate(20000)}, 30 * 24 * time.Hour, TierMonthly, 1},
		{"30 days without monthly uses weekly", RateCard{Daily: rate(1000), Weekly: rate(6000)}, 30 * 24 * time.Hour, TierWeekly, 5},
		{"exactly 24h with hourly and daily picks daily", RateCard{Hourly: rate(100), Daily: rate(1000)}, 24 * time.Hour, TierDaily, 1},
		{"1.01 days bills two days", RateCard{Daily: rate(1000)}, time.Duration(1.01 * float64(24*time.Hour)), TierDaily, 2},
		{"partial hour bills a full hour", RateCard{Hourly: rate(100)}, 61 * time.Minute, TierHourly, 2},
		{"long window on hourly-only card", RateCard{Hourly: rate(50)}, 3 * 24 * time.Hour, TierHourly, 72},
		{"45 days bills two months", RateCard{Monthly: rate(20000)}, 45 * 24 * time.Hour, TierMonthly, 2},
		{"weekly-only card below a week falls through", RateCard{Weekly: rate(6000), Hourly: rate(10)}, 5 * time.Hour, TierHourly, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Calculate(tt.card, jan1, jan1.Add(tt.dur))
			require.NoError(t, err)
			assert.Equal(t, tt.tier, q.RateType)
			assert.Equal(t, tt.units, q.UnitsCharged)
		})
	}
}

func TestCalculate_Failures(t *testing.T) {
	tests := []struct {
		name  string
		card  RateCard
		start time.Time
		end   time.Time
		want  error
	}{
		{"end before start", RateCard{Daily: rate(1000)}, jan1, jan1.Add(-time.Hour), ErrInvalidWindow},
		{"end equals start", RateCard{Daily: rate(1000)}, jan1, jan1, ErrInvalidWindow},
		{"empty card", RateCard{}, jan1, jan1.Add(time.Hour), ErrNoApplicableTier},
		{"negative rate is not offered", RateCard{Daily: rate(-5)}, jan1, jan1.Add(time.Hour), ErrNoApplicableTier},
		{"weekly-only card below a week", RateCard{Weekly: rate(6000)}, jan1, jan1.Add(48 * time.Hour), ErrNoApplicableTier},
		{"monthly-only card below a month", RateCard{Monthly: rate(20000)}, jan1, jan1.Add(29 * 24 * time.Hour), ErrNoApplicableTier},
		{"sub-millisecond window", RateCard{Hourly: rate(100)}, jan1, jan1.Add(500 * time.Microsecond), ErrZeroDuration},
		{"total would overflow int64", RateCard{Daily: rate(1e19)}, jan1, jan1.Add(48 * time.Hour), ErrAmountOverflow},
		{"huge hourly rate over a long window", RateCard{Hourly: rate(1e16)}, jan1, jan1.Add(2000 * time.Hour), ErrAmountOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Calculate(tt.card, tt.start, tt.end)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, Quote{}, q)
		})
	}
}

func TestCalculate_RoundsEachStep(t *testing.T) {
	// 3 hours at 33.35 = 100.05 -> 100; fee 10; tax 18.
	q, err := Calculate(RateCard{Hourly: rate(33.35)}, jan1, jan1.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(100), q.BaseAmount)
	assert.Equal(t, int64(10), q.SecurityFeeAmount)
	assert.Equal(t, int64(18), q.TaxAmount)
	assert.Equal(t, int64(128), q.TotalAmount)

	// base 125: fee 12.5 -> 13, tax 22.5 -> 23.
	q, err = Calculate(RateCard{Hourly: rate(125)}, jan1, jan1.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(13), q.SecurityFeeAmount)
	assert.Equal(t, int64(23), q.TaxAmount)
	assert.Equal(t, int64(161), q.TotalAmount)
}

func TestCalculate_MaxRateStaysInRange(t *testing.T) {
	card := RateCard{Hourly: rate(MaxRate)}
	q, err := Calculate(card, jan1, jan1.AddDate(1, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, TierHourly, q.RateType)
	assert.Greater(t, q.BaseAmount, int64(0))
	assert.GreaterOrEqual(t, q.TotalAmount, q.BaseAmount)
	assert.Equal(t, q.BaseAmount+q.SecurityFeeAmount+q.TaxAmount, q.TotalAmount)
}

func TestCalculate_ZeroRateIsFree(t *testing.T) {
	q, err := Calculate(RateCard{Daily: rate(0)}, jan1, jan1.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, TierDaily, q.RateType)
	assert.Equal(t, int64(0), q.TotalAmount)
}

func randomCard(r *rand.Rand) RateCard {
	var card RateCard
	pick := func() *float64 {
		if r.Intn(2) == 0 {
			return nil
		}
		return rate(float64(r.Intn(100000)) / 100)
	}
	for card.Empty() {
		card = RateCard{Hourly: pick(), Daily: pick(), Weekly: pick(), Monthly: pick()}
	}
	return card
}

func TestCalculate_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		card := randomCard(r)
		start := jan1.Add(time.Duration(r.Int63n(int64(365 * 24 * time.Hour))))
		end := start.Add(time.Millisecond + time.Duration(r.Int63n(int64(90*24*time.Hour))))

		q, err := Calculate(card, start, end)
		if err != nil {
			// Only cards without hourly and daily rates can fail on a valid window.
			_, hasHourly := card.Rate(TierHourly)
			_, hasDaily := card.Rate(TierDaily)
			require.False(t, hasHourly || hasDaily, "unexpected failure %v for %+v", err, card)
			require.ErrorIs(t, err, ErrNoApplicableTier)
			continue
		}

		require.GreaterOrEqual(t, q.BaseAmount, int64(0))
		require.GreaterOrEqual(t, q.TotalAmount, q.BaseAmount)
		require.Equal(t, q.BaseAmount+q.SecurityFeeAmount+q.TaxAmount, q.TotalAmount)
		require.GreaterOrEqual(t, q.UnitsCharged, int64(1))

		again, err := Calculate(card, start, end)
		require.NoError(t, err)
		require.Equal(t, q, again)
	}
}

func TestCalculate_ConcurrentCallsAgree(t *testing.T) {
	card := RateCard{Hourly: rate(120), Daily: rate(900), Weekly: rate(5000)}
	want, err := Calculate(card, jan1, jan1.Add(10*24*time.Hour+time.Hour))
	require.NoError(t, err)

	results := make(chan Quote, 32)
	for i := 0; i < cap(results); i++ {
		go func() {
			q, _ := Calculate(card, jan1, jan1.Add(10*24*time.Hour+time.Hour))
			results <- q
		}()
	}
	for i := 0; i < cap(results); i++ {
		assert.Equal(t, want, <-results)
	}
}
