package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"coldstore/internal/core/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStorageDays(t *testing.T) {
	arrival := date(2024, time.June, 1)

	tests := []struct {
		name     string
		dispatch *time.Time
		asOf     time.Time
		want     int
	}{
		{
			name: "same instant",
			asOf: arrival,
			want: 0,
		},
		{
			name: "asOf before arrival clamps to zero",
			asOf: date(2024, time.May, 20),
			want: 0,
		},
		{
			name: "exactly thirty days",
			asOf: date(2024, time.July, 1),
			want: 30,
		},
		{
			name: "partial day counts as full day",
			asOf: time.Date(2024, time.July, 1, 1, 0, 0, 0, time.UTC),
			want: 31,
		},
		{
			name:     "dispatch date wins over asOf",
			dispatch: timePtr(date(2024, time.June, 11)),
			asOf:     date(2024, time.December, 1),
			want:     10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StorageDays(arrival, tt.dispatch, tt.asOf)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateAmadRent_MonthlyProration(t *testing.T) {
	// 100 quintals at Rs 2/quintal/month for exactly 30 days = Rs 200.
	lot := StorageLot{
		WeightQuintals: types.MustMoney("100"),
		ArrivalDate:    date(2024, time.June, 1),
		RatePerQuintal: types.MustMoney("2"),
		RateBasis:      ByWeight,
		Period:         PeriodMonthly,
	}

	result := CalculateAmadRent(lot, date(2024, time.July, 1))

	assert.Equal(t, 30, result.StorageDays)
	assert.Equal(t, 30, result.BillableDays)
	assert.True(t, result.Amount.Equal(types.MustMoney("200")),
		"want 200, got %s", result.Amount)
}

func TestCalculateAmadRent_GraceDays(t *testing.T) {
	lot := StorageLot{
		WeightQuintals: types.MustMoney("100"),
		ArrivalDate:    date(2024, time.June, 1),
		GraceDays:      15,
		RatePerQuintal: types.MustMoney("2"),
		Period:         PeriodMonthly,
	}

	t.Run("within grace period nothing accrues", func(t *testing.T) {
		result := CalculateAmadRent(lot, date(2024, time.June, 11))
		assert.Equal(t, 10, result.StorageDays)
		assert.Equal(t, 0, result.BillableDays)
		assert.True(t, result.Amount.IsZero(), "got %s", result.Amount)
	})

	t.Run("grace days reduce billable days", func(t *testing.T) {
		result := CalculateAmadRent(lot, date(2024, time.July, 1))
		assert.Equal(t, 30, result.StorageDays)
		assert.Equal(t, 15, result.BillableDays)
		// 100 * 2 * 15/30 = 100
		assert.True(t, result.Amount.Equal(types.MustMoney("100")),
			"want 100, got %s", result.Amount)
	})
}

func TestCalculateAmadRent_Daily(t *testing.T) {
	lot := StorageLot{
		WeightQuintals: types.MustMoney("50"),
		ArrivalDate:    date(2024, time.June, 1),
		RatePerQuintal: types.MustMoney("0.5"),
		Period:         PeriodDaily,
	}

	result := CalculateAmadRent(lot, date(2024, time.June, 11))

	// 50 * 0.5 * 10 days = 250
	assert.Equal(t, 10, result.BillableDays)
	assert.True(t, result.Amount.Equal(types.MustMoney("250")),
		"want 250, got %s", result.Amount)
}

func TestCalculateAmadRent_Seasonal(t *testing.T) {
	lot := StorageLot{
		WeightQuintals: types.MustMoney("100"),
		ArrivalDate:    date(2024, time.June, 1),
		GraceDays:      5,
		RatePerQuintal: types.MustMoney("120"),
		Period:         PeriodSeasonal,
	}

	t.Run("flat charge regardless of days stored", func(t *testing.T) {
		short := CalculateAmadRent(lot, date(2024, time.June, 10))
		long := CalculateAmadRent(lot, date(2024, time.December, 1))
		assert.True(t, short.Amount.Equal(types.MustMoney("12000")), "got %s", short.Amount)
		assert.True(t, long.Amount.Equal(short.Amount))
	})

	t.Run("grace period still yields zero", func(t *testing.T) {
		result := CalculateAmadRent(lot, date(2024, time.June, 4))
		assert.True(t, result.Amount.IsZero(), "got %s", result.Amount)
	})
}

func TestCalculateAmadRent_RateBasis(t *testing.T) {
	arrival := date(2024, time.June, 1)
	asOf := date(2024, time.June, 11)

	t.Run("by packet uses packet rate", func(t *testing.T) {
		lot := StorageLot{
			WeightQuintals: types.MustMoney("40"),
			PacketCount:    200,
			ArrivalDate:    arrival,
			RatePerQuintal: types.MustMoney("9"),
			RatePerPacket:  types.MustMoney("1.5"),
			RateBasis:      ByPacket,
			Period:         PeriodDaily,
		}
		result := CalculateAmadRent(lot, asOf)
		// 200 packets * 1.5 * 10 days = 3000
		assert.True(t, result.Amount.Equal(types.MustMoney("3000")), "got %s", result.Amount)
	})

	t.Run("by packet falls back to quintal rate", func(t *testing.T) {
		lot := StorageLot{
			PacketCount:    200,
			ArrivalDate:    arrival,
			RatePerQuintal: types.MustMoney("2"),
			RateBasis:      ByPacket,
			Period:         PeriodDaily,
		}
		result := CalculateAmadRent(lot, asOf)
		// 200 packets * 2 * 10 days = 4000
		assert.True(t, result.Amount.Equal(types.MustMoney("4000")), "got %s", result.Amount)
	})

	t.Run("weight-as-quintal matches by-weight arithmetic", func(t *testing.T) {
		lot := StorageLot{
			WeightQuintals: types.MustMoney("100"),
			ArrivalDate:    arrival,
			RatePerQuintal: types.MustMoney("2"),
			Period:         PeriodDaily,
		}
		byWeight := lot
		byWeight.RateBasis = ByWeight
		asQuintal := lot
		asQuintal.RateBasis = ByWeightAsQuintal

		assert.True(t, CalculateAmadRent(byWeight, asOf).Amount.
			Equal(CalculateAmadRent(asQuintal, asOf).Amount))
	})
}

func timePtr(t time.Time) *time.Time {
	return &t
}
