package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"coldstore/internal/core/types"
)

// RateBasis selects the quantity a storage rate applies to.
type RateBasis string

const (
	// ByWeight charges per quintal of stored weight.
	ByWeight RateBasis = "BY_WEIGHT"

	// ByPacket charges per packet (bag/crate). Falls back to the
	// per-quintal rate when no per-packet rate is configured.
	ByPacket RateBasis = "BY_PACKET"

	// ByWeightAsQuintal treats the recorded weight as quintals directly.
	// Same arithmetic as ByWeight; kept distinct because rate cards
	// configure it separately.
	ByWeightAsQuintal RateBasis = "BY_WEIGHT_AS_QUINTAL"
)

// RentPeriod defines how the configured rate accrues over time.
type RentPeriod string

const (
	// PeriodMonthly prorates a monthly rate by billable day (month = 30 days).
	PeriodMonthly RentPeriod = "MONTHLY"

	// PeriodDaily multiplies a daily rate by billable days directly.
	PeriodDaily RentPeriod = "DAILY"

	// PeriodSeasonal charges the flat season rate regardless of days stored.
	PeriodSeasonal RentPeriod = "SEASONAL"
)

// StorageLot describes one stored lot (an "amad" / goods receipt) for rent
// calculation.
//
// Precondition: weight, packet count and rates are non-negative, and
// DispatchDate >= ArrivalDate when present. The engine trusts its inputs
// and does not validate them.
type StorageLot struct {
	WeightQuintals types.Money
	PacketCount    int64

	ArrivalDate time.Time
	// DispatchDate is nil while the lot is still in storage; rent then
	// accrues up to the as-of date passed by the caller.
	DispatchDate *time.Time

	GraceDays int

	RatePerQuintal types.Money
	RatePerPacket  types.Money
	RateBasis      RateBasis
	Period         RentPeriod
}

// RentResult is the outcome of a rent calculation for one lot.
type RentResult struct {
	StorageDays  int
	BillableDays int
	Amount       types.Money
}

const daysPerMonth = 30

// StorageDays returns the number of calendar days a lot occupied storage:
// the ceiling of the difference between arrival and dispatch (or asOf when
// the lot is still stored). Never negative.
func StorageDays(arrival time.Time, dispatch *time.Time, asOf time.Time) int {
	end := asOf
	if dispatch != nil {
		end = *dispatch
	}

	hours := end.Sub(arrival).Hours()
	if hours <= 0 {
		return 0
	}

	days := int(hours / 24)
	if float64(days*24) < hours {
		days++ // partial day counts as a full storage day
	}
	return days
}

// CalculateAmadRent computes billable days and rent for a single lot.
//
// Grace days are free storage: billable days never go negative, and a lot
// still within its grace period incurs zero rent. The as-of date only
// matters for lots without a dispatch date; callers pass time.Now() at the
// outermost edge so the calculation stays deterministic in tests.
func CalculateAmadRent(lot StorageLot, asOf time.Time) RentResult {
	storageDays := StorageDays(lot.ArrivalDate, lot.DispatchDate, asOf)

	billableDays := storageDays - lot.GraceDays
	if billableDays < 0 {
		billableDays = 0
	}

	result := RentResult{
		StorageDays:  storageDays,
		BillableDays: billableDays,
		Amount:       types.Zero(),
	}

	// Within the grace period nothing accrues, seasonal or not.
	if billableDays == 0 {
		return result
	}

	quantity, rate := lot.RateInputs()

	days := decimal.NewFromInt(int64(billableDays))

	var amount types.Money
	switch lot.Period {
	case PeriodDaily:
		amount = quantity.Mul(rate).Mul(days)
	case PeriodSeasonal:
		// Flat full-season charge, days stored are irrelevant.
		amount = quantity.Mul(rate)
	case PeriodMonthly:
		fallthrough
	default:
		amount = quantity.Mul(rate).Mul(days).Div(decimal.NewFromInt(daysPerMonth))
	}

	result.Amount = types.RoundPaise(amount)
	return result
}

// RateInputs resolves the quantity and rate the lot's rate basis charges on.
// Bill lines record these alongside the computed amount.
func (lot StorageLot) RateInputs() (quantity, rate types.Money) {
	switch lot.RateBasis {
	case ByPacket:
		rate = lot.RatePerPacket
		if rate.IsZero() {
			rate = lot.RatePerQuintal
		}
		return decimal.NewFromInt(lot.PacketCount), rate
	case ByWeight, ByWeightAsQuintal:
		fallthrough
	default:
		return lot.WeightQuintals, lot.RatePerQuintal
	}
}
