package billing

import (
	"coldstore/internal/core/types"
)

// BillInput carries everything the aggregator needs to price a bill.
type BillInput struct {
	RentAmount   types.Money
	Charges      []ChargeLine
	Discount     types.Money
	Jurisdiction TaxJurisdiction
	GSTRate      types.Money
	TDSRate      types.Money
	ApplyTDS     bool
}

// BillAmounts is the aggregated pricing of a bill. All monetary fields are
// rounded to paise; rates are kept as configured.
type BillAmounts struct {
	GrossAmount   types.Money
	Discount      types.Money
	TaxableAmount types.Money

	GSTBreakup

	TDSRate   types.Money
	TDSAmount types.Money

	TotalAmount types.Money
	NetPayable  types.Money
}

// RoundedAmount is the whole-rupee presentation of a bill total. RoundOff
// preserves the rounding difference so the ledger reconciles exactly:
// Rounded - RoundOff == the original total.
type RoundedAmount struct {
	Rounded  types.Money
	RoundOff types.Money
}

// CalculateBillAmounts combines rent, ancillary charges, discount, GST and
// TDS into the final payable amount.
//
// The discount applies pre-tax and is not floored at zero: a discount
// exceeding the gross produces a negative taxable amount, mirroring what
// the ledger screens allow. NetPayable subtracts TDS only when ApplyTDS is
// set; otherwise the TDS fields are zero.
//
// Pure and total: all-zero inputs yield all-zero outputs, nothing is thrown.
func CalculateBillAmounts(in BillInput) BillAmounts {
	gross := in.RentAmount
	for _, charge := range in.Charges {
		gross = gross.Add(charge.Amount)
	}
	gross = types.RoundPaise(gross)

	taxable := types.RoundPaise(gross.Sub(in.Discount))

	gst := CalculateGST(taxable, in.Jurisdiction, in.GSTRate)
	total := types.RoundPaise(taxable.Add(gst.TotalGST))

	amounts := BillAmounts{
		GrossAmount:   gross,
		Discount:      in.Discount,
		TaxableAmount: taxable,
		GSTBreakup:    gst,
		TDSRate:       types.Zero(),
		TDSAmount:     types.Zero(),
		TotalAmount:   total,
		NetPayable:    total,
	}

	// TDS withholds on the taxable amount, not the GST-inclusive total.
	if in.ApplyTDS {
		amounts.TDSRate = in.TDSRate
		amounts.TDSAmount = CalculateTDS(taxable, in.TDSRate)
		amounts.NetPayable = types.RoundPaise(total.Sub(amounts.TDSAmount))
	}

	return amounts
}

// RoundBillAmount rounds a bill total to the nearest rupee for presentation
// and returns the round-off difference as its own value. The round-off is a
// ledger line of its own, never silently dropped.
func RoundBillAmount(total types.Money) RoundedAmount {
	rounded := types.RoundRupee(total)
	return RoundedAmount{
		Rounded:  rounded,
		RoundOff: rounded.Sub(total),
	}
}
