package billing

import (
	"regexp"

	"github.com/shopspring/decimal"

	"coldstore/internal/core/types"
)

// gstinPattern is the 15-character GSTIN layout: state code, PAN, entity
// number, the literal 'Z', checksum.
var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9A-Z]Z[0-9A-Z]$`)

var hundred = decimal.NewFromInt(100)

// GSTBreakup holds the per-component GST amounts for a taxable value.
// Exactly one of (CGST+SGST) or IGST is populated for a given jurisdiction.
type GSTBreakup struct {
	CGSTRate   types.Money
	CGSTAmount types.Money
	SGSTRate   types.Money
	SGSTAmount types.Money
	IGSTRate   types.Money
	IGSTAmount types.Money
	TotalGST   types.Money
}

// CalculateGST computes the GST breakup on a taxable amount.
//
// Intra-state splits the rate evenly into CGST and SGST; inter-state
// applies the full rate as IGST. Each component is rounded to paise before
// summing, and the sum is rounded again. The double rounding is the
// documented policy of this engine, kept for compatibility with the ledger
// amounts the rest of the system stores.
func CalculateGST(taxable types.Money, jurisdiction TaxJurisdiction, gstRate types.Money) GSTBreakup {
	var b GSTBreakup

	if jurisdiction == InterState {
		b.IGSTRate = gstRate
		b.IGSTAmount = types.RoundPaise(taxable.Mul(gstRate).Div(hundred))
		b.CGSTAmount = types.Zero()
		b.SGSTAmount = types.Zero()
		b.TotalGST = b.IGSTAmount
		return b
	}

	half := gstRate.Div(decimal.NewFromInt(2))
	b.CGSTRate = half
	b.SGSTRate = half
	b.CGSTAmount = types.RoundPaise(taxable.Mul(half).Div(hundred))
	b.SGSTAmount = types.RoundPaise(taxable.Mul(half).Div(hundred))
	b.IGSTAmount = types.Zero()
	b.TotalGST = types.RoundPaise(b.CGSTAmount.Add(b.SGSTAmount))
	return b
}

// CalculateTDS computes the TDS withholding on an amount, rounded to paise.
func CalculateTDS(amount, tdsRate types.Money) types.Money {
	return types.RoundPaise(amount.Mul(tdsRate).Div(hundred))
}

// DetermineGSTType derives the jurisdiction from two GST identifiers by
// comparing their two-digit state codes. When either identifier is missing
// or too short the conservative default is intra-state, which avoids
// over-charging IGST on incomplete master data.
func DetermineGSTType(partyGSTIN, orgGSTIN string) TaxJurisdiction {
	if len(partyGSTIN) < 2 || len(orgGSTIN) < 2 {
		return IntraState
	}
	if partyGSTIN[:2] != orgGSTIN[:2] {
		return InterState
	}
	return IntraState
}

// IsValidGSTIN reports whether s is a well-formed 15-character GSTIN.
// Callers decide whether a malformed value blocks a save.
func IsValidGSTIN(s string) bool {
	return gstinPattern.MatchString(s)
}
