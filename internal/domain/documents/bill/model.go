// Package bill provides the storage rent bill document (kiraya bill).
package bill

import (
	"context"
	"time"

	"coldstore/internal/core/apperror"
	"coldstore/internal/core/id"
	"coldstore/internal/core/types"
	"coldstore/internal/domain/billing"
)

// Bill represents a storage rent bill raised against a party for one or
// more stored lots plus ancillary charges.
type Bill struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	BillDate time.Time `db:"bill_date" json:"billDate"`

	// Party (farmer/trader) the bill is raised against
	PartyID    id.ID  `db:"party_id" json:"partyId"`
	PartyGSTIN string `db:"party_gstin" json:"partyGstin,omitempty"`

	// Tax configuration
	Jurisdiction billing.TaxJurisdiction `db:"jurisdiction" json:"jurisdiction"`
	GSTRate      types.Money             `db:"gst_rate" json:"gstRate"`
	TDSRate      types.Money             `db:"tds_rate" json:"tdsRate"`
	ApplyTDS     bool                    `db:"apply_tds" json:"applyTds"`

	Discount types.Money `db:"discount" json:"discount"`

	// Aggregated amounts (snapshot at confirmation)
	GrossAmount   types.Money `db:"gross_amount" json:"grossAmount"`
	TaxableAmount types.Money `db:"taxable_amount" json:"taxableAmount"`
	CGSTAmount    types.Money `db:"cgst_amount" json:"cgstAmount"`
	SGSTAmount    types.Money `db:"sgst_amount" json:"sgstAmount"`
	IGSTAmount    types.Money `db:"igst_amount" json:"igstAmount"`
	TotalGST      types.Money `db:"total_gst" json:"totalGst"`
	TDSAmount     types.Money `db:"tds_amount" json:"tdsAmount"`
	TotalAmount   types.Money `db:"total_amount" json:"totalAmount"`
	NetPayable    types.Money `db:"net_payable" json:"netPayable"`

	// Whole-rupee presentation; round-off is its own ledger line
	RoundedTotal types.Money `db:"rounded_total" json:"roundedTotal"`
	RoundOff     types.Money `db:"round_off" json:"roundOff"`

	AmountInWords string `db:"amount_in_words" json:"amountInWords"`

	// Settlement state
	PaidAmount    types.Money `db:"paid_amount" json:"paidAmount"`
	BalanceAmount types.Money `db:"balance_amount" json:"balanceAmount"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Table part: charge lines
	Lines []Line `db:"-" json:"lines"`
}

// Line is one charge line on a bill. Rent lines are derived by the billing
// engine; ancillary lines come in with caller-supplied amounts.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	BillID id.ID `db:"bill_id" json:"-"`
	LineNo int   `db:"line_no" json:"lineNo"`

	Component billing.ChargeComponent `db:"component" json:"component"`
	Rate      types.Money             `db:"rate" json:"rate"`
	Quantity  types.Money             `db:"quantity" json:"quantity"`
	Amount    types.Money             `db:"amount" json:"amount"`

	// LotID links a rent line back to the stored lot it bills, when known.
	LotID *id.ID `db:"lot_id" json:"lotId,omitempty"`
}

// Validate checks the bill draft before pricing and persistence.
func (b *Bill) Validate(ctx context.Context) error {
	if id.IsNil(b.PartyID) {
		return apperror.NewValidation("party is required").
			WithDetail("field", "partyId")
	}

	if b.BillDate.IsZero() {
		return apperror.NewValidation("bill date is required").
			WithDetail("field", "billDate")
	}

	if b.PartyGSTIN != "" && !billing.IsValidGSTIN(b.PartyGSTIN) {
		return apperror.NewBusinessRule(
			apperror.CodeInvalidGSTIN,
			"Party GSTIN is malformed",
		).WithDetail("gstin", b.PartyGSTIN)
	}

	if b.GSTRate.IsNegative() || b.TDSRate.IsNegative() || b.Discount.IsNegative() {
		return apperror.NewValidation("rates and discount must be non-negative")
	}

	return nil
}

// ChargeLines converts the ancillary (non-rent) lines to engine charge lines.
func (b *Bill) ChargeLines() []billing.ChargeLine {
	charges := make([]billing.ChargeLine, 0, len(b.Lines))
	for _, line := range b.Lines {
		if line.Component == billing.ComponentRent {
			continue
		}
		charges = append(charges, billing.ChargeLine{
			Component: line.Component,
			Rate:      line.Rate,
			Quantity:  line.Quantity,
			Amount:    line.Amount,
		})
	}
	return charges
}

// ApplyAmounts copies an aggregation snapshot onto the bill and resets the
// settlement state to "fully unpaid".
func (b *Bill) ApplyAmounts(amounts billing.BillAmounts, rounded billing.RoundedAmount) {
	b.GrossAmount = amounts.GrossAmount
	b.TaxableAmount = amounts.TaxableAmount
	b.CGSTAmount = amounts.CGSTAmount
	b.SGSTAmount = amounts.SGSTAmount
	b.IGSTAmount = amounts.IGSTAmount
	b.TotalGST = amounts.TotalGST
	b.TDSAmount = amounts.TDSAmount
	b.TotalAmount = amounts.TotalAmount
	b.NetPayable = amounts.NetPayable
	b.RoundedTotal = rounded.Rounded
	b.RoundOff = rounded.RoundOff
	b.PaidAmount = types.Zero()
	b.BalanceAmount = amounts.NetPayable
}
