// Package billing implements the cold-storage billing engine: storage rent,
// GST/TDS computation, bill aggregation, financial-year document numbering
// and payment-to-bill allocation.
//
// All functions here are pure and synchronous. The engine owns no state and
// performs no I/O; persistence and presentation are caller concerns.
package billing

import (
	"coldstore/internal/core/types"
)

// TaxJurisdiction determines how GST splits between components.
type TaxJurisdiction string

const (
	// IntraState applies CGST + SGST (same state codes).
	IntraState TaxJurisdiction = "INTRA_STATE"

	// InterState applies IGST only (different state codes).
	InterState TaxJurisdiction = "INTER_STATE"
)

// ChargeComponent identifies a billable charge line type.
type ChargeComponent string

const (
	ComponentRent      ChargeComponent = "RENT"
	ComponentLoading   ChargeComponent = "LOADING"
	ComponentUnloading ChargeComponent = "UNLOADING"
	ComponentDala      ChargeComponent = "DALA"
	ComponentKatai     ChargeComponent = "KATAI"
	ComponentInsurance ChargeComponent = "INSURANCE"
	ComponentReload    ChargeComponent = "RELOAD"
	ComponentDump      ChargeComponent = "DUMP"
	ComponentOther     ChargeComponent = "OTHER"
)

// ChargeLine is a single ancillary charge on a bill.
// Amount is authoritative once supplied; keeping Amount == Rate*Quantity
// is the caller's responsibility except for rent lines, which the engine
// derives itself.
type ChargeLine struct {
	Component ChargeComponent
	Rate      types.Money
	Quantity  types.Money
	Amount    types.Money
}

// ComputeAmount returns Rate*Quantity rounded to paise.
// Convenience for callers building charge lines from rate cards.
func (l ChargeLine) ComputeAmount() types.Money {
	return types.RoundPaise(l.Rate.Mul(l.Quantity))
}
