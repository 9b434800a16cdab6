// Package receipt provides the payment receipt document and its
// allocation against open bills.
package receipt

import (
	"context"
	"time"

	"coldstore/internal/core/apperror"
	"coldstore/internal/core/id"
	"coldstore/internal/core/types"
)

// PaymentMode is how the payment was received.
type PaymentMode string

const (
	ModeCash     PaymentMode = "CASH"
	ModeUPI      PaymentMode = "UPI"
	ModeCheque   PaymentMode = "CHEQUE"
	ModeTransfer PaymentMode = "BANK_TRANSFER"
)

// Receipt records a payment from a party and how it settles their bills.
type Receipt struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	ReceiptDate time.Time `db:"receipt_date" json:"receiptDate"`

	PartyID id.ID       `db:"party_id" json:"partyId"`
	Amount  types.Money `db:"amount" json:"amount"`
	Mode    PaymentMode `db:"mode" json:"mode"`

	// Reference for non-cash modes (cheque number, UTR).
	Reference string `db:"reference" json:"reference,omitempty"`

	// UnallocatedAmount is the part of the payment no open bill absorbed.
	// It stays on the receipt as an advance, never silently dropped.
	UnallocatedAmount types.Money `db:"unallocated_amount" json:"unallocatedAmount"`

	AmountInWords string `db:"amount_in_words" json:"amountInWords"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	// Table part: settlements against bills
	Allocations []Allocation `db:"-" json:"allocations"`
}

// Allocation is one settlement of this receipt against a bill.
type Allocation struct {
	ID        id.ID `db:"id" json:"id"`
	ReceiptID id.ID `db:"receipt_id" json:"-"`
	BillID    id.ID `db:"bill_id" json:"billId"`

	Amount        types.Money `db:"amount" json:"amount"`
	BalanceBefore types.Money `db:"balance_before" json:"balanceBefore"`
	BalanceAfter  types.Money `db:"balance_after" json:"balanceAfter"`
}

// Validate checks the receipt draft before allocation and persistence.
func (r *Receipt) Validate(ctx context.Context) error {
	if id.IsNil(r.PartyID) {
		return apperror.NewValidation("party is required").
			WithDetail("field", "partyId")
	}

	if r.ReceiptDate.IsZero() {
		return apperror.NewValidation("receipt date is required").
			WithDetail("field", "receiptDate")
	}

	if !r.Amount.IsPositive() {
		return apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount")
	}

	return nil
}
