package dto

import (
	"time"

	"coldstore/internal/core/apperror"
	"coldstore/internal/core/id"
	"coldstore/internal/core/types"
	"coldstore/internal/domain/billing"
	"coldstore/internal/domain/documents/receipt"
)

// AllocationRequest targets part of a payment at a specific bill.
type AllocationRequest struct {
	BillID string      `json:"billId" binding:"required"`
	Amount types.Money `json:"amount"`
}

// CreateReceiptRequest records a payment from a party.
//
// When Allocations is omitted the payment is allocated automatically,
// oldest bill first. A present (even empty) list is taken as an explicit
// manual allocation plan.
type CreateReceiptRequest struct {
	ReceiptDate time.Time   `json:"receiptDate" binding:"required"`
	PartyID     string      `json:"partyId" binding:"required"`
	Amount      types.Money `json:"amount"`
	Mode        string      `json:"mode"`
	Reference   string      `json:"reference"`

	Allocations *[]AllocationRequest `json:"allocations"`
}

// ToDocument converts the request to a receipt draft plus the manual
// allocation plan (nil means auto-allocate).
func (r CreateReceiptRequest) ToDocument() (*receipt.Receipt, []billing.Allocation, error) {
	partyID, err := id.Parse(r.PartyID)
	if err != nil {
		return nil, nil, apperror.NewValidation("invalid partyId").
			WithDetail("partyId", r.PartyID)
	}

	doc := &receipt.Receipt{
		ReceiptDate: r.ReceiptDate,
		PartyID:     partyID,
		Amount:      r.Amount,
		Mode:        receipt.PaymentMode(r.Mode),
		Reference:   r.Reference,
	}
	if doc.Mode == "" {
		doc.Mode = receipt.ModeCash
	}

	if r.Allocations == nil {
		return doc, nil, nil
	}

	manual := make([]billing.Allocation, len(*r.Allocations))
	for i, alloc := range *r.Allocations {
		billID, err := id.Parse(alloc.BillID)
		if err != nil {
			return nil, nil, apperror.NewValidation("invalid billId in allocation").
				WithDetail("billId", alloc.BillID)
		}
		manual[i] = billing.Allocation{
			BillID: billID,
			Amount: alloc.Amount,
		}
	}

	return doc, manual, nil
}
