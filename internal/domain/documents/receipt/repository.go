package receipt

import (
	"context"

	"coldstore/internal/core/id"
	"coldstore/internal/core/types"
	"coldstore/internal/domain/billing"
)

// Repository defines persistence operations for receipts.
// Implementation lives in infrastructure/storage/postgres/document_repo.
type Repository interface {
	// Create inserts the receipt header. Returns a duplicate error when
	// the document number collides (unique constraint).
	Create(ctx context.Context, doc *Receipt) error

	// SaveAllocations inserts the receipt's bill allocations.
	SaveAllocations(ctx context.Context, receiptID id.ID, allocations []Allocation) error

	// GetByID retrieves a receipt header (without allocations).
	GetByID(ctx context.Context, receiptID id.ID) (*Receipt, error)

	// GetAllocations retrieves the allocations of a receipt.
	GetAllocations(ctx context.Context, receiptID id.ID) ([]Allocation, error)

	// ListNumbers returns receipt numbers in the given financial year.
	ListNumbers(ctx context.Context, financialYear string) ([]string, error)
}

// BillLedger is the slice of the bill repository the receipt service needs:
// reading open balances and applying confirmed allocations.
type BillLedger interface {
	ListOpenByParty(ctx context.Context, partyID id.ID) ([]billing.OpenBill, error)
	ApplyAllocation(ctx context.Context, billID id.ID, amount types.Money) error
}
