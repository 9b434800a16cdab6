package bill

import (
	"context"

	"coldstore/internal/core/id"
	"coldstore/internal/core/types"
	"coldstore/internal/domain/billing"
)

// Repository defines persistence operations for bills.
// Implementation lives in infrastructure/storage/postgres/document_repo.
type Repository interface {
	// Create inserts the bill header. Returns a duplicate error when the
	// document number collides with an existing one (unique constraint).
	Create(ctx context.Context, doc *Bill) error

	// SaveLines inserts the charge lines for a bill.
	SaveLines(ctx context.Context, billID id.ID, lines []Line) error

	// GetByID retrieves a bill header (without lines).
	GetByID(ctx context.Context, billID id.ID) (*Bill, error)

	// GetLines retrieves the charge lines of a bill.
	GetLines(ctx context.Context, billID id.ID) ([]Line, error)

	// ListNumbers returns the document numbers of all bills in the given
	// financial year. Used by the advisory numbering scan.
	ListNumbers(ctx context.Context, financialYear string) ([]string, error)

	// ListOpenByParty returns the party's bills with a positive balance,
	// oldest first.
	ListOpenByParty(ctx context.Context, partyID id.ID) ([]billing.OpenBill, error)

	// ApplyAllocation decreases a bill's balance (and increases paid) by
	// the allocated amount. Fails when the allocation exceeds the balance.
	ApplyAllocation(ctx context.Context, billID id.ID, amount types.Money) error
}
