package billing

import (
	"sort"
	"time"

	"coldstore/internal/core/apperror"
	"coldstore/internal/core/id"
	"coldstore/internal/core/types"
)

// OpenBill is a bill with remaining unpaid balance, as read from the store.
type OpenBill struct {
	ID       id.ID
	BillDate time.Time
	Balance  types.Money
}

// Allocation settles part of a payment against one bill.
type Allocation struct {
	BillID        id.ID
	Amount        types.Money
	BalanceBefore types.Money
	BalanceAfter  types.Money
}

// AllocationResult is the full allocation plan for one payment.
type AllocationResult struct {
	Allocations    []Allocation
	TotalAllocated types.Money
	Remaining      types.Money
}

// AutoAllocate distributes a payment across open bills oldest-first.
//
// Bills are ordered by bill date ascending with ties broken by input order
// (stable sort), then settled greedily: each bill receives
// min(remaining, balance). Zero-balance bills are skipped, never emitted
// with a zero allocation, and the walk stops once the payment is exhausted.
//
// The plan is deterministic: the same inputs always produce the same
// allocations, so re-running is idempotent. Invariant:
// TotalAllocated == min(paymentAmount, sum of balances).
func AutoAllocate(paymentAmount types.Money, openBills []OpenBill) AllocationResult {
	ordered := make([]OpenBill, len(openBills))
	copy(ordered, openBills)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].BillDate.Before(ordered[j].BillDate)
	})

	result := AllocationResult{
		TotalAllocated: types.Zero(),
		Remaining:      paymentAmount,
	}

	for _, bill := range ordered {
		if result.Remaining.LessThanOrEqual(types.Zero()) {
			break
		}

		allocated := result.Remaining
		if bill.Balance.LessThan(allocated) {
			allocated = bill.Balance
		}
		if allocated.LessThanOrEqual(types.Zero()) {
			continue
		}

		result.Allocations = append(result.Allocations, Allocation{
			BillID:        bill.ID,
			Amount:        allocated,
			BalanceBefore: bill.Balance,
			BalanceAfter:  bill.Balance.Sub(allocated),
		})
		result.TotalAllocated = result.TotalAllocated.Add(allocated)
		result.Remaining = result.Remaining.Sub(allocated)
	}

	return result
}

// ValidateAllocations checks a manually supplied allocation plan against the
// party's open bills. Manual mode does not enforce oldest-first, but each
// allocation must target an open bill, be positive, and not exceed that
// bill's balance.
func ValidateAllocations(allocations []Allocation, openBills []OpenBill) error {
	balances := make(map[id.ID]types.Money, len(openBills))
	for _, bill := range openBills {
		balances[bill.ID] = bill.Balance
	}

	for _, alloc := range allocations {
		balance, ok := balances[alloc.BillID]
		if !ok {
			return apperror.NewValidation("allocation targets a bill that is not open").
				WithDetail("bill_id", alloc.BillID.String())
		}
		if alloc.Amount.LessThanOrEqual(types.Zero()) {
			return apperror.NewValidation("allocation amount must be positive").
				WithDetail("bill_id", alloc.BillID.String())
		}
		if alloc.Amount.GreaterThan(balance) {
			return apperror.NewBusinessRule(
				apperror.CodeAllocationExceedsBalance,
				"Allocation exceeds bill balance",
			).WithDetail("bill_id", alloc.BillID.String()).
				WithDetail("balance", balance.String()).
				WithDetail("allocated", alloc.Amount.String())
		}
		balances[alloc.BillID] = balance.Sub(alloc.Amount)
	}

	return nil
}
