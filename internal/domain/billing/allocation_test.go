package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldstore/internal/core/apperror"
	"coldstore/internal/core/id"
	"coldstore/internal/core/types"
)

func TestAutoAllocate_OldestFirst(t *testing.T) {
	billA := id.New()
	billB := id.New()

	// Deliberately out of date order in the input.
	open := []OpenBill{
		{ID: billB, BillDate: date(2024, time.February, 1), Balance: types.MustMoney("400")},
		{ID: billA, BillDate: date(2024, time.January, 1), Balance: types.MustMoney("300")},
	}

	result := AutoAllocate(types.MustMoney("500"), open)

	require.Len(t, result.Allocations, 2)
	assert.Equal(t, billA, result.Allocations[0].BillID)
	assert.True(t, result.Allocations[0].Amount.Equal(types.MustMoney("300")))
	assert.Equal(t, billB, result.Allocations[1].BillID)
	assert.True(t, result.Allocations[1].Amount.Equal(types.MustMoney("200")))

	assert.True(t, result.TotalAllocated.Equal(types.MustMoney("500")))
	assert.True(t, result.Remaining.IsZero())

	// Before/after balances are recorded per allocation.
	assert.True(t, result.Allocations[1].BalanceBefore.Equal(types.MustMoney("400")))
	assert.True(t, result.Allocations[1].BalanceAfter.Equal(types.MustMoney("200")))
}

func TestAutoAllocate_Overpayment(t *testing.T) {
	open := []OpenBill{
		{ID: id.New(), BillDate: date(2024, time.January, 1), Balance: types.MustMoney("300")},
		{ID: id.New(), BillDate: date(2024, time.February, 1), Balance: types.MustMoney("400")},
	}

	result := AutoAllocate(types.MustMoney("1000"), open)

	assert.True(t, result.TotalAllocated.Equal(types.MustMoney("700")))
	assert.True(t, result.Remaining.Equal(types.MustMoney("300")), "remaining %s", result.Remaining)
}

func TestAutoAllocate_SkipsZeroBalances(t *testing.T) {
	settled := id.New()
	open := []OpenBill{
		{ID: settled, BillDate: date(2024, time.January, 1), Balance: types.Zero()},
		{ID: id.New(), BillDate: date(2024, time.February, 1), Balance: types.MustMoney("100")},
	}

	result := AutoAllocate(types.MustMoney("50"), open)

	require.Len(t, result.Allocations, 1)
	assert.NotEqual(t, settled, result.Allocations[0].BillID)
}

func TestAutoAllocate_NoOpenBills(t *testing.T) {
	result := AutoAllocate(types.MustMoney("500"), nil)

	assert.Empty(t, result.Allocations)
	assert.True(t, result.TotalAllocated.IsZero())
	assert.True(t, result.Remaining.Equal(types.MustMoney("500")))
}

func TestAutoAllocate_Deterministic(t *testing.T) {
	open := []OpenBill{
		{ID: id.New(), BillDate: date(2024, time.March, 1), Balance: types.MustMoney("120")},
		{ID: id.New(), BillDate: date(2024, time.January, 1), Balance: types.MustMoney("80")},
		{ID: id.New(), BillDate: date(2024, time.February, 1), Balance: types.MustMoney("60")},
	}

	first := AutoAllocate(types.MustMoney("200"), open)
	second := AutoAllocate(types.MustMoney("200"), open)

	require.Equal(t, len(first.Allocations), len(second.Allocations))
	for i := range first.Allocations {
		assert.Equal(t, first.Allocations[i].BillID, second.Allocations[i].BillID)
		assert.True(t, first.Allocations[i].Amount.Equal(second.Allocations[i].Amount))
	}

	// Conservation: allocated plus remaining equals the payment.
	sum := first.TotalAllocated.Add(first.Remaining)
	assert.True(t, sum.Equal(types.MustMoney("200")), "sum %s", sum)
}

func TestAutoAllocate_DateTiesKeepInputOrder(t *testing.T) {
	first := id.New()
	second := id.New()
	sameDay := date(2024, time.January, 1)

	open := []OpenBill{
		{ID: first, BillDate: sameDay, Balance: types.MustMoney("100")},
		{ID: second, BillDate: sameDay, Balance: types.MustMoney("100")},
	}

	result := AutoAllocate(types.MustMoney("150"), open)

	require.Len(t, result.Allocations, 2)
	assert.Equal(t, first, result.Allocations[0].BillID)
	assert.Equal(t, second, result.Allocations[1].BillID)
}

func TestValidateAllocations(t *testing.T) {
	billA := id.New()
	open := []OpenBill{
		{ID: billA, BillDate: date(2024, time.January, 1), Balance: types.MustMoney("300")},
	}

	t.Run("valid plan passes", func(t *testing.T) {
		err := ValidateAllocations([]Allocation{
			{BillID: billA, Amount: types.MustMoney("200")},
		}, open)
		assert.NoError(t, err)
	})

	t.Run("unknown bill rejected", func(t *testing.T) {
		err := ValidateAllocations([]Allocation{
			{BillID: id.New(), Amount: types.MustMoney("10")},
		}, open)
		assert.Error(t, err)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		err := ValidateAllocations([]Allocation{
			{BillID: billA, Amount: types.Zero()},
		}, open)
		assert.Error(t, err)
	})

	t.Run("single allocation over balance rejected", func(t *testing.T) {
		err := ValidateAllocations([]Allocation{
			{BillID: billA, Amount: types.MustMoney("301")},
		}, open)

		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeAllocationExceedsBalance, appErr.Code)
	})

	t.Run("allocations to the same bill accumulate", func(t *testing.T) {
		err := ValidateAllocations([]Allocation{
			{BillID: billA, Amount: types.MustMoney("200")},
			{BillID: billA, Amount: types.MustMoney("150")},
		}, open)
		assert.Error(t, err)
	})
}
