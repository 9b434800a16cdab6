package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"coldstore/internal/core/types"
)

func TestCalculateBillAmounts(t *testing.T) {
	t.Run("rent only with intra-state GST", func(t *testing.T) {
		amounts := CalculateBillAmounts(BillInput{
			RentAmount:   types.MustMoney("1000"),
			Jurisdiction: IntraState,
			GSTRate:      types.MustMoney("18"),
		})

		assert.True(t, amounts.GrossAmount.Equal(types.MustMoney("1000")))
		assert.True(t, amounts.TaxableAmount.Equal(types.MustMoney("1000")))
		assert.True(t, amounts.CGSTAmount.Equal(types.MustMoney("90")))
		assert.True(t, amounts.SGSTAmount.Equal(types.MustMoney("90")))
		assert.True(t, amounts.TotalAmount.Equal(types.MustMoney("1180")), "total %s", amounts.TotalAmount)
		assert.True(t, amounts.NetPayable.Equal(amounts.TotalAmount))
		assert.True(t, amounts.TDSAmount.IsZero())
	})

	t.Run("charges add to gross", func(t *testing.T) {
		amounts := CalculateBillAmounts(BillInput{
			RentAmount: types.MustMoney("200"),
			Charges: []ChargeLine{
				{Component: ComponentLoading, Amount: types.MustMoney("50")},
				{Component: ComponentDala, Amount: types.MustMoney("25.50")},
			},
			Jurisdiction: IntraState,
			GSTRate:      types.Zero(),
		})

		assert.True(t, amounts.GrossAmount.Equal(types.MustMoney("275.50")), "gross %s", amounts.GrossAmount)
		assert.True(t, amounts.TotalAmount.Equal(types.MustMoney("275.50")))
	})

	t.Run("discount applies before tax", func(t *testing.T) {
		amounts := CalculateBillAmounts(BillInput{
			RentAmount:   types.MustMoney("1100"),
			Discount:     types.MustMoney("100"),
			Jurisdiction: IntraState,
			GSTRate:      types.MustMoney("18"),
		})

		assert.True(t, amounts.TaxableAmount.Equal(types.MustMoney("1000")))
		assert.True(t, amounts.TotalAmount.Equal(types.MustMoney("1180")))
	})

	t.Run("discount larger than gross leaves taxable negative", func(t *testing.T) {
		amounts := CalculateBillAmounts(BillInput{
			RentAmount: types.MustMoney("100"),
			Discount:   types.MustMoney("150"),
		})

		assert.True(t, amounts.TaxableAmount.Equal(types.MustMoney("-50")), "taxable %s", amounts.TaxableAmount)
	})

	t.Run("TDS withholds on taxable amount", func(t *testing.T) {
		amounts := CalculateBillAmounts(BillInput{
			RentAmount:   types.MustMoney("1000"),
			Jurisdiction: IntraState,
			GSTRate:      types.MustMoney("18"),
			TDSRate:      types.MustMoney("2"),
			ApplyTDS:     true,
		})

		// 2% of the taxable 1000, not of the 1180 total.
		assert.True(t, amounts.TDSAmount.Equal(types.MustMoney("20")), "tds %s", amounts.TDSAmount)
		assert.True(t, amounts.NetPayable.Equal(types.MustMoney("1160")), "net %s", amounts.NetPayable)
		assert.True(t, amounts.TotalAmount.Equal(types.MustMoney("1180")))
	})

	t.Run("TDS rate ignored when not applied", func(t *testing.T) {
		amounts := CalculateBillAmounts(BillInput{
			RentAmount: types.MustMoney("1000"),
			TDSRate:    types.MustMoney("2"),
			ApplyTDS:   false,
		})

		assert.True(t, amounts.TDSAmount.IsZero())
		assert.True(t, amounts.TDSRate.IsZero())
		assert.True(t, amounts.NetPayable.Equal(amounts.TotalAmount))
	})

	t.Run("all-zero input yields all-zero output", func(t *testing.T) {
		amounts := CalculateBillAmounts(BillInput{})

		assert.True(t, amounts.GrossAmount.IsZero())
		assert.True(t, amounts.TotalGST.IsZero())
		assert.True(t, amounts.TotalAmount.IsZero())
		assert.True(t, amounts.NetPayable.IsZero())
	})
}

func TestRoundBillAmount(t *testing.T) {
	tests := []struct {
		total    string
		rounded  string
		roundOff string
	}{
		{"1180.40", "1180", "-0.4"},
		{"99.50", "100", "0.5"},
		{"99.49", "99", "-0.49"},
		{"100", "100", "0"},
	}

	for _, tt := range tests {
		got := RoundBillAmount(types.MustMoney(tt.total))

		assert.True(t, got.Rounded.Equal(types.MustMoney(tt.rounded)),
			"rounded(%s) = %s, want %s", tt.total, got.Rounded, tt.rounded)
		assert.True(t, got.RoundOff.Equal(types.MustMoney(tt.roundOff)),
			"roundOff(%s) = %s, want %s", tt.total, got.RoundOff, tt.roundOff)

		// Rounded minus round-off reconstructs the original total exactly.
		assert.True(t, got.Rounded.Sub(got.RoundOff).Equal(types.MustMoney(tt.total)))
	}
}
