package words

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWords(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "Zero"},
		{7, "Seven"},
		{13, "Thirteen"},
		{20, "Twenty"},
		{21, "Twenty One"},
		{99, "Ninety Nine"},
		{100, "One Hundred"},
		{105, "One Hundred Five"},
		{1180, "One Thousand One Hundred Eighty"},
		{100000, "One Lakh"},
		{1234567, "Twelve Lakh Thirty Four Thousand Five Hundred Sixty Seven"},
		{10000000, "One Crore"},
		{1230000000, "One Hundred Twenty Three Crore"},
		{-45, "Minus Forty Five"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Words(tt.n), "Words(%d)", tt.n)
	}
}

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "Zero Rupees Only"},
		{"100", "One Hundred Rupees Only"},
		{"1180", "One Thousand One Hundred Eighty Rupees Only"},
		{"100.50", "One Hundred Rupees and Fifty Paise Only"},
		{"0.75", "Seventy Five Paise Only"},
		{"1.05", "One Rupees and Five Paise Only"},
		{"-12", "Minus Twelve Rupees Only"},
	}

	for _, tt := range tests {
		got := AmountInWords(decimal.RequireFromString(tt.amount))
		assert.Equal(t, tt.want, got, "AmountInWords(%s)", tt.amount)
	}
}

func TestAmountInWords_PaiseCarry(t *testing.T) {
	// 99.999 rounds the fraction up to a whole rupee.
	got := AmountInWords(decimal.RequireFromString("99.999"))
	assert.Equal(t, "One Hundred Rupees Only", got)
}

func TestIndianFormat(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "0"},
		{"100", "100"},
		{"1180", "1,180"},
		{"1180.40", "1,180.40"},
		{"1234567", "12,34,567"},
		{"123456789.05", "12,34,56,789.05"},
		{"-54321", "-54,321"},
	}

	for _, tt := range tests {
		got := IndianFormat(decimal.RequireFromString(tt.amount))
		assert.Equal(t, tt.want, got, "IndianFormat(%s)", tt.amount)
	}
}
