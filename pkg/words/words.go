// Package words renders rupee amounts as Indian-English words and
// Indian-grouped numeric strings for bill and receipt printing.
package words

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	crore = 10_000_000
	lakh  = 100_000
)

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}

// Words converts an integer to Indian-English words using the Indian
// numbering system (crore, lakh, thousand, hundred), decomposing from the
// largest magnitude down.
func Words(n int64) string {
	if n == 0 {
		return "Zero"
	}
	if n < 0 {
		return "Minus " + Words(-n)
	}
	return strings.Join(segments(n), " ")
}

func segments(n int64) []string {
	var parts []string

	if n >= crore {
		// Crore counts can themselves exceed 99, so recurse.
		parts = append(parts, Words(n/crore), "Crore")
		n %= crore
	}
	if n >= lakh {
		parts = append(parts, under100(n/lakh), "Lakh")
		n %= lakh
	}
	if n >= 1000 {
		parts = append(parts, under100(n/1000), "Thousand")
		n %= 1000
	}
	if n >= 100 {
		parts = append(parts, ones[n/100], "Hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, under100(n))
	}

	return parts
}

func under100(n int64) string {
	if n < 20 {
		return ones[n]
	}
	result := tens[n/10]
	if n%10 != 0 {
		result += " " + ones[n%10]
	}
	return result
}

// AmountInWords renders a monetary amount as "<rupees> Rupees and <paise>
// Paise Only". The paise clause is omitted when paise is zero, the rupee
// clause is omitted for pure-paise amounts, and exactly zero renders as
// "Zero Rupees Only".
func AmountInWords(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "Minus " + AmountInWords(amount.Neg())
	}

	rupees := amount.IntPart()
	paise := amount.Sub(decimal.NewFromInt(rupees)).
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
	if paise >= 100 {
		// Fractional part rounded up to a full rupee.
		rupees++
		paise = 0
	}

	switch {
	case rupees == 0 && paise == 0:
		return "Zero Rupees Only"
	case paise == 0:
		return Words(rupees) + " Rupees Only"
	case rupees == 0:
		return Words(paise) + " Paise Only"
	default:
		return Words(rupees) + " Rupees and " + Words(paise) + " Paise Only"
	}
}

// IndianFormat renders an amount with Indian digit grouping: the last three
// integer digits, then groups of two ("12,34,567"). A ".00" fraction is
// omitted; non-zero paise is kept as ".NN".
func IndianFormat(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)

	intPart := fixed[:len(fixed)-3]
	fracPart := fixed[len(fixed)-2:]

	grouped := groupIndian(intPart)
	if fracPart != "00" {
		grouped += "." + fracPart
	}
	if negative {
		grouped = "-" + grouped
	}
	return grouped
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)

	return strings.Join(groups, ",") + "," + tail
}
