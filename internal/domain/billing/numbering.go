package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DocumentNumber is a parsed bill/receipt number of the form PREFIX/FY/SEQ,
// e.g. "KB/2024-25/0008".
type DocumentNumber struct {
	Prefix        string
	FinancialYear string
	Sequence      int
}

// FinancialYear returns the Indian financial year (April 1 to March 31)
// containing t, formatted "YYYY-YY".
func FinancialYear(t time.Time) string {
	year := t.Year()
	if t.Month() < time.April {
		year--
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}

// ParseDocumentNumber parses a formatted document number. Malformed strings
// return nil, never an error: the caller treats them as outside the current
// sequence.
func ParseDocumentNumber(s string) *DocumentNumber {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return nil
	}

	seq, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil
	}

	return &DocumentNumber{
		Prefix:        parts[0],
		FinancialYear: parts[1],
		Sequence:      seq,
	}
}

// FormatDocumentNumber renders PREFIX/FY/SEQ with a zero-padded 4-digit
// sequence.
func FormatDocumentNumber(prefix, financialYear string, sequence int) string {
	return fmt.Sprintf("%s/%s/%04d", prefix, financialYear, sequence)
}

// NextDocumentNumber derives the next number for a prefix from the set of
// existing document numbers: max sequence within the current financial year
// plus one, or 1 when the FY has no documents yet. The sequence resets with
// each new financial year purely by virtue of the FY filter; no counter is
// stored anywhere.
//
// This is an advisory sequence, NOT a reservation. Two concurrent callers
// scanning the same store will derive the same number; the persistence
// layer's unique constraint on the number column is the arbiter, and the
// caller re-fetches and recomputes on collision.
func NextDocumentNumber(existing []string, prefix string, asOf time.Time) string {
	fy := FinancialYear(asOf)

	maxSeq := 0
	for _, number := range existing {
		parsed := ParseDocumentNumber(number)
		if parsed == nil || parsed.FinancialYear != fy {
			continue
		}
		if parsed.Sequence > maxSeq {
			maxSeq = parsed.Sequence
		}
	}

	return FormatDocumentNumber(prefix, fy, maxSeq+1)
}
