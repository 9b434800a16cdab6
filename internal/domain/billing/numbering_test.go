package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFinancialYear(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"april first starts the year", date(2024, time.April, 1), "2024-25"},
		{"march thirty-first ends the previous year", date(2024, time.March, 31), "2023-24"},
		{"mid year", date(2024, time.September, 15), "2024-25"},
		{"january belongs to previous year", date(2025, time.January, 10), "2024-25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FinancialYear(tt.t))
		})
	}
}

func TestParseDocumentNumber(t *testing.T) {
	t.Run("well-formed", func(t *testing.T) {
		parsed := ParseDocumentNumber("KB/2024-25/0008")
		if assert.NotNil(t, parsed) {
			assert.Equal(t, "KB", parsed.Prefix)
			assert.Equal(t, "2024-25", parsed.FinancialYear)
			assert.Equal(t, 8, parsed.Sequence)
		}
	})

	t.Run("malformed returns nil", func(t *testing.T) {
		for _, s := range []string{
			"",
			"KB",
			"KB/2024-25",
			"KB/2024-25/x",
			"KB/2024-25/1/extra",
		} {
			assert.Nil(t, ParseDocumentNumber(s), "input %q", s)
		}
	})
}

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "KB/2024-25/0008", FormatDocumentNumber("KB", "2024-25", 8))
	assert.Equal(t, "KB/2024-25/0001", FormatDocumentNumber("KB", "2024-25", 1))
	// Sequences past 9999 simply widen.
	assert.Equal(t, "KB/2024-25/10000", FormatDocumentNumber("KB", "2024-25", 10000))
}

func TestNextDocumentNumber(t *testing.T) {
	asOf := date(2024, time.September, 1) // FY 2024-25

	t.Run("max plus one within financial year", func(t *testing.T) {
		existing := []string{
			"KB/2024-25/0003",
			"KB/2024-25/0007",
			"KB/2024-25/0001",
		}
		assert.Equal(t, "KB/2024-25/0008", NextDocumentNumber(existing, "KB", asOf))
	})

	t.Run("empty store starts at one", func(t *testing.T) {
		assert.Equal(t, "KB/2024-25/0001", NextDocumentNumber(nil, "KB", asOf))
	})

	t.Run("sequence resets each financial year", func(t *testing.T) {
		existing := []string{
			"KB/2023-24/0099",
			"KB/2023-24/0100",
		}
		assert.Equal(t, "KB/2024-25/0001", NextDocumentNumber(existing, "KB", asOf))
	})

	t.Run("malformed numbers are skipped", func(t *testing.T) {
		existing := []string{
			"garbage",
			"KB/2024-25/not-a-number",
			"KB/2024-25/0002",
		}
		assert.Equal(t, "KB/2024-25/0003", NextDocumentNumber(existing, "KB", asOf))
	})
}
