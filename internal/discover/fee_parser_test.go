package discover

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFeeRange(t *testing.T) {
	cases := []struct {
		in           string
		wantMin      float64
		wantMax      float64
		wantCurrency string
	}{
		{"Honorarium: $1,500 - $3,000", 1500, 3000, "USD"},
		{"up to £2000", 0, 2000, "GBP"},
		{"minimum €500 honorarium", 500, 0, "EUR"},
		{"$2500 speaking fee", 2500, 2500, "USD"},
		{"travel covered, no fee listed", 0, 0, ""},
	}
	for _, tc := range cases {
		min, max, currency := parseFeeRange(tc.in, "USD")
		assert.Equal(t, tc.wantMin, min, "min for %q", tc.in)
		assert.Equal(t, tc.wantMax, max, "max for %q", tc.in)
		assert.Equal(t, tc.wantCurrency, currency, "currency for %q", tc.in)
	}
}

func TestParseFeeRange_DefaultCurrency(t *testing.T) {
	min, max, currency := parseFeeRange("1000 to 2000 honorarium", "EUR")
	assert.Equal(t, 1000.0, min)
	assert.Equal(t, 2000.0, max)
	assert.Equal(t, "EUR", currency)
}
