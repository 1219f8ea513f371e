package discover

import (
	"regexp"
	"strconv"
	"strings"
)

var feeNumberRegex = regexp.MustCompile(`[\d,]+(?:\.\d{2})?`)

// parseFeeRange extracts a speaking-fee range and currency from free text
// like "Honorarium: $1,500 - $3,000" or "up to £2000".
func parseFeeRange(text string, defaultCurrency string) (float64, float64, string) {
	textLower := strings.ToLower(text)

	currency := defaultCurrency
	if currency == "" {
		currency = "USD"
	}
	switch {
	case strings.Contains(text, "£") || strings.Contains(textLower, "gbp"):
		currency = "GBP"
	case strings.Contains(text, "€") || strings.Contains(textLower, "eur"):
		currency = "EUR"
	case strings.Contains(text, "$") || strings.Contains(textLower, "usd"):
		currency = "USD"
	}

	var amounts []float64
	for _, m := range feeNumberRegex.FindAllString(text, -1) {
		clean := strings.ReplaceAll(m, ",", "")
		if val, err := strconv.ParseFloat(clean, 64); err == nil && val > 0 {
			amounts = append(amounts, val)
		}
	}

	if len(amounts) == 0 {
		return 0, 0, ""
	}

	if len(amounts) == 1 {
		if strings.Contains(textLower, "up to") || strings.Contains(textLower, "maximum") {
			return 0, amounts[0], currency
		}
		if strings.Contains(textLower, "minimum") || strings.Contains(textLower, "at least") {
			return amounts[0], 0, currency
		}
		// A bare figure is treated as the speaker's fee for the gig.
		return amounts[0], amounts[0], currency
	}

	min, max := amounts[0], amounts[0]
	for _, a := range amounts {
		if a < min {
			min = a
		}
		if a > max {
			max = a
		}
	}
	return min, max, currency
}
