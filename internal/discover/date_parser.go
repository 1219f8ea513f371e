package discover

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var datePrefixRegex = regexp.MustCompile(`(?i)^(cfp\s+closes?|closes?|deadline|due|submissions?\s+close|event date|held on)[:\s]+`)

// parseEventDate parses the date formats CFP listings actually use. A
// date-only value resolves to end of day UTC so a same-day deadline is
// still open.
func parseEventDate(text string) (time.Time, error) {
	text = cleanDateString(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", text); err == nil {
		return toEndOfDay(t), nil
	}

	formats := []string{
		"2 January 2006",
		"02 January 2006",
		"January 2, 2006",
		"January 2 2006",
		"Jan 2, 2006",
		"Jan 2 2006",
		"2 Jan 2006",
		"02 Jan 2006",
		"01/02/2006",
		"2006-01-02 15:04:05",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, text); err == nil {
			if strings.Contains(format, ":") {
				return t, nil
			}
			return toEndOfDay(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", text)
}

// cleanDateString strips labels and ordinal suffixes that break parsing,
// e.g. "CFP closes: March 3rd, 2026" -> "March 3, 2026".
func cleanDateString(text string) string {
	text = normalizeSpace(text)
	text = datePrefixRegex.ReplaceAllString(text, "")
	text = ordinalSuffixRegex.ReplaceAllString(text, "$1")
	return strings.Trim(text, " .,;")
}

var ordinalSuffixRegex = regexp.MustCompile(`(\d+)(st|nd|rd|th)\b`)

func toEndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}
