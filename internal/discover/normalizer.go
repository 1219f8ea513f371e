package discover

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/nextmic/nextmic/internal/models"
)

// descriptionPolicy allows basic formatting in event descriptions and
// strips everything else.
var descriptionPolicy = bluemonday.UGCPolicy()

const maxDescriptionLen = 4000

// FromRaw converts a scraped RawEvent into a canonical Opportunity.
// Parsing, sanitization and defaulting all happen here, once, at ingestion.
func FromRaw(raw RawEvent) models.Opportunity {
	opp := models.Opportunity{
		EventName:     normalizeSpace(raw.Title),
		OrganizerName: normalizeSpace(raw.Organizer),
		Location:      normalizeSpace(raw.Location),
		ExternalURL:   strings.TrimSpace(raw.ExternalURL),
		SourceDomain:  raw.SourceDomain,
		Topics:        dedupeFold(raw.RawTopics),
	}

	if raw.Description != "" {
		opp.Description = TruncateText(descriptionPolicy.Sanitize(raw.Description), maxDescriptionLen)
	}

	if raw.RawDeadline != "" {
		if dt, err := parseEventDate(raw.RawDeadline); err == nil {
			opp.Deadline = &dt
		}
	}
	if raw.RawEventDate != "" {
		if dt, err := parseEventDate(raw.RawEventDate); err == nil {
			opp.EventDate = &dt
		}
	}

	if raw.RawFee != "" {
		min, max, currency := parseFeeRange(raw.RawFee, "USD")
		if min > 0 || max > 0 {
			opp.FeeMin = min
			opp.FeeMax = max
			opp.Currency = currency
		}
	}
	if opp.Currency == "" {
		opp.Currency = "USD"
	}

	return opp
}

// HTMLToText converts HTML to plain text, collapsing whitespace.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return normalizeSpace(doc.Text())
}

// TruncateText cuts a string to max length, appending ellipsis if truncated.
func TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen > 3 {
		return text[:maxLen-3] + "..."
	}
	return text[:maxLen]
}

func dedupeFold(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, v := range items {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		k := strings.ToLower(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
