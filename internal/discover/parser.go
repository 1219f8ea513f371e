package discover

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseListing extracts raw events from a listing page using the source's
// CSS selectors. It also returns the absolute URL of the next page, if the
// source paginates and a next link is present.
func ParseListing(doc *FetchedDocument, cfg *SourceConfig) ([]RawEvent, string, error) {
	gq, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Body))
	if err != nil {
		return nil, "", fmt.Errorf("parse listing: %w", err)
	}

	base, err := url.Parse(doc.FinalURL)
	if err != nil {
		base, _ = url.Parse(doc.URL)
	}

	sel := cfg.Selectors
	var events []RawEvent
	gq.Find(sel.Container).Each(func(_ int, item *goquery.Selection) {
		ev := RawEvent{SourceDomain: base.Hostname()}

		if sel.Link != "" {
			attr := sel.LinkAttr
			if attr == "" {
				attr = "href"
			}
			if href, ok := item.Find(sel.Link).First().Attr(attr); ok {
				ev.ExternalURL = resolveURL(base, href)
			}
		}
		ev.Title = textOf(item, sel.Title)
		ev.Organizer = textOf(item, sel.Organizer)
		ev.Location = textOf(item, sel.Location)
		ev.RawDeadline = textOf(item, sel.Deadline)
		ev.RawEventDate = textOf(item, sel.EventDate)
		ev.RawFee = textOf(item, sel.Fee)
		if sel.Content != "" {
			// Keep the HTML here; the normalizer sanitizes it.
			if html, err := item.Find(sel.Content).First().Html(); err == nil {
				ev.Description = html
			}
		}
		if sel.Topics != "" {
			item.Find(sel.Topics).Each(func(_ int, tag *goquery.Selection) {
				if topic := normalizeSpace(tag.Text()); topic != "" {
					ev.RawTopics = append(ev.RawTopics, topic)
				}
			})
		}

		if ev.Title != "" && ev.ExternalURL != "" {
			events = append(events, ev)
		}
	})

	nextURL := ""
	if cfg.Pagination.Next != "" {
		if href, ok := gq.Find(cfg.Pagination.Next).First().Attr("href"); ok {
			nextURL = resolveURL(base, href)
		}
	}

	return events, nextURL, nil
}

func textOf(item *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return normalizeSpace(item.Find(selector).First().Text())
}

func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

// normalizeSpace collapses runs of whitespace into single spaces and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
