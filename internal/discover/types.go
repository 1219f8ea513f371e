package discover

import "context"

// FetchedDocument is the raw result of fetching one URL.
type FetchedDocument struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher retrieves documents from the web. CollyFetcher is the default
// implementation.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) (*FetchedDocument, error)
}

// RawEvent is one listing item as scraped, before normalization. All fields
// are untrusted text straight from the page.
type RawEvent struct {
	Title        string
	ExternalURL  string
	SourceDomain string
	Organizer    string
	Description  string
	Location     string
	RawDeadline  string
	RawEventDate string
	RawFee       string
	RawTopics    []string
}

// SourceStats summarizes one ingestion run.
type SourceStats struct {
	TotalFound int `json:"total_found"`
	TotalSaved int `json:"total_saved"`
	Errors     int `json:"errors"`
}
