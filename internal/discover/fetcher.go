package discover

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher implements Fetcher using Colly, with rate limiting, retries
// and robots.txt respected.
type CollyFetcher struct {
	UserAgent      string
	MaxRetries     int
	RequestTimeout time.Duration
	DomainDelay    time.Duration
	MaxBodySize    int
}

// NewCollyFetcher creates a fetcher with sensible defaults, optionally
// tuned by a source's FetchConfig.
func NewCollyFetcher(cfg FetchConfig) *CollyFetcher {
	f := &CollyFetcher{
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		MaxRetries:     3,
		RequestTimeout: 30 * time.Second,
		DomainDelay:    1 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
	}
	if cfg.TimeoutSeconds > 0 {
		f.RequestTimeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.MaxRetries > 0 {
		f.MaxRetries = cfg.MaxRetries
	}
	if cfg.RateLimitRPS > 0 {
		f.DomainDelay = time.Duration(float64(time.Second) / cfg.RateLimitRPS)
	}
	return f
}

func (f *CollyFetcher) buildCollector(allowedDomains []string) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(f.UserAgent),
		colly.MaxBodySize(f.MaxBodySize),
		colly.AllowURLRevisit(),
		colly.DetectCharset(),
		colly.AllowedDomains(allowedDomains...),
	)

	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       f.DomainDelay,
		RandomDelay: f.DomainDelay / 2,
	})
	c.SetRequestTimeout(f.RequestTimeout)

	c.OnError(func(r *colly.Response, err error) {
		if r.Request.Ctx.GetAny("retries") == nil {
			r.Request.Ctx.Put("retries", 0)
		}
		retries := r.Request.Ctx.GetAny("retries").(int)
		if retries < f.MaxRetries {
			r.Request.Ctx.Put("retries", retries+1)
			log.Printf("[discover] retry %d/%d for %s: %v", retries+1, f.MaxRetries, r.Request.URL, err)
			time.Sleep(time.Duration(retries+1) * time.Second)
			r.Request.Retry()
		}
	})

	return c
}

// Fetch retrieves one URL and returns the raw document.
func (f *CollyFetcher) Fetch(ctx context.Context, targetURL string) (*FetchedDocument, error) {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	c := f.buildCollector([]string{parsed.Host})

	var doc *FetchedDocument
	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		doc = &FetchedDocument{
			URL:         targetURL,
			FinalURL:    r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			Body:        r.Body,
		}
	})

	if err := c.Visit(targetURL); err != nil {
		fetchErr = err
	}
	c.Wait()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if doc == nil {
		if fetchErr != nil {
			return nil, fmt.Errorf("fetch %s failed: %w", targetURL, fetchErr)
		}
		return nil, fmt.Errorf("fetch %s returned no response", targetURL)
	}
	return doc, nil
}
