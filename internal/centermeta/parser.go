// Package centermeta scrapes donation center websites for display
// metadata (title, description, preview image) so the directory can show
// rich cards without trusting free-form chain data.
package centermeta

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

type SiteMeta struct {
	URL         string    `json:"url"`
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Image       *string   `json:"image,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

type Parser struct {
	httpClient *http.Client
	log        *zap.Logger
	maxRetries int
}

func NewParser(timeoutMS, maxRetries int, log *zap.Logger) *Parser {
	return &Parser{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutMS) * time.Millisecond,
		},
		log:        log,
		maxRetries: maxRetries,
	}
}

// FetchAndParse downloads the page and extracts Open Graph metadata,
// falling back to plain HTML tags.
func (p *Parser) FetchAndParse(ctx context.Context, siteURL string) (*SiteMeta, error) {
	parsed, err := url.Parse(siteURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("invalid website url %q", siteURL)
	}

	var doc *goquery.Document
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, siteURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, siteURL)
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
			continue
		}

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		break
	}
	if doc == nil {
		return nil, fmt.Errorf("fetch %s: %w", siteURL, lastErr)
	}

	meta := ParseDocument(doc, parsed)
	meta.URL = siteURL
	meta.FetchedAt = time.Now().UTC()
	return meta, nil
}

// ParseDocument extracts metadata from an already parsed page. Split out
// so tests can run against static HTML.
func ParseDocument(doc *goquery.Document, base *url.URL) *SiteMeta {
	meta := &SiteMeta{}

	if v := metaContent(doc, `meta[property="og:title"]`); v != "" {
		meta.Title = &v
	} else if v := strings.TrimSpace(doc.Find("title").First().Text()); v != "" {
		meta.Title = &v
	}

	if v := metaContent(doc, `meta[property="og:description"]`); v != "" {
		meta.Description = &v
	} else if v := metaContent(doc, `meta[name="description"]`); v != "" {
		meta.Description = &v
	}

	if v := metaContent(doc, `meta[property="og:image"]`); v != "" {
		if abs := absoluteURL(base, v); abs != "" {
			meta.Image = &abs
		}
	}

	return meta
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(v)
}

// absoluteURL resolves relative image paths against the page URL.
func absoluteURL(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base == nil {
		if u.IsAbs() {
			return u.String()
		}
		return ""
	}
	return base.ResolveReference(u).String()
}
