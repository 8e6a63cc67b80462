package centermeta

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parse(t *testing.T, html, base string) *SiteMeta {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	var baseURL *url.URL
	if base != "" {
		baseURL, err = url.Parse(base)
		if err != nil {
			t.Fatalf("parse base url: %v", err)
		}
	}
	return ParseDocument(doc, baseURL)
}

func TestParseDocumentOpenGraph(t *testing.T) {
	html := `<html><head>
		<title>Fallback Title</title>
		<meta property="og:title" content="Green Thrift Hub">
		<meta property="og:description" content="Donate clothes, earn tokens.">
		<meta property="og:image" content="https://cdn.example.org/card.png">
	</head><body></body></html>`

	m := parse(t, html, "https://hub.example.org")
	if m.Title == nil || *m.Title != "Green Thrift Hub" {
		t.Errorf("og:title not preferred, got %v", m.Title)
	}
	if m.Description == nil || *m.Description != "Donate clothes, earn tokens." {
		t.Errorf("og:description missing, got %v", m.Description)
	}
	if m.Image == nil || *m.Image != "https://cdn.example.org/card.png" {
		t.Errorf("og:image missing, got %v", m.Image)
	}
}

func TestParseDocumentFallbacks(t *testing.T) {
	html := `<html><head>
		<title>  Community Recycling Point  </title>
		<meta name="description" content="Drop off textiles any weekday.">
	</head><body></body></html>`

	m := parse(t, html, "")
	if m.Title == nil || *m.Title != "Community Recycling Point" {
		t.Errorf("title fallback failed, got %v", m.Title)
	}
	if m.Description == nil || *m.Description != "Drop off textiles any weekday." {
		t.Errorf("meta description fallback failed, got %v", m.Description)
	}
	if m.Image != nil {
		t.Errorf("no image expected, got %v", *m.Image)
	}
}

func TestParseDocumentResolvesRelativeImage(t *testing.T) {
	html := `<html><head>
		<meta property="og:image" content="/assets/preview.jpg">
	</head></html>`

	m := parse(t, html, "https://center.example.org/about")
	if m.Image == nil || *m.Image != "https://center.example.org/assets/preview.jpg" {
		t.Errorf("relative image not resolved, got %v", m.Image)
	}
}

func TestParseDocumentEmptyPage(t *testing.T) {
	m := parse(t, "<html><head></head><body></body></html>", "")
	if m.Title != nil || m.Description != nil || m.Image != nil {
		t.Errorf("empty page should yield no metadata, got %+v", m)
	}
}
