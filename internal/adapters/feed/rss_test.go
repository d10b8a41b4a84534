package feed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mmcdole/gofeed"

	"westport-blog/internal/domain"
)

func testListing() domain.Listing {
	return domain.Listing{Posts: []domain.ListingEntry{
		{Title: "Cigars & Wraps", Date: "2026-10-14", URL: "posts/html/2026-10-14-cigars-wraps.html", Excerpt: "Fresh <boxes>.", Category: "Cigars"},
		{Title: "New Vape Arrivals", Date: "2026-10-13", URL: "posts/html/2026-10-13-new-vape-arrivals.html", Excerpt: "Pods.", Category: "Vapes"},
	}}
}

func TestWriteParsesWithGofeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.xml")
	w := NewRSS(path, Channel{Title: "Discount Smokes Blog", Link: "https://example.com/"}, func(rel string) string {
		return "https://example.com/" + rel
	}, 0)
	if err := w.Write(testListing()); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	parsed, err := gofeed.NewParser().Parse(f)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Title != "Discount Smokes Blog" || len(parsed.Items) != 2 {
		t.Fatalf("неожиданная лента: %q, %d items", parsed.Title, len(parsed.Items))
	}
	first := parsed.Items[0]
	if first.Title != "Cigars & Wraps" {
		t.Fatalf("неожиданный заголовок %q", first.Title)
	}
	if first.Link != "https://example.com/posts/html/2026-10-14-cigars-wraps.html" {
		t.Fatalf("неожиданная ссылка %q", first.Link)
	}
	if first.PublishedParsed == nil || first.PublishedParsed.Format(domain.DateLayout) != "2026-10-14" {
		t.Fatalf("неожиданная дата %v", first.PublishedParsed)
	}
	if len(first.Categories) != 1 || first.Categories[0] != "Cigars" {
		t.Fatalf("неожиданные категории %v", first.Categories)
	}
}

func TestRenderDeterministicAndLimited(t *testing.T) {
	w := NewRSS("unused", Channel{Title: "Blog"}, nil, 1)
	a := w.Render(testListing())
	b := w.Render(testListing())
	if string(a) != string(b) {
		t.Fatalf("рендер недетерминирован")
	}
	parsed, err := gofeed.NewParser().ParseString(string(a))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed.Items) != 1 {
		t.Fatalf("ожидали один элемент, получили %d", len(parsed.Items))
	}
}

func TestRenderEmptyListing(t *testing.T) {
	w := NewRSS("unused", Channel{Title: "Blog"}, nil, 0)
	parsed, err := gofeed.NewParser().ParseString(string(w.Render(domain.Listing{})))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed.Items) != 0 {
		t.Fatalf("ожидали пустую ленту")
	}
}
