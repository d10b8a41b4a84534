package artifact

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"westport-blog/internal/domain"
)

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"New Vape Arrivals", "new-vape-arrivals"},
		{"  Cigars & Wraps!! ", "cigars-wraps"},
		{"Hookah 101: Getting Started", "hookah-101-getting-started"},
		{"***", DefaultSlug},
		{"", DefaultSlug},
		{"Ünïcode Only", "n-code-only"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func testArticle() domain.Article {
	return domain.Article{
		Title:    "Cigars & Wraps",
		Category: "Cigars",
		Excerpt:  "Fresh boxes in Westport.",
		Markdown: "## Cigars & Wraps\n\nBody paragraph.\n\n### Visit\n\nCall [816-555-0100](tel:+18165550100).",
		Source:   domain.SourceFallback,
	}
}

func TestWriteRendersPage(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, "posts/html", ".html", "Discount Smokes")
	date := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

	url, err := s.Write(date, testArticle())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if url != "posts/html/2026-10-14-cigars-wraps.html" {
		t.Fatalf("неожиданный url %q", url)
	}
	data, err := os.ReadFile(filepath.Join(dir, "2026-10-14-cigars-wraps.html"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	page := string(data)
	for _, want := range []string{
		`<meta name="description" content="Fresh boxes in Westport."/>`,
		`<meta name="category" content="Cigars"/>`,
		`<h1>Cigars &amp; Wraps</h1>`,
		`<h3 id="visit">Visit</h3>`,
		`href="tel:+18165550100"`,
		`href="../../styles.css"`,
		`&copy; 2026 Discount Smokes`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("на странице нет %q", want)
		}
	}
}

func TestWriteNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, "posts/html", ".html", "Discount Smokes")
	date := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

	existing := filepath.Join(dir, "2026-10-14-cigars-wraps.html")
	if err := os.WriteFile(existing, []byte("original"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	first, err := s.Write(date, testArticle())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	second, err := s.Write(date, testArticle())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if first != "posts/html/2026-10-14-cigars-wraps-1.html" || second != "posts/html/2026-10-14-cigars-wraps-2.html" {
		t.Fatalf("неожиданные имена %q %q", first, second)
	}
	data, _ := os.ReadFile(existing)
	if string(data) != "original" {
		t.Fatalf("существующий файл перезаписан")
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, "posts/html", ".html", "Discount Smokes")
	for _, name := range []string{"2026-10-14-b.html", "2026-09-01-a.html", "notes.txt", ".hidden.html", "about.html"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "2026-01-01-dir.html"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "2026-09-01-a.html,2026-10-14-b.html,about.html" {
		t.Fatalf("неожиданный список %v", names)
	}
	if !files[0].Dated || files[0].Date.Format(domain.DateLayout) != "2026-09-01" {
		t.Fatalf("дата не разобрана: %+v", files[0])
	}
	if files[2].Dated {
		t.Fatalf("about.html не должен иметь дату")
	}
}

func TestListMissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope"), "posts/html", ".html", "Discount Smokes")
	files, err := s.List()
	if err != nil || len(files) != 0 {
		t.Fatalf("ожидали пустой список, получили %v %v", files, err)
	}
}

func TestOpenRemove(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, "posts/html", ".html", "Discount Smokes")
	if err := os.WriteFile(filepath.Join(dir, "2026-10-14-a.html"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	rc, err := s.Open("2026-10-14-a.html")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "hello" {
		t.Fatalf("неожиданное содержимое %q", data)
	}
	if err := s.Remove("2026-10-14-a.html"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "2026-10-14-a.html")); !os.IsNotExist(err) {
		t.Fatalf("файл не удалён")
	}
	if err := s.Remove("../index.json"); err == nil {
		t.Fatalf("ожидали отказ для пути вне каталога")
	}
}
