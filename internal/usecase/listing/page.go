package listing

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Page поля, восстановленные из HTML страницы.
type Page struct {
	Title          string
	Description    string
	Category       string
	FirstParagraph string
}

// ParsePage читает заголовок из первой h1-h6 внутри article,
// описание и категорию из meta и первый непустой абзац article.
func ParsePage(r io.Reader) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Page{}, err
	}
	var p Page
	article := doc.Find("article").First()
	p.Title = clean(article.Find("h1, h2, h3, h4, h5, h6").First().Text())
	p.Description = clean(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	p.Category = clean(doc.Find(`meta[name="category"]`).AttrOr("content", ""))
	article.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		p.FirstParagraph = clean(s.Text())
		return p.FirstParagraph == ""
	})
	return p, nil
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate укорачивает текст до limit символов, добавляя многоточие.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	cut := strings.TrimRight(string(r[:limit]), " ,.;:")
	return cut + "…"
}

// TitleFromName восстанавливает заголовок из имени файла:
// "2026-10-14-new-vape-arrivals-1.html" -> "New Vape Arrivals 1".
func TitleFromName(name string) string {
	stem := name
	if i := strings.LastIndexByte(stem, '.'); i > 0 {
		stem = stem[:i]
	}
	if parts := strings.SplitN(stem, "-", 4); len(parts) == 4 && len(parts[0]) == 4 {
		stem = parts[3]
	}
	words := strings.Fields(strings.ReplaceAll(stem, "-", " "))
	if len(words) == 0 {
		return stem
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}
