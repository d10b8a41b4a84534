package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"time"

	"westport-blog/internal/domain"
	"westport-blog/internal/infra/fsutil"
)

// Channel описывает шапку ленты.
type Channel struct {
	Title       string
	Link        string
	Description string
	Language    string
}

// RSS пишет ленту RSS 2.0 рядом с листингом. Лента производна от листинга
// и полностью перезаписывается при каждой пересборке.
type RSS struct {
	path     string
	channel  Channel
	absolute func(rel string) string
	limit    int
}

var _ domain.FeedWriter = (*RSS)(nil)

// NewRSS создаёт писателя. absolute превращает URL листинга в абсолютную ссылку.
func NewRSS(path string, channel Channel, absolute func(string) string, limit int) *RSS {
	if absolute == nil {
		absolute = func(rel string) string { return rel }
	}
	return &RSS{path: path, channel: channel, absolute: absolute, limit: limit}
}

func (r *RSS) Write(listing domain.Listing) error {
	data := r.Render(listing)
	if err := fsutil.WriteFileAtomic(r.path, data, 0o644); err != nil {
		return fmt.Errorf("запись ленты: %w", err)
	}
	return nil
}

// Render строит документ. Выход зависит только от листинга.
func (r *RSS) Render(listing domain.Listing) []byte {
	posts := listing.Posts
	if r.limit > 0 && len(posts) > r.limit {
		posts = posts[:r.limit]
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0">`)
	buf.WriteString("\n  <channel>\n")

	writeElement(&buf, "title", r.channel.Title, 4)
	writeElement(&buf, "link", r.channel.Link, 4)
	writeElement(&buf, "description", cmp.Or(r.channel.Description, r.channel.Title), 4)
	writeElement(&buf, "language", r.channel.Language, 4)
	if len(posts) > 0 {
		if d, err := time.Parse(domain.DateLayout, posts[0].Date); err == nil {
			writeElement(&buf, "lastBuildDate", d.Format(time.RFC1123Z), 4)
		}
	}

	for _, p := range posts {
		link := r.absolute(p.URL)
		buf.WriteString("    <item>\n")
		writeElement(&buf, "title", p.Title, 6)
		writeElement(&buf, "link", link, 6)
		buf.WriteString(`      <guid isPermaLink="false">`)
		_ = xml.EscapeText(&buf, []byte(p.URL))
		buf.WriteString("</guid>\n")
		writeElement(&buf, "description", p.Excerpt, 6)
		writeElement(&buf, "category", p.Category, 6)
		if d, err := time.Parse(domain.DateLayout, p.Date); err == nil {
			writeElement(&buf, "pubDate", d.Format(time.RFC1123Z), 6)
		}
		buf.WriteString("    </item>\n")
	}

	buf.WriteString("  </channel>\n</rss>\n")
	return buf.Bytes()
}

func writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}
	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	_ = xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
