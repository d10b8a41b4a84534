package notify

import (
	"bytes"
	"html/template"

	"westport-blog/internal/domain"
)

var emailTmpl = template.Must(template.New("email").Parse(`<div style="font-family:Arial,Helvetica,sans-serif;">
  <h2 style="margin:0 0 8px;color:#e63946;">{{.Title}}</h2>
  <p style="color:#374151;">{{.Excerpt}}</p>
  <p><a href="{{.Link}}" style="background:#e63946;color:#fff;padding:10px 14px;border-radius:10px;text-decoration:none;">Read the post</a></p>
  <p style="font-size:12px;color:#6b7280;">{{.Store.Name}} &middot; {{.Store.Address}} &middot; <a href="tel:{{.Store.PhoneLink}}" style="color:#6b7280;">{{.Store.Phone}}</a></p>
  <p style="font-size:12px;color:#6b7280;">You are receiving this because you subscribed to {{.Store.Name}} updates. <a href="{{.Unsubscribe}}" style="color:#6b7280;">Unsubscribe</a></p>
</div>
`))

type emailData struct {
	Title       string
	Excerpt     string
	Link        string
	Unsubscribe string
	Store       domain.StoreProfile
}

// Subject тема письма о новом посте.
func Subject(store domain.StoreProfile, entry domain.ListingEntry) string {
	return store.Name + " - " + entry.Title
}

// RenderEmail тело письма для одного получателя.
func RenderEmail(store domain.StoreProfile, entry domain.ListingEntry, link, unsubscribe string) (string, error) {
	var buf bytes.Buffer
	err := emailTmpl.Execute(&buf, emailData{
		Title:       entry.Title,
		Excerpt:     entry.Excerpt,
		Link:        link,
		Unsubscribe: unsubscribe,
		Store:       store,
	})
	return buf.String(), err
}
