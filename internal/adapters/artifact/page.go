package artifact

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Разметка страницы. Листинг восстанавливает заголовок из article h1,
// описание из meta[name=description], категорию из meta[name=category].
var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>{{.Title}} | {{.StoreName}}</title>
<meta name="description" content="{{.Excerpt}}"/>
<meta name="category" content="{{.Category}}"/>
<meta name="date" content="{{.Date}}"/>
<link rel="stylesheet" href="{{.StylesHref}}"/>
</head>
<body>
<main class="container">
<article class="post">
<h1>{{.Title}}</h1>
<p class="excerpt">{{.Excerpt}}</p>
{{.Body}}
</article>
</main>
<footer>&copy; {{.Year}} {{.StoreName}}</footer>
</body>
</html>
`))

type pageData struct {
	Title      string
	Excerpt    string
	Category   string
	Date       string
	Year       int
	StoreName  string
	StylesHref string
	Body       template.HTML
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote, extension.DefinitionList, extension.Typographer),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

func renderMarkdown(md goldmark.Markdown, source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	// goldmark без WithUnsafe вырезает сырой HTML, поэтому результат безопасен для вставки.
	return template.HTML(buf.String()), nil
}

func renderPage(data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
