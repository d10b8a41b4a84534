package domain

import (
	"regexp"
	"strings"
	"time"
)

// DateLayout формат даты публикации в именах файлов и в листинге.
const DateLayout = "2006-01-02"

const (
	// DefaultTopicText подставляется, если у топика нет ни title, ни idea.
	DefaultTopicText = "Store Update"
	// DefaultCategory категория поста по умолчанию.
	DefaultCategory = "General"
)

// Topic описывает одну тему из ротации.
type Topic struct {
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Idea     string `json:"idea" yaml:"idea"`
	Category string `json:"category" yaml:"category"`
}

// Normalize применяет правило умолчаний один раз на границе загрузки:
// title = title|idea|default, idea = idea|title|default, category = category|General.
func (t Topic) Normalize() Topic {
	title := strings.TrimSpace(t.Title)
	idea := strings.TrimSpace(t.Idea)
	category := strings.TrimSpace(t.Category)

	return Topic{
		Title:    firstNonEmpty(title, idea, DefaultTopicText),
		Idea:     firstNonEmpty(idea, title, DefaultTopicText),
		Category: firstNonEmpty(category, DefaultCategory),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// RotationCursor указатель на следующую тему.
type RotationCursor struct {
	NextIndex int `json:"next_index"`
}

// ListingEntry одна запись канонического листинга.
type ListingEntry struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	URL      string `json:"url"`
	Excerpt  string `json:"excerpt"`
	Category string `json:"category"`
}

// Listing производный индекс всех опубликованных страниц, новые сверху.
type Listing struct {
	Posts []ListingEntry `json:"posts"`
}

// Newest возвращает самую свежую запись.
func (l Listing) Newest() (ListingEntry, bool) {
	if len(l.Posts) == 0 {
		return ListingEntry{}, false
	}
	return l.Posts[0], true
}

// GenerationSource указывает, каким путём получен текст статьи.
type GenerationSource string

const (
	// SourceOpenAI текст получен от внешнего сервиса генерации.
	SourceOpenAI GenerationSource = "openai"
	// SourceFallback текст собран локальным шаблонизатором.
	SourceFallback GenerationSource = "fallback"
)

// StoreProfile факты о магазине, которые попадают в статьи и письма.
type StoreProfile struct {
	Name      string
	Address   string
	Phone     string
	PhoneLink string
	MapsURL   string
}

// GenerationConstraints ограничения на формат статьи.
type GenerationConstraints struct {
	MinWords int
	MaxWords int
	Tone     string
	Store    StoreProfile
}

// GenerationRequest входные данные генератора.
type GenerationRequest struct {
	Title       string
	Idea        string
	Category    string
	Date        time.Time
	Constraints GenerationConstraints
}

// Article результат генерации. Markdown содержит тело статьи уже без строки "Excerpt:".
type Article struct {
	Title    string
	Category string
	Excerpt  string
	Markdown string
	Source   GenerationSource
}

// ArtifactFile файл страницы в каталоге артефактов.
type ArtifactFile struct {
	Name string
	// Date дата из префикса имени; валидна только при Dated == true.
	Date  time.Time
	Dated bool
}

var artifactDateRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-`)

// ParseArtifactDate извлекает дату публикации из имени файла вида YYYY-MM-DD-slug.ext.
func ParseArtifactDate(name string) (time.Time, bool) {
	m := artifactDateRe.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	date, err := time.Parse(DateLayout, m[1])
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// Message одно письмо одному получателю.
type Message struct {
	To      string
	Subject string
	HTML    string
	// Unsubscribe ссылка для заголовка List-Unsubscribe, может быть пустой.
	Unsubscribe string
}

// NormalizeEmail обрезает пробелы и приводит адрес к нижнему регистру.
// Адрес без "@" отбрасывается.
func NormalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !strings.Contains(email, "@") {
		return "", false
	}
	return email, true
}
