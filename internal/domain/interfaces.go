package domain

import (
	"context"
	"io"
	"time"
)

// TopicStore отдаёт упорядоченный список тем.
type TopicStore interface {
	Load() ([]Topic, error)
}

// CursorStore хранит документ курсора ротации.
type CursorStore interface {
	// Load возвращает ошибку, если документ отсутствует или повреждён.
	Load() (RotationCursor, error)
	Save(cursor RotationCursor) error
}

// ListingStore хранит документ листинга.
type ListingStore interface {
	Load() (Listing, error)
	Save(listing Listing) error
}

// CompletionClient основной путь генерации через внешний сервис.
type CompletionClient interface {
	Complete(ctx context.Context, req GenerationRequest) (string, error)
}

// Composer детерминированный локальный генератор статьи.
type Composer interface {
	Compose(req GenerationRequest) string
}

// ContentGenerator никогда не возвращает ошибку: при любом сбое срабатывает запасной путь.
type ContentGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) Article
}

// ArtifactWriter записывает новую страницу и возвращает её URL относительно корня сайта.
type ArtifactWriter interface {
	Write(date time.Time, article Article) (string, error)
}

// ArtifactRepo перечисляет и удаляет страницы.
type ArtifactRepo interface {
	// List возвращает файлы, отсортированные по имени.
	List() ([]ArtifactFile, error)
	Open(name string) (io.ReadCloser, error)
	Remove(name string) error
	URL(name string) string
}

// FeedWriter пишет производную RSS-ленту.
type FeedWriter interface {
	Write(listing Listing) error
}

// SubscriberSource внешнее хранилище подписчиков.
type SubscriberSource interface {
	Subscribers(ctx context.Context) ([]string, error)
	Unsubscribed(ctx context.Context) ([]string, error)
}

// Unsubscriber фиксирует отписку.
type Unsubscriber interface {
	Unsubscribe(ctx context.Context, email string) error
}

// Mailer отправляет по одному письму за вызов.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

// SendLedger помечает уже отправленные письма между запусками.
type SendLedger interface {
	// Claim возвращает false, если ключ уже занят.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Announcer публикует анонс нового поста в канал.
type Announcer interface {
	Announce(ctx context.Context, entry ListingEntry, link string) error
}
