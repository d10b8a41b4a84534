// Package app собирает адаптеры из конфигурации для бинарников.
package app

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"westport-blog/internal/adapters/artifact"
	"westport-blog/internal/adapters/feed"
	"westport-blog/internal/adapters/generator"
	"westport-blog/internal/adapters/listingstore"
	"westport-blog/internal/adapters/state"
	"westport-blog/internal/adapters/subscribers"
	"westport-blog/internal/adapters/telegram"
	"westport-blog/internal/adapters/topics"
	"westport-blog/internal/domain"
	"westport-blog/internal/infra/config"
	"westport-blog/internal/infra/db"
	openai "westport-blog/internal/infra/openai"
	"westport-blog/internal/usecase/content"
	"westport-blog/internal/usecase/listing"
	"westport-blog/internal/usecase/rotation"
)

// DefaultExcerpt подставляется, когда выдержку восстановить не удалось.
const DefaultExcerpt = "Visit Discount Smokes in Westport."

// Site файловое дерево сайта и работающие поверх него компоненты.
type Site struct {
	Artifacts  *artifact.Store
	Listing    *listingstore.File
	Cursor     *state.CursorFile
	Topics     *topics.FileStore
	Reconciler *listing.Reconciler
	Rotation   *rotation.Service
}

// NewSite создаёт компоненты файлового дерева. Ничего не пишет на диск.
func NewSite(cfg config.AppConfig, logger zerolog.Logger) *Site {
	store := artifact.NewStore(cfg.Resolve(cfg.Paths.HTMLDir), cfg.HTMLURLPrefix(), cfg.Paths.ArtifactExt, cfg.Store.Name)
	listingFile := listingstore.NewFile(cfg.Resolve(cfg.Paths.Listing))
	cursor := state.NewCursorFile(cfg.Resolve(cfg.Paths.State))

	var feedWriter domain.FeedWriter
	if cfg.Paths.Feed != "" {
		feedWriter = feed.NewRSS(cfg.Resolve(cfg.Paths.Feed), feed.Channel{
			Title:       cfg.Store.Name + " Blog",
			Link:        cfg.SiteBaseURL(),
			Description: "News and buying guides from " + cfg.Store.Name + ", " + cfg.Store.Address,
			Language:    "en-us",
		}, cfg.AbsoluteURL, 50)
	}

	return &Site{
		Artifacts:  store,
		Listing:    listingFile,
		Cursor:     cursor,
		Topics:     topics.NewFileStore(cfg.Resolve(cfg.Paths.Topics)),
		Reconciler: listing.NewReconciler(store, listingFile, feedWriter, DefaultExcerpt, cfg.Location(), logger),
		Rotation:   rotation.NewService(cursor, logger),
	}
}

// Seed функции создания структуры: каталог страниц, пустой листинг, курсор.
func (s *Site) Seed() []func() error {
	return []func() error{s.Artifacts.Ensure, s.Listing.Ensure, s.Cursor.Ensure}
}

// NewGenerator собирает генератор статей. Без OPENAI_API_KEY основной путь отключён.
func NewGenerator(cfg config.AppConfig, logger zerolog.Logger) *content.Service {
	var primary domain.CompletionClient
	if cfg.OpenAI.APIKey != "" {
		client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Timeout)
		primary = generator.NewOpenAI(client, cfg.OpenAI.Model, cfg.OpenAI.Timeout)
	}
	return content.NewService(primary, generator.NewFallback(), DefaultExcerpt, cfg.DryRun, logger)
}

// Constraints ограничения генерации из конфигурации.
func Constraints(cfg config.AppConfig) domain.GenerationConstraints {
	return domain.GenerationConstraints{
		MinWords: cfg.Article.MinWords,
		MaxWords: cfg.Article.MaxWords,
		Tone:     cfg.Article.Tone,
		Store:    cfg.StoreProfile(),
	}
}

// SubscriberStore хранилище подписчиков по SUBSCRIBER_BACKEND.
type SubscriberStore interface {
	domain.SubscriberSource
	domain.Unsubscriber
}

// NewSubscriberStore возвращает хранилище и функцию освобождения ресурсов.
func NewSubscriberStore(ctx context.Context, cfg config.AppConfig) (SubscriberStore, func(), error) {
	switch cfg.Subscribers.Backend {
	case "postgres":
		if cfg.PGDSN == "" {
			return nil, nil, errors.New("SUBSCRIBER_BACKEND=postgres требует PG_DSN")
		}
		pool, err := db.Connect(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		store := subscribers.NewPostgresStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("схема подписчиков: %w", err)
		}
		return store, pool.Close, nil
	default:
		return subscribers.NewHTTPStore(cfg.Subscribers.URL, cfg.Subscribers.UnsubscribesURL, cfg.Subscribers.Token), func() {}, nil
	}
}

// NewAnnouncer возвращает nil, если Telegram не настроен.
func NewAnnouncer(cfg config.AppConfig) (domain.Announcer, error) {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChannelID == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return telegram.NewAnnouncer(bot, cfg.Telegram.ChannelID), nil
}
