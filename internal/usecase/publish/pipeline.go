package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"westport-blog/internal/domain"
	"westport-blog/internal/usecase/rotation"
)

// Rebuilder пересобирает листинг из каталога страниц.
type Rebuilder interface {
	Rebuild() (domain.Listing, error)
}

// Deps зависимости одного запуска публикации.
type Deps struct {
	Topics    domain.TopicStore
	Rotation  *rotation.Service
	Generator domain.ContentGenerator
	Writer    domain.ArtifactWriter
	Listing   Rebuilder
	// Seed создаёт недостающие каталоги и документы; выполняется после проверки тем.
	Seed        []func() error
	Constraints domain.GenerationConstraints
	Location    *time.Location
	Logger      zerolog.Logger
}

// Result итог публикации.
type Result struct {
	Index  int
	Topic  domain.Topic
	URL    string
	Source domain.GenerationSource
	Posts  int
}

// Pipeline публикует один пост: тема по курсору, генерация, страница,
// пересборка листинга и только потом продвижение курсора.
type Pipeline struct {
	deps Deps
	now  func() time.Time
}

func NewPipeline(deps Deps) *Pipeline {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return &Pipeline{deps: deps, now: time.Now}
}

func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	log := p.deps.Logger

	topics, err := p.deps.Topics.Load()
	if err != nil {
		return Result{}, fmt.Errorf("темы: %w", err)
	}
	for _, seed := range p.deps.Seed {
		if err := seed(); err != nil {
			return Result{}, fmt.Errorf("структура сайта: %w", err)
		}
	}

	pick, err := p.deps.Rotation.Acquire(topics)
	if err != nil {
		return Result{}, err
	}
	date := p.today()
	log.Info().Int("index", pick.Index).Str("title", pick.Topic.Title).Str("date", date.Format(domain.DateLayout)).Msg("publisher: тема выбрана")

	article := p.deps.Generator.Generate(ctx, domain.GenerationRequest{
		Title:       pick.Topic.Title,
		Idea:        pick.Topic.Idea,
		Category:    pick.Topic.Category,
		Date:        date,
		Constraints: p.deps.Constraints,
	})

	url, err := p.deps.Writer.Write(date, article)
	if err != nil {
		return Result{}, fmt.Errorf("запись страницы: %w", err)
	}
	log.Info().Str("url", url).Str("source", string(article.Source)).Msg("publisher: страница записана")

	listing, err := p.deps.Listing.Rebuild()
	if err != nil {
		return Result{}, fmt.Errorf("листинг: %w", err)
	}
	if err := p.deps.Rotation.Advance(pick.Index, len(topics)); err != nil {
		return Result{}, err
	}
	return Result{
		Index:  pick.Index,
		Topic:  pick.Topic,
		URL:    url,
		Source: article.Source,
		Posts:  len(listing.Posts),
	}, nil
}

func (p *Pipeline) today() time.Time {
	y, m, d := p.now().In(p.deps.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.deps.Location)
}
