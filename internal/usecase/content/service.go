package content

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"westport-blog/internal/domain"
	"westport-blog/internal/infra/metrics"
)

var excerptRe = regexp.MustCompile(`(?mi)^[ \t]*Excerpt:[ \t]*(.+?)[ \t]*$`)

// Service выбирает между внешним сервисом генерации и локальным шаблоном.
type Service struct {
	primary        domain.CompletionClient
	fallback       domain.Composer
	defaultExcerpt string
	forceFallback  bool
	log            zerolog.Logger
}

var _ domain.ContentGenerator = (*Service)(nil)

// NewService создаёт генератор. primary == nil означает, что ключа сервиса нет
// и всегда используется шаблон; forceFallback включается в режиме DRY_RUN.
func NewService(primary domain.CompletionClient, fallback domain.Composer, defaultExcerpt string, forceFallback bool, logger zerolog.Logger) *Service {
	return &Service{primary: primary, fallback: fallback, defaultExcerpt: defaultExcerpt, forceFallback: forceFallback, log: logger}
}

// Generate никогда не возвращает ошибку: любой сбой основного пути
// (статус, транспорт, квота, пустой ответ) переключает на шаблон.
func (s *Service) Generate(ctx context.Context, req domain.GenerationRequest) domain.Article {
	raw, source := s.compose(ctx, req)
	metrics.IncGeneration(string(source))

	excerpt, body := SplitExcerpt(raw, s.defaultExcerpt)
	return domain.Article{
		Title:    req.Title,
		Category: req.Category,
		Excerpt:  excerpt,
		Markdown: body,
		Source:   source,
	}
}

func (s *Service) compose(ctx context.Context, req domain.GenerationRequest) (string, domain.GenerationSource) {
	switch {
	case s.forceFallback:
		s.log.Warn().Msg("content: DRY_RUN, используем шаблонную статью")
	case s.primary == nil:
		s.log.Warn().Msg("content: ключ сервиса генерации не задан, используем шаблонную статью")
	default:
		raw, err := s.primary.Complete(ctx, req)
		if err == nil {
			return raw, domain.SourceOpenAI
		}
		s.log.Warn().Err(err).Msg("content: сервис генерации недоступен, используем шаблонную статью")
	}
	return s.fallback.Compose(req), domain.SourceFallback
}

// SplitExcerpt отделяет строку "Excerpt:" от тела статьи.
func SplitExcerpt(markdown, fallback string) (string, string) {
	loc := excerptRe.FindStringSubmatchIndex(markdown)
	if loc == nil {
		return fallback, strings.TrimSpace(markdown)
	}
	excerpt := cleanExcerpt(markdown[loc[2]:loc[3]])
	if excerpt == "" {
		excerpt = fallback
	}
	body := markdown[:loc[0]] + markdown[loc[1]:]
	return excerpt, strings.TrimSpace(body)
}

func cleanExcerpt(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	return strings.TrimSpace(s)
}
