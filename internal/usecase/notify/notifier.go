package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"westport-blog/internal/domain"
	"westport-blog/internal/infra/metrics"
)

// Linker выдаёт персональную ссылку отписки.
type Linker interface {
	Link(email string) string
}

// Options необязательные зависимости и параметры рассылки.
type Options struct {
	// Interval пауза между письмами; 0 отключает паузу.
	Interval time.Duration
	// Ledger защищает от повторной отправки при перезапуске; может быть nil.
	Ledger    domain.SendLedger
	LedgerTTL time.Duration
	// Absolute превращает URL листинга в абсолютную ссылку.
	Absolute func(rel string) string
}

// Report итог рассылки.
type Report struct {
	Recipients int
	Sent       int
	Failed     int
	Skipped    int
}

// Notifier рассылает письмо о новом посте каждому подписчику отдельно.
type Notifier struct {
	source  domain.SubscriberSource
	mailer  domain.Mailer
	links   Linker
	store   domain.StoreProfile
	opts    Options
	limiter *rate.Limiter
	log     zerolog.Logger
}

func NewNotifier(source domain.SubscriberSource, mailer domain.Mailer, links Linker, store domain.StoreProfile, opts Options, logger zerolog.Logger) *Notifier {
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	if opts.Absolute == nil {
		opts.Absolute = func(rel string) string { return rel }
	}
	return &Notifier{
		source:  source,
		mailer:  mailer,
		links:   links,
		store:   store,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		log:     logger,
	}
}

// SendList нормализует оба множества и возвращает подписчиков без отписавшихся, по алфавиту.
func SendList(subscribers, unsubscribed []string) []string {
	skip := make(map[string]struct{}, len(unsubscribed))
	for _, raw := range unsubscribed {
		if email, ok := domain.NormalizeEmail(raw); ok {
			skip[email] = struct{}{}
		}
	}
	seen := make(map[string]struct{}, len(subscribers))
	out := make([]string, 0, len(subscribers))
	for _, raw := range subscribers {
		email, ok := domain.NormalizeEmail(raw)
		if !ok {
			continue
		}
		if _, gone := skip[email]; gone {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	sort.Strings(out)
	return out
}

// Recipients получает итоговый список. Ошибка списка подписчиков фатальна,
// ошибка списка отписок даёт пустое множество отписок.
func (n *Notifier) Recipients(ctx context.Context) ([]string, error) {
	subs, err := n.source.Subscribers(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSubscribersUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrSubscribersUnavailable, err)
		}
		return nil, err
	}
	unsubs, err := n.source.Unsubscribed(ctx)
	if err != nil {
		n.log.Warn().Err(err).Msg("notify: список отписок недоступен, продолжаем без него")
		unsubs = nil
	}
	return SendList(subs, unsubs), nil
}

// Notify рассылает письмо о записи листинга. Сбой одного получателя
// логируется, рассылка продолжается.
func (n *Notifier) Notify(ctx context.Context, entry domain.ListingEntry) (Report, error) {
	recipients, err := n.Recipients(ctx)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Recipients: len(recipients)}
	if len(recipients) == 0 {
		n.log.Info().Msg("notify: подписчиков нет, рассылка пропущена")
		return rep, nil
	}

	link := n.opts.Absolute(entry.URL)
	subject := Subject(n.store, entry)
	for _, email := range recipients {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		key := entry.URL + "|" + email
		if !n.claim(ctx, key) {
			rep.Skipped++
			metrics.NotifySkipped.Inc()
			continue
		}
		if err := n.limiter.Wait(ctx); err != nil {
			n.release(ctx, key)
			return rep, err
		}
		if err := n.send(ctx, email, subject, entry, link); err != nil {
			n.log.Error().Err(err).Str("email", email).Msg("notify: письмо не отправлено")
			metrics.NotifyErrors.Inc()
			n.release(ctx, key)
			rep.Failed++
			continue
		}
		metrics.NotifySent.Inc()
		rep.Sent++
	}
	n.log.Info().Int("sent", rep.Sent).Int("failed", rep.Failed).Int("skipped", rep.Skipped).Msg("notify: рассылка завершена")
	return rep, nil
}

func (n *Notifier) send(ctx context.Context, email, subject string, entry domain.ListingEntry, link string) error {
	unsubscribe := n.links.Link(email)
	body, err := RenderEmail(n.store, entry, link, unsubscribe)
	if err != nil {
		return fmt.Errorf("шаблон письма: %w", err)
	}
	return n.mailer.Send(ctx, domain.Message{
		To:          email,
		Subject:     subject,
		HTML:        body,
		Unsubscribe: unsubscribe,
	})
}

func (n *Notifier) claim(ctx context.Context, key string) bool {
	if n.opts.Ledger == nil {
		return true
	}
	ok, err := n.opts.Ledger.Claim(ctx, key, n.opts.LedgerTTL)
	if err != nil {
		n.log.Warn().Err(err).Msg("notify: журнал отправок недоступен, отправляем без него")
		return true
	}
	return ok
}

func (n *Notifier) release(ctx context.Context, key string) {
	if n.opts.Ledger == nil {
		return
	}
	if err := n.opts.Ledger.Release(context.WithoutCancel(ctx), key); err != nil {
		n.log.Warn().Err(err).Msg("notify: не удалось снять отметку отправки")
	}
}
