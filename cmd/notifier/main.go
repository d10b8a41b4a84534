package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"westport-blog/internal/adapters/mailer"
	"westport-blog/internal/app"
	"westport-blog/internal/domain"
	"westport-blog/internal/infra/cache"
	"westport-blog/internal/infra/config"
	applog "westport-blog/internal/infra/log"
	"westport-blog/internal/infra/metrics"
	"westport-blog/internal/usecase/notify"
	"westport-blog/internal/usecase/unsubscribe"
)

func main() {
	cfg := config.Load()
	logger, _ := applog.WithRun(applog.NewLogger(cfg.AppEnv), "notifier")
	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, cfg, logger)
	if perr := metrics.Push(cfg.PushgatewayURL, "notifier", prometheus.DefaultGatherer); perr != nil {
		logger.Warn().Err(perr).Msg("notifier: метрики не отправлены")
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("notifier: рассылка прервана")
	}
}

func run(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) error {
	if cfg.Subscribers.Secret == "" {
		return errors.New("UNSUBSCRIBE_SECRET не задан: ссылки отписки нельзя будет проверить")
	}

	site := app.NewSite(cfg, logger)
	doc, err := site.Listing.Load()
	if err != nil {
		logger.Warn().Err(err).Msg("notifier: листинг не прочитан, считаем пустым")
	}
	entry, ok := doc.Newest()
	if !ok {
		return domain.ErrNoPosts
	}

	store, closeStore, err := app.NewSubscriberStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := notify.Options{
		Interval:  cfg.SMTP.SendInterval,
		LedgerTTL: cfg.SMTP.LedgerTTL,
		Absolute:  cfg.AbsoluteURL,
	}
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn().Err(err).Msg("notifier: redis недоступен, журнал отправок отключён")
		} else {
			defer client.Close()
			opts.Ledger = cache.NewRedisLedger(client)
		}
	}

	smtp := mailer.NewSMTP(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.FromName)
	defer func() {
		if err := smtp.Close(); err != nil {
			logger.Warn().Err(err).Msg("notifier: smtp сеанс закрыт с ошибкой")
		}
	}()

	links := unsubscribe.NewLinker(cfg.Subscribers.Secret, cfg.UnsubscribeURL())
	n := notify.NewNotifier(store, smtp, links, cfg.StoreProfile(), opts, logger)
	rep, err := n.Notify(ctx, entry)
	if err != nil {
		return err
	}
	logger.Info().
		Str("post", entry.URL).
		Int("recipients", rep.Recipients).
		Int("sent", rep.Sent).
		Int("failed", rep.Failed).
		Int("skipped", rep.Skipped).
		Msg("notifier: письма отправлены")

	announcer, err := app.NewAnnouncer(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("notifier: анонс в telegram недоступен")
		return nil
	}
	if announcer == nil {
		return nil
	}
	if err := announcer.Announce(ctx, entry, cfg.AbsoluteURL(entry.URL)); err != nil {
		logger.Warn().Err(err).Msg("notifier: анонс в telegram не отправлен")
	}
	return nil
}
