package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"westport-blog/internal/app"
	"westport-blog/internal/infra/config"
	applog "westport-blog/internal/infra/log"
	"westport-blog/internal/infra/metrics"
	"westport-blog/internal/usecase/publish"
)

func main() {
	cfg := config.Load()
	logger, _ := applog.WithRun(applog.NewLogger(cfg.AppEnv), "publisher")
	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	site := app.NewSite(cfg, logger)
	pipeline := publish.NewPipeline(publish.Deps{
		Topics:      site.Topics,
		Rotation:    site.Rotation,
		Generator:   app.NewGenerator(cfg, logger),
		Writer:      site.Artifacts,
		Listing:     site.Reconciler,
		Seed:        site.Seed(),
		Constraints: app.Constraints(cfg),
		Location:    cfg.Location(),
		Logger:      logger,
	})

	res, err := pipeline.Run(ctx)
	if perr := metrics.Push(cfg.PushgatewayURL, "publisher", prometheus.DefaultGatherer); perr != nil {
		logger.Warn().Err(perr).Msg("publisher: метрики не отправлены")
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("publisher: запуск прерван")
	}
	logger.Info().
		Str("url", res.URL).
		Str("source", string(res.Source)).
		Int("posts", res.Posts).
		Msg("publisher: готово")
}
