package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"westport-blog/internal/app"
	"westport-blog/internal/infra/config"
	applog "westport-blog/internal/infra/log"
	"westport-blog/internal/infra/metrics"
	"westport-blog/internal/usecase/retention"
)

func main() {
	cfg := config.Load()
	logger, _ := applog.WithRun(applog.NewLogger(cfg.AppEnv), "cleanup")
	metrics.MustRegister(prometheus.DefaultRegisterer)

	site := app.NewSite(cfg, logger)
	manager := retention.NewManager(site.Artifacts, site.Reconciler, cfg.Location(), logger)
	res, err := manager.Cleanup(retention.Policy{
		MaxAgeDays:  cfg.Retention.CutoffDays,
		KeepMinimum: cfg.Retention.KeepMin,
		DryRun:      cfg.DryRun,
	})
	if perr := metrics.Push(cfg.PushgatewayURL, "cleanup", prometheus.DefaultGatherer); perr != nil {
		logger.Warn().Err(perr).Msg("cleanup: метрики не отправлены")
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("cleanup: очистка прервана")
	}
	logger.Info().
		Strs("removed", res.Removed).
		Int("failed", len(res.Failed)).
		Int("kept", res.Kept).
		Bool("dry_run", cfg.DryRun).
		Msg("cleanup: готово")
}
