package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"westport-blog/internal/app"
	"westport-blog/internal/infra/config"
	apphttp "westport-blog/internal/infra/http"
	applog "westport-blog/internal/infra/log"
	"westport-blog/internal/infra/metrics"
	"westport-blog/internal/usecase/unsubscribe"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv).With().Str("job", "unsubscribe").Logger()
	metrics.MustRegister(prometheus.DefaultRegisterer)

	if cfg.Subscribers.Secret == "" {
		logger.Fatal().Msg("unsubscribe: UNSUBSCRIBE_SECRET не задан")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := app.NewSubscriberStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("unsubscribe: хранилище подписчиков недоступно")
	}
	defer closeStore()

	srv := apphttp.NewServer(logger)
	unsubscribe.NewHandler(cfg.Subscribers.Secret, store, cfg.Store.Name, logger).Register(srv.Router)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("unsubscribe: остановка сервера")
		}
	}()

	if err := srv.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Fatal().Err(err).Msg("unsubscribe: сервер остановлен")
	}
}
