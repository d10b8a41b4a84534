package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	GenerationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_generation_total",
		Help: "Сгенерированные статьи по источнику",
	}, []string{"source"})
	ArtifactsWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blog_artifacts_written_total",
		Help: "Записанные страницы постов",
	})
	ListingEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "blog_listing_entries",
		Help: "Количество записей в листинге после пересборки",
	})
	RetentionDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blog_retention_deleted_total",
		Help: "Удалённые по сроку хранения страницы",
	})
	RetentionErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blog_retention_errors_total",
		Help: "Ошибки удаления страниц",
	})
	NotifySent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blog_notify_sent_total",
		Help: "Отправленные письма подписчикам",
	})
	NotifyErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blog_notify_errors_total",
		Help: "Ошибки отправки писем",
	})
	NotifySkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blog_notify_skipped_total",
		Help: "Письма, пропущенные как уже отправленные",
	})
	Unsubscribes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_unsubscribe_requests_total",
		Help: "Запросы на отписку по результату",
	}, []string{"result"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 30, 60, 90, 120},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})

	LLMGenerationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_generation_duration_seconds",
		Help:    "Длительность генерации ответа LLM",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	LLMTokensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_tokens_total",
		Help: "Количество токенов, использованных LLM",
	}, []string{"model", "type"})
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		GenerationTotal,
		ArtifactsWritten,
		ListingEntries,
		RetentionDeleted,
		RetentionErrors,
		NotifySent,
		NotifyErrors,
		NotifySkipped,
		Unsubscribes,
		NetworkRequestDuration,
		NetworkRequestTotal,
		LLMGenerationDuration,
		LLMTokensTotal,
	}
}

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(collectors()...)
}

// Push отправляет метрики пакетной задачи в Pushgateway. Пустой url ничего не делает.
func Push(url, job string, gatherer prometheus.Gatherer) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(gatherer).Push(); err != nil {
		return fmt.Errorf("pushgateway: %w", err)
	}
	return nil
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveLLMGeneration записывает длительность и токены генерации LLM.
func ObserveLLMGeneration(model string, duration time.Duration, promptTokens, completionTokens, totalTokens int) {
	if model == "" {
		model = "unknown"
	}
	LLMGenerationDuration.WithLabelValues(model).Observe(duration.Seconds())
	if promptTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
	if totalTokens <= 0 {
		totalTokens = promptTokens + completionTokens
	}
	if totalTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "total").Add(float64(totalTokens))
	}
}

// IncGeneration учитывает источник сгенерированной статьи.
func IncGeneration(source string) {
	GenerationTotal.WithLabelValues(source).Inc()
}
