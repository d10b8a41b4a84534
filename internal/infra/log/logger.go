package log

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NewLogger создаёт настроенный zerolog.
func NewLogger(appEnv string) zerolog.Logger {
	return newLogger(os.Stdout, appEnv)
}

func newLogger(w io.Writer, appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "dev" {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(w).With().Timestamp().Logger().Level(level)
}

// WithRun добавляет в контекст логгера идентификатор запуска и имя задачи.
func WithRun(logger zerolog.Logger, job string) (zerolog.Logger, string) {
	runID := uuid.NewString()
	return logger.With().Str("job", job).Str("run_id", runID).Logger(), runID
}
