package rotation

import (
	"fmt"

	"github.com/rs/zerolog"

	"westport-blog/internal/domain"
)

// Select нормализует курсор: значение вне [0, n) даёт 0.
func Select(cursor domain.RotationCursor, n int) int {
	if n <= 0 || cursor.NextIndex < 0 || cursor.NextIndex >= n {
		return 0
	}
	return cursor.NextIndex
}

// Next возвращает курсор, указывающий на тему после used.
func Next(used, n int) domain.RotationCursor {
	if n <= 0 {
		return domain.RotationCursor{}
	}
	return domain.RotationCursor{NextIndex: (used + 1) % n}
}

// Pick выбранная тема вместе с индексом, который был использован.
type Pick struct {
	Index int
	Topic domain.Topic
}

// Service состояние ротации поверх хранилища курсора.
type Service struct {
	store domain.CursorStore
	log   zerolog.Logger
}

func NewService(store domain.CursorStore, logger zerolog.Logger) *Service {
	return &Service{store: store, log: logger}
}

// Acquire возвращает тему по курсору. Отсутствующий, повреждённый или
// вышедший за границы курсор трактуется как 0 и не считается ошибкой.
func (s *Service) Acquire(topics []domain.Topic) (Pick, error) {
	if len(topics) == 0 {
		return Pick{}, domain.ErrNoTopics
	}
	cursor, err := s.store.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("rotation: курсор недоступен, начинаем с 0")
		cursor = domain.RotationCursor{}
	}
	idx := Select(cursor, len(topics))
	if idx != cursor.NextIndex {
		s.log.Warn().Int("next_index", cursor.NextIndex).Int("topics", len(topics)).Msg("rotation: курсор вне диапазона, сброшен в 0")
	}
	return Pick{Index: idx, Topic: topics[idx]}, nil
}

// Advance сохраняет курсор на следующую тему. Вызывать только после того,
// как страница и листинг записаны.
func (s *Service) Advance(used, n int) error {
	next := Next(used, n)
	if err := s.store.Save(next); err != nil {
		return fmt.Errorf("сохранение курсора: %w", err)
	}
	s.log.Info().Int("used", used).Int("next_index", next.NextIndex).Msg("rotation: курсор продвинут")
	return nil
}

