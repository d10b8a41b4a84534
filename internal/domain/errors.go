package domain

import "errors"

var (
	// ErrTopicsMissing документ с темами отсутствует.
	ErrTopicsMissing = errors.New("документ с темами не найден")
	// ErrNoTopics документ с темами не содержит ни одной темы.
	ErrNoTopics = errors.New("список тем пуст")
	// ErrNoPosts в листинге нет ни одного поста.
	ErrNoPosts = errors.New("в листинге нет постов")
	// ErrInvalidToken токен отписки не совпал с адресом.
	ErrInvalidToken = errors.New("неверный токен отписки")
	// ErrSubscribersUnavailable основной список подписчиков недоступен.
	ErrSubscribersUnavailable = errors.New("список подписчиков недоступен")
)
