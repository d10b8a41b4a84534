package subscribers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"westport-blog/internal/domain"
	"westport-blog/internal/infra/metrics"
)

// HTTPStore работает с табличным веб-эндпоинтом подписчиков.
// Ответ списка бывает двух видов: массив строк таблицы [{"email": ...}]
// или конверт {"ok": true, "emails": [...]}.
type HTTPStore struct {
	client          *resty.Client
	subscribersURL  string
	unsubscribesURL string
	token           string
}

var (
	_ domain.SubscriberSource = (*HTTPStore)(nil)
	_ domain.Unsubscriber     = (*HTTPStore)(nil)
)

// NewHTTPStore создаёт клиента. Пустой unsubscribesURL означает, что отписок нет.
func NewHTTPStore(subscribersURL, unsubscribesURL, token string) *HTTPStore {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetRetryCount(2)
	client.SetRetryWaitTime(500 * time.Millisecond)
	client.SetRetryMaxWaitTime(3 * time.Second)
	client.SetHeader("Accept", "application/json")
	return &HTTPStore{
		client:          client,
		subscribersURL:  subscribersURL,
		unsubscribesURL: unsubscribesURL,
		token:           token,
	}
}

func (s *HTTPStore) Subscribers(ctx context.Context) ([]string, error) {
	if s.subscribersURL == "" {
		return nil, fmt.Errorf("%w: SUBSCRIBERS_URL не задан", domain.ErrSubscribersUnavailable)
	}
	emails, err := s.list(ctx, "subscribers", s.subscribersURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSubscribersUnavailable, err)
	}
	return emails, nil
}

func (s *HTTPStore) Unsubscribed(ctx context.Context) ([]string, error) {
	if s.unsubscribesURL == "" {
		return nil, nil
	}
	return s.list(ctx, "unsubscribes", s.unsubscribesURL)
}

// Unsubscribe добавляет адрес в таблицу отписок.
func (s *HTTPStore) Unsubscribe(ctx context.Context, email string) (err error) {
	if s.unsubscribesURL == "" {
		return errors.New("UNSUBSCRIBES_URL не задан")
	}
	start := time.Now()
	defer func() {
		metrics.ObserveNetworkRequest("subscribers", "unsubscribe", "unsubscribes", start, err)
	}()

	req := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"email": email})
	if s.token != "" {
		req.SetQueryParam("token", s.token)
	}
	resp, err := req.Post(s.unsubscribesURL)
	if err != nil {
		return fmt.Errorf("запрос отписки: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("эндпоинт отписок вернул %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}
	return nil
}

func (s *HTTPStore) list(ctx context.Context, target, url string) (emails []string, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveNetworkRequest("subscribers", "list", target, start, err)
	}()

	req := s.client.R().SetContext(ctx).SetQueryParam("action", "list")
	if s.token != "" {
		req.SetQueryParam("token", s.token)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("запрос %s: %w", target, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s: статус %d", target, resp.StatusCode())
	}
	return DecodeList(resp.Body())
}

type row struct {
	Email any `json:"email"`
}

type envelope struct {
	OK     bool     `json:"ok"`
	Emails []string `json:"emails"`
	Error  string   `json:"error"`
}

// DecodeList разбирает оба формата ответа. Адреса возвращаются как есть.
func DecodeList(body []byte) ([]string, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("пустой ответ")
	}
	switch body[0] {
	case '[':
		var rows []row
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("разбор строк: %w", err)
		}
		out := make([]string, 0, len(rows))
		for _, r := range rows {
			if s, ok := r.Email.(string); ok {
				out = append(out, s)
			} else if r.Email != nil {
				out = append(out, fmt.Sprint(r.Email))
			}
		}
		return out, nil
	case '{':
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("разбор конверта: %w", err)
		}
		if !env.OK {
			if env.Error != "" {
				return nil, fmt.Errorf("эндпоинт вернул ошибку: %s", env.Error)
			}
			return nil, errors.New("эндпоинт вернул ok=false")
		}
		return env.Emails, nil
	default:
		return nil, fmt.Errorf("неожиданный ответ: %s", truncate(string(body), 80))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
