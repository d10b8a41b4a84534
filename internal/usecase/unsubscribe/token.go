package unsubscribe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"westport-blog/internal/domain"
)

// Token возвращает HMAC-SHA256(secret, email) в hex. Адрес нормализуется,
// поэтому регистр в ссылке не влияет на результат.
func Token(secret, email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(normalized))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify сравнивает токен за постоянное время.
func Verify(secret, email, token string) bool {
	if secret == "" || token == "" {
		return false
	}
	want := Token(secret, email)
	return hmac.Equal([]byte(want), []byte(strings.ToLower(strings.TrimSpace(token))))
}

// Check как Verify, но возвращает domain.ErrInvalidToken.
func Check(secret, email, token string) error {
	if !Verify(secret, email, token) {
		return domain.ErrInvalidToken
	}
	return nil
}

// Link собирает ссылку отписки: page?email=...&token=...
// Секрет в ссылку не попадает, только производный токен.
func Link(page, email, token string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	sep := "?"
	if strings.Contains(page, "?") {
		sep = "&"
	}
	return page + sep + q.Encode()
}

// Linker выдаёт ссылки отписки для адресов.
type Linker struct {
	secret string
	page   string
}

func NewLinker(secret, page string) Linker {
	return Linker{secret: secret, page: page}
}

func (l Linker) Link(email string) string {
	return Link(l.page, email, Token(l.secret, email))
}
