package unsubscribe

import (
	"fmt"
	"net/url"
	"strings"
	"testing"
)

const secret = "s3cret"

func TestTokenDeterministic(t *testing.T) {
	a := Token(secret, "a@x.com")
	if a != Token(secret, "a@x.com") {
		t.Fatalf("токен нестабилен")
	}
	if a != Token(secret, "  A@X.com ") {
		t.Fatalf("токен зависит от регистра или пробелов")
	}
	if len(a) != 64 {
		t.Fatalf("ожидали hex SHA-256, получили %q", a)
	}
	if strings.Contains(a, secret) {
		t.Fatalf("секрет в токене")
	}
}

func TestTokenDistinctForSample(t *testing.T) {
	seen := map[string]string{}
	for i := 0; i < 500; i++ {
		email := fmt.Sprintf("user%d@example.com", i)
		tok := Token(secret, email)
		if prev, ok := seen[tok]; ok {
			t.Fatalf("коллизия %s и %s", prev, email)
		}
		seen[tok] = email
	}
	if Token("other", "user1@example.com") == Token(secret, "user1@example.com") {
		t.Fatalf("токен не зависит от секрета")
	}
}

func TestVerify(t *testing.T) {
	tok := Token(secret, "a@x.com")
	if !Verify(secret, "a@x.com", tok) {
		t.Fatalf("валидный токен отвергнут")
	}
	if !Verify(secret, "a@x.com", strings.ToUpper(tok)) {
		t.Fatalf("hex в верхнем регистре отвергнут")
	}
	if Verify(secret, "b@x.com", tok) {
		t.Fatalf("токен принят для чужого адреса")
	}
	if Verify("", "a@x.com", Token("", "a@x.com")) {
		t.Fatalf("пустой секрет не должен проходить проверку")
	}
}

func TestLink(t *testing.T) {
	link := NewLinker(secret, "https://example.com/unsubscribe.html").Link("a+b@x.com")
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Path != "/unsubscribe.html" || u.Query().Get("email") != "a+b@x.com" {
		t.Fatalf("неожиданная ссылка %s", link)
	}
	if !Verify(secret, u.Query().Get("email"), u.Query().Get("token")) {
		t.Fatalf("токен из ссылки не проходит проверку")
	}
	if strings.Contains(link, secret) {
		t.Fatalf("секрет в ссылке")
	}
	if got := Link("https://example.com/u?src=mail", "a@x.com", "t"); !strings.HasPrefix(got, "https://example.com/u?src=mail&") {
		t.Fatalf("существующий query потерян: %s", got)
	}
}
