package mailer

import (
	"context"
	"net/mail"
	"strings"
	"testing"
	"time"

	"westport-blog/internal/domain"
)

func TestBuildMessageHeaders(t *testing.T) {
	from := mail.Address{Name: "Discount Smokes", Address: "store@example.com"}
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	raw := string(BuildMessage(from, domain.Message{
		To:          "a@x.com",
		Subject:     "Discount Smokes - Cigars & Wraps",
		HTML:        "<p>hi</p>",
		Unsubscribe: "https://example.com/unsubscribe.html?e=a",
	}, now))

	head, body, ok := strings.Cut(raw, "\r\n\r\n")
	if !ok {
		t.Fatalf("нет разделителя заголовков: %q", raw)
	}
	if body != "<p>hi</p>" {
		t.Fatalf("неожиданное тело %q", body)
	}
	for _, want := range []string{
		`From: "Discount Smokes" <store@example.com>`,
		"To: <a@x.com>",
		"Subject: Discount Smokes - Cigars & Wraps",
		"Date: Wed, 14 Oct 2026 09:00:00 +0000",
		"List-Unsubscribe: <https://example.com/unsubscribe.html?e=a>",
		"Content-Type: text/html; charset=utf-8",
	} {
		if !strings.Contains(head, want) {
			t.Errorf("нет заголовка %q в\n%s", want, head)
		}
	}
	if !strings.Contains(head, "@example.com>") {
		t.Errorf("Message-ID без домена отправителя")
	}
}

func TestBuildMessageEncodesNonASCIISubject(t *testing.T) {
	raw := string(BuildMessage(mail.Address{Address: "s@example.com"}, domain.Message{To: "a@x.com", Subject: "Café news"}, time.Now()))
	if !strings.Contains(raw, "Subject: =?utf-8?q?") {
		t.Fatalf("тема не закодирована: %s", raw)
	}
}

func TestCloseWithoutConnection(t *testing.T) {
	m := NewSMTP("smtp.example.com", 587, "u", "p", "Store")
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestSendHonoursCancelledContext(t *testing.T) {
	m := NewSMTP("127.0.0.1", 1, "", "", "Store")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Send(ctx, domain.Message{To: "a@x.com"}); err == nil {
		t.Fatalf("ожидали ошибку отменённого контекста")
	}
}
