package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"westport-blog/internal/domain"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func TestFormatAnnouncement(t *testing.T) {
	text := FormatAnnouncement(domain.ListingEntry{
		Title:    "Cigars & Wraps",
		Category: "Premium Cigars",
		Excerpt:  "Fresh <boxes> today.",
	}, "https://example.com/posts/html/a.html")

	for _, want := range []string{
		"<b>Cigars &amp; Wraps</b>",
		"#PremiumCigars",
		"Fresh &lt;boxes&gt; today.",
		`<a href="https://example.com/posts/html/a.html">Read the post</a>`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("в анонсе нет %q:\n%s", want, text)
		}
	}
}

func TestFormatAnnouncementRespectsLimit(t *testing.T) {
	excerpt := strings.Repeat("word & ", 2000)
	text := FormatAnnouncement(domain.ListingEntry{Title: "Long", Excerpt: excerpt}, "https://example.com/x")
	if n := len([]rune(text)); n > messageLimit {
		t.Fatalf("анонс длиннее лимита: %d", n)
	}
	if !strings.Contains(text, "…") || !strings.HasSuffix(text, "Read the post</a>") {
		t.Fatalf("ожидали обрезанную выдержку и ссылку в конце")
	}
}

func TestAnnounceSendsHTML(t *testing.T) {
	fake := &fakeSender{}
	a := &Announcer{bot: fake, chatID: -100123}
	if err := a.Announce(context.Background(), domain.ListingEntry{Title: "Hi"}, ""); err != nil {
		t.Fatalf("announce: %v", err)
	}
	if len(fake.sent) != 1 || fake.sent[0].ParseMode != tgbotapi.ModeHTML || fake.sent[0].ChatID != -100123 {
		t.Fatalf("неожиданное сообщение %+v", fake.sent)
	}
}

func TestAnnounceError(t *testing.T) {
	a := &Announcer{bot: &fakeSender{err: errors.New("boom")}, chatID: 1}
	if err := a.Announce(context.Background(), domain.ListingEntry{Title: "Hi"}, ""); err == nil {
		t.Fatalf("ожидали ошибку")
	}
}
