package telegram

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"westport-blog/internal/domain"
	"westport-blog/internal/infra/metrics"
)

const messageLimit = 4096

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Announcer публикует анонс нового поста в канал магазина.
type Announcer struct {
	bot    sender
	chatID int64
}

var _ domain.Announcer = (*Announcer)(nil)

func NewAnnouncer(bot *tgbotapi.BotAPI, chatID int64) *Announcer {
	return &Announcer{bot: bot, chatID: chatID}
}

func (a *Announcer) Announce(ctx context.Context, entry domain.ListingEntry, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(a.chatID, FormatAnnouncement(entry, link))
	msg.ParseMode = tgbotapi.ModeHTML
	start := time.Now()
	_, err := a.bot.Send(msg)
	metrics.ObserveNetworkRequest("telegram_bot", "send_message", strconv.FormatInt(a.chatID, 10), start, err)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	return nil
}

// FormatAnnouncement собирает HTML-текст анонса. Длинная выдержка обрезается
// по границе слова, чтобы сообщение уместилось в лимит Telegram.
func FormatAnnouncement(entry domain.ListingEntry, link string) string {
	head := "<b>" + html.EscapeString(entry.Title) + "</b>"
	if entry.Category != "" {
		head += "\n#" + hashtag(entry.Category)
	}
	tail := ""
	if link != "" {
		tail = "\n\n<a href=\"" + html.EscapeString(link) + "\">Read the post</a>"
	}

	budget := messageLimit - runeLen(head) - runeLen(tail) - 2
	excerpt := fitRunes(strings.TrimSpace(entry.Excerpt), budget)
	if excerpt == "" {
		return head + tail
	}
	return head + "\n\n" + html.EscapeString(excerpt) + tail
}

// fitRunes обрезает текст по словам так, чтобы экранированный результат
// вместе с многоточием занимал не больше limit символов.
func fitRunes(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runeLen(html.EscapeString(text)) <= limit {
		return text
	}
	var b strings.Builder
	size := 0
	for _, word := range strings.Fields(text) {
		w := runeLen(html.EscapeString(word))
		sep := 0
		if size > 0 {
			sep = 1
		}
		if size+sep+w+1 > limit {
			break
		}
		if sep == 1 {
			b.WriteByte(' ')
		}
		b.WriteString(word)
		size += sep + w
	}
	return b.String() + "…"
}

func runeLen(s string) int {
	return len([]rune(s))
}

func hashtag(category string) string {
	var b strings.Builder
	for _, r := range category {
		if r == ' ' || r == '-' || r == '&' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
