package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	openai "westport-blog/internal/infra/openai"
)

type fakeChat struct {
	resp openai.ChatCompletionResponse
	err  error
	got  openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.got = req
	return f.resp, f.err
}

func TestOpenAICompleteBuildsPrompt(t *testing.T) {
	chat := &fakeChat{resp: openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatMessage{Content: "  Excerpt: ok\n\n## A\n"}}}}}
	req := fallbackRequest()
	req.Constraints.MinWords, req.Constraints.MaxWords = 600, 800
	out, err := NewOpenAI(chat, "", time.Second).Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if out != "Excerpt: ok\n\n## A" {
		t.Fatalf("неожиданный текст %q", out)
	}
	if chat.got.Model != "gpt-4o-mini" || len(chat.got.Messages) != 2 {
		t.Fatalf("неожиданный запрос %+v", chat.got)
	}
	user := chat.got.Messages[1].Content
	for _, want := range []string{"600-800 word", "hookah charcoal", "'Excerpt: '", "subheadings", "1130 Westport Rd"} {
		if !strings.Contains(user, want) {
			t.Fatalf("в запросе нет %q: %s", want, user)
		}
	}
}

func TestOpenAICompleteErrors(t *testing.T) {
	cases := map[string]*fakeChat{
		"ошибка клиента": {err: openai.ErrRateLimited},
		"нет choices":    {},
		"пустой текст":   {resp: openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatMessage{Content: "  "}}}}},
	}
	for name, chat := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewOpenAI(chat, "m", time.Second).Complete(context.Background(), fallbackRequest()); err == nil {
				t.Fatalf("ожидали ошибку")
			}
		})
	}
	_, err := NewOpenAI(&fakeChat{err: openai.ErrRateLimited}, "m", time.Second).Complete(context.Background(), fallbackRequest())
	if !errors.Is(err, openai.ErrRateLimited) {
		t.Fatalf("ожидали обёрнутый ErrRateLimited, получили %v", err)
	}
}
