package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"westport-blog/internal/domain"
	openai "westport-blog/internal/infra/openai"
)

type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI реализует основной путь генерации через Chat Completions.
type OpenAI struct {
	client  chatClient
	model   string
	timeout time.Duration
}

var _ domain.CompletionClient = (*OpenAI)(nil)

// NewOpenAI создаёт провайдер генерации статей.
func NewOpenAI(client chatClient, model string, timeout time.Duration) *OpenAI {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &OpenAI{client: client, model: model, timeout: timeout}
}

// Complete запрашивает markdown статьи одним запросом.
func (o *OpenAI) Complete(ctx context.Context, req domain.GenerationRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.7,
		MaxTokens:   1400,
		Messages: []openai.ChatMessage{
			{Role: openai.RoleSystem, Content: SystemPrompt(req.Constraints.Store)},
			{Role: openai.RoleUser, Content: UserPrompt(req)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: пустой ответ")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai completion: пустой текст")
	}
	return content, nil
}

// SystemPrompt системная инструкция для модели.
func SystemPrompt(store domain.StoreProfile) string {
	return fmt.Sprintf("You write SEO-friendly, persuasive retail blog posts for %s, a shop at %s. "+
		"Never make medical claims or health promises. Output Markdown only.", store.Name, store.Address)
}

// UserPrompt пользовательский запрос с требованиями к структуре статьи.
func UserPrompt(req domain.GenerationRequest) string {
	c := req.Constraints
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a %d-%d word blog post about %s (category: %s) titled %q.\n", c.MinWords, c.MaxWords, req.Idea, req.Category, req.Title)
	sb.WriteString("Requirements:\n")
	sb.WriteString("- The very first line must be 'Excerpt: ' followed by a 1-2 sentence summary.\n")
	if c.Tone != "" {
		fmt.Fprintf(&sb, "- Tone: %s.\n", c.Tone)
	}
	sb.WriteString("- Use at least two Markdown subheadings (## or ###).\n")
	sb.WriteString("- Avoid medical claims or health promises.\n")
	fmt.Fprintf(&sb, "- End with a short call to visit %s at %s or call %s.\n", c.Store.Name, c.Store.Address, c.Store.Phone)
	return sb.String()
}
