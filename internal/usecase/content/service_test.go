package content

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"westport-blog/internal/adapters/generator"
	"westport-blog/internal/domain"
	openai "westport-blog/internal/infra/openai"
)

const defaultExcerpt = "Visit Discount Smokes in Westport."

type fakePrimary struct {
	text  string
	err   error
	calls int
}

func (f *fakePrimary) Complete(context.Context, domain.GenerationRequest) (string, error) {
	f.calls++
	return f.text, f.err
}

func request() domain.GenerationRequest {
	return domain.GenerationRequest{
		Title:    "vapes",
		Idea:     "vapes",
		Category: "Vapes",
		Date:     time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC),
		Constraints: domain.GenerationConstraints{
			Store: domain.StoreProfile{Name: "Discount Smokes", Address: "1130 Westport Rd"},
		},
	}
}

func TestGeneratePrimary(t *testing.T) {
	primary := &fakePrimary{text: "Excerpt: New flavors are in.\n\n## Flavors\n\nBody text."}
	svc := NewService(primary, generator.NewFallback(), defaultExcerpt, false, zerolog.Nop())
	art := svc.Generate(context.Background(), request())
	if art.Source != domain.SourceOpenAI {
		t.Fatalf("ожидали основной путь, получили %s", art.Source)
	}
	if art.Excerpt != "New flavors are in." {
		t.Fatalf("неожиданный excerpt %q", art.Excerpt)
	}
	if strings.Contains(art.Markdown, "Excerpt:") || !strings.HasPrefix(art.Markdown, "## Flavors") {
		t.Fatalf("тело должно быть без строки Excerpt: %q", art.Markdown)
	}
}

func TestGenerateFallsBackOnAnyError(t *testing.T) {
	errs := []error{openai.ErrRateLimited, &openai.StatusError{StatusCode: 503}, context.DeadlineExceeded, errors.New("dial tcp: refused")}
	for _, e := range errs {
		primary := &fakePrimary{err: e}
		svc := NewService(primary, generator.NewFallback(), defaultExcerpt, false, zerolog.Nop())
		art := svc.Generate(context.Background(), request())
		if art.Source != domain.SourceFallback {
			t.Fatalf("%v: ожидали шаблон, получили %s", e, art.Source)
		}
		if art.Excerpt == defaultExcerpt || art.Excerpt == "" {
			t.Fatalf("%v: шаблон должен давать собственный excerpt, получили %q", e, art.Excerpt)
		}
		if !strings.Contains(art.Markdown, "## ") {
			t.Fatalf("%v: в шаблоне нет подзаголовков", e)
		}
	}
}

func TestGenerateWithoutPrimaryOrDryRun(t *testing.T) {
	svc := NewService(nil, generator.NewFallback(), defaultExcerpt, false, zerolog.Nop())
	if art := svc.Generate(context.Background(), request()); art.Source != domain.SourceFallback {
		t.Fatalf("без ключа ожидали шаблон")
	}
	primary := &fakePrimary{text: "Excerpt: x"}
	svc = NewService(primary, generator.NewFallback(), defaultExcerpt, true, zerolog.Nop())
	if art := svc.Generate(context.Background(), request()); art.Source != domain.SourceFallback || primary.calls != 0 {
		t.Fatalf("в DRY_RUN не ожидали сетевого вызова")
	}
}

func TestSplitExcerpt(t *testing.T) {
	cases := []struct {
		in, excerpt, body string
	}{
		{"Excerpt: Hello **there**.\nbody", "Hello there.", "body"},
		{"# Title\n\n  excerpt:   lower case works  \n", "lower case works", "# Title"},
		{"no marker here", defaultExcerpt, "no marker here"},
		{"Excerpt:   \n", defaultExcerpt, ""},
		{"Excerpt: first\nExcerpt: second", "first", "Excerpt: second"},
	}
	for _, tc := range cases {
		excerpt, body := SplitExcerpt(tc.in, defaultExcerpt)
		if excerpt != tc.excerpt {
			t.Fatalf("%q: ожидали анонс %q, получили %q", tc.in, tc.excerpt, excerpt)
		}
		if body != tc.body {
			t.Fatalf("%q: ожидали тело %q, получили %q", tc.in, tc.body, body)
		}
	}
}
