package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"westport-blog/internal/domain"
)

type fakeSource struct {
	subs      []string
	unsubs    []string
	subsErr   error
	unsubsErr error
}

func (f *fakeSource) Subscribers(context.Context) ([]string, error) { return f.subs, f.subsErr }

func (f *fakeSource) Unsubscribed(context.Context) ([]string, error) { return f.unsubs, f.unsubsErr }

type fakeMailer struct {
	sent []domain.Message
	fail map[string]bool
}

func (m *fakeMailer) Send(_ context.Context, msg domain.Message) error {
	if m.fail[msg.To] {
		return errors.New("550 mailbox unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) Close() error { return nil }

type fakeLedger struct {
	claimed  map[string]bool
	released []string
}

func (l *fakeLedger) Claim(_ context.Context, key string, _ time.Duration) (bool, error) {
	if l.claimed[key] {
		return false, nil
	}
	l.claimed[key] = true
	return true, nil
}

func (l *fakeLedger) Release(_ context.Context, key string) error {
	delete(l.claimed, key)
	l.released = append(l.released, key)
	return nil
}

type linker struct{}

func (linker) Link(email string) string { return "https://example.com/unsubscribe.html?email=" + email + "&token=t" }

var (
	store = domain.StoreProfile{Name: "Discount Smokes", Address: "1130 Westport Rd", Phone: "(816) 712-1130", PhoneLink: "+18167121130"}
	entry = domain.ListingEntry{Title: "Cigars & Wraps", Date: "2026-10-14", URL: "posts/html/2026-10-14-cigars-wraps.html", Excerpt: "Fresh boxes.", Category: "Cigars"}
)

func newNotifier(src *fakeSource, m *fakeMailer, opts Options) *Notifier {
	if opts.Absolute == nil {
		opts.Absolute = func(rel string) string { return "https://example.com/" + rel }
	}
	return NewNotifier(src, m, linker{}, store, opts, zerolog.Nop())
}

func TestSendListSubtractsUnsubscribed(t *testing.T) {
	got := SendList([]string{"a@x.com", "b@x.com"}, []string{"b@x.com"})
	if strings.Join(got, ",") != "a@x.com" {
		t.Fatalf("получили %v", got)
	}
}

func TestSendListNormalizes(t *testing.T) {
	got := SendList(
		[]string{" C@X.com", "a@x.com", "not-an-email", "", "A@x.com", "b@x.com "},
		[]string{"B@X.COM", "junk"},
	)
	if strings.Join(got, ",") != "a@x.com,c@x.com" {
		t.Fatalf("получили %v", got)
	}
}

func TestNotifySendsIndividualMessages(t *testing.T) {
	m := &fakeMailer{}
	rep, err := newNotifier(&fakeSource{subs: []string{"b@x.com", "a@x.com", "c@x.com"}, unsubs: []string{"c@x.com"}}, m, Options{}).Notify(context.Background(), entry)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if rep.Sent != 2 || len(m.sent) != 2 {
		t.Fatalf("неожиданный отчёт %+v", rep)
	}
	if m.sent[0].To != "a@x.com" || m.sent[1].To != "b@x.com" {
		t.Fatalf("порядок или адресаты: %s, %s", m.sent[0].To, m.sent[1].To)
	}
	for _, msg := range m.sent {
		other := "a@x.com"
		if msg.To == "a@x.com" {
			other = "b@x.com"
		}
		if strings.Contains(msg.HTML, other) {
			t.Fatalf("письмо %s содержит чужой адрес", msg.To)
		}
		if !strings.Contains(msg.HTML, "email="+msg.To) || msg.Unsubscribe == "" {
			t.Fatalf("нет персональной ссылки отписки в письме %s", msg.To)
		}
		if !strings.Contains(msg.HTML, "https://example.com/posts/html/2026-10-14-cigars-wraps.html") {
			t.Fatalf("нет абсолютной ссылки на пост")
		}
		if msg.Subject != "Discount Smokes - Cigars & Wraps" {
			t.Fatalf("тема %q", msg.Subject)
		}
	}
}

func TestNotifyEmptyListSendsNothing(t *testing.T) {
	m := &fakeMailer{}
	rep, err := newNotifier(&fakeSource{subs: []string{"a@x.com"}, unsubs: []string{"A@X.com"}}, m, Options{}).Notify(context.Background(), entry)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if rep.Sent != 0 || len(m.sent) != 0 {
		t.Fatalf("ожидали ноль отправок, получили %+v", rep)
	}
}

func TestNotifyContinuesAfterFailure(t *testing.T) {
	m := &fakeMailer{fail: map[string]bool{"a@x.com": true}}
	rep, err := newNotifier(&fakeSource{subs: []string{"a@x.com", "b@x.com"}}, m, Options{}).Notify(context.Background(), entry)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if rep.Sent != 1 || rep.Failed != 1 || m.sent[0].To != "b@x.com" {
		t.Fatalf("неожиданный отчёт %+v", rep)
	}
}

func TestNotifyUnsubscribeFailureFailsOpen(t *testing.T) {
	m := &fakeMailer{}
	src := &fakeSource{subs: []string{"a@x.com", "b@x.com"}, unsubs: []string{"b@x.com"}, unsubsErr: errors.New("timeout")}
	rep, err := newNotifier(src, m, Options{}).Notify(context.Background(), entry)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if rep.Sent != 2 {
		t.Fatalf("ожидали отправку обоим, получили %+v", rep)
	}
}

func TestNotifySubscriberFailureIsFatal(t *testing.T) {
	m := &fakeMailer{}
	_, err := newNotifier(&fakeSource{subsErr: errors.New("dial tcp: refused")}, m, Options{}).Notify(context.Background(), entry)
	if !errors.Is(err, domain.ErrSubscribersUnavailable) {
		t.Fatalf("ожидали ErrSubscribersUnavailable, получили %v", err)
	}
	if len(m.sent) != 0 {
		t.Fatalf("письма отправлены при недоступном списке")
	}
}

func TestNotifyLedgerPreventsResend(t *testing.T) {
	ledger := &fakeLedger{claimed: map[string]bool{}}
	src := &fakeSource{subs: []string{"a@x.com", "b@x.com"}}
	m := &fakeMailer{fail: map[string]bool{"b@x.com": true}}
	opts := Options{Ledger: ledger, LedgerTTL: time.Hour}

	first, err := newNotifier(src, m, opts).Notify(context.Background(), entry)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if first.Sent != 1 || first.Failed != 1 || len(ledger.released) != 1 {
		t.Fatalf("первый запуск %+v, released %v", first, ledger.released)
	}

	m.fail = nil
	second, err := newNotifier(src, m, opts).Notify(context.Background(), entry)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if second.Sent != 1 || second.Skipped != 1 {
		t.Fatalf("второй запуск %+v", second)
	}
	if m.sent[len(m.sent)-1].To != "b@x.com" {
		t.Fatalf("повторно отправлено не тому адресату")
	}
}

func TestRenderEmailEscapes(t *testing.T) {
	body, err := RenderEmail(store, domain.ListingEntry{Title: "<script>x</script>", Excerpt: "a & b"}, "https://example.com/p", "https://example.com/u")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(body, "<script>") || !strings.Contains(body, "a &amp; b") {
		t.Fatalf("тело не экранировано: %s", body)
	}
}
