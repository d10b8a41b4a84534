package unsubscribe

import (
	"html/template"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"westport-blog/internal/domain"
	"westport-blog/internal/infra/metrics"
)

var resultTmpl = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>Unsubscribe | {{.Store}}</title>
</head>
<body>
<main class="container">
<h1>{{.Heading}}</h1>
<p>{{.Text}}</p>
{{if .Confirm}}<form method="post">
<input type="hidden" name="email" value="{{.Email}}"/>
<input type="hidden" name="token" value="{{.Token}}"/>
<button type="submit">Unsubscribe</button>
</form>{{end}}
</main>
</body>
</html>
`))

type resultPage struct {
	Store   string
	Heading string
	Text    string
	Confirm bool
	Email   string
	Token   string
}

// Handler страница отписки. GET только проверяет ссылку и показывает форму
// подтверждения, отписка записывается по POST: сканеры ссылок в почте делают GET.
type Handler struct {
	secret string
	store  domain.Unsubscriber
	name   string
	log    zerolog.Logger
}

func NewHandler(secret string, store domain.Unsubscriber, storeName string, logger zerolog.Logger) *Handler {
	return &Handler{secret: secret, store: store, name: storeName, log: logger}
}

// Register монтирует обработчик на /unsubscribe и /unsubscribe.html.
func (h *Handler) Register(r chi.Router) {
	for _, p := range []string{"/unsubscribe", "/unsubscribe.html"} {
		r.Get(p, h.confirm)
		r.Post(p, h.unsubscribe)
	}
}

// verify достаёт адрес и токен из запроса. Для POST поля формы важнее query.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	token := r.FormValue("token")
	email, ok := domain.NormalizeEmail(r.FormValue("email"))
	err := domain.ErrInvalidToken
	if ok {
		err = Check(h.secret, email, token)
	}
	if err != nil {
		metrics.Unsubscribes.WithLabelValues("invalid").Inc()
		h.log.Warn().Err(err).Msg("unsubscribe: ссылка отклонена")
		h.render(w, http.StatusBadRequest, resultPage{
			Heading: "Link not valid",
			Text:    "This unsubscribe link is invalid or incomplete. Please use the link from your latest email.",
		})
		return "", "", false
	}
	return email, token, true
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	email, token, ok := h.verify(w, r)
	if !ok {
		return
	}
	h.render(w, http.StatusOK, resultPage{
		Heading: "Unsubscribe from new post emails?",
		Text:    email + " will stop receiving an email for every new post.",
		Confirm: true,
		Email:   email,
		Token:   token,
	})
}

func (h *Handler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	email, _, ok := h.verify(w, r)
	if !ok {
		return
	}
	if err := h.store.Unsubscribe(r.Context(), email); err != nil {
		metrics.Unsubscribes.WithLabelValues("error").Inc()
		h.log.Error().Err(err).Msg("unsubscribe: не удалось записать отписку")
		h.render(w, http.StatusBadGateway, resultPage{
			Heading: "Something went wrong",
			Text:    "We could not process your request right now. Please try again later.",
		})
		return
	}
	metrics.Unsubscribes.WithLabelValues("ok").Inc()
	h.log.Info().Msg("unsubscribe: адрес отписан")
	h.render(w, http.StatusOK, resultPage{
		Heading: "You are unsubscribed",
		Text:    email + " will no longer receive new post emails.",
	})
}

func (h *Handler) render(w http.ResponseWriter, status int, page resultPage) {
	page.Store = h.name
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := resultTmpl.Execute(w, page); err != nil {
		h.log.Error().Err(err).Msg("unsubscribe: шаблон страницы")
	}
}
