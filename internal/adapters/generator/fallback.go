package generator

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"

	"westport-blog/internal/domain"
)

var hooks = []string{
	"If you're shopping in Westport and looking for the right **%s**, this guide is for you.",
	"Customers in Kansas City regularly ask us about **%s**. Here's what matters most.",
	"Choosing the right **%s** doesn't have to be complicated. Let's break it down.",
	"Looking for quality **%s** near Westport? Here's a practical, local guide.",
}

var tips = []string{
	"Ask what's new this week, inventory rotates often.",
	"Compare options side by side before deciding.",
	"Start simple if you're trying something new.",
	"Call ahead to confirm availability.",
	"Bring a photo if you're replacing something.",
}

// Fallback собирает статью из шаблона без сети. Результат зависит только
// от даты, заголовка, идеи и фактов о магазине.
type Fallback struct{}

var _ domain.Composer = Fallback{}

// NewFallback создаёт запасной генератор.
func NewFallback() Fallback {
	return Fallback{}
}

// Compose возвращает markdown с той же структурой, что и основной путь:
// строка Excerpt, подзаголовки, призыв зайти в магазин.
func (Fallback) Compose(req domain.GenerationRequest) string {
	store := req.Constraints.Store
	seed := seedFor(req)
	hook := fmt.Sprintf(hooks[seed%uint64(len(hooks))], req.Idea)
	picked := pickTips(seed, 3)

	var b strings.Builder
	fmt.Fprintf(&b, "Excerpt: %s Visit %s in Westport for friendly service and updated inventory.\n\n", hook, store.Name)
	fmt.Fprintf(&b, "## %s\n\n", req.Title)
	fmt.Fprintf(&b, "%s\n\n", hook)
	fmt.Fprintf(&b, "At %s, located in the heart of Westport, Kansas City, we help customers make confident buying decisions every day. "+
		"Whether you're new or experienced, understanding your options makes a big difference.\n\n", store.Name)

	fmt.Fprintf(&b, "### Why People Choose %s\n\n", store.Name)
	b.WriteString("Our customers value:\n\n")
	b.WriteString("- Wide product selection\n- Fair everyday pricing\n- Knowledgeable and helpful staff\n- Easy in-and-out Westport location\n\n")
	fmt.Fprintf(&b, "When it comes to **%s**, availability can change quickly. Seeing products in person helps you compare quality, design, and price before making a decision.\n\n", req.Idea)

	b.WriteString("### What to Look For\n\n")
	fmt.Fprintf(&b, "Here are smart things to check when shopping for **%s**:\n\n", req.Idea)
	b.WriteString("- Brand reliability and build quality\n- Size and packaging differences\n- Price-to-value comparison\n- Current in-store availability\n\n")
	b.WriteString("If you're unsure, our staff will walk you through options without pressure.\n\n")

	b.WriteString("### Smart Shopping Tips\n\n")
	for _, tip := range picked {
		fmt.Fprintf(&b, "- %s\n", tip)
	}
	b.WriteString("\n")

	if req.Category != "" && req.Category != domain.DefaultCategory {
		fmt.Fprintf(&b, "### More in %s\n\n", req.Category)
		fmt.Fprintf(&b, "Our %s shelf is restocked regularly. Ask at the counter about new arrivals and staff picks.\n\n", strings.ToLower(req.Category))
	}

	b.WriteString("### Local Convenience\n\n")
	fmt.Fprintf(&b, "We're located at **%s**, making it easy to stop by if you're already in Westport. "+
		"Many customers combine their visit with dining or errands nearby.\n\n", store.Address)
	b.WriteString("Buying local means better service, real-time answers, and no waiting for shipping.\n\n")

	b.WriteString("### Visit or Call Today\n\n")
	fmt.Fprintf(&b, "Address: %s  \n", store.Address)
	if store.Phone != "" {
		fmt.Fprintf(&b, "Call: [%s](tel:%s)  \n", store.Phone, store.PhoneLink)
	}
	if store.MapsURL != "" {
		fmt.Fprintf(&b, "Directions: [Open in Google Maps](%s)\n", store.MapsURL)
	}
	b.WriteString("\nStop in today and explore your options.\n\n")
	b.WriteString("**21+ only. Valid ID required for nicotine purchases.**\n")
	return b.String()
}

func seedFor(req domain.GenerationRequest) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(req.Date.Format(domain.DateLayout)))
	_, _ = h.Write([]byte("::"))
	_, _ = h.Write([]byte(req.Title))
	return h.Sum64()
}

// pickTips выбирает n разных советов в детерминированном порядке.
func pickTips(seed uint64, n int) []string {
	if n > len(tips) {
		n = len(tips)
	}
	r := rand.New(rand.NewPCG(seed, seed>>32))
	out := make([]string, 0, n)
	for _, idx := range r.Perm(len(tips))[:n] {
		out = append(out, tips[idx])
	}
	return out
}
