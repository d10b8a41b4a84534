package listing

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"westport-blog/internal/domain"
	"westport-blog/internal/infra/metrics"
)

// ExcerptBudget длина выдержки, собранной из первого абзаца.
const ExcerptBudget = 160

// Reconciler пересобирает листинг из каталога страниц. Каталог является
// источником истины, прежний листинг не читается.
type Reconciler struct {
	repo           domain.ArtifactRepo
	store          domain.ListingStore
	feed           domain.FeedWriter
	defaultExcerpt string
	loc            *time.Location
	now            func() time.Time
	log            zerolog.Logger
}

// NewReconciler создаёт реконсилятор. feed может быть nil.
func NewReconciler(repo domain.ArtifactRepo, store domain.ListingStore, feed domain.FeedWriter, defaultExcerpt string, loc *time.Location, logger zerolog.Logger) *Reconciler {
	if loc == nil {
		loc = time.UTC
	}
	return &Reconciler{
		repo:           repo,
		store:          store,
		feed:           feed,
		defaultExcerpt: defaultExcerpt,
		loc:            loc,
		now:            time.Now,
		log:            logger,
	}
}

// Build строит листинг без записи.
func (r *Reconciler) Build() (domain.Listing, error) {
	files, err := r.repo.List()
	if err != nil {
		return domain.Listing{}, err
	}
	today := r.now().In(r.loc).Format(domain.DateLayout)

	posts := make([]domain.ListingEntry, 0, len(files))
	for _, f := range files {
		page, err := r.inspect(f.Name)
		if err != nil {
			r.log.Warn().Err(err).Str("file", f.Name).Msg("listing: страница не разобрана, используем имя файла")
		}
		posts = append(posts, Entry(f, page, r.repo.URL(f.Name), today, r.defaultExcerpt))
	}
	SortNewestFirst(posts)
	return domain.Listing{Posts: posts}, nil
}

// Rebuild строит листинг и атомарно записывает его, затем ленту.
func (r *Reconciler) Rebuild() (domain.Listing, error) {
	listing, err := r.Build()
	if err != nil {
		return domain.Listing{}, fmt.Errorf("сканирование страниц: %w", err)
	}
	if err := r.store.Save(listing); err != nil {
		return domain.Listing{}, fmt.Errorf("запись листинга: %w", err)
	}
	metrics.ListingEntries.Set(float64(len(listing.Posts)))
	if r.feed != nil {
		if err := r.feed.Write(listing); err != nil {
			r.log.Warn().Err(err).Msg("listing: лента не записана")
		}
	}
	r.log.Info().Int("posts", len(listing.Posts)).Msg("listing: листинг пересобран")
	return listing, nil
}

func (r *Reconciler) inspect(name string) (Page, error) {
	rc, err := r.repo.Open(name)
	if err != nil {
		return Page{}, err
	}
	defer rc.Close()
	return ParsePage(rc)
}

// Entry собирает запись листинга из файла и разобранной страницы.
func Entry(f domain.ArtifactFile, page Page, url, today, defaultExcerpt string) domain.ListingEntry {
	date := today
	if f.Dated {
		date = f.Date.Format(domain.DateLayout)
	}
	title := page.Title
	if title == "" {
		title = TitleFromName(f.Name)
	}
	excerpt := page.Description
	if excerpt == "" && page.FirstParagraph != "" {
		excerpt = Truncate(page.FirstParagraph, ExcerptBudget)
	}
	if excerpt == "" {
		excerpt = defaultExcerpt
	}
	category := page.Category
	if category == "" {
		category = domain.DefaultCategory
	}
	return domain.ListingEntry{
		Title:    title,
		Date:     date,
		URL:      url,
		Excerpt:  excerpt,
		Category: category,
	}
}

// SortNewestFirst упорядочивает по дате по убыванию; равные даты сохраняют порядок обнаружения.
func SortNewestFirst(posts []domain.ListingEntry) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date > posts[j].Date
	})
}
