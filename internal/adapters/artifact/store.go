package artifact

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"westport-blog/internal/domain"
	"westport-blog/internal/infra/metrics"
)

// DefaultSlug используется, если из заголовка не получилось ни одного символа.
const DefaultSlug = "post"

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify приводит заголовок к виду "new-vape-arrivals".
func Slugify(title string) string {
	slug := nonAlnumRe.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return DefaultSlug
	}
	return slug
}

// Store каталог страниц постов: запись новых, перечисление и удаление.
type Store struct {
	dir       string
	urlPrefix string
	ext       string
	storeName string
	md        goldmark.Markdown
}

var (
	_ domain.ArtifactWriter = (*Store)(nil)
	_ domain.ArtifactRepo   = (*Store)(nil)
)

// NewStore создаёт хранилище. urlPrefix задаёт путь каталога относительно корня сайта.
func NewStore(dir, urlPrefix, ext, storeName string) *Store {
	if ext == "" {
		ext = ".html"
	}
	return &Store{
		dir:       dir,
		urlPrefix: strings.Trim(filepath.ToSlash(urlPrefix), "/"),
		ext:       ext,
		storeName: storeName,
		md:        newMarkdown(),
	}
}

// Ensure создаёт каталог страниц.
func (s *Store) Ensure() error {
	return os.MkdirAll(s.dir, 0o755)
}

// Write рендерит статью и пишет её в новый файл <date>-<slug>[-n].<ext>.
// Существующие файлы никогда не перезаписываются.
func (s *Store) Write(date time.Time, article domain.Article) (string, error) {
	body, err := renderMarkdown(s.md, article.Markdown)
	if err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}
	page, err := renderPage(pageData{
		Title:      article.Title,
		Excerpt:    article.Excerpt,
		Category:   article.Category,
		Date:       date.Format(domain.DateLayout),
		Year:       date.Year(),
		StoreName:  s.storeName,
		StylesHref: s.stylesHref(),
		Body:       body,
	})
	if err != nil {
		return "", fmt.Errorf("шаблон страницы: %w", err)
	}

	if err := s.Ensure(); err != nil {
		return "", fmt.Errorf("каталог страниц: %w", err)
	}
	f, name, err := s.create(date, Slugify(article.Title))
	if err != nil {
		return "", err
	}
	if _, err := f.Write(page); err != nil {
		_ = f.Close()
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", fmt.Errorf("запись %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("sync %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	metrics.ArtifactsWritten.Inc()
	return s.URL(name), nil
}

// create занимает первое свободное имя через O_EXCL.
func (s *Store) create(date time.Time, slug string) (*os.File, string, error) {
	base := date.Format(domain.DateLayout) + "-" + slug
	for i := 0; ; i++ {
		name := base + s.ext
		if i > 0 {
			name = fmt.Sprintf("%s-%d%s", base, i, s.ext)
		}
		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("создание %s: %w", name, err)
		}
	}
}

func (s *Store) stylesHref() string {
	if s.urlPrefix == "" {
		return "styles.css"
	}
	depth := strings.Count(s.urlPrefix, "/") + 1
	return strings.Repeat("../", depth) + "styles.css"
}

// List перечисляет страницы с нужным расширением без рекурсии, по имени.
func (s *Store) List() ([]domain.ArtifactFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("чтение каталога страниц: %w", err)
	}
	out := make([]domain.ArtifactFile, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, ".") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), s.ext) {
			continue
		}
		date, ok := domain.ParseArtifactDate(name)
		out = append(out, domain.ArtifactFile{Name: name, Date: date, Dated: ok})
	}
	return out, nil
}

// Open открывает страницу для чтения.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.dir, name))
}

// Remove удаляет страницу.
func (s *Store) Remove(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	return os.Remove(filepath.Join(s.dir, name))
}

// URL путь страницы относительно корня сайта.
func (s *Store) URL(name string) string {
	if s.urlPrefix == "" {
		return name
	}
	return path.Join(s.urlPrefix, name)
}

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("недопустимое имя страницы %q", name)
	}
	return nil
}
