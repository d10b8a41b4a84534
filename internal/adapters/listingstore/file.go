package listingstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"westport-blog/internal/domain"
	"westport-blog/internal/infra/fsutil"
)

// File хранит листинг в JSON-документе {"posts": [...]}.
type File struct {
	path string
}

var _ domain.ListingStore = (*File)(nil)

// NewFile создаёт хранилище листинга.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path путь к документу.
func (f *File) Path() string {
	return f.path
}

// Load читает листинг; ошибку разбора вызывающий трактует как пустой листинг.
func (f *File) Load() (domain.Listing, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return domain.Listing{Posts: []domain.ListingEntry{}}, err
	}
	var listing domain.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return domain.Listing{Posts: []domain.ListingEntry{}}, fmt.Errorf("разбор листинга: %w", err)
	}
	if listing.Posts == nil {
		listing.Posts = []domain.ListingEntry{}
	}
	return listing, nil
}

// Save атомарно заменяет документ.
func (f *File) Save(listing domain.Listing) error {
	data, err := Encode(listing)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(f.path, data, 0o644)
}

// Ensure создаёт пустой листинг, если документа нет.
func (f *File) Ensure() error {
	if _, err := os.Stat(f.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return f.Save(domain.Listing{})
}

// Encode сериализует листинг детерминированно: отступ в два пробела, без
// экранирования HTML и с переводом строки в конце.
func Encode(listing domain.Listing) ([]byte, error) {
	if listing.Posts == nil {
		listing.Posts = []domain.ListingEntry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(listing); err != nil {
		return nil, fmt.Errorf("кодирование листинга: %w", err)
	}
	return buf.Bytes(), nil
}
