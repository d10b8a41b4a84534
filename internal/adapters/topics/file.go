package topics

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"westport-blog/internal/domain"
)

type document struct {
	Topics []domain.Topic `json:"topics" yaml:"topics"`
}

// FileStore читает темы из JSON или YAML документа {"topics": [...]}.
type FileStore struct {
	path string
}

var _ domain.TopicStore = (*FileStore)(nil)

// NewFileStore создаёт хранилище тем.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load возвращает темы с применённым правилом умолчаний.
// Отсутствие документа или пустой список: фатальная ошибка конфигурации.
func (s *FileStore) Load() ([]domain.Topic, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.path, domain.ErrTopicsMissing)
		}
		return nil, fmt.Errorf("чтение тем: %w", err)
	}
	var doc document
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("разбор %s: %w", s.path, err)
	}
	if len(doc.Topics) == 0 {
		return nil, fmt.Errorf("%s: %w", s.path, domain.ErrNoTopics)
	}
	out := make([]domain.Topic, 0, len(doc.Topics))
	for _, t := range doc.Topics {
		out = append(out, t.Normalize())
	}
	return out, nil
}
