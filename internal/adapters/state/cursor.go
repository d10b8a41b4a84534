package state

import (
	"encoding/json"
	"fmt"
	"os"

	"westport-blog/internal/domain"
	"westport-blog/internal/infra/fsutil"
)

// CursorFile хранит курсор ротации в JSON-документе {"next_index": n}.
type CursorFile struct {
	path string
}

var _ domain.CursorStore = (*CursorFile)(nil)

// NewCursorFile создаёт хранилище курсора.
func NewCursorFile(path string) *CursorFile {
	return &CursorFile{path: path}
}

// Load читает документ как есть; нормализацию выполняет вызывающий.
func (c *CursorFile) Load() (domain.RotationCursor, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return domain.RotationCursor{}, err
	}
	var cursor domain.RotationCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return domain.RotationCursor{}, fmt.Errorf("разбор курсора: %w", err)
	}
	return cursor, nil
}

// Save перезаписывает документ целиком.
func (c *CursorFile) Save(cursor domain.RotationCursor) error {
	data, err := json.MarshalIndent(cursor, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(c.path, append(data, '\n'), 0o644)
}

// Ensure создаёт документ с next_index=0, если его нет.
func (c *CursorFile) Ensure() error {
	if _, err := os.Stat(c.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return c.Save(domain.RotationCursor{})
}
