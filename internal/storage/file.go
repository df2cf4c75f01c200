package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bilgisen/sevennews/internal/models"
)

// FileStore keeps one JSON document per item under basePath/news.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

func NewFileStore(basePath string) (*FileStore, error) {
	dir := filepath.Join(basePath, "news")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", ErrNotFound
	}
	return filepath.Join(s.dir, id+".json"), nil
}

// Insert saves a new news item to disk
func (s *FileStore) Insert(ctx context.Context, item models.NewsItem) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = newID()
	if err := s.write(item); err != nil {
		return "", err
	}
	return item.ID, nil
}

// Get retrieves a news item by its ID
func (s *FileStore) Get(ctx context.Context, id string) (*models.NewsItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	return readItem(path)
}

// Replace overwrites an existing news item
func (s *FileStore) Replace(ctx context.Context, item models.NewsItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(item.ID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to stat news file: %w", err)
	}
	return s.write(item)
}

// Delete deletes a news item by its ID
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(id)
	if err != nil {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete news file: %w", err)
	}
	return nil
}

// List reads every document and returns them newest first
func (s *FileStore) List(ctx context.Context, limit int) ([]models.NewsItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("error reading storage directory: %w", err)
	}

	items := make([]models.NewsItem, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		item, err := readItem(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	sortNewestFirst(items)
	return truncate(items, limit), nil
}

func (s *FileStore) Ping(ctx context.Context) error {
	_, err := os.Stat(s.dir)
	return err
}

func (s *FileStore) Close() error {
	return nil
}

// write replaces the document atomically via a temp file and rename.
func (s *FileStore) write(item models.NewsItem) error {
	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal news item: %w", err)
	}

	path := filepath.Join(s.dir, item.ID+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write news file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write news file: %w", err)
	}
	return nil
}

func readItem(path string) (*models.NewsItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var item models.NewsItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal news item: %w", err)
	}
	return &item, nil
}
