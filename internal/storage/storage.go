// Package storage holds the document store for news records and its
// backends.
package storage

import (
	"context"
	"errors"
	"sort"

	"github.com/bilgisen/sevennews/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no document has the requested id.
var ErrNotFound = errors.New("storage: document not found")

// Store is the "news" collection of the document store.
type Store interface {
	// Insert writes a new document and returns the id assigned to it.
	// item.ID is ignored.
	Insert(ctx context.Context, item models.NewsItem) (string, error)
	Get(ctx context.Context, id string) (*models.NewsItem, error)
	// Replace overwrites every field of an existing document.
	Replace(ctx context.Context, item models.NewsItem) error
	// Delete removes a document. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	// List returns documents ordered by CreatedAt descending. limit <= 0
	// returns all of them.
	List(ctx context.Context, limit int) ([]models.NewsItem, error)
	Ping(ctx context.Context) error
	Close() error
}

func newID() string {
	return uuid.NewString()
}

// sortNewestFirst orders items by CreatedAt descending, ties by id.
func sortNewestFirst(items []models.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt != items[j].CreatedAt {
			return items[i].CreatedAt > items[j].CreatedAt
		}
		return items[i].ID < items[j].ID
	})
}

func truncate(items []models.NewsItem, limit int) []models.NewsItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
