// Package repository mediates every read and write of news items against
// the document store and the blob store.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bilgisen/sevennews/internal/blob"
	"github.com/bilgisen/sevennews/internal/events"
	"github.com/bilgisen/sevennews/internal/logger"
	"github.com/bilgisen/sevennews/internal/metrics"
	"github.com/bilgisen/sevennews/internal/models"
	"github.com/bilgisen/sevennews/internal/storage"
)

// ErrNotFound is returned by GetByID and Update for an unknown id.
var ErrNotFound = errors.New("news item not found")

// RepositoryError wraps a document or blob store failure.
type RepositoryError struct {
	Op  string
	ID  string
	Err error
}

func (e *RepositoryError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("repository %s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// Image is an uploaded image payload.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Repository is the content repository adapter.
type Repository struct {
	store   storage.Store
	blobs   blob.Store
	events  events.Publisher
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Repository)

// WithEvents publishes a change for every successful mutation.
func WithEvents(p events.Publisher) Option {
	return func(r *Repository) { r.events = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Repository) { r.metrics = m }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

func New(store storage.Store, blobs blob.Store, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		blobs:  blobs,
		events: events.Nop{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListRecent returns items newest first; limit <= 0 returns all of them.
func (r *Repository) ListRecent(ctx context.Context, limit int) (items []models.NewsItem, err error) {
	defer r.observe("list", time.Now(), &err)

	items, err = r.store.List(ctx, limit)
	if err != nil {
		return nil, &RepositoryError{Op: "list", Err: err}
	}
	return items, nil
}

// GetByID returns the item or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id string) (item *models.NewsItem, err error) {
	defer r.observe("get", time.Now(), &err)

	if id == "" {
		return nil, ErrNotFound
	}
	item, err = r.store.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &RepositoryError{Op: "get", ID: id, Err: err}
	}
	return item, nil
}

// Create stores img first, if any, then writes the record and returns the id
// the store assigned. When the record write fails after a successful upload
// the object is left behind and logged.
func (r *Repository) Create(ctx context.Context, fields models.Fields, img *Image) (id string, err error) {
	defer r.observe("create", time.Now(), &err)

	fields = fields.Normalize()
	if fields.CreatedAt == 0 {
		fields.CreatedAt = r.now().UnixMilli()
	}

	key, err := r.storeImage(ctx, img, &fields)
	if err != nil {
		return "", err
	}

	item := fields.Item("")
	id, err = r.store.Insert(ctx, item)
	if err != nil {
		r.logOrphan(key, "", err)
		return "", &RepositoryError{Op: "create", Err: err}
	}

	item.ID = id
	r.publish(events.Change{Type: events.Created, ID: id, Item: &item})
	return id, nil
}

// Update replaces every field of the item with fields. CreatedAt is kept
// from the stored record so edits never reorder the feed.
func (r *Repository) Update(ctx context.Context, id string, fields models.Fields, img *Image) (err error) {
	defer r.observe("update", time.Now(), &err)

	if id == "" {
		return ErrNotFound
	}
	existing, err := r.store.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return &RepositoryError{Op: "update", ID: id, Err: err}
	}

	fields = fields.Normalize()
	fields.CreatedAt = existing.CreatedAt

	key, err := r.storeImage(ctx, img, &fields)
	if err != nil {
		return err
	}

	item := fields.Item(id)
	if err := r.store.Replace(ctx, item); err != nil {
		r.logOrphan(key, id, err)
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return &RepositoryError{Op: "update", ID: id, Err: err}
	}

	r.publish(events.Change{Type: events.Updated, ID: id, Item: &item})
	return nil
}

// Delete removes the record. The image object stays in the blob store.
func (r *Repository) Delete(ctx context.Context, id string) (err error) {
	defer r.observe("delete", time.Now(), &err)

	if err := r.store.Delete(ctx, id); err != nil {
		return &RepositoryError{Op: "delete", ID: id, Err: err}
	}
	r.publish(events.Change{Type: events.Deleted, ID: id})
	return nil
}

// Ping checks the document store.
func (r *Repository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// storeImage uploads img and records its URL in fields. It returns the
// object key, or "" when there was nothing to upload.
func (r *Repository) storeImage(ctx context.Context, img *Image, fields *models.Fields) (string, error) {
	if img == nil || img.Body == nil {
		return "", nil
	}

	key := blob.ObjectKey(r.now(), img.Filename)
	err := r.blobs.Upload(ctx, key, img.Body, img.Size, img.ContentType)
	r.metrics.ObserveUpload(err)
	if err != nil {
		return "", &RepositoryError{Op: "upload", ID: key, Err: err}
	}

	url, err := r.blobs.URL(ctx, key)
	if err != nil {
		return "", &RepositoryError{Op: "upload", ID: key, Err: err}
	}
	fields.ImageURL = url
	return key, nil
}

func (r *Repository) logOrphan(key, id string, cause error) {
	if key == "" {
		return
	}
	logger.Get().Warn().
		Err(cause).
		Str("object_key", key).
		Str("id", id).
		Msg("Record write failed after image upload, object orphaned")
}

// publish sends the change in the background; failures are only logged.
func (r *Repository) publish(c events.Change) {
	if _, ok := r.events.(events.Nop); ok {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.events.Publish(ctx, c); err != nil {
			logger.Get().Error().
				Err(err).
				Str("type", c.Type).
				Str("id", c.ID).
				Msg("Error publishing news change")
		}
	}()
}

func (r *Repository) observe(op string, start time.Time, err *error) {
	var e error
	if err != nil && *err != nil && !errors.Is(*err, ErrNotFound) {
		e = *err
	}
	r.metrics.ObserveOperation(op, start, e)
}
