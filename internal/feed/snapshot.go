// Package feed keeps the in-memory snapshot of the newest-first news list
// that the public views read from.
package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bilgisen/sevennews/internal/logger"
	"github.com/bilgisen/sevennews/internal/models"
)

// Source loads the full newest-first list.
type Source interface {
	ListRecent(ctx context.Context, limit int) ([]models.NewsItem, error)
}

// loadKey names the single in-flight load shared by concurrent readers.
const loadKey = "feed"

// loadTimeout bounds a shared load, which outlives any one caller's context.
const loadTimeout = 30 * time.Second

// Snapshot caches the list for a TTL. A zero TTL reloads on every read.
type Snapshot struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	group singleflight.Group

	mu       sync.RWMutex
	items    []models.NewsItem
	loadedAt time.Time
	loaded   bool
}

func NewSnapshot(source Source, ttl time.Duration) *Snapshot {
	return &Snapshot{source: source, ttl: ttl, now: time.Now}
}

// Items returns the cached list, reloading it first when it is stale or was
// never loaded. Concurrent stale reads wait on the same load. Callers must
// not modify the returned slice.
func (s *Snapshot) Items(ctx context.Context) ([]models.NewsItem, error) {
	if items, ok := s.cached(); ok {
		return items, nil
	}
	return s.do(ctx, false)
}

// Refresh reloads the list unconditionally. A load already in flight may
// predate the caller's last write, so Refresh never joins it.
func (s *Snapshot) Refresh(ctx context.Context) ([]models.NewsItem, error) {
	s.group.Forget(loadKey)
	return s.do(ctx, true)
}

// RefreshAsync reloads the list in the background. Errors are logged and the
// previous snapshot is marked stale so the next read retries.
func (s *Snapshot) RefreshAsync() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		if _, err := s.Refresh(ctx); err != nil {
			s.Invalidate()
			logger.Get().Error().
				Err(err).
				Msg("Background feed refresh failed")
		}
	}()
}

// Invalidate forces the next Items call to reload.
func (s *Snapshot) Invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.mu.Unlock()
}

func (s *Snapshot) cached() ([]models.NewsItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loaded && s.now().Sub(s.loadedAt) < s.ttl {
		return s.items, true
	}
	return nil, false
}

func (s *Snapshot) do(ctx context.Context, force bool) ([]models.NewsItem, error) {
	ch := s.group.DoChan(loadKey, func() (interface{}, error) {
		if !force {
			// A load may have finished between the caller's check and now.
			if items, ok := s.cached(); ok {
				return items, nil
			}
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.load(lctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]models.NewsItem), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("refresh feed: %w", ctx.Err())
	}
}

func (s *Snapshot) load(ctx context.Context) ([]models.NewsItem, error) {
	started := s.now()
	items, err := s.source.ListRecent(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("refresh feed: %w", err)
	}

	s.mu.Lock()
	// An older load that was overtaken by a Refresh must not win.
	if !s.loaded || !started.Before(s.loadedAt) {
		s.items = items
		s.loadedAt = started
		s.loaded = true
	} else {
		items = s.items
	}
	s.mu.Unlock()

	logger.Get().Debug().
		Int("items", len(items)).
		Msg("Feed snapshot refreshed")
	return items, nil
}
