package index

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"catalogsite/internal/metrics"
	"catalogsite/internal/search"
)

const buildTimeout = 2 * time.Minute

type indexBuilder interface {
	Build(ctx context.Context, locale string) ([]search.Item, error)
}

// Service serves indexes from the fastest tier that has one: redis, then
// the Postgres snapshot, then a fresh build from the CMS. It satisfies
// search.Loader.
type Service struct {
	builder indexBuilder
	store   *Store
	cache   *Cache

	// MaxAge makes snapshots older than this rebuild on load. Zero keeps
	// snapshots until Rebuild is called.
	MaxAge time.Duration

	group singleflight.Group
	now   func() time.Time
}

// NewService wires the tiers together. cache may be nil.
func NewService(builder indexBuilder, store *Store, cache *Cache) *Service {
	return &Service{
		builder: builder,
		store:   store,
		cache:   cache,
		now:     time.Now,
	}
}

var _ search.Loader = (*Service)(nil)

// Load returns the index for locale. Concurrent loads of one locale share a
// single lookup and build.
func (s *Service) Load(ctx context.Context, locale string) ([]search.Item, error) {
	ch := s.group.DoChan(locale, func() (any, error) {
		// The shared load outlives any single caller's cancellation.
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), buildTimeout)
		defer cancel()
		return s.load(lctx, locale)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]search.Item), nil
	}
}

func (s *Service) load(ctx context.Context, locale string) ([]search.Item, error) {
	if s.cache != nil {
		items, ok, err := s.cache.Get(ctx, locale)
		if err != nil {
			log.Printf("index: cache get %s: %v", locale, err)
		}
		if ok {
			metrics.IndexLoads.WithLabelValues("cache").Inc()
			return items, nil
		}
	}

	snap, err := s.store.Get(ctx, locale)
	switch {
	case err == nil && !s.stale(snap):
		s.fillCache(ctx, locale, snap.Items)
		metrics.IndexLoads.WithLabelValues("store").Inc()
		return snap.Items, nil
	case err == nil:
		items, berr := s.rebuild(ctx, locale)
		if berr != nil {
			log.Printf("index: refresh stale %s snapshot: %v", locale, berr)
			metrics.IndexLoads.WithLabelValues("store").Inc()
			return snap.Items, nil
		}
		metrics.IndexLoads.WithLabelValues("build").Inc()
		return items, nil
	case !errors.Is(err, ErrNotFound):
		log.Printf("index: %v", err)
	}

	items, err := s.rebuild(ctx, locale)
	if err != nil {
		return nil, err
	}
	metrics.IndexLoads.WithLabelValues("build").Inc()
	return items, nil
}

func (s *Service) stale(snap Snapshot) bool {
	return s.MaxAge > 0 && s.now().Sub(snap.BuiltAt) > s.MaxAge
}

// rebuild builds, persists and caches one locale. A failed save is logged;
// the fresh index is still served.
func (s *Service) rebuild(ctx context.Context, locale string) ([]search.Item, error) {
	items, err := s.builder.Build(ctx, locale)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, locale, items, s.now()); err != nil {
		log.Printf("index: %v", err)
	}
	s.fillCache(ctx, locale, items)
	return items, nil
}

func (s *Service) fillCache(ctx context.Context, locale string, items []search.Item) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, locale, items); err != nil {
		log.Printf("index: cache set %s: %v", locale, err)
	}
}

// Rebuild rebuilds every listed locale, continuing past failures. It
// returns what was built and the joined per-locale errors.
func (s *Service) Rebuild(ctx context.Context, locales []string) ([]SnapshotInfo, error) {
	var (
		built []SnapshotInfo
		errs  []error
	)
	for _, locale := range locales {
		s.group.Forget(locale)

		items, err := s.builder.Build(ctx, locale)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		builtAt := s.now()
		if err := s.store.Save(ctx, locale, items, builtAt); err != nil {
			errs = append(errs, err)
			continue
		}
		s.fillCache(ctx, locale, items)
		built = append(built, SnapshotInfo{Locale: locale, ItemCount: len(items), BuiltAt: builtAt.UTC()})
	}
	if len(errs) > 0 {
		return built, fmt.Errorf("rebuild index: %w", errors.Join(errs...))
	}
	return built, nil
}
