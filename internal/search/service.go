package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable marks a search that could not run because the index could
// not be loaded. Callers show it as "search unavailable", distinct from an
// empty result.
var ErrUnavailable = errors.New("search unavailable")

// Loader returns the index for a locale. Implementations own fetching and
// caching; the ranker only reads the returned slice.
type Loader interface {
	Load(ctx context.Context, locale string) ([]Item, error)
}

type LoaderFunc func(ctx context.Context, locale string) ([]Item, error)

func (f LoaderFunc) Load(ctx context.Context, locale string) ([]Item, error) {
	return f(ctx, locale)
}

type Service struct {
	loader Loader
}

func NewService(loader Loader) *Service {
	return &Service{loader: loader}
}

// Search loads the locale index and ranks it. An empty query never touches
// the loader. Loader failures are not retried.
func (s *Service) Search(ctx context.Context, locale, query string, p Page) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return emptyResult(query), nil
	}

	index, err := s.loader.Load(ctx, locale)
	if err != nil {
		return emptyResult(query), fmt.Errorf("%w: load %s index: %w", ErrUnavailable, locale, err)
	}

	return Search(query, index, p), nil
}

func emptyResult(query string) Result {
	return Result{Query: query, Items: []Item{}, CurrentPage: 1}
}
