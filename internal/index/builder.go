// Package index builds, persists and caches the per-locale search index.
package index

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/errgroup"

	"catalogsite/internal/cms"
	"catalogsite/internal/metrics"
	"catalogsite/internal/search"
)

// Source is the content the index is built from. *cms.Client satisfies it.
type Source interface {
	Products(ctx context.Context, locale string) ([]cms.Product, error)
	News(ctx context.Context, locale string) ([]cms.Article, error)
	Cases(ctx context.Context, locale string) ([]cms.Article, error)
}

type Builder struct {
	source Source
	policy *bluemonday.Policy
	newID  func() string
}

func NewBuilder(source Source) *Builder {
	return &Builder{
		source: source,
		policy: bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true),
		newID:  uuid.NewString,
	}
}

// Build fetches all content kinds for locale concurrently and flattens them
// into index items, products first. A kind that fails to load is logged and
// left out; Build only fails when every kind failed.
func (b *Builder) Build(ctx context.Context, locale string) ([]search.Item, error) {
	start := time.Now()

	var (
		products    []cms.Product
		news, cases []cms.Article
		errs        [3]error
	)

	// Fetch errors are collected rather than returned so one failing kind
	// never cancels the others; gctx only carries the caller's cancellation.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, errs[0] = b.source.Products(gctx, locale)
		return nil
	})
	g.Go(func() error {
		news, errs[1] = b.source.News(gctx, locale)
		return nil
	})
	g.Go(func() error {
		cases, errs[2] = b.source.Cases(gctx, locale)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			log.Printf("index: build %s: %v", locale, err)
		}
	}
	if errs[0] != nil && errs[1] != nil && errs[2] != nil {
		metrics.IndexBuilds.WithLabelValues(locale, "error").Inc()
		return nil, fmt.Errorf("build %s index: %w", locale, errors.Join(errs[:]...))
	}

	items := make([]search.Item, 0, len(products)+len(news)+len(cases))
	for _, p := range products {
		items = append(items, b.productItem(locale, p))
	}
	for _, a := range news {
		items = append(items, b.articleItem(locale, search.TypeNews, "news", a))
	}
	for _, a := range cases {
		items = append(items, b.articleItem(locale, search.TypeCase, "cases", a))
	}

	metrics.IndexBuilds.WithLabelValues(locale, "ok").Inc()
	metrics.IndexBuildDuration.WithLabelValues(locale).Observe(time.Since(start).Seconds())
	return items, nil
}

func (b *Builder) productItem(locale string, p cms.Product) search.Item {
	id := b.idOrNew(p.ID)
	item := search.Item{
		ID:      "product-" + id,
		Title:   p.Name,
		Content: b.plainText(p.Description),
		Type:    search.TypeProduct,
		URL:     "/" + locale + "/products/" + id,
		Image:   p.Image,
	}
	if p.Price != nil {
		price := *p.Price
		item.Price = &price
	}
	if !p.UpdatedAt.IsZero() {
		item.Date = p.UpdatedAt.UTC().Format(time.DateOnly)
	}
	return item
}

func (b *Builder) articleItem(locale string, typ search.ItemType, section string, a cms.Article) search.Item {
	id := b.idOrNew(a.ID)
	content := a.Content
	if strings.TrimSpace(content) == "" {
		content = a.Summary
	}
	return search.Item{
		ID:      string(typ) + "-" + id,
		Title:   a.Title,
		Content: b.plainText(content),
		Type:    typ,
		URL:     "/" + locale + "/" + section + "/" + id,
		Image:   a.Image,
		Date:    a.Date,
	}
}

func (b *Builder) idOrNew(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return b.newID()
}

// plainText drops markup so the ranker and highlighter only see visible
// text. The sanitizer leaves entities encoded, so they are decoded after.
func (b *Builder) plainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(html.UnescapeString(b.policy.Sanitize(s))), " ")
}
