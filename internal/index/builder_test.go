package index

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogsite/internal/cms"
	"catalogsite/internal/search"
)

type fakeSource struct {
	products    []cms.Product
	news, cases []cms.Article
	productsErr error
	newsErr     error
	casesErr    error
	locales     chan string
}

func (f *fakeSource) record(locale string) {
	if f.locales != nil {
		f.locales <- locale
	}
}

func (f *fakeSource) Products(_ context.Context, locale string) ([]cms.Product, error) {
	f.record(locale)
	return f.products, f.productsErr
}

func (f *fakeSource) News(_ context.Context, locale string) ([]cms.Article, error) {
	f.record(locale)
	return f.news, f.newsErr
}

func (f *fakeSource) Cases(_ context.Context, locale string) ([]cms.Article, error) {
	f.record(locale)
	return f.cases, f.casesErr
}

func sampleSource() *fakeSource {
	price := 19.5
	return &fakeSource{
		products: []cms.Product{{
			ID:          "p1",
			Name:        "Red Shoe",
			Description: "<p>Soft <b>leather</b></p><p>&amp; rubber</p>",
			Price:       &price,
			Image:       "https://img.example.com/shoe.jpg",
			UpdatedAt:   time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
		}},
		news: []cms.Article{
			{ID: "7", Title: "Launch", Content: "<h2>New</h2>line", Date: "2024-05-01", Image: cms.PlaceholderImage},
			{ID: "8", Title: "Brief", Summary: "Only a summary"},
		},
		cases: []cms.Article{{Title: "Untitled case", Content: "Story"}},
	}
}

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder(sampleSource())
	b.newID = func() string { return "generated" }

	items, err := b.Build(context.Background(), "en")
	require.NoError(t, err)
	require.Len(t, items, 4)

	price := 19.5
	assert.Equal(t, search.Item{
		ID:      "product-p1",
		Title:   "Red Shoe",
		Content: "Soft leather & rubber",
		Type:    search.TypeProduct,
		URL:     "/en/products/p1",
		Image:   "https://img.example.com/shoe.jpg",
		Date:    "2024-03-09",
		Price:   &price,
	}, items[0])

	assert.Equal(t, "news-7", items[1].ID)
	assert.Equal(t, "New line", items[1].Content)
	assert.Equal(t, "/en/news/7", items[1].URL)
	assert.Equal(t, "2024-05-01", items[1].Date)

	assert.Equal(t, "Only a summary", items[2].Content)

	assert.Equal(t, "case-generated", items[3].ID)
	assert.Equal(t, search.TypeCase, items[3].Type)
	assert.Equal(t, "/en/cases/generated", items[3].URL)
	assert.Nil(t, items[3].Price)
}

func TestBuilder_ProductWithoutPrice(t *testing.T) {
	b := NewBuilder(&fakeSource{products: []cms.Product{{ID: "p2", Name: "Sample kit"}}})

	items, err := b.Build(context.Background(), "en")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Price)

	raw, err := json.Marshal(items[0])
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"price"`)
}

// orderedSource fails products first and lets the other kinds observe the
// context afterwards.
type orderedSource struct {
	failed chan struct{}
}

func (s *orderedSource) Products(context.Context, string) ([]cms.Product, error) {
	defer close(s.failed)
	return nil, errors.New("products down")
}

func (s *orderedSource) News(ctx context.Context, _ string) ([]cms.Article, error) {
	<-s.failed
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []cms.Article{{ID: "7", Title: "Launch"}}, nil
}

func (s *orderedSource) Cases(ctx context.Context, _ string) ([]cms.Article, error) {
	<-s.failed
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []cms.Article{{ID: "3", Title: "Harbour"}}, nil
}

func TestBuilder_FailureDoesNotCancelSiblings(t *testing.T) {
	b := NewBuilder(&orderedSource{failed: make(chan struct{})})

	items, err := b.Build(context.Background(), "en")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "news-7", items[0].ID)
	assert.Equal(t, "case-3", items[1].ID)
}

func TestBuilder_SkipsFailedKind(t *testing.T) {
	src := sampleSource()
	src.newsErr = errors.New("news down")

	items, err := NewBuilder(src).Build(context.Background(), "zh")
	require.NoError(t, err)

	var types []search.ItemType
	for _, it := range items {
		types = append(types, it.Type)
	}
	assert.Equal(t, []search.ItemType{search.TypeProduct, search.TypeCase}, types)
}

func TestBuilder_AllKindsFail(t *testing.T) {
	down := errors.New("cms down")
	src := &fakeSource{productsErr: down, newsErr: down, casesErr: down}

	items, err := NewBuilder(src).Build(context.Background(), "zh")
	assert.ErrorIs(t, err, down)
	assert.Nil(t, items)
}

func TestBuilder_EmptySource(t *testing.T) {
	items, err := NewBuilder(&fakeSource{}).Build(context.Background(), "zh")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestBuilder_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(sampleSource()).Build(ctx, "zh")
	assert.ErrorIs(t, err, context.Canceled)
}
