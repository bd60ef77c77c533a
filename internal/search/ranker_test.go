package search

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"red", "shoe"}, Tokenize("  Red \t SHOE\n"))
	assert.Equal(t, []string{"shoe", "shoe"}, Tokenize("shoe shoe"))
	assert.Empty(t, Tokenize(" \t\n "))
}

func TestScore(t *testing.T) {
	tests := []struct {
		name        string
		item        Item
		query       string
		wantScore   int
		wantMatched int
	}{
		{
			name:        "all keywords in title",
			item:        Item{Title: "Red Shoe"},
			query:       "red shoe",
			wantScore:   10 + 10 + 20,
			wantMatched: 2,
		},
		{
			name:        "keywords split across title and content",
			item:        Item{Title: "Red Hat", Content: "shoe store"},
			query:       "red shoe",
			wantScore:   10 + 5 + 20,
			wantMatched: 2,
		},
		{
			name:        "partial match gets no bonus",
			item:        Item{Title: "Red Hat", Content: "wool"},
			query:       "red shoe",
			wantScore:   10,
			wantMatched: 1,
		},
		{
			name:        "title and content both count",
			item:        Item{Title: "Shoe", Content: "a shoe"},
			query:       "shoe",
			wantScore:   10 + 5 + 20,
			wantMatched: 1,
		},
		{
			name:        "content only",
			item:        Item{Title: "Boots", Content: "Leather shoe"},
			query:       "shoe",
			wantScore:   5 + 20,
			wantMatched: 1,
		},
		{
			name:        "duplicate keywords double count",
			item:        Item{Title: "Shoe"},
			query:       "shoe shoe",
			wantScore:   10 + 10 + 20,
			wantMatched: 2,
		},
		{
			name:        "substring match",
			item:        Item{Title: "Shoelaces"},
			query:       "SHOE",
			wantScore:   10 + 20,
			wantMatched: 1,
		},
		{
			name:  "no match",
			item:  Item{Title: "Hat", Content: "wool"},
			query: "xyzzyqux",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Score(tt.item, Tokenize(tt.query))
			assert.Equal(t, tt.wantScore, s.Score)
			assert.Equal(t, tt.wantMatched, s.MatchedKeywords)
		})
	}
}

func TestRank(t *testing.T) {
	index := []Item{
		{ID: "hat", Title: "Red Hat", Content: "wool"},
		{ID: "shoe", Title: "Red Shoe"},
		{ID: "store", Title: "Store", Content: "red shoe store"},
		{ID: "none", Title: "Blue Coat"},
	}

	t.Run("orders by score and drops zero", func(t *testing.T) {
		got := Rank("red shoe", index)
		require.Len(t, got, 3)
		assert.Equal(t, "shoe", got[0].Item.ID)
		assert.Equal(t, 40, got[0].Score)
		assert.Equal(t, "store", got[1].Item.ID)
		assert.Equal(t, 30, got[1].Score)
		assert.Equal(t, "hat", got[2].Item.ID)
		assert.Equal(t, 10, got[2].Score)
	})

	t.Run("empty and whitespace queries", func(t *testing.T) {
		assert.Empty(t, Rank("", index))
		assert.Empty(t, Rank("   \t", index))
	})

	t.Run("no matches", func(t *testing.T) {
		assert.Empty(t, Rank("xyzzyqux", index))
	})

	t.Run("ties keep index order", func(t *testing.T) {
		tied := []Item{
			{ID: "a", Title: "lamp"},
			{ID: "b", Title: "desk"},
			{ID: "c", Title: "lamp shade"},
			{ID: "d", Title: "floor lamp"},
		}
		got := Rank("lamp", tied)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"a", "c", "d"}, []string{got[0].Item.ID, got[1].Item.ID, got[2].Item.ID})
	})

	t.Run("deterministic and does not mutate index", func(t *testing.T) {
		before := append([]Item(nil), index...)
		first := Rank("red shoe", index)
		second := Rank("red shoe", index)
		assert.Equal(t, first, second)
		assert.Equal(t, before, index)
	})
}

func TestRank_FullMatchOutranksPartial(t *testing.T) {
	index := []Item{
		{ID: "partial", Title: "Red Hat"},
		{ID: "full", Title: "Red Shoe"},
	}
	got := Rank("red shoe", index)
	require.Len(t, got, 2)
	assert.Equal(t, "full", got[0].Item.ID)
}

func TestRank_TitleBeatsContent(t *testing.T) {
	index := []Item{
		{ID: "content", Title: "Item", Content: "red shoe"},
		{ID: "title", Title: "red shoe", Content: "Item"},
	}
	got := Rank("red shoe", index)
	require.Len(t, got, 2)
	assert.Equal(t, "title", got[0].Item.ID)
	assert.Greater(t, got[0].Score, got[1].Score)
}

func TestPaginate(t *testing.T) {
	index := make([]Item, 23)
	for i := range index {
		index[i] = Item{ID: fmt.Sprintf("item-%02d", i), Title: "widget"}
	}
	scored := Rank("widget", index)
	require.Len(t, scored, 23)

	tests := []struct {
		name        string
		page        Page
		wantLen     int
		wantPages   int
		wantCurrent int
		wantFirst   string
	}{
		{name: "first page", page: Page{Page: 1, PageSize: 10}, wantLen: 10, wantPages: 3, wantCurrent: 1, wantFirst: "item-00"},
		{name: "last partial page", page: Page{Page: 3, PageSize: 10}, wantLen: 3, wantPages: 3, wantCurrent: 3, wantFirst: "item-20"},
		{name: "page past end", page: Page{Page: 4, PageSize: 10}, wantLen: 0, wantPages: 3, wantCurrent: 4},
		{name: "huge page", page: Page{Page: math.MaxInt, PageSize: 50}, wantLen: 0, wantPages: 1, wantCurrent: math.MaxInt},
		{name: "page defaults to one", page: Page{PageSize: 5}, wantLen: 5, wantPages: 5, wantCurrent: 1, wantFirst: "item-00"},
		{name: "no pagination", page: Page{}, wantLen: 23, wantPages: 1, wantCurrent: 1, wantFirst: "item-00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Paginate(scored, tt.page)
			assert.Len(t, res.Items, tt.wantLen)
			assert.Equal(t, 23, res.TotalResults)
			assert.Equal(t, tt.wantPages, res.TotalPages)
			assert.Equal(t, tt.wantCurrent, res.CurrentPage)
			if tt.wantFirst != "" {
				assert.Equal(t, tt.wantFirst, res.Items[0].ID)
			}
		})
	}
}

func TestPaginate_HugePageSize(t *testing.T) {
	scored := []Scored{{Item: Item{ID: "a"}, Score: 30}}

	var res Result
	require.NotPanics(t, func() {
		res = Paginate(scored, Page{Page: 2, PageSize: math.MaxInt})
	})
	assert.Empty(t, res.Items)
	assert.Equal(t, 1, res.TotalPages)

	res = Paginate(scored, Page{Page: 1, PageSize: math.MaxInt})
	assert.Equal(t, []string{"a"}, ids(res.Items))
}

func TestSearch(t *testing.T) {
	index := []Item{
		{ID: "1", Title: "Red Hat", Content: "shoe store"},
		{ID: "2", Title: "Red Shoe"},
	}

	res := Search("Red Shoe", index, Page{Page: 1, PageSize: 1})
	assert.Equal(t, "Red Shoe", res.Query)
	assert.Equal(t, []string{"red", "shoe"}, res.Keywords)
	assert.Equal(t, []string{"2"}, ids(res.Items))
	assert.Equal(t, 2, res.TotalResults)
	assert.Equal(t, 2, res.TotalPages)

	empty := Search("", index, Page{})
	assert.Empty(t, empty.Items)
	assert.Zero(t, empty.TotalResults)
	assert.Zero(t, empty.TotalPages)
}
