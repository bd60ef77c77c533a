// Package search ranks a flat, locale-scoped content index against a free
// text query.
package search

type ItemType string

const (
	TypeProduct ItemType = "product"
	TypeNews    ItemType = "news"
	TypeCase    ItemType = "case"
)

func (t ItemType) Valid() bool {
	switch t {
	case TypeProduct, TypeNews, TypeCase:
		return true
	}
	return false
}

// Item is one searchable unit. Index slices are treated as read-only.
type Item struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Type    ItemType `json:"type"`
	URL     string   `json:"url"`
	Image   string   `json:"image,omitempty"`
	Date    string   `json:"date,omitempty"`
	Price   *float64 `json:"price,omitempty"`
}

// Scored pairs an item with its relevance for one query.
type Scored struct {
	Item            Item
	Score           int
	MatchedKeywords int
}

// Page selects a 1-based window of results. A zero PageSize disables
// pagination.
type Page struct {
	Page     int
	PageSize int
}

type Result struct {
	Query        string   `json:"query"`
	Keywords     []string `json:"-"`
	Items        []Item   `json:"results"`
	TotalResults int      `json:"totalResults"`
	TotalPages   int      `json:"totalPages"`
	CurrentPage  int      `json:"currentPage"`
}
