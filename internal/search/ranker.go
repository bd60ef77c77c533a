package search

import (
	"slices"
	"strings"
)

const (
	titleWeight    = 10
	contentWeight  = 5
	fullMatchBonus = 20
)

// Tokenize lowercases the query and splits it on whitespace runs. Repeated
// keywords are kept and each occurrence is scored.
func Tokenize(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Score rates item against already tokenized keywords. Title and content
// matches are independent; a keyword counts as matched when either hits.
func Score(item Item, keywords []string) Scored {
	title := strings.ToLower(item.Title)
	content := strings.ToLower(item.Content)

	s := Scored{Item: item}
	for _, kw := range keywords {
		hit := false
		if strings.Contains(title, kw) {
			s.Score += titleWeight
			hit = true
		}
		if strings.Contains(content, kw) {
			s.Score += contentWeight
			hit = true
		}
		if hit {
			s.MatchedKeywords++
		}
	}

	if len(keywords) > 0 && s.MatchedKeywords == len(keywords) {
		s.Score += fullMatchBonus
	}
	return s
}

// Rank scores every item, drops non-matches and orders by score descending.
// Equal scores keep index order. The index is not modified.
func Rank(query string, index []Item) []Scored {
	keywords := Tokenize(query)
	if len(keywords) == 0 {
		return []Scored{}
	}

	scored := make([]Scored, 0, len(index))
	for _, item := range index {
		if s := Score(item, keywords); s.Score > 0 {
			scored = append(scored, s)
		}
	}

	slices.SortStableFunc(scored, func(a, b Scored) int {
		return b.Score - a.Score
	})
	return scored
}

// Paginate slices scored into the requested window. Pages past the end are
// empty; they still report the totals.
func Paginate(scored []Scored, p Page) Result {
	total := len(scored)
	res := Result{TotalResults: total, CurrentPage: 1}

	if p.PageSize <= 0 {
		res.Items = itemsOf(scored)
		if total > 0 {
			res.TotalPages = 1
		}
		return res
	}

	if p.Page > 1 {
		res.CurrentPage = p.Page
	}
	res.TotalPages = total / p.PageSize
	if total%p.PageSize != 0 {
		res.TotalPages++
	}

	// Checked before multiplying so huge page numbers cannot overflow.
	if res.CurrentPage > res.TotalPages {
		res.Items = []Item{}
		return res
	}
	start := (res.CurrentPage - 1) * p.PageSize
	end := min(start+p.PageSize, total)
	res.Items = itemsOf(scored[start:end])
	return res
}

// Search is the single ranking entry point: rank then paginate.
func Search(query string, index []Item, p Page) Result {
	res := Paginate(Rank(query, index), p)
	res.Query = query
	res.Keywords = Tokenize(query)
	return res
}

func itemsOf(scored []Scored) []Item {
	items := make([]Item, len(scored))
	for i, s := range scored {
		items[i] = s.Item
	}
	return items
}
