package server

import (
	"errors"
	"log"
	"net/http"
	"slices"
	"time"

	"catalogsite/internal/index"
	"catalogsite/internal/metrics"
	"catalogsite/internal/search"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// indexTags are the revalidation tags that cover indexed content.
var indexTags = []string{"prod", "news", "case"}

type searchHit struct {
	ID      string          `json:"id"`
	Type    search.ItemType `json:"type"`
	URL     string          `json:"url"`
	Title   string          `json:"title"`
	Snippet string          `json:"snippet"`
	Image   string          `json:"image,omitempty"`
	Date    string          `json:"date,omitempty"`
	Price   *float64        `json:"price,omitempty"`
}

type searchResponse struct {
	Query        string      `json:"query"`
	Locale       string      `json:"locale"`
	Results      []searchHit `json:"results"`
	TotalResults int         `json:"totalResults"`
	TotalPages   int         `json:"totalPages"`
	CurrentPage  int         `json:"currentPage"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	locale := s.requestLocale(r)
	page := search.Page{
		Page:     queryInt(r, "page", 1),
		PageSize: min(queryInt(r, "pageSize", defaultPageSize), maxPageSize),
	}

	start := time.Now()
	res, err := s.Search.Search(r.Context(), locale, r.URL.Query().Get("q"), page)
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, search.ErrUnavailable) {
			log.Printf("search: %v", err)
			metrics.Searches.WithLabelValues("unavailable").Inc()
			writeError(w, http.StatusServiceUnavailable, "search unavailable")
			return
		}
		log.Printf("search: %v", err)
		metrics.Searches.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	if res.TotalResults == 0 {
		metrics.Searches.WithLabelValues("empty").Inc()
	} else {
		metrics.Searches.WithLabelValues("ok").Inc()
	}

	h := search.NewHighlighter(res.Keywords)
	hits := make([]searchHit, 0, len(res.Items))
	for _, it := range res.Items {
		hits = append(hits, searchHit{
			ID:      it.ID,
			Type:    it.Type,
			URL:     it.URL,
			Title:   h.Highlight(it.Title),
			Snippet: h.Highlight(search.Snippet(it.Content, search.SnippetLength)),
			Image:   it.Image,
			Date:    it.Date,
			Price:   it.Price,
		})
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:        res.Query,
		Locale:       locale,
		Results:      hits,
		TotalResults: res.TotalResults,
		TotalPages:   res.TotalPages,
		CurrentPage:  res.CurrentPage,
	})
}

func (s *Server) handleSearchIndex(w http.ResponseWriter, r *http.Request) {
	locale := s.requestLocale(r)

	items, err := s.Index.Load(r.Context(), locale)
	if err != nil {
		log.Printf("search index %s: %v", locale, err)
		writeError(w, http.StatusInternalServerError, "Failed to generate search index")
		return
	}
	if items == nil {
		items = []search.Item{}
	}

	w.Header().Set("Cache-Control", "public, s-maxage=60, stale-while-revalidate=300")
	writeJSON(w, http.StatusOK, items)
}

type rebuildRequest struct {
	Locales []string `json:"locales"`
	Tags    []string `json:"tags"`
}

type rebuildResponse struct {
	Revalidated bool                 `json:"revalidated"`
	Tags        []string             `json:"tags"`
	Locales     []string             `json:"locales"`
	Rebuilt     []index.SnapshotInfo `json:"rebuilt"`
	Failed      []string             `json:"failed,omitempty"`
	Timestamp   string               `json:"timestamp"`
}

func (s *Server) handleRebuildIndex(w http.ResponseWriter, r *http.Request) {
	var req rebuildRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tags := req.Tags
	if len(tags) == 0 {
		tags = indexTags
	}
	locales := req.Locales
	if len(locales) == 0 {
		locales = s.Locales.Codes()
	}
	for _, l := range locales {
		if !s.Locales.Contains(l) {
			writeError(w, http.StatusBadRequest, "Unsupported locale: "+l)
			return
		}
	}

	resp := rebuildResponse{
		Revalidated: true,
		Tags:        tags,
		Locales:     locales,
		Rebuilt:     []index.SnapshotInfo{},
	}

	if slices.ContainsFunc(tags, func(t string) bool { return slices.Contains(indexTags, t) }) {
		built, err := s.Index.Rebuild(r.Context(), locales)
		if err != nil {
			log.Printf("rebuild index: %v", err)
			if len(built) == 0 {
				writeError(w, http.StatusInternalServerError, "Failed to rebuild index")
				return
			}
		}
		resp.Rebuilt = append(resp.Rebuilt, built...)
		for _, l := range locales {
			if !slices.ContainsFunc(built, func(b index.SnapshotInfo) bool { return b.Locale == l }) {
				resp.Failed = append(resp.Failed, l)
			}
		}
	}

	resp.Timestamp = s.now().UTC().Format(time.RFC3339Nano)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIndexStatus(w http.ResponseWriter, r *http.Request) {
	if s.Snapshots == nil {
		writeError(w, http.StatusNotImplemented, "Snapshots not configured")
		return
	}
	list, err := s.Snapshots.List(r.Context())
	if err != nil {
		log.Printf("index status: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list index snapshots")
		return
	}
	if list == nil {
		list = []index.SnapshotInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": list})
}
