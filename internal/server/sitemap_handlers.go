package server

import (
	"log"
	"net/http"

	"catalogsite/internal/search"
	"catalogsite/internal/sitemap"
)

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	codes := s.Locales.Codes()
	items := make(map[string][]search.Item, len(codes))
	for _, code := range codes {
		list, err := s.Index.Load(r.Context(), code)
		if err != nil {
			log.Printf("sitemap %s: %v", code, err)
			continue
		}
		items[code] = list
	}

	set := sitemap.Build(s.Config.SiteURL, codes, items, s.now())
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := set.WriteTo(w); err != nil {
		log.Printf("sitemap: write: %v", err)
	}
}
