package server

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"catalogsite/internal/i18n"
)

func (s *Server) handleLocales(w http.ResponseWriter, r *http.Request) {
	var out []i18n.Locale
	if s.Content != nil {
		for _, l := range s.Content.Locales(r.Context()) {
			if s.Locales.Contains(l.Code) {
				out = append(out, l)
			}
		}
	}
	if len(out) == 0 {
		for _, code := range s.Locales.Codes() {
			out = append(out, i18n.Locale{Code: code, Name: code})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleLocaleSwitch moves the visitor from the page at ?from= to the same
// page under ?to=. Without confirm=1 it only reports the pending switch.
func (s *Server) handleLocaleSwitch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	to := strings.ToLower(strings.TrimSpace(q.Get("to")))
	if !s.Locales.Contains(to) {
		writeError(w, http.StatusBadRequest, "Unsupported locale")
		return
	}
	from := safeLocalPath(q.Get("from"))

	current, ok := s.Locales.FromPath(from)
	if !ok {
		current = s.Resolver.Preferred(r)
	}

	sw := i18n.NewSwitcher(s.Locales, current)
	if _, err := sw.Request(to); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	if q.Get("confirm") != "1" {
		writeJSON(w, http.StatusOK, map[string]string{
			"state":   sw.State().String(),
			"current": sw.Current(),
			"pending": sw.Pending(),
			"target":  s.Locales.SwitchPath(from, to),
		})
		return
	}

	target := s.Locales.SwitchPath(from, to)
	if sw.State() == i18n.ConfirmPending {
		var err error
		if target, err = sw.Confirm(from); err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		_ = sw.Done()
	}

	i18n.SetPreferenceCookie(w, to)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// safeLocalPath keeps redirects on this site.
func safeLocalPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, `\`) {
		return "/"
	}
	return p
}

func (s *Server) handleTranslations(w http.ResponseWriter, r *http.Request) {
	code, ok := strings.CutSuffix(chi.URLParam(r, "file"), ".json")
	if !ok || !s.Locales.Contains(code) || s.Content == nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	table, err := s.Content.Translations(r.Context(), code)
	if err != nil {
		log.Printf("translations %s: %v", code, err)
		writeError(w, http.StatusBadGateway, "Translations unavailable")
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, table)
}
