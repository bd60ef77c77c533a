package server

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"catalogsite/internal/contact"
)

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if s.Contact == nil {
		writeError(w, http.StatusServiceUnavailable, "Contact form not configured")
		return
	}

	var form contact.Form
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !s.Locales.Contains(form.Locale) {
		form.Locale = s.Locales.LocaleFromRequest(r)
	}

	id, err := s.Contact.Submit(r.Context(), form, clientIP(r, s.trustedProxies))
	var (
		invalid *contact.ValidationError
		limited *contact.RateLimitedError
	)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, invalid.Error())
	case errors.As(err, &limited):
		w.Header().Set("Retry-After", strconv.Itoa(int(limited.RetryAfter.Round(time.Second)/time.Second)))
		writeError(w, http.StatusTooManyRequests, "Too many submissions, please try again later")
	default:
		log.Printf("contact: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to submit form")
	}
}
