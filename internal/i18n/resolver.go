package i18n

import (
	"net/http"
	"strings"
)

type DecisionKind int

const (
	PassThrough DecisionKind = iota
	NeedsRedirect
)

func (k DecisionKind) String() string {
	if k == NeedsRedirect {
		return "redirect"
	}
	return "pass"
}

type Decision struct {
	Kind   DecisionKind
	Locale string
	Target string
}

// DefaultExemptPrefixes are roots that never carry a locale: framework
// assets, APIs, translation bundles and operational endpoints.
var DefaultExemptPrefixes = []string{"/_next", "/api", "/locales", "/static", "/metrics", "/healthz"}

// Resolver decides whether a request path needs a locale prefix. It keeps no
// state between requests.
type Resolver struct {
	Locales        Locales
	ExemptPrefixes []string
	// OnRedirect is called with the chosen locale before a redirect is written.
	OnRedirect func(locale string)
}

func NewResolver(locales Locales) *Resolver {
	return &Resolver{
		Locales:        locales,
		ExemptPrefixes: DefaultExemptPrefixes,
	}
}

// IsExempt reports whether path bypasses resolution entirely.
func (r *Resolver) IsExempt(path string) bool {
	if strings.Contains(path, ".") {
		return true
	}
	for _, p := range r.ExemptPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Preferred picks the locale for an unprefixed request: a supported cookie
// value, then the first Accept-Language entry, then the default.
func (r *Resolver) Preferred(req *http.Request) string {
	if c, err := req.Cookie(PreferenceCookie); err == nil {
		if code := strings.ToLower(strings.TrimSpace(c.Value)); r.Locales.Contains(code) {
			return code
		}
	}
	if code := PrimarySubtag(req.Header.Get("Accept-Language")); r.Locales.Contains(code) {
		return code
	}
	return r.Locales.Default()
}

func (r *Resolver) Resolve(req *http.Request) Decision {
	path := req.URL.Path
	if path == "" {
		path = "/"
	}
	if r.IsExempt(path) || r.Locales.HasPrefix(path) {
		return Decision{Kind: PassThrough}
	}

	locale := r.Preferred(req)
	return Decision{
		Kind:   NeedsRedirect,
		Locale: locale,
		Target: RedirectTarget(locale, path, req.URL.RawQuery),
	}
}

// RedirectTarget builds "/{locale}{path}" with the root path collapsed and
// the raw query appended unchanged.
func RedirectTarget(locale, path, rawQuery string) string {
	if path == "/" {
		path = ""
	}
	target := "/" + locale + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}

// Middleware redirects unprefixed content paths and passes everything else
// through. It never fails a request.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		d := r.Resolve(req)
		if d.Kind != NeedsRedirect {
			next.ServeHTTP(w, req)
			return
		}

		if r.OnRedirect != nil {
			r.OnRedirect(d.Locale)
		}
		w.Header().Set("Location", d.Target)
		w.WriteHeader(http.StatusTemporaryRedirect)
	})
}
