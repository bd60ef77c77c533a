package i18n

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

const DefaultLocale = "zh"

// PreferenceCookie holds the visitor's explicitly chosen locale.
const PreferenceCookie = "NEXT_LOCALE"

var DefaultCodes = []string{"zh", "en", "ja", "asa", "ar", "my"}

var ErrNoLocales = errors.New("at least one locale is required")

type Locale struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Locales is an ordered, immutable set of supported locale codes with a
// designated default.
type Locales struct {
	codes []string
	set   map[string]struct{}
	def   string
}

// NewLocales builds the supported set. Codes are lowercased and deduplicated
// in order. When def is empty or not a member, the first code becomes the
// default.
func NewLocales(codes []string, def string) (Locales, error) {
	l := Locales{set: make(map[string]struct{}, len(codes))}
	for _, c := range codes {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := l.set[c]; ok {
			continue
		}
		l.set[c] = struct{}{}
		l.codes = append(l.codes, c)
	}
	if len(l.codes) == 0 {
		return Locales{}, ErrNoLocales
	}

	def = strings.ToLower(strings.TrimSpace(def))
	if _, ok := l.set[def]; !ok {
		def = l.codes[0]
	}
	l.def = def
	return l, nil
}

// MustLocales is NewLocales for static configuration.
func MustLocales(codes []string, def string) Locales {
	l, err := NewLocales(codes, def)
	if err != nil {
		panic(err)
	}
	return l
}

func (l Locales) Default() string {
	return l.def
}

func (l Locales) Codes() []string {
	out := make([]string, len(l.codes))
	copy(out, l.codes)
	return out
}

func (l Locales) Contains(code string) bool {
	if code == "" {
		return false
	}
	_, ok := l.set[code]
	return ok
}

// HasPrefix reports whether path targets a supported locale, i.e. it is
// "/{code}" or starts with "/{code}/".
func (l Locales) HasPrefix(path string) bool {
	_, ok := l.prefix(path)
	return ok
}

// FromPath returns the supported locale path is prefixed with.
func (l Locales) FromPath(path string) (string, bool) {
	return l.prefix(path)
}

func (l Locales) prefix(path string) (string, bool) {
	if !strings.HasPrefix(path, "/") {
		return "", false
	}
	seg := path[1:]
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	if l.Contains(seg) {
		return seg, true
	}
	return "", false
}

// Normalize picks the first Accept-Language entry whose base language is
// supported, falling back to the default.
func (l Locales) Normalize(header string) string {
	if strings.TrimSpace(header) == "" {
		return l.def
	}

	for _, part := range strings.Split(header, ",") {
		if lang := baseLanguage(part); l.Contains(lang) {
			return lang
		}
	}

	return l.def
}

// PrimarySubtag returns the lowercase primary language subtag of the first
// entry in an Accept-Language header, or "" when the entry cannot be parsed.
func PrimarySubtag(header string) string {
	first := header
	if idx := strings.IndexByte(first, ','); idx >= 0 {
		first = first[:idx]
	}
	return baseLanguage(first)
}

func baseLanguage(entry string) string {
	if idx := strings.IndexByte(entry, ';'); idx >= 0 {
		entry = entry[:idx]
	}
	entry = strings.TrimSpace(entry)
	if entry == "" || entry == "*" {
		return ""
	}

	tag, err := language.Parse(entry)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf != language.Exact {
		return ""
	}
	return base.String()
}

// LocaleFromRequest returns the locale a request targets by path prefix,
// falling back to the negotiated preference.
func (l Locales) LocaleFromRequest(r *http.Request) string {
	if r == nil {
		return l.def
	}
	if code, ok := l.prefix(r.URL.Path); ok {
		return code
	}
	return l.Normalize(r.Header.Get("Accept-Language"))
}
