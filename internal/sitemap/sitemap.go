// Package sitemap renders the sitemaps.org XML document for every locale.
package sitemap

import (
	"encoding/xml"
	"io"
	"strings"
	"time"

	"catalogsite/internal/search"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

type URL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority"`
}

type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

type staticPage struct {
	path       string
	changeFreq string
	priority   float64
}

var staticPages = []staticPage{
	{"", "daily", 1.0},
	{"/about", "weekly", 0.8},
	{"/contact", "monthly", 0.8},
	{"/search", "weekly", 0.7},
	{"/sitemap", "monthly", 0.5},
}

// sections lists the index pages in output order, with the change frequency
// of their detail pages.
var sections = []struct {
	typ        search.ItemType
	path       string
	listFreq   string
	detailFreq string
}{
	{search.TypeProduct, "/products", "daily", "weekly"},
	{search.TypeNews, "/news", "daily", "weekly"},
	{search.TypeCase, "/cases", "monthly", "monthly"},
}

// Build lists, per locale in order, the static pages followed by each
// section's list page and its detail pages. Items come from the locale's
// search index; their URL is already locale-prefixed.
func Build(baseURL string, locales []string, itemsByLocale map[string][]search.Item, now time.Time) URLSet {
	baseURL = strings.TrimRight(baseURL, "/")
	today := now.UTC().Format(time.DateOnly)

	set := URLSet{Xmlns: xmlns}
	for _, locale := range locales {
		for _, p := range staticPages {
			set.URLs = append(set.URLs, URL{
				Loc:        baseURL + "/" + locale + p.path,
				LastMod:    today,
				ChangeFreq: p.changeFreq,
				Priority:   p.priority,
			})
		}

		items := itemsByLocale[locale]
		for _, sec := range sections {
			set.URLs = append(set.URLs, URL{
				Loc:        baseURL + "/" + locale + sec.path,
				LastMod:    today,
				ChangeFreq: sec.listFreq,
				Priority:   0.8,
			})
			for _, it := range items {
				if it.Type != sec.typ || it.URL == "" {
					continue
				}
				set.URLs = append(set.URLs, URL{
					Loc:        baseURL + it.URL,
					LastMod:    lastMod(it.Date, today),
					ChangeFreq: sec.detailFreq,
					Priority:   0.7,
				})
			}
		}
	}
	return set
}

// lastMod keeps the date part of an item date, or falls back when it does
// not parse.
func lastMod(date, fallback string) string {
	if len(date) >= len(time.DateOnly) {
		if _, err := time.Parse(time.DateOnly, date[:len(time.DateOnly)]); err == nil {
			return date[:len(time.DateOnly)]
		}
	}
	return fallback
}

func (s URLSet) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if _, err := io.WriteString(cw, xml.Header); err != nil {
		return cw.n, err
	}
	enc := xml.NewEncoder(cw)
	enc.Indent("", "  ")
	if err := enc.Encode(s); err != nil {
		return cw.n, err
	}
	if err := enc.Close(); err != nil {
		return cw.n, err
	}
	_, err := io.WriteString(cw, "\n")
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
