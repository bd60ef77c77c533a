// Package cms talks to the headless CMS that owns the site's content.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"catalogsite/internal/i18n"
)

var ErrNotConfigured = errors.New("cms api token not configured")

// FallbackLocales is served when the CMS locale list cannot be fetched.
var FallbackLocales = []i18n.Locale{
	{Code: "zh", Name: "中文"},
	{Code: "en", Name: "English"},
}

// StatusError is returned for non-2xx CMS responses.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cms %s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

type Options struct {
	BaseURL       string
	Token         string
	ImageBaseURL  string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	CacheTTL      time.Duration
	Transport     http.RoundTripper
}

type Client struct {
	baseURL      string
	token        string
	imageBaseURL string
	http         *http.Client
	limiter      *rate.Limiter

	locales      *expirable.LRU[string, []i18n.Locale]
	translations *expirable.LRU[string, map[string]string]
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 10
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		baseURL:      trimSlash(opts.BaseURL),
		token:        opts.Token,
		imageBaseURL: trimSlash(opts.ImageBaseURL),
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(base),
		},
		limiter:      rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		locales:      expirable.NewLRU[string, []i18n.Locale](1, nil, opts.CacheTTL),
		translations: expirable.NewLRU[string, map[string]string](32, nil, opts.CacheTTL),
	}
}

func (c *Client) Products(ctx context.Context, locale string) ([]Product, error) {
	var body productList
	q := url.Values{"populate": {"*"}, "sort": {"createdAt:desc"}, "locale": {locale}}
	if err := c.get(ctx, "/products", q, true, &body); err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}

	out := make([]Product, 0, len(body.Data))
	for _, e := range body.Data {
		id := e.DocumentID
		if id == "" {
			id = string(e.ID)
		}
		out = append(out, Product{
			ID:          id,
			Name:        e.Name,
			Description: e.Description,
			Price:       e.Price,
			Image:       c.imageURL(e.Image.url()),
			Category:    e.Category,
			UpdatedAt:   e.UpdatedAt,
		})
	}
	return out, nil
}

func (c *Client) News(ctx context.Context, locale string) ([]Article, error) {
	out, err := c.articles(ctx, "/news", locale)
	if err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	return out, nil
}

func (c *Client) Cases(ctx context.Context, locale string) ([]Article, error) {
	out, err := c.articles(ctx, "/cases", locale)
	if err != nil {
		return nil, fmt.Errorf("fetch cases: %w", err)
	}
	return out, nil
}

func (c *Client) articles(ctx context.Context, path, locale string) ([]Article, error) {
	var body articleList
	q := url.Values{"populate": {"*"}, "locale": {locale}}
	if err := c.get(ctx, path, q, true, &body); err != nil {
		return nil, err
	}

	out := make([]Article, 0, len(body.Data))
	for _, e := range body.Data {
		f := e.fields()
		out = append(out, Article{
			ID:      string(e.ID),
			Title:   f.Title,
			Summary: f.Summary,
			Content: f.Content,
			Date:    f.PublishDate,
			Image:   c.imageURL(f.Image.url()),
		})
	}
	return out, nil
}

// Locales lists the locales the CMS publishes. Successful results are
// cached; on failure the fallback list is returned and nothing is cached.
func (c *Client) Locales(ctx context.Context) []i18n.Locale {
	if cached, ok := c.locales.Get("all"); ok {
		return cached
	}

	var body []i18n.Locale
	if err := c.get(ctx, "/i18n/locales", nil, false, &body); err != nil || len(body) == 0 {
		if err != nil {
			log.Printf("cms: fetch locales: %v", err)
		}
		return append([]i18n.Locale(nil), FallbackLocales...)
	}
	c.locales.Add("all", body)
	return body
}

// Translations returns the UI string table for a locale. Results are cached.
func (c *Client) Translations(ctx context.Context, locale string) (map[string]string, error) {
	if cached, ok := c.translations.Get(locale); ok {
		return cached, nil
	}

	var body translationList
	if err := c.get(ctx, "/i18n/translations", url.Values{"locale": {locale}}, true, &body); err != nil {
		return nil, fmt.Errorf("fetch translations: %w", err)
	}

	out := make(map[string]string, len(body.Data))
	for _, e := range body.Data {
		if e.Attributes != nil {
			out[e.Attributes.Key] = e.Attributes.Value
			continue
		}
		out[e.Key] = e.Value
	}
	c.translations.Add(locale, out)
	return out, nil
}

// SubmitContact forwards a contact form. It requires an API token.
func (c *Client) SubmitContact(ctx context.Context, form ContactForm) error {
	if c.token == "" {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(map[string]any{"data": form})
	if err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodPost, "/contact-forms", nil, true, bytes.NewReader(payload), nil); err != nil {
		return fmt.Errorf("submit contact form: %w", err)
	}
	return nil
}

func (c *Client) imageURL(path string) string {
	switch {
	case path == "":
		return PlaceholderImage
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	default:
		return c.imageBaseURL + path
	}
}

func (c *Client) get(ctx context.Context, path string, q url.Values, auth bool, dst any) error {
	return c.do(ctx, http.MethodGet, path, q, auth, nil, dst)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, auth bool, body io.Reader, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: method, URL: u, StatusCode: resp.StatusCode}
	}

	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
