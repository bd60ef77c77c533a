package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	SiteURL           string
	DatabaseURL       string
	RedisURL          string
	LogFile           string
	LogMaxSizeBytes   int64
	LogMaxBackups     int
	SupportedLocales  []string
	DefaultLocale     string
	SearchAPIKey      string
	RebuildAPIKey     string
	RebuildAPIKeyHash string
	IndexCacheTTL     time.Duration
	IndexMaxAge       time.Duration
	ContactNotifyTo   string
	TrustedProxies    []string
	CMS               CMSConfig
	Email             EmailConfig
}

type CMSConfig struct {
	BaseURL       string
	Token         string
	ImageBaseURL  string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Secure   bool
}

func (e EmailConfig) Enabled() bool {
	return e.Host != "" && e.Port != 0 && e.From != ""
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment values win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	clean := func(val string) string {
		return strings.Trim(val, "\"' \t\r\n")
	}

	cfg := Config{
		Port:              getenvDefault("PORT", "8080"),
		SiteURL:           strings.TrimRight(firstNonEmpty(os.Getenv("SITE_URL"), os.Getenv("NEXT_PUBLIC_SITE_URL"), "http://localhost:8080"), "/"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          getenvDefault("REDIS_URL", "redis://localhost:6379"),
		LogFile:           getenvDefault("LOG_FILE", "logs/server.log"),
		LogMaxSizeBytes:   int64(parseInt(os.Getenv("LOG_MAX_SIZE_MB"), 50)) * 1024 * 1024,
		LogMaxBackups:     parseInt(os.Getenv("LOG_MAX_BACKUPS"), 5),
		SupportedLocales:  parseList(getenvDefault("SUPPORTED_LOCALES", "zh,en,ja,asa,ar,my")),
		DefaultLocale:     getenvDefault("DEFAULT_LOCALE", "zh"),
		SearchAPIKey:      clean(os.Getenv("SEARCH_API_KEY")),
		RebuildAPIKey:     clean(os.Getenv("REBUILD_API_KEY")),
		RebuildAPIKeyHash: clean(os.Getenv("REBUILD_API_KEY_HASH")),
		IndexCacheTTL:     parseDuration(os.Getenv("INDEX_CACHE_TTL"), time.Hour),
		IndexMaxAge:       parseDuration(os.Getenv("INDEX_MAX_AGE"), 24*time.Hour),
		ContactNotifyTo:   clean(os.Getenv("CONTACT_NOTIFY_TO")),
		TrustedProxies:    parseList(os.Getenv("TRUSTED_PROXIES")),
	}

	cfg.CMS = CMSConfig{
		BaseURL:       strings.TrimRight(firstNonEmpty(os.Getenv("CMS_API_URL"), os.Getenv("NEXT_PUBLIC_STRAPI_API_URL")), "/"),
		Token:         clean(firstNonEmpty(os.Getenv("CMS_API_TOKEN"), os.Getenv("NEXT_PUBLIC_STRAPI_API_TOKEN"))),
		ImageBaseURL:  strings.TrimRight(firstNonEmpty(os.Getenv("CMS_IMAGE_BASE_URL"), os.Getenv("NEXT_PUBLIC_STRAPI_API_PROXY")), "/"),
		Timeout:       parseDuration(os.Getenv("CMS_TIMEOUT"), 15*time.Second),
		RatePerSecond: parseFloat(os.Getenv("CMS_RATE_PER_SECOND"), 10),
		Burst:         parseInt(os.Getenv("CMS_BURST"), 5),
	}

	rawPort := strings.Trim(getenvDefault("EMAIL_SERVER_PORT", "587"), "\"' ")
	emailPort, err := strconv.Atoi(rawPort)
	if err != nil {
		emailPort = 587
	}
	cfg.Email = EmailConfig{
		Host:     clean(os.Getenv("EMAIL_SERVER_HOST")),
		Port:     emailPort,
		Username: clean(os.Getenv("EMAIL_SERVER_USER")),
		Password: clean(os.Getenv("EMAIL_SERVER_PASSWORD")),
		From:     clean(os.Getenv("EMAIL_FROM")),
		Secure:   parseBool(os.Getenv("EMAIL_SERVER_SECURE")),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.CMS.BaseURL == "" {
		return fmt.Errorf("CMS_API_URL is required")
	}
	if _, err := url.Parse(c.CMS.BaseURL); err != nil {
		return fmt.Errorf("CMS_API_URL: %w", err)
	}
	if len(c.SupportedLocales) == 0 {
		return fmt.Errorf("SUPPORTED_LOCALES must list at least one locale")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseBool(val string) bool {
	if val == "" {
		return false
	}
	val = strings.ToLower(strings.Trim(val, "\"' "))
	return val == "1" || val == "true" || val == "yes"
}

func parseInt(val string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n < 0 {
		return def
	}
	return n
}

func parseFloat(val string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

func parseDuration(val string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func parseList(val string) []string {
	parts := strings.Split(val, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
