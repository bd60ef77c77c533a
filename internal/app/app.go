// Package app wires configuration into the services shared by the binaries.
package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"catalogsite/internal/cms"
	"catalogsite/internal/config"
	"catalogsite/internal/index"
)

func NewCMSClient(cfg config.Config) *cms.Client {
	return cms.New(cms.Options{
		BaseURL:       cfg.CMS.BaseURL,
		Token:         cfg.CMS.Token,
		ImageBaseURL:  cfg.CMS.ImageBaseURL,
		Timeout:       cfg.CMS.Timeout,
		RatePerSecond: cfg.CMS.RatePerSecond,
		Burst:         cfg.CMS.Burst,
		CacheTTL:      cfg.IndexCacheTTL,
	})
}

// NewIndexService builds the tiered index loader. redisClient may be nil,
// in which case only Postgres snapshots back the CMS.
func NewIndexService(cfg config.Config, client *cms.Client, db *pgxpool.Pool, redisClient *redis.Client) (*index.Service, *index.Store) {
	store := index.NewStore(db)
	var cache *index.Cache
	if redisClient != nil {
		cache = index.NewCache(redisClient, cfg.IndexCacheTTL)
	}
	svc := index.NewService(index.NewBuilder(client), store, cache)
	svc.MaxAge = cfg.IndexMaxAge
	return svc, store
}

// RedisCheck adapts a redis ping to a health check.
func RedisCheck(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
