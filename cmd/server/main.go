package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"catalogsite/internal/app"
	"catalogsite/internal/config"
	"catalogsite/internal/contact"
	"catalogsite/internal/database"
	"catalogsite/internal/email"
	"catalogsite/internal/logging"
	redisx "catalogsite/internal/redis"
	"catalogsite/internal/search"
	"catalogsite/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logCloser, err := logging.Setup(cfg.LogFile, cfg.LogMaxSizeBytes, cfg.LogMaxBackups)
	if err != nil {
		log.Fatalf("log setup error: %v", err)
	}
	defer logCloser.Close()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	defer db.Close()

	redisClient, err := redisx.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis error: %v", err)
	}
	defer redisClient.Close()

	cmsClient := app.NewCMSClient(cfg)
	indexSvc, store := app.NewIndexService(cfg, cmsClient, db, redisClient)

	var mailer contact.Mailer
	if cfg.Email.Enabled() {
		mailer = email.NewSender(cfg.Email)
	}
	contactSvc := contact.NewService(
		cmsClient,
		contact.NewRepository(db),
		&contact.RateLimiter{Redis: redisClient},
		mailer,
		cfg.ContactNotifyTo,
		cfg.DefaultLocale,
	)

	api, err := server.NewServer(cfg, server.Deps{
		Search:    search.NewService(indexSvc),
		Index:     indexSvc,
		Snapshots: store,
		Contact:   contactSvc,
		Content:   cmsClient,
		Checks: map[string]server.HealthCheck{
			"postgres": db.Ping,
			"redis":    app.RedisCheck(redisClient),
		},
	})
	if err != nil {
		log.Fatalf("server init error: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(api.Router(), "catalogsite"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("Listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
