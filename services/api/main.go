package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/config"
	httpserver "github.com/02loveslollipop/solar-potential-dashboard/services/api/http"
	"github.com/02loveslollipop/solar-potential-dashboard/services/api/loader"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	l := loader.New(
		loader.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		loader.WithS3Config(cfg.S3),
	)
	cache := loader.NewCache(l, cfg.Sources)

	if cfg.Preload {
		table, err := cache.Table(ctx)
		if err != nil {
			log.Fatalf("preload error: %v", err)
		}
		log.Printf("preloaded %d rows from %d sources", table.Len(), len(cfg.Sources))
	}

	srv := httpserver.New(cfg, cache)
	log.Printf("REST API listening on %s", cfg.ListenAddr())

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
