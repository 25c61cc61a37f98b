// Copyright 2025 Tokenlens
//
// API server entrypoint

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/tokenlens/tokenlens/pkg/config"
	"github.com/tokenlens/tokenlens/pkg/database"
	"github.com/tokenlens/tokenlens/pkg/ens"
	"github.com/tokenlens/tokenlens/pkg/inspector"
	"github.com/tokenlens/tokenlens/pkg/server"
	"github.com/tokenlens/tokenlens/pkg/uri"
)

func main() {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	if cfg.APIKey == "" {
		log.Warn("API_KEY not set; requests are unauthenticated")
	}

	insp, err := inspector.New(inspector.Config{
		Resolver: uri.NewResolver(uri.ResolverOptions{
			IPFSGateway:    cfg.IPFSGateway,
			ArweaveGateway: cfg.ArweaveGateway,
		}),
		Analyzer: uri.NewAnalyzer(uri.AnalyzerOptions{
			IPFSGateway:    cfg.IPFSGateway,
			ArweaveGateway: cfg.ArweaveGateway,
			Timeout:        cfg.FetchTimeout,
		}),
		NameResolver: ens.NewResolver(cfg.ENSEndpoint, nil),
		Logger:       log,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to build inspector")
	}

	var store *database.Store
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err = database.NewStore(ctx, cfg.RedisURL, log)
		cancel()
		if err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		defer store.Close()
	} else {
		log.Warn("REDIS_URL not set; caching and leaderboards disabled")
	}

	srv := server.New(insp, store, cfg.APIKey, cfg.DefaultChainID, log)
	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.InspectionTimeout + 30*time.Second,
	}

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("starting API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
