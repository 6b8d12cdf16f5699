package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrank/internal/config"
	"github.com/kailas-cloud/newsrank/internal/db/neo4jdb"
	"github.com/kailas-cloud/newsrank/internal/db/postgres"
	dbValkey "github.com/kailas-cloud/newsrank/internal/db/valkey"
	logpkg "github.com/kailas-cloud/newsrank/internal/logger"
	"github.com/kailas-cloud/newsrank/internal/metrics"
	graphrepo "github.com/kailas-cloud/newsrank/internal/repository/graph"
	profilerepo "github.com/kailas-cloud/newsrank/internal/repository/profile"
	"github.com/kailas-cloud/newsrank/internal/repository/profilecache"
	vectorrepo "github.com/kailas-cloud/newsrank/internal/repository/vector"
	"github.com/kailas-cloud/newsrank/internal/tracing"
	chiTransport "github.com/kailas-cloud/newsrank/internal/transport/chi"
	healthuc "github.com/kailas-cloud/newsrank/internal/usecase/health"
	lookupuc "github.com/kailas-cloud/newsrank/internal/usecase/lookup"
	rankinguc "github.com/kailas-cloud/newsrank/internal/usecase/ranking"
	"github.com/kailas-cloud/newsrank/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting newsrank API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("valkey_addrs", cfg.Database.Addrs),
		zap.String("graph_uri", cfg.Graph.URI),
	)

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Environment: env,
		Version:     version.Version,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		Headers:     cfg.Tracing.Headers,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to init tracing", zap.Error(err))
	}

	store, err := dbValkey.NewStore(dbValkey.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create valkey store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Valkey not ready", zap.Error(err))
	}
	logger.Info("Connected to valkey")

	graphDB, err := neo4jdb.New(ctx, neo4jdb.Config{
		URI:         cfg.Graph.URI,
		User:        cfg.Graph.User,
		Password:    cfg.Graph.Password,
		Database:    cfg.Graph.Database,
		MaxPoolSize: cfg.Graph.MaxPoolSize,
		Timeout:     time.Duration(cfg.Graph.TimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to connect to graph store", zap.Error(err))
	}
	defer func() { _ = graphDB.Close(context.Background()) }()
	logger.Info("Connected to graph store")

	pool, err := postgres.NewPool(ctx, postgres.Config{
		DSN:         cfg.Postgres.DSN,
		MaxConns:    cfg.Postgres.MaxConns,
		ConnTimeout: time.Duration(cfg.Postgres.ConnTimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to connect to profile database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("Connected to profile database")

	metrics.RegisterRankingMetrics()

	graph := graphrepo.New(graphDB)
	vectors := vectorrepo.New(store, cfg.Database.VectorIndex, cfg.Database.KeyPrefix)
	profiles := profilecache.New(
		profilerepo.New(pool), store, cfg.Ranking.ProfileCacheTTL(), metrics.ProfileCacheTotal, logger,
	)

	rankingSvc, err := rankinguc.New(profiles, graph, graph, vectors, cfg.Ranking.Service())
	if err != nil {
		logger.Fatal("Invalid ranking configuration", zap.Error(err))
	}
	lookupSvc := lookupuc.New(graph, profiles)
	healthSvc := healthuc.New(
		healthuc.Component{Name: "valkey", Pinger: store},
		healthuc.Component{Name: "neo4j", Pinger: graphDB},
		healthuc.Component{Name: "postgres", Pinger: pool},
	)

	server := chiTransport.NewServer(rankingSvc, lookupSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(tracing.Middleware("newsrank"))
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(chiTransport.NewStaticGroupResolver(cfg.Auth.APIKeys)))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("Tracer flush failed", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
