// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package app builds the object graph shared by the HTTP server and the
operator CLI.

Every client is constructed here from [config.Config] and injected into the
services that use it. Nothing in the pipeline packages reads the environment
or keeps package-level clients.
*/
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yomira-publish/internal/asset"
	"github.com/taibuivan/yomira-publish/internal/chain"
	"github.com/taibuivan/yomira-publish/internal/contentstore"
	"github.com/taibuivan/yomira-publish/internal/core/comic"
	"github.com/taibuivan/yomira-publish/internal/platform/config"
	"github.com/taibuivan/yomira-publish/internal/platform/constants"
	"github.com/taibuivan/yomira-publish/internal/platform/middleware"
	pgstore "github.com/taibuivan/yomira-publish/internal/platform/postgres"
	redisstore "github.com/taibuivan/yomira-publish/internal/platform/redis"
	"github.com/taibuivan/yomira-publish/internal/platform/sec"
	"github.com/taibuivan/yomira-publish/internal/publish"
	"github.com/taibuivan/yomira-publish/internal/search"
)

// # Logger

// NewLogger returns the JSON logger used by both binaries, tagged with the app name.
func NewLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// # Container

// App holds the wired services. Optional collaborators are nil when their
// configuration is absent.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Pool  *pgxpool.Pool
	Redis *redis.Client

	Repository   comic.Repository
	Store        contentstore.Store
	Gateways     contentstore.Gateways
	Pinner       *asset.Pinner
	Networks     *chain.NetworkSet
	Minter       *chain.Minter
	Indexer      *search.Indexer
	Orchestrator *publish.Orchestrator
	Verifier     middleware.TokenVerifier

	closers []func()
}

/*
New connects to the infrastructure named in cfg and wires every service.

Parameters:
  - ctx: Startup context; bounds connection attempts only.
  - cfg: Validated configuration.
  - logger: Root logger.

Returns:
  - *App: The container; call [App.Close] on shutdown.
  - error: Connection or configuration failures.
*/
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	// ## Document store
	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	app.Pool = pool
	app.closers = append(app.closers, pool.Close)
	app.Repository = comic.NewPostgresRepository(pool)

	// ## Publish lock
	var locker publish.Locker = publish.NewLocalLocker()
	if cfg.RedisURL != "" {
		client, err := redisstore.NewClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		app.Redis = client
		app.closers = append(app.closers, func() { _ = client.Close() })
		locker = publish.NewRedisLocker(client, constants.PublishLockTTL)
	} else {
		logger.Warn("publish_lock_in_process", slog.String("reason", "REDIS_URL not set"))
	}

	// ## Content store
	store, err := NewContentStore(cfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store
	app.Gateways = contentstore.NewGateways(cfg.GatewayMirrors)
	logger.Info("gateways_configured", slog.Any("mirrors", app.Gateways.Mirrors()))

	variants := asset.NewVariantGenerator(asset.NewImagingProcessor(), logger)
	app.Pinner = asset.NewPinner(store, app.Gateways, variants, app.Repository, logger,
		asset.WithConcurrency(cfg.PinConcurrency))

	// ## Chain
	if err := app.wireChain(logger); err != nil {
		app.Close()
		return nil, err
	}

	// ## Search
	backends, closeBackends := NewSearchBackends(cfg)
	app.closers = append(app.closers, closeBackends)
	app.Indexer = search.NewIndexer(app.Repository, app.Gateways, backends, logger)
	logger.Info("search_backends_configured", slog.Any("backends", app.Indexer.Backends()))

	// ## Auth
	verifier, err := newVerifier(cfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Verifier = verifier

	// ## Orchestrator
	deps := publish.Dependencies{
		Repository: app.Repository,
		Pinner:     app.Pinner,
		Bundler:    publish.NewBundler(app.Repository, store, cfg.SiteURL, logger),
		Indexer:    app.Indexer,
		Locker:     locker,
	}
	if app.Minter != nil {
		deps.Minter = app.Minter
	}
	app.Orchestrator = publish.NewOrchestrator(deps, logger)

	return app, nil
}

func (app *App) wireChain(logger *slog.Logger) error {
	if app.Config.ChainNetworksFile == "" {
		logger.Info("minting_disabled", slog.String("reason", "CHAIN_NETWORKS_FILE not set"))
		return nil
	}

	networks, err := chain.LoadNetworks(app.Config.ChainNetworksFile)
	if err != nil {
		return err
	}
	backend, err := chain.NewEthBackend(logger)
	if err != nil {
		return err
	}

	app.Networks = networks
	app.Minter = chain.NewMinter(networks, backend, logger)
	logger.Info("minting_enabled", slog.Any("networks", networks.Names()))
	return nil
}

// Close releases connections in reverse order of creation.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		app.closers[i]()
	}
	app.closers = nil
}

// # Builders

// NewContentStore returns the [contentstore.Store] selected by CONTENT_STORE.
func NewContentStore(cfg *config.Config, logger *slog.Logger) (contentstore.Store, error) {
	switch cfg.ContentStore {
	case config.ContentStorePinata:
		return contentstore.NewPinataClient(contentstore.PinataConfig{
			BaseURL:   cfg.PinataBaseURL,
			APIKey:    cfg.PinataAPIKey,
			SecretKey: cfg.PinataSecretKey,
		}, logger), nil
	case config.ContentStoreMemory:
		logger.Warn("content_store_in_memory", slog.String("reason", "pins are lost on restart"))
		return contentstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown content store %q", cfg.ContentStore)
	}
}

// NewSearchBackends returns one backend per configured search service and a
// function closing those that hold connections.
func NewSearchBackends(cfg *config.Config) ([]search.Backend, func()) {
	var (
		backends []search.Backend
		kafka    *search.KafkaBackend
	)

	if cfg.MeiliURL != "" {
		backends = append(backends, search.NewMeilisearchBackend(cfg.MeiliURL, cfg.MeiliAPIKey, cfg.MeiliIndex, nil))
	}
	if cfg.AlgoliaAppID != "" && cfg.AlgoliaAPIKey != "" {
		backends = append(backends, search.NewAlgoliaBackend(cfg.AlgoliaAppID, cfg.AlgoliaAPIKey, cfg.AlgoliaIndex))
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafka = search.NewKafkaBackend(cfg.KafkaBrokers, cfg.KafkaTopic)
		backends = append(backends, kafka)
	}

	return backends, func() {
		if kafka != nil {
			_ = kafka.Close()
		}
	}
}

// rejectingVerifier refuses every token; used when no public key is configured.
type rejectingVerifier struct{}

var errAuthDisabled = errors.New("token verification is not configured")

func (rejectingVerifier) VerifyToken(string) (*sec.AuthClaims, error) {
	return nil, errAuthDisabled
}

func newVerifier(cfg *config.Config, logger *slog.Logger) (middleware.TokenVerifier, error) {
	if cfg.JWTPubKeyPath == "" {
		logger.Warn("auth_disabled", slog.String("reason", "JWT_PUBLIC_KEY_PATH not set; protected routes reject all callers"))
		return rejectingVerifier{}, nil
	}
	verifier, err := sec.NewTokenVerifier(cfg.JWTPubKeyPath, constants.AuthIssuer)
	if err != nil {
		return nil, err
	}
	return verifier, nil
}
