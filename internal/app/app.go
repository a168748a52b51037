package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/fatim-sangare/frontend-test-nan/internal/api"
	"github.com/fatim-sangare/frontend-test-nan/internal/auth"
	"github.com/fatim-sangare/frontend-test-nan/internal/cache"
	"github.com/fatim-sangare/frontend-test-nan/internal/config"
	"github.com/fatim-sangare/frontend-test-nan/internal/session"
	"github.com/fatim-sangare/frontend-test-nan/internal/stubapi"
)

const purgeInterval = 10 * time.Minute

// App is the web client: its stores, the API client and the router.
type App struct {
	cfg    config.Config
	logger *slog.Logger
	db     *pgxpool.Pool
	redis  *redis.Client
	router *gin.Engine
	stop   context.CancelFunc
}

// New connects the configured backends and builds the router.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.ValidateWeb(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, logger: logger}

	// Redis also holds views and notices, so it is used whenever configured.
	if cfg.Redis.Addr != "" {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			if cfg.Session.Backend == config.BackendRedis {
				return nil, err
			}
			logger.Warn("redis unavailable, keeping views in memory", "err", err)
		} else {
			a.redis = rdb
		}
	}

	var sessions session.Store
	switch cfg.Session.Backend {
	case config.BackendRedis:
		sessions = session.NewRedisStore(a.redis, cfg.Session.TTL.Duration())
	case config.BackendPostgres:
		if err := session.Migrate(cfg.PG.DSN); err != nil {
			a.closeStores()
			return nil, err
		}
		db, err := newPostgres(cfg.PG.DSN)
		if err != nil {
			a.closeStores()
			return nil, err
		}
		a.db = db
		pg := session.NewPGStore(db, cfg.Session.TTL.Duration())
		a.purge(pg)
		sessions = pg
	default:
		sessions = session.NewMemoryStore(cfg.Session.TTL.Duration())
	}

	var (
		views   cache.ViewCache
		notices cache.Notices
	)
	if a.redis != nil {
		views = cache.NewRedisViewCache(a.redis, cfg.View.CacheTTL.Duration())
		notices = cache.NewRedisNotices(a.redis, cfg.Session.TTL.Duration())
	} else {
		views = cache.NewMemoryViewCache(cfg.View.CacheTTL.Duration())
		notices = cache.NewMemoryNotices(cfg.Session.TTL.Duration())
	}

	coord := auth.NewCoordinator(views, logger)
	client := api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout.Duration()),
		api.WithObserver(coord),
		api.WithTokenSource(coord),
		api.WithLogger(logger),
	)

	a.router = newRouter(Deps{
		Config:   cfg,
		Logger:   logger,
		Location: loc,
		Sessions: sessions,
		Views:    views,
		Notices:  notices,
		API:      client,
	})
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Close stops background work and closes the stores.
func (a *App) Close(ctx context.Context) error {
	_ = ctx
	if a.stop != nil {
		a.stop()
	}
	a.closeStores()
	return nil
}

func (a *App) closeStores() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// purge deletes expired Postgres sessions periodically until Close.
func (a *App) purge(pg *session.PGStore) {
	ctx, cancel := context.WithCancel(context.Background())
	a.stop = cancel
	go func() {
		t := time.NewTicker(purgeInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				n, err := pg.PurgeExpired(ctx)
				if err != nil {
					a.logger.Warn("purge sessions", "err", err)
					continue
				}
				if n > 0 {
					a.logger.Info("purged sessions", "count", n)
				}
			}
		}
	}()
}

// NewStub builds the in-memory development API with the given
// "email:password" accounts already registered.
func NewStub(cfg config.Config, accounts []string) (*gin.Engine, error) {
	store, err := stubapi.NewStore()
	if err != nil {
		return nil, err
	}
	if err := store.Seed(accounts); err != nil {
		return nil, err
	}
	tokens := stubapi.NewTokens(cfg.Stub.JWTSecret, cfg.Stub.TokenTTL.Duration())
	return stubapi.NewRouter(stubapi.NewHandler(store, tokens)), nil
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}
