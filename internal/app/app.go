package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/football-insights/external/sportsdata"
	"github.com/riskibarqy/football-insights/internal/config"
	"github.com/riskibarqy/football-insights/internal/domain/match"
	"github.com/riskibarqy/football-insights/internal/domain/matchstats"
	"github.com/riskibarqy/football-insights/internal/domain/prediction"
	"github.com/riskibarqy/football-insights/internal/domain/settlement"
	"github.com/riskibarqy/football-insights/internal/domain/syncprogress"
	"github.com/riskibarqy/football-insights/internal/domain/token"
	"github.com/riskibarqy/football-insights/internal/infrastructure/lock"
	"github.com/riskibarqy/football-insights/internal/infrastructure/progress"
	cacherepo "github.com/riskibarqy/football-insights/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/football-insights/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/football-insights/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/football-insights/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/football-insights/internal/platform/cache"
	idgen "github.com/riskibarqy/football-insights/internal/platform/id"
	"github.com/riskibarqy/football-insights/internal/platform/logging"
	"github.com/riskibarqy/football-insights/internal/platform/resilience"
	"github.com/riskibarqy/football-insights/internal/usecase"
)

// Container owns the storage handles and repositories shared by the binaries.
type Container struct {
	cfg    config.Config
	logger *logging.Logger

	db    *sqlx.DB
	redis *redis.Client
	cache *basecache.Store

	Matches     match.Repository
	Stats       matchstats.Repository
	Posts       prediction.PostRepository
	Groups      prediction.GroupRepository
	Settlements settlement.Repository
	Tokens      token.Repository
	Progress    syncprogress.Store
	Lock        usecase.SyncLock
}

// NewContainer opens the configured store and builds every repository.
func NewContainer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Container{cfg: cfg, logger: logger.Named("app")}

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		c.buildMemoryRepositories()
	default:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c.db = db
		c.buildPostgresRepositories(db)
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		c.cache = store
		c.Matches = cacherepo.NewMatchRepository(c.Matches, store)
		c.Stats = cacherepo.NewMatchStatsRepository(c.Stats, store)
		c.Settlements = cacherepo.NewPredictionStatsRepository(c.Settlements, store)
	}

	if err := c.buildProgressStore(); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.buildSyncLock(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.logger.InfoContext(ctx, "container ready",
		"store_driver", cfg.StoreDriver,
		"cache_enabled", cfg.CacheEnabled,
		"progress_backend", cfg.ProgressBackend,
		"redis_lock", c.redis != nil,
	)
	return c, nil
}

func (c *Container) buildMemoryRepositories() {
	c.Matches = memory.NewMatchRepository(idgen.NewUUIDGenerator(), nil)
	c.Stats = memory.NewMatchStatsRepository(idgen.NewUUIDGenerator())
	c.Posts = memory.NewPostRepository(idgen.NewUUIDGenerator(), nil)
	c.Groups = memory.NewOutcomeGroupRepository(nil)
	c.Settlements = memory.NewPredictionStatsRepository(idgen.NewUUIDGenerator())
	c.Tokens = memory.NewTokenRepository(idgen.NewUUIDGenerator())
}

func (c *Container) buildPostgresRepositories(db *sqlx.DB) {
	c.Matches = postgres.NewMatchRepository(db, idgen.NewUUIDGenerator())
	c.Stats = postgres.NewMatchStatsRepository(db, idgen.NewUUIDGenerator())
	c.Posts = postgres.NewPostRepository(db, idgen.NewUUIDGenerator())
	c.Groups = postgres.NewOutcomeGroupRepository(db)
	c.Settlements = postgres.NewPredictionStatsRepository(db, idgen.NewUUIDGenerator())
	c.Tokens = postgres.NewAuthTokenRepository(db, idgen.NewUUIDGenerator())
}

func (c *Container) buildProgressStore() error {
	switch c.cfg.ProgressBackend {
	case config.ProgressBackendStore:
		if c.db == nil {
			return fmt.Errorf("progress backend %q requires the postgres store", c.cfg.ProgressBackend)
		}
		c.Progress = postgres.NewSyncProgressStore(c.db)
	default:
		store, err := progress.NewFileStore(c.cfg.ProgressDir)
		if err != nil {
			return fmt.Errorf("open progress dir: %w", err)
		}
		c.Progress = store
	}
	return nil
}

func (c *Container) buildSyncLock(ctx context.Context) error {
	if strings.TrimSpace(c.cfg.RedisURL) == "" {
		c.Lock = lock.NewLocalLock()
		return nil
	}

	client, err := lock.NewRedisClient(c.cfg.RedisURL)
	if err != nil {
		return err
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("ping redis: %w", err)
	}
	c.redis = client
	c.Lock = lock.NewRedisLock(client, c.cfg.SyncLockTTL, c.logger)
	return nil
}

// Close releases the database and redis handles.
func (c *Container) Close() error {
	if c.cache != nil {
		stats := c.cache.Stats()
		c.logger.Info("read cache stats", "hits", stats.Hits, "misses", stats.Misses, "entries", stats.Entries)
		c.cache = nil
	}

	var firstErr error
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			firstErr = fmt.Errorf("close redis: %w", err)
		}
		c.redis = nil
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close database: %w", err)
		}
		c.db = nil
	}
	return firstErr
}

// NewSportsClient builds the provider client from config.
func (c *Container) NewSportsClient() *sportsdata.Client {
	return sportsdata.NewClient(sportsdata.ClientConfig{
		BaseURL: c.cfg.SportsAPIBaseURL,
		Key:     c.cfg.SportsAPIKey,
		Secret:  c.cfg.SportsAPISecret,
		Lang:    c.cfg.SportsAPILang,
		Timeout: c.cfg.SportsAPITimeout,
		Logger:  c.logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          c.cfg.SportsAPICircuitEnabled,
			FailureThreshold: c.cfg.SportsAPICircuitFailures,
			OpenTimeout:      c.cfg.SportsAPICircuitOpenTimeout,
			HalfOpenMaxReq:   c.cfg.SportsAPICircuitHalfOpenMax,
		},
	})
}

func (c *Container) NewHistorySyncService(source usecase.SportsDataSource, requestBudget int) *usecase.HistorySyncService {
	return usecase.NewHistorySyncService(
		source,
		c.Matches,
		c.Stats,
		c.Progress,
		usecase.HistorySyncConfig{
			DelayBetweenRequests: c.cfg.DelayBetweenRequests,
			RequestBudget:        requestBudget,
		},
		c.logger,
	)
}

func (c *Container) NewHistoryDriver(engine *usecase.HistorySyncService) *usecase.HistoryDriver {
	return usecase.NewHistoryDriver(engine, c.Matches, c.Lock)
}

func (c *Container) NewSettlementService() *usecase.SettlementService {
	return usecase.NewSettlementService(
		c.Posts,
		c.Groups,
		c.Matches,
		c.Stats,
		c.Settlements,
		usecase.SettlementConfig{MaxWorkers: c.cfg.SettlementMaxWorkers},
		c.logger,
	)
}

func (c *Container) NewMaintenanceService() *usecase.MaintenanceService {
	return usecase.NewMaintenanceService(c.Matches, c.Stats, c.Tokens, usecase.MaintenanceConfig{}, c.logger)
}

func NewHTTPServer(cfg config.Config, container *Container, logger *logging.Logger) (*http.Server, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	handler := httpapi.NewHandler(
		usecase.NewMatchQueryService(container.Matches, container.Stats),
		container.NewSettlementService(),
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
