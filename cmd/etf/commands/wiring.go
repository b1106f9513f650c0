package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/asherrising888-debug/NasdaqETF/internal/archive"
	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
	"github.com/asherrising888-debug/NasdaqETF/internal/external/eastmoney"
	"github.com/asherrising888-debug/NasdaqETF/internal/market"
	"github.com/asherrising888-debug/NasdaqETF/internal/market/cache"
	"github.com/asherrising888-debug/NasdaqETF/internal/rules"
	"github.com/asherrising888-debug/NasdaqETF/pkg/config"
	"github.com/asherrising888-debug/NasdaqETF/pkg/database"
	"github.com/asherrising888-debug/NasdaqETF/pkg/httputil"
	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
	"github.com/asherrising888-debug/NasdaqETF/pkg/redis"
)

// stack bundles the wired market-data dependencies every command
// starts from. provider is the uncached chain (Eastmoney, wrapped by
// the archive fallback when enabled); gateway adds the TTL cache on
// top of it.
type stack struct {
	cfg      *config.Config
	log      *logger.Logger
	rules    *rules.Config
	redis    *redis.Client
	db       *database.DB
	store    cache.Store
	provider contracts.MarketDataGateway
	gateway  contracts.MarketDataGateway
}

// initStack loads configuration and wires the provider chain.
func initStack() (*stack, error) {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load gate rules
	rulesCfg, err := rules.LoadOrDefault(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	if hash, err := rules.Hash(rulesCfg); err == nil {
		log.WithFields(map[string]interface{}{
			"ruleset": rulesCfg.Meta.RulesetID,
			"hash":    hash,
		}).Debug("Ruleset loaded")
	}

	// 4. Connect to Redis (no-op client when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 5. Create HTTP client
	httpClient := httputil.New(log, cfg.Eastmoney.Timeout).
		WithRetry(cfg.Eastmoney.MaxRetries, cfg.Eastmoney.RetryDelay).
		WithHeader("User-Agent", cfg.Eastmoney.UserAgent)
	if cfg.Redis.Enabled {
		httpClient = httpClient.WithRateLimiter(
			redis.NewRateLimiter(redisClient, "etf"), redis.EastmoneyRateLimit)
	}

	// 6. Create provider client
	var provider contracts.MarketDataGateway = eastmoney.NewClient(httpClient, cfg.Eastmoney, cfg.Instrument, log)

	// 7. Wrap with the archive fallback when enabled
	var db *database.DB
	if cfg.Archive.Enabled {
		db, err = database.New(cfg)
		if err != nil {
			redisClient.Close()
			return nil, fmt.Errorf("connect to archive: %w", err)
		}

		repo := archive.NewRepository(db.Pool, log)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.Migrate(ctx); err != nil {
			db.Close()
			redisClient.Close()
			return nil, fmt.Errorf("migrate archive: %w", err)
		}

		provider = archive.NewFallbackProvider(provider, repo, cfg.Instrument.ID, log)
	}

	// 8. Pick the cache backend
	var store cache.Store
	if cfg.Redis.Enabled {
		store = cache.NewRedis(redis.NewCache(redisClient, "etf"))
	} else {
		store = cache.NewMemory(log)
	}

	return &stack{
		cfg:      cfg,
		log:      log,
		rules:    rulesCfg,
		redis:    redisClient,
		db:       db,
		store:    store,
		provider: provider,
		gateway:  market.NewCachedGateway(provider, store, cfg.Cache, cfg.Instrument.ID, log),
	}, nil
}

// instrument returns the tracked ETF's display identity.
func (s *stack) instrument() contracts.Instrument {
	return contracts.Instrument{ID: s.cfg.Instrument.ID, Name: s.cfg.Instrument.Name}
}

// Close releases the optional connections.
func (s *stack) Close() {
	if s.db != nil {
		s.db.Close()
	}
	if s.redis != nil {
		s.redis.Close()
	}
}
