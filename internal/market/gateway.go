package market

import (
	"context"
	"fmt"
	"time"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
	"github.com/asherrising888-debug/NasdaqETF/internal/market/cache"
	"github.com/asherrising888-debug/NasdaqETF/pkg/config"
	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
)

// Data kinds, also the cache key prefixes.
const (
	KindQuote     = "quote"
	KindValuation = "valuation"
	KindHistory   = "history"
	KindNav       = "nav"
)

// CachedGateway serves market data from a TTL cache, hitting the
// provider only on a miss. Each data kind carries its own TTL; entries
// are replaced wholesale on refetch. Provider failures pass through
// uncached so the next call retries.
type CachedGateway struct {
	provider   contracts.MarketDataGateway
	store      cache.Store
	ttl        config.CacheConfig
	instrument string
	logger     *logger.Logger
}

// NewCachedGateway wraps a provider with the given store and TTLs.
func NewCachedGateway(provider contracts.MarketDataGateway, store cache.Store, ttl config.CacheConfig, instrumentID string, log *logger.Logger) *CachedGateway {
	return &CachedGateway{
		provider:   provider,
		store:      store,
		ttl:        ttl,
		instrument: instrumentID,
		logger:     log,
	}
}

// Key builds the cache key for a data kind of an instrument.
func Key(kind, instrumentID string) string {
	return fmt.Sprintf("%s:%s", kind, instrumentID)
}

// GetQuote returns the realtime quote, cached for the quote TTL.
func (g *CachedGateway) GetQuote(ctx context.Context) (contracts.Quote, error) {
	key := Key(KindQuote, g.instrument)

	var cached contracts.Quote
	if hit := g.lookup(ctx, key, &cached); hit {
		return cached, nil
	}

	quote, err := g.provider.GetQuote(ctx)
	if err != nil {
		return contracts.Quote{}, err
	}

	g.save(ctx, key, quote, g.ttl.QuoteTTL)
	return quote, nil
}

// GetValuation returns the live estimated value, cached for the
// valuation TTL.
func (g *CachedGateway) GetValuation(ctx context.Context) (contracts.Valuation, error) {
	key := Key(KindValuation, g.instrument)

	var cached contracts.Valuation
	if hit := g.lookup(ctx, key, &cached); hit {
		return cached, nil
	}

	valuation, err := g.provider.GetValuation(ctx)
	if err != nil {
		return contracts.Valuation{}, err
	}

	g.save(ctx, key, valuation, g.ttl.ValuationTTL)
	return valuation, nil
}

// GetWeeklyHistory returns weekly bars, cached for the history TTL.
func (g *CachedGateway) GetWeeklyHistory(ctx context.Context) ([]contracts.Bar, error) {
	key := Key(KindHistory, g.instrument)

	var cached []contracts.Bar
	if hit := g.lookup(ctx, key, &cached); hit {
		return cached, nil
	}

	bars, err := g.provider.GetWeeklyHistory(ctx)
	if err != nil {
		return nil, err
	}

	g.save(ctx, key, bars, g.ttl.HistoryTTL)
	return bars, nil
}

// GetNavByDate returns the NAV table, cached for the NAV TTL.
func (g *CachedGateway) GetNavByDate(ctx context.Context) (contracts.NavMap, error) {
	key := Key(KindNav, g.instrument)

	var cached contracts.NavMap
	if hit := g.lookup(ctx, key, &cached); hit {
		return cached, nil
	}

	nav, err := g.provider.GetNavByDate(ctx)
	if err != nil {
		return nil, err
	}

	g.save(ctx, key, nav, g.ttl.NavTTL)
	return nav, nil
}

// Invalidate drops every cached kind for the instrument.
func (g *CachedGateway) Invalidate(ctx context.Context) error {
	for _, kind := range []string{KindQuote, KindValuation, KindHistory, KindNav} {
		if err := g.store.Delete(ctx, Key(kind, g.instrument)); err != nil {
			return fmt.Errorf("invalidate %s: %w", kind, err)
		}
	}
	return nil
}

// lookup reads the store, treating store errors as misses so a broken
// cache backend degrades to direct provider calls.
func (g *CachedGateway) lookup(ctx context.Context, key string, dest interface{}) bool {
	hit, err := g.store.Get(ctx, key, dest)
	if err != nil {
		g.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
		return false
	}
	return hit
}

// save writes through to the store, logging failures without failing
// the fetch itself.
func (g *CachedGateway) save(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if err := g.store.Set(ctx, key, value, ttl); err != nil {
		g.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}
