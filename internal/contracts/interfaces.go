package contracts

import "context"

// MarketDataGateway supplies the four upstream facts a refresh needs.
// Implementations are bound to a single instrument at construction; the
// methods absorb provider details and return plain values. A non-nil
// error means the source is unavailable after retries, and callers must
// treat the value as missing rather than zero.
type MarketDataGateway interface {
	// GetQuote returns the realtime price with the provider's own
	// premium figure when it publishes one.
	GetQuote(ctx context.Context) (Quote, error)

	// GetValuation returns the live estimated fair value (实时估值).
	GetValuation(ctx context.Context) (Valuation, error)

	// GetWeeklyHistory returns weekly bars ascending by date.
	GetWeeklyHistory(ctx context.Context) ([]Bar, error)

	// GetNavByDate returns the date to official NAV table.
	GetNavByDate(ctx context.Context) (NavMap, error)
}
