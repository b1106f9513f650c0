package decision

import "github.com/asherrising888-debug/NasdaqETF/internal/contracts"

// Premium is a resolved premium percentage. Known is false when no
// usable reference value existed; an unknown premium is excluded from
// the premium rule rather than passed or failed.
type Premium struct {
	Pct   float64
	Known bool
}

// Compute derives the premium of price over a reference value, in
// percent. Unknown when the reference is not positive.
func Compute(price, reference float64) Premium {
	if reference <= 0 {
		return Premium{}
	}
	return Premium{
		Pct:   (price - reference) / reference * 100,
		Known: true,
	}
}

// Resolver picks the premium reference for each period of one refresh:
// the live valuation for the realtime row, the matching calendar date's
// NAV for historical rows.
type Resolver struct {
	valuation contracts.Valuation
	nav       contracts.NavMap
}

// NewResolver creates a resolver over one refresh's valuation and NAV
// table.
func NewResolver(valuation contracts.Valuation, nav contracts.NavMap) *Resolver {
	return &Resolver{
		valuation: valuation,
		nav:       nav,
	}
}

// Realtime resolves the current premium. The provider's own premium
// figure wins when the quote carries one; otherwise it is derived from
// the live valuation.
func (r *Resolver) Realtime(quote contracts.Quote) Premium {
	if quote.HasPremium {
		return Premium{Pct: quote.PremiumPct, Known: true}
	}
	if r.valuation.Usable() {
		return Compute(quote.Price, r.valuation.Value)
	}
	return Premium{}
}

// Historical resolves the premium for a period dated date. Only the
// single most recent historical period may fall back to the live
// valuation when its NAV is missing; NAV tables are published with one
// day's lag, so that period alone has a defensible proxy. Older periods
// without a NAV match stay unknown.
func (r *Resolver) Historical(closePrice float64, date string, mostRecent bool) Premium {
	if nav, ok := r.nav.Lookup(date); ok {
		return Compute(closePrice, nav)
	}
	if mostRecent && r.valuation.Usable() {
		return Compute(closePrice, r.valuation.Value)
	}
	return Premium{}
}
