package contracts

// Quote represents a realtime snapshot of the traded instrument.
// Timestamp is the provider's own quote time, kept verbatim so that
// repeated assemblies over the same payload stay identical.
type Quote struct {
	Price      float64 `json:"price"`
	PremiumPct float64 `json:"premium_pct"`
	HasPremium bool    `json:"has_premium"`
	Timestamp  string  `json:"timestamp"`
}

// Valuation represents an externally estimated fair value (实时估值).
// Valid distinguishes "provider returned nothing" from a zero value.
type Valuation struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Usable reports whether the valuation can serve as a premium reference.
func (v Valuation) Usable() bool {
	return v.Valid && v.Value > 0
}

// Bar represents one weekly OHLCV bar. Date is the calendar date of the
// period's last trading day in "2006-01-02" form; all date alignment in
// the pipeline is exact string match on this field.
type Bar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// NavMap maps a calendar date ("2006-01-02") to the fund's official
// per-unit net asset value on that date.
type NavMap map[string]float64

// Lookup returns the NAV for a date and whether it exists.
func (m NavMap) Lookup(date string) (float64, bool) {
	nav, ok := m[date]
	return nav, ok
}

// MarketSnapshot carries everything one refresh fetched, passed from the
// gateway to the report assembler. Missing sources are represented here
// instead of aborting the fetch: the quote and the weekly history are
// mandatory for a report, the valuation and NAV table are not.
type MarketSnapshot struct {
	Quote     Quote   `json:"quote"`
	HasQuote  bool    `json:"has_quote"`
	Valuation Valuation `json:"valuation"`
	Bars      []Bar   `json:"bars"`
	Nav       NavMap  `json:"nav"`

	// Failed lists the sources that returned no data this refresh.
	Failed []string `json:"failed,omitempty"`
}

// Complete reports whether the mandatory inputs are present.
func (s *MarketSnapshot) Complete() bool {
	return s.HasQuote && s.Quote.Price > 0 && len(s.Bars) > 0
}

// Degraded reports whether any source failed, mandatory or not.
func (s *MarketSnapshot) Degraded() bool {
	return len(s.Failed) > 0
}
