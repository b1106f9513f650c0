package contracts

// CostBasis is the user's optional position input (买入成本 / 买入数量).
// Profit fields are computed only when it is active; an absent basis must
// never be conflated with a 0% profit.
type CostBasis struct {
	UnitCost float64 `json:"unit_cost"`
	Quantity int     `json:"quantity"`
}

// Active reports whether profit computations apply. Both fields must be
// strictly positive.
func (c CostBasis) Active() bool {
	return c.UnitCost > 0 && c.Quantity > 0
}

// MarketValue returns the position's value at the given price, or 0 when
// the basis is inactive.
func (c CostBasis) MarketValue(price float64) float64 {
	if !c.Active() {
		return 0
	}
	return price * float64(c.Quantity)
}
