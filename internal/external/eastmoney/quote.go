package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
)

// Quote fields: f2 price, f3 change pct, f12 code, f14 name,
// f124 quote time (unix seconds), f441 intraday reference value.
const quoteFields = "f2,f3,f12,f14,f124,f441"

// GetQuote fetches the realtime quote. The premium over the intraday
// reference value is attached when the exchange publishes one; callers
// fall back to the valuation estimate otherwise.
func (c *Client) GetQuote(ctx context.Context) (contracts.Quote, error) {
	fullURL := fmt.Sprintf("%s/api/qt/ulist.np/get?secids=%s&fields=%s&fltt=2&invt=2&np=1",
		c.cfg.QuoteBaseURL, c.instrument.SecID(), quoteFields)

	body, err := c.fetchBody(ctx, fullURL, nil)
	if err != nil {
		return contracts.Quote{}, err
	}

	var envelope struct {
		Data struct {
			Diff []map[string]interface{} `json:"diff"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return contracts.Quote{}, fmt.Errorf("parse quote response failed: %w", err)
	}
	if len(envelope.Data.Diff) == 0 {
		return contracts.Quote{}, fmt.Errorf("quote response has no rows for %s", c.instrument.ID)
	}

	row := envelope.Data.Diff[0]
	price, ok := toFloat(row["f2"])
	if !ok || price <= 0 {
		return contracts.Quote{}, fmt.Errorf("quote price missing for %s", c.instrument.ID)
	}

	quote := contracts.Quote{
		Price:     price,
		Timestamp: quoteTime(row["f124"]),
	}
	if reference, ok := toFloat(row["f441"]); ok && reference > 0 {
		quote.PremiumPct = (price/reference - 1) * 100
		quote.HasPremium = true
	}

	c.logger.WithFields(map[string]interface{}{
		"code":        c.instrument.ID,
		"price":       quote.Price,
		"has_premium": quote.HasPremium,
	}).Debug("Fetched quote")
	return quote, nil
}

// quoteTime formats the unix quote timestamp in exchange local time.
func quoteTime(v interface{}) string {
	ts, ok := toFloat(v)
	if !ok || ts <= 0 {
		return ""
	}
	return time.Unix(int64(ts), 0).In(exchangeTZ).Format("2006-01-02 15:04:05")
}
