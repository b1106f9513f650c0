package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
)

const (
	// klt 102 selects weekly bars, fqt 1 forward-adjusts them.
	klinePeriodWeekly = 102
	klineAdjustQfq    = 1

	// Roughly two years of weekly bars. Covers the judgment window
	// plus the moving-average warmup with room to spare.
	klineLimit = 120
)

// Kline columns requested via fields2.
const klineFields = "f51,f52,f53,f54,f55,f56,f57"

// GetWeeklyHistory fetches forward-adjusted weekly bars, oldest first.
// Eastmoney serialises each bar as one comma-joined string:
// date,open,close,high,low,volume,amount.
func (c *Client) GetWeeklyHistory(ctx context.Context) ([]contracts.Bar, error) {
	fullURL := fmt.Sprintf("%s/api/qt/stock/kline/get?secid=%s&klt=%d&fqt=%d&lmt=%d&end=20500101&fields1=f1,f2,f3,f4,f5,f6&fields2=%s",
		c.cfg.KlineBaseURL, c.instrument.SecID(), klinePeriodWeekly, klineAdjustQfq, klineLimit, klineFields)

	body, err := c.fetchBody(ctx, fullURL, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data struct {
			Code   string   `json:"code"`
			Klines []string `json:"klines"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parse kline response failed: %w", err)
	}
	if len(envelope.Data.Klines) == 0 {
		return nil, fmt.Errorf("kline response has no bars for %s", c.instrument.ID)
	}

	bars := make([]contracts.Bar, 0, len(envelope.Data.Klines))
	for _, line := range envelope.Data.Klines {
		bar, ok := parseKline(line)
		if !ok {
			c.logger.WithField("kline", line).Warn("Skipping malformed kline")
			continue
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("kline response for %s had no parsable bars", c.instrument.ID)
	}

	c.logger.WithFields(map[string]interface{}{
		"code":  c.instrument.ID,
		"bars":  len(bars),
		"first": bars[0].Date,
		"last":  bars[len(bars)-1].Date,
	}).Debug("Fetched weekly history")
	return bars, nil
}

func parseKline(line string) (contracts.Bar, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < 6 {
		return contracts.Bar{}, false
	}

	open, err1 := strconv.ParseFloat(parts[1], 64)
	closePrice, err2 := strconv.ParseFloat(parts[2], 64)
	high, err3 := strconv.ParseFloat(parts[3], 64)
	low, err4 := strconv.ParseFloat(parts[4], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return contracts.Bar{}, false
	}

	volume, err := strconv.ParseInt(parts[5], 10, 64)
	if err != nil {
		volume = 0
	}

	return contracts.Bar{
		Date:   parts[0],
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, true
}
