package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
)

const (
	// 49 rows per page is the documented lsjz maximum. Eight pages
	// of daily NAVs reach back past the 50-week judgment window.
	navPageSize = 49
	navMaxPages = 8
)

// navEnvelope is one page of the published NAV history.
type navEnvelope struct {
	Data struct {
		LSJZList []navRow `json:"LSJZList"`
	} `json:"Data"`
	ErrCode    int    `json:"ErrCode"`
	ErrMsg     string `json:"ErrMsg"`
	TotalCount int    `json:"TotalCount"`
}

type navRow struct {
	Date    string `json:"FSRQ"`
	UnitNav string `json:"DWJZ"`
}

// GetNavByDate fetches the published unit NAV history, keyed by
// calendar date. Pages are fetched newest first until the window is
// covered or the history runs out.
func (c *Client) GetNavByDate(ctx context.Context) (contracts.NavMap, error) {
	nav := make(contracts.NavMap)

	for page := 1; page <= navMaxPages; page++ {
		rows, total, err := c.fetchNavPage(ctx, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			// Later pages only extend coverage; keep what we have.
			c.logger.WithError(err).WithField("page", page).Warn("NAV page fetch failed")
			break
		}

		for _, row := range rows {
			value, ok := toFloat(row.UnitNav)
			if !ok || value <= 0 || row.Date == "" {
				continue
			}
			nav[row.Date] = value
		}

		if len(rows) < navPageSize || page*navPageSize >= total {
			break
		}
	}

	if len(nav) == 0 {
		return nil, fmt.Errorf("NAV history for %s is empty", c.instrument.ID)
	}

	c.logger.WithFields(map[string]interface{}{
		"code": c.instrument.ID,
		"days": len(nav),
	}).Debug("Fetched NAV history")
	return nav, nil
}

func (c *Client) fetchNavPage(ctx context.Context, page int) ([]navRow, int, error) {
	fullURL := fmt.Sprintf("%s/f10/lsjz?fundCode=%s&pageIndex=%d&pageSize=%d",
		c.cfg.FundAPIBaseURL, c.instrument.ID, page, navPageSize)

	// api.fund rejects requests without a fund-site Referer.
	headers := map[string]string{
		"Referer": "https://fundf10.eastmoney.com/",
	}

	body, err := c.fetchBody(ctx, fullURL, headers)
	if err != nil {
		return nil, 0, err
	}

	var envelope navEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, 0, fmt.Errorf("parse NAV response failed: %w", err)
	}
	if envelope.ErrCode != 0 {
		return nil, 0, fmt.Errorf("NAV endpoint error %d: %s", envelope.ErrCode, envelope.ErrMsg)
	}

	return envelope.Data.LSJZList, envelope.TotalCount, nil
}
