package eastmoney

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
)

// estimatePayload is the jsonp body of the valuation feed.
type estimatePayload struct {
	FundCode     string `json:"fundcode"`
	Name         string `json:"name"`
	NavDate      string `json:"jzrq"`
	UnitNav      string `json:"dwjz"`
	Estimate     string `json:"gsz"`
	EstimatePct  string `json:"gszzl"`
	EstimateTime string `json:"gztime"`
}

// GetValuation fetches the live estimated fund value. The jsonp feed is
// tried first; cross-border funds are often absent from it, so the fund
// page estimate node serves as fallback. A reply that carries no number
// is data, not an error: it yields an unusable valuation and the
// premium stays unknown downstream.
func (c *Client) GetValuation(ctx context.Context) (contracts.Valuation, error) {
	feed, feedErr := c.fetchEstimateFeed(ctx)
	if feedErr == nil && feed.Usable() {
		return feed, nil
	}
	if feedErr != nil {
		c.logger.WithError(feedErr).Debug("Estimate feed failed, trying fund page")
	}

	page, pageErr := c.fetchEstimatePage(ctx)
	if pageErr != nil {
		if feedErr != nil {
			return contracts.Valuation{}, feedErr
		}
		// The feed answered "no estimate"; that stands.
		return feed, nil
	}
	return page, nil
}

// fetchEstimateFeed reads the jsonpgz(...) valuation feed.
func (c *Client) fetchEstimateFeed(ctx context.Context) (contracts.Valuation, error) {
	fullURL := fmt.Sprintf("%s/js/%s.js?rt=%d",
		c.cfg.EstimateBaseURL, c.instrument.ID, time.Now().UnixMilli())

	body, err := c.fetchBody(ctx, fullURL, nil)
	if err != nil {
		return contracts.Valuation{}, err
	}

	inner, err := stripJsonp(body)
	if err != nil {
		return contracts.Valuation{}, err
	}
	if len(inner) == 0 {
		// jsonpgz(); means the feed does not carry this fund.
		return contracts.Valuation{}, nil
	}

	var payload estimatePayload
	if err := json.Unmarshal(inner, &payload); err != nil {
		return contracts.Valuation{}, fmt.Errorf("parse estimate payload failed: %w", err)
	}

	value, ok := toFloat(payload.Estimate)
	if !ok || value <= 0 {
		return contracts.Valuation{}, nil
	}

	c.logger.WithFields(map[string]interface{}{
		"code":  c.instrument.ID,
		"value": value,
		"time":  payload.EstimateTime,
	}).Debug("Fetched valuation estimate")
	return contracts.Valuation{Value: value, Valid: true}, nil
}

// stripJsonp unwraps jsonpgz(...); into its JSON payload.
func stripJsonp(body []byte) ([]byte, error) {
	s := bytes.TrimSpace(body)
	open := bytes.IndexByte(s, '(')
	closing := bytes.LastIndexByte(s, ')')
	if open < 0 || closing < open {
		return nil, fmt.Errorf("response is not jsonp: %q", truncate(string(s), 80))
	}
	return bytes.TrimSpace(s[open+1 : closing]), nil
}

// fetchEstimatePage scrapes the estimate node off the fund page.
func (c *Client) fetchEstimatePage(ctx context.Context) (contracts.Valuation, error) {
	fullURL := fmt.Sprintf("%s/%s.html", c.cfg.FundPageBaseURL, c.instrument.ID)

	body, err := c.fetchBody(ctx, fullURL, nil)
	if err != nil {
		return contracts.Valuation{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return contracts.Valuation{}, fmt.Errorf("parse fund page failed: %w", err)
	}

	text := strings.TrimSpace(doc.Find("#gz_gsz").First().Text())
	value, ok := toFloat(text)
	if !ok || value <= 0 {
		// The page renders "--" outside estimate hours.
		return contracts.Valuation{}, nil
	}

	c.logger.WithFields(map[string]interface{}{
		"code":  c.instrument.ID,
		"value": value,
	}).Debug("Fetched valuation from fund page")
	return contracts.Valuation{Value: value, Valid: true}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
