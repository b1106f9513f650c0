package eastmoney

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/asherrising888-debug/NasdaqETF/pkg/config"
	"github.com/asherrising888-debug/NasdaqETF/pkg/httputil"
	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
)

// Exchange local time. Quote timestamps are formatted in it so the
// same tick renders the same everywhere.
var exchangeTZ = time.FixedZone("CST", 8*60*60)

// Client handles communication with the Eastmoney endpoints. All
// Eastmoney calls go through this client; it implements
// contracts.MarketDataGateway for one instrument.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.EastmoneyConfig
	instrument config.InstrumentConfig
	limiter    *rate.Limiter
}

// NewClient creates a new Eastmoney client bound to one instrument.
func NewClient(httpClient *httputil.Client, cfg config.EastmoneyConfig, instrument config.InstrumentConfig, log *logger.Logger) *Client {
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 5
	}
	burst := int(perSec)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: httpClient,
		logger:     log,
		cfg:        cfg,
		instrument: instrument,
		limiter:    rate.NewLimiter(rate.Limit(perSec), burst),
	}
}

// fetchBody performs a rate-limited GET and returns the response body.
func (c *Client) fetchBody(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	resp, err := c.httpClient.GetWithHeaders(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// toFloat converts the loosely typed values Eastmoney sends. Closed
// markets and suspended funds come back as "-" strings.
func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		if val == "" || val == "-" || val == "--" {
			return 0, false
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
