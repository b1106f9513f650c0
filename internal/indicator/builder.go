package indicator

import (
	"errors"
	"fmt"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
)

// ErrEmptySeries is returned when there are no bars to work with.
var ErrEmptySeries = errors.New("empty price series")

// Builder computes the rolling simple moving average over weekly bars.
// The M20 value kept on each point is unrounded; rounding happens at
// judgement time so that trend comparison can use full precision.
type Builder struct {
	period int
	logger *logger.Logger
}

// NewBuilder creates a builder for the given averaging period.
func NewBuilder(period int, log *logger.Logger) *Builder {
	return &Builder{
		period: period,
		logger: log,
	}
}

// Period returns the averaging period.
func (b *Builder) Period() int {
	return b.period
}

// Build computes the moving average for each bar. Bars must be ordered
// ascending by date with one entry per week. The average at index i
// covers closes[i-period+1..i] and is undefined until period bars
// exist. An empty series or a bar without a positive close fails the
// whole build; the caller surfaces that as an unavailable report.
func (b *Builder) Build(bars []contracts.Bar) ([]contracts.PricePoint, error) {
	if len(bars) == 0 {
		return nil, ErrEmptySeries
	}

	points := make([]contracts.PricePoint, len(bars))
	var window float64

	for i, bar := range bars {
		if bar.Close <= 0 {
			return nil, fmt.Errorf("bar %s has no closing price", bar.Date)
		}

		window += bar.Close
		if i >= b.period {
			window -= bars[i-b.period].Close
		}

		point := contracts.PricePoint{
			Date:  bar.Date,
			Close: bar.Close,
		}
		if i >= b.period-1 {
			point.M20 = window / float64(b.period)
			point.HasM20 = true
		}
		points[i] = point
	}

	b.logger.WithFields(map[string]interface{}{
		"bars":   len(bars),
		"period": b.period,
	}).Debug("Built indicator series")

	return points, nil
}

// PrevM20 returns the moving average of the point immediately before
// index i, for trend comparison. False when there is no previous point
// or its average is undefined.
func PrevM20(points []contracts.PricePoint, i int) (float64, bool) {
	if i <= 0 || i >= len(points) {
		return 0, false
	}
	prev := points[i-1]
	if !prev.HasM20 {
		return 0, false
	}
	return prev.M20, true
}
