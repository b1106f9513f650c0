package market

import (
	"context"
	"sync"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
)

// TakeSnapshot fetches all four data kinds concurrently and joins them
// into one snapshot. The fetches have no data dependency on each other.
// Failures are absorbed: the failed source is recorded and the report
// assembler decides whether the snapshot is still usable.
func TakeSnapshot(ctx context.Context, gw contracts.MarketDataGateway, log *logger.Logger) *contracts.MarketSnapshot {
	var (
		quote    contracts.Quote
		quoteErr error

		valuation contracts.Valuation
		valErr    error

		bars    []contracts.Bar
		histErr error

		nav    contracts.NavMap
		navErr error
	)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		quote, quoteErr = gw.GetQuote(ctx)
	}()
	go func() {
		defer wg.Done()
		valuation, valErr = gw.GetValuation(ctx)
	}()
	go func() {
		defer wg.Done()
		bars, histErr = gw.GetWeeklyHistory(ctx)
	}()
	go func() {
		defer wg.Done()
		nav, navErr = gw.GetNavByDate(ctx)
	}()
	wg.Wait()

	snap := &contracts.MarketSnapshot{}

	if quoteErr != nil {
		log.WithError(quoteErr).Warn("Quote unavailable")
		snap.Failed = append(snap.Failed, KindQuote)
	} else {
		snap.Quote = quote
		snap.HasQuote = true
	}

	if valErr != nil {
		log.WithError(valErr).Warn("Valuation unavailable")
		snap.Failed = append(snap.Failed, KindValuation)
	} else {
		snap.Valuation = valuation
	}

	if histErr != nil {
		log.WithError(histErr).Warn("Weekly history unavailable")
		snap.Failed = append(snap.Failed, KindHistory)
	} else {
		snap.Bars = bars
	}

	if navErr != nil {
		log.WithError(navErr).Warn("NAV table unavailable")
		snap.Failed = append(snap.Failed, KindNav)
	} else {
		snap.Nav = nav
	}

	return snap
}
