package archive

import (
	"context"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
)

// Store is the slice of the repository the fallback needs.
type Store interface {
	SaveBars(ctx context.Context, instrumentID string, bars []contracts.Bar) error
	LoadBars(ctx context.Context, instrumentID string) ([]contracts.Bar, error)
	SaveNav(ctx context.Context, instrumentID string, nav contracts.NavMap) error
	LoadNav(ctx context.Context, instrumentID string) (contracts.NavMap, error)
}

// FallbackProvider decorates a market data provider with the archive.
// Successful history and NAV fetches are written through; when the
// provider fails, the archived copy serves instead. Quote and
// valuation stay live only.
type FallbackProvider struct {
	provider   contracts.MarketDataGateway
	repo       Store
	instrument string
	logger     *logger.Logger
}

// NewFallbackProvider wraps a provider with archive write-through and
// fallback.
func NewFallbackProvider(provider contracts.MarketDataGateway, repo Store, instrumentID string, log *logger.Logger) *FallbackProvider {
	return &FallbackProvider{
		provider:   provider,
		repo:       repo,
		instrument: instrumentID,
		logger:     log,
	}
}

// GetQuote passes through to the live provider.
func (p *FallbackProvider) GetQuote(ctx context.Context) (contracts.Quote, error) {
	return p.provider.GetQuote(ctx)
}

// GetValuation passes through to the live provider.
func (p *FallbackProvider) GetValuation(ctx context.Context) (contracts.Valuation, error) {
	return p.provider.GetValuation(ctx)
}

// GetWeeklyHistory fetches live bars, archiving them on success and
// serving the archive when the provider is down.
func (p *FallbackProvider) GetWeeklyHistory(ctx context.Context) ([]contracts.Bar, error) {
	bars, err := p.provider.GetWeeklyHistory(ctx)
	if err == nil {
		if saveErr := p.repo.SaveBars(ctx, p.instrument, bars); saveErr != nil {
			p.logger.WithError(saveErr).Warn("Archiving weekly bars failed")
		}
		return bars, nil
	}

	archived, loadErr := p.repo.LoadBars(ctx, p.instrument)
	if loadErr != nil || len(archived) == 0 {
		return nil, err
	}

	p.logger.WithFields(map[string]interface{}{
		"instrument": p.instrument,
		"bars":       len(archived),
	}).Warn("Provider down, serving archived weekly bars")
	return archived, nil
}

// GetNavByDate fetches live NAVs, archiving them on success and
// serving the archive when the provider is down.
func (p *FallbackProvider) GetNavByDate(ctx context.Context) (contracts.NavMap, error) {
	nav, err := p.provider.GetNavByDate(ctx)
	if err == nil {
		if saveErr := p.repo.SaveNav(ctx, p.instrument, nav); saveErr != nil {
			p.logger.WithError(saveErr).Warn("Archiving NAV history failed")
		}
		return nav, nil
	}

	archived, loadErr := p.repo.LoadNav(ctx, p.instrument)
	if loadErr != nil || len(archived) == 0 {
		return nil, err
	}

	p.logger.WithFields(map[string]interface{}{
		"instrument": p.instrument,
		"days":       len(archived),
	}).Warn("Provider down, serving archived NAV history")
	return archived, nil
}
