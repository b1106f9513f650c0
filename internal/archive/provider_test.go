package archive

import (
	"context"
	"errors"
	"testing"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
)

type fakeStore struct {
	bars map[string][]contracts.Bar
	nav  map[string]contracts.NavMap

	saveErr error
	loadErr error

	barSaves int
	navSaves int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bars: make(map[string][]contracts.Bar),
		nav:  make(map[string]contracts.NavMap),
	}
}

func (s *fakeStore) SaveBars(ctx context.Context, id string, bars []contracts.Bar) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.barSaves++
	s.bars[id] = bars
	return nil
}

func (s *fakeStore) LoadBars(ctx context.Context, id string) ([]contracts.Bar, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.bars[id], nil
}

func (s *fakeStore) SaveNav(ctx context.Context, id string, nav contracts.NavMap) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.navSaves++
	s.nav[id] = nav
	return nil
}

func (s *fakeStore) LoadNav(ctx context.Context, id string) (contracts.NavMap, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.nav[id], nil
}

type fakeGateway struct {
	quote contracts.Quote
	bars  []contracts.Bar
	nav   contracts.NavMap
	err   error
}

func (g *fakeGateway) GetQuote(ctx context.Context) (contracts.Quote, error) {
	if g.err != nil {
		return contracts.Quote{}, g.err
	}
	return g.quote, nil
}

func (g *fakeGateway) GetValuation(ctx context.Context) (contracts.Valuation, error) {
	if g.err != nil {
		return contracts.Valuation{}, g.err
	}
	return contracts.Valuation{Value: 1.69, Valid: true}, nil
}

func (g *fakeGateway) GetWeeklyHistory(ctx context.Context) ([]contracts.Bar, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.bars, nil
}

func (g *fakeGateway) GetNavByDate(ctx context.Context) (contracts.NavMap, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.nav, nil
}

func sampleBars() []contracts.Bar {
	return []contracts.Bar{
		{Date: "2024-02-09", Close: 1.68},
		{Date: "2024-02-16", Close: 1.69},
	}
}

func TestFallback_WritesThroughOnSuccess(t *testing.T) {
	store := newFakeStore()
	gw := &fakeGateway{bars: sampleBars(), nav: contracts.NavMap{"2024-02-16": 1.68}}
	p := NewFallbackProvider(gw, store, "159941", logger.Nop())

	bars, err := p.GetWeeklyHistory(context.Background())
	if err != nil {
		t.Fatalf("GetWeeklyHistory failed: %v", err)
	}
	if len(bars) != 2 || store.barSaves != 1 {
		t.Errorf("bars = %d, saves = %d; want live data archived once", len(bars), store.barSaves)
	}

	if _, err := p.GetNavByDate(context.Background()); err != nil {
		t.Fatalf("GetNavByDate failed: %v", err)
	}
	if store.navSaves != 1 {
		t.Errorf("nav saves = %d, want 1", store.navSaves)
	}
}

func TestFallback_ServesArchiveWhenProviderDown(t *testing.T) {
	store := newFakeStore()
	store.bars["159941"] = sampleBars()
	store.nav["159941"] = contracts.NavMap{"2024-02-16": 1.68}

	gw := &fakeGateway{err: errors.New("connection refused")}
	p := NewFallbackProvider(gw, store, "159941", logger.Nop())

	bars, err := p.GetWeeklyHistory(context.Background())
	if err != nil {
		t.Fatalf("archived bars must serve: %v", err)
	}
	if len(bars) != 2 {
		t.Errorf("bars = %d, want the archived 2", len(bars))
	}

	nav, err := p.GetNavByDate(context.Background())
	if err != nil {
		t.Fatalf("archived NAV must serve: %v", err)
	}
	if len(nav) != 1 {
		t.Errorf("nav = %d, want the archived 1", len(nav))
	}
}

func TestFallback_EmptyArchiveKeepsProviderError(t *testing.T) {
	providerErr := errors.New("connection refused")
	p := NewFallbackProvider(&fakeGateway{err: providerErr}, newFakeStore(), "159941", logger.Nop())

	if _, err := p.GetWeeklyHistory(context.Background()); !errors.Is(err, providerErr) {
		t.Errorf("err = %v, want the provider error", err)
	}
	if _, err := p.GetNavByDate(context.Background()); !errors.Is(err, providerErr) {
		t.Errorf("err = %v, want the provider error", err)
	}
}

func TestFallback_ArchiveLoadErrorKeepsProviderError(t *testing.T) {
	providerErr := errors.New("connection refused")
	store := newFakeStore()
	store.loadErr = errors.New("pool closed")

	p := NewFallbackProvider(&fakeGateway{err: providerErr}, store, "159941", logger.Nop())
	if _, err := p.GetWeeklyHistory(context.Background()); !errors.Is(err, providerErr) {
		t.Errorf("err = %v, want the provider error", err)
	}
}

func TestFallback_SaveFailureStillServesLiveData(t *testing.T) {
	store := newFakeStore()
	store.saveErr = errors.New("disk full")

	p := NewFallbackProvider(&fakeGateway{bars: sampleBars()}, store, "159941", logger.Nop())
	bars, err := p.GetWeeklyHistory(context.Background())
	if err != nil {
		t.Fatalf("a failed archive write must not fail the fetch: %v", err)
	}
	if len(bars) != 2 {
		t.Errorf("bars = %d, want 2", len(bars))
	}
}

func TestFallback_QuoteAndValuationPassThrough(t *testing.T) {
	gw := &fakeGateway{quote: contracts.Quote{Price: 1.70}}
	p := NewFallbackProvider(gw, newFakeStore(), "159941", logger.Nop())

	quote, err := p.GetQuote(context.Background())
	if err != nil || quote.Price != 1.70 {
		t.Errorf("quote = %+v (%v)", quote, err)
	}

	valuation, err := p.GetValuation(context.Background())
	if err != nil || !valuation.Usable() {
		t.Errorf("valuation = %+v (%v)", valuation, err)
	}

	gw.err = errors.New("down")
	if _, err := p.GetQuote(context.Background()); err == nil {
		t.Error("quote has no archive to fall back to")
	}
}
