package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
)

// stubGateway serves canned market data and tracks how many fetch
// cycles overlap.
type stubGateway struct {
	quote     contracts.Quote
	valuation contracts.Valuation
	bars      []contracts.Bar
	nav       contracts.NavMap
	err       error

	quoteDelay time.Duration

	mu          sync.Mutex
	inflight    int
	maxInflight int
}

func newStubGateway(n int) *stubGateway {
	bars := weeklyBars(n)
	return &stubGateway{
		quote:     contracts.Quote{Price: 1.70, Timestamp: "2024-02-23 14:30:00"},
		valuation: contracts.Valuation{Value: 1.69, Valid: true},
		bars:      bars,
		nav:       navFor(bars),
	}
}

func (g *stubGateway) GetQuote(ctx context.Context) (contracts.Quote, error) {
	g.mu.Lock()
	g.inflight++
	if g.inflight > g.maxInflight {
		g.maxInflight = g.inflight
	}
	g.mu.Unlock()

	if g.quoteDelay > 0 {
		time.Sleep(g.quoteDelay)
	}

	g.mu.Lock()
	g.inflight--
	g.mu.Unlock()

	if g.err != nil {
		return contracts.Quote{}, g.err
	}
	return g.quote, nil
}

func (g *stubGateway) GetValuation(ctx context.Context) (contracts.Valuation, error) {
	if g.err != nil {
		return contracts.Valuation{}, g.err
	}
	return g.valuation, nil
}

func (g *stubGateway) GetWeeklyHistory(ctx context.Context) ([]contracts.Bar, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.bars, nil
}

func (g *stubGateway) GetNavByDate(ctx context.Context) (contracts.NavMap, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.nav, nil
}

func newTestRefresher(gw contracts.MarketDataGateway) *Refresher {
	return NewRefresher(gw, newAssembler(), logger.Nop())
}

func TestRefresher_LastNilBeforeFirstRefresh(t *testing.T) {
	r := newTestRefresher(newStubGateway(60))

	if r.Last() != nil {
		t.Error("Last() must be nil before the first refresh")
	}
}

func TestRefresher_RefreshStoresResult(t *testing.T) {
	r := newTestRefresher(newStubGateway(60))

	report := r.Refresh(context.Background(), contracts.CostBasis{UnitCost: 1.5, Quantity: 1000})

	if report == nil {
		t.Fatal("Refresh returned nil")
	}
	if report.Status != contracts.ReportStatusOK {
		t.Errorf("Status = %s (%s), want ok", report.Status, report.StatusReason)
	}
	if len(report.Records) != 51 {
		t.Errorf("records = %d, want 51", len(report.Records))
	}
	if r.Last() != report {
		t.Error("Last() must return the report just assembled")
	}
}

func TestRefresher_GatewayFailureBecomesStatus(t *testing.T) {
	gw := newStubGateway(60)
	gw.err = errors.New("connection refused")
	r := newTestRefresher(gw)

	report := r.Refresh(context.Background(), contracts.CostBasis{})

	if report.Status != contracts.ReportStatusUnavailable {
		t.Errorf("Status = %s, want unavailable", report.Status)
	}
	if len(report.Records) != 0 {
		t.Errorf("records = %d, want none", len(report.Records))
	}
	if r.Last() != report {
		t.Error("a failed cycle must still replace the stored report")
	}
}

func TestRefresher_CyclesDoNotOverlap(t *testing.T) {
	gw := newStubGateway(60)
	gw.quoteDelay = 10 * time.Millisecond
	r := newTestRefresher(gw)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Refresh(context.Background(), contracts.CostBasis{})
		}()
	}
	wg.Wait()

	gw.mu.Lock()
	max := gw.maxInflight
	gw.mu.Unlock()
	if max != 1 {
		t.Errorf("max concurrent cycles = %d, want refreshes serialized", max)
	}
}

func TestRefresher_EachCallerKeepsItsBasis(t *testing.T) {
	r := newTestRefresher(newStubGateway(60))

	with := r.Refresh(context.Background(), contracts.CostBasis{UnitCost: 1.2, Quantity: 1000})
	without := r.Refresh(context.Background(), contracts.CostBasis{})

	if !with.Records[0].HasProfit {
		t.Error("active basis must yield a profit column")
	}
	if without.Records[0].HasProfit {
		t.Error("empty basis must leave profit undefined")
	}
}
