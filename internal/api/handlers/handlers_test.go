package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/asherrising888-debug/NasdaqETF/internal/contracts"
	"github.com/asherrising888-debug/NasdaqETF/internal/report"
	"github.com/asherrising888-debug/NasdaqETF/internal/rules"
	"github.com/asherrising888-debug/NasdaqETF/internal/scheduler"
	"github.com/asherrising888-debug/NasdaqETF/pkg/logger"
)

var testInstrument = contracts.Instrument{ID: "159941", Name: "纳指ETF"}

// marketStub serves a healthy canned market.
type marketStub struct {
	err error
}

func (g *marketStub) GetQuote(ctx context.Context) (contracts.Quote, error) {
	if g.err != nil {
		return contracts.Quote{}, g.err
	}
	return contracts.Quote{Price: 1.70, Timestamp: "2024-02-23 14:30:00"}, nil
}

func (g *marketStub) GetValuation(ctx context.Context) (contracts.Valuation, error) {
	if g.err != nil {
		return contracts.Valuation{}, g.err
	}
	return contracts.Valuation{Value: 1.69, Valid: true}, nil
}

func (g *marketStub) GetWeeklyHistory(ctx context.Context) ([]contracts.Bar, error) {
	if g.err != nil {
		return nil, g.err
	}
	bars := make([]contracts.Bar, 60)
	day := time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = contracts.Bar{Date: day.Format("2006-01-02"), Close: 1.0 + float64(i)*0.01}
		day = day.AddDate(0, 0, 7)
	}
	return bars, nil
}

func (g *marketStub) GetNavByDate(ctx context.Context) (contracts.NavMap, error) {
	if g.err != nil {
		return nil, g.err
	}
	return contracts.NavMap{}, nil
}

func newTestHandler(gw contracts.MarketDataGateway, hub *Hub) *ReportHandler {
	assembler := report.NewAssembler(rules.Default(), testInstrument, logger.Nop())
	refresher := report.NewRefresher(gw, assembler, logger.Nop())
	return NewReportHandler(refresher, hub, logger.Nop())
}

func TestReportGet_NoReportYet(t *testing.T) {
	h := newTestHandler(&marketStub{}, nil)

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest("GET", "/api/report", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 before the first refresh", rec.Code)
	}
}

func TestRefreshThenGet(t *testing.T) {
	h := newTestHandler(&marketStub{}, nil)

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest("POST", "/api/report/refresh", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d: %s", rec.Code, rec.Body.String())
	}

	var refreshed contracts.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &refreshed); err != nil {
		t.Fatalf("decode refresh body: %v", err)
	}
	if len(refreshed.Records) != 51 {
		t.Errorf("records = %d, want 51", len(refreshed.Records))
	}
	if !refreshed.Records[0].IsRealtime {
		t.Error("first record must be realtime")
	}

	rec = httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest("GET", "/api/report", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	var fetched contracts.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode get body: %v", err)
	}
	if len(fetched.Records) != len(refreshed.Records) {
		t.Error("GET must serve the refreshed report")
	}
}

func TestRefresh_AppliesBasis(t *testing.T) {
	h := newTestHandler(&marketStub{}, nil)

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest("POST", "/api/report/refresh?cost=1.2&qty=1000", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var result contracts.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !result.Records[0].HasProfit {
		t.Error("a cost basis must produce profit columns")
	}
}

func TestRefresh_RejectsBadBasis(t *testing.T) {
	h := newTestHandler(&marketStub{}, nil)

	for _, query := range []string{"?cost=-1", "?qty=-5", "?cost=abc", "?qty=1.5"} {
		rec := httptest.NewRecorder()
		h.Refresh(rec, httptest.NewRequest("POST", "/api/report/refresh"+query, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("query %q: status = %d, want 400", query, rec.Code)
		}
	}
}

func TestRefresh_FailingMarketStillResponds(t *testing.T) {
	h := newTestHandler(&marketStub{err: errors.New("provider down")}, nil)

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest("POST", "/api/report/refresh", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, failures ride in the report body", rec.Code)
	}

	var result contracts.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if result.Status != contracts.ReportStatusUnavailable {
		t.Errorf("status = %s, want unavailable", result.Status)
	}
}

func TestSummary(t *testing.T) {
	h := newTestHandler(&marketStub{}, nil)

	rec := httptest.NewRecorder()
	h.Summary(rec, httptest.NewRequest("GET", "/api/summary", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("summary before refresh = %d, want 404", rec.Code)
	}

	h.Refresh(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/report/refresh", nil))

	rec = httptest.NewRecorder()
	h.Summary(rec, httptest.NewRequest("GET", "/api/summary", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != contracts.ReportStatusOK {
		t.Errorf("status = %v", body["status"])
	}
	if _, ok := body["passed_weeks"]; !ok {
		t.Error("summary must carry passed_weeks")
	}
}

func TestParseBasis(t *testing.T) {
	tests := []struct {
		query   string
		want    contracts.CostBasis
		wantErr bool
	}{
		{"", contracts.CostBasis{}, false},
		{"?cost=1.234&qty=1000", contracts.CostBasis{UnitCost: 1.234, Quantity: 1000}, false},
		{"?cost=1.234", contracts.CostBasis{UnitCost: 1.234}, false},
		{"?qty=0", contracts.CostBasis{}, false},
		{"?cost=-0.1", contracts.CostBasis{}, true},
		{"?qty=-1", contracts.CostBasis{}, true},
		{"?cost=x", contracts.CostBasis{}, true},
	}

	for _, tt := range tests {
		t.Run("q"+tt.query, func(t *testing.T) {
			got, err := parseBasis(httptest.NewRequest("POST", "/r"+tt.query, nil))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("basis = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(logger.Nop())
	server := httptest.NewServer(http.HandlerFunc(hub.Handle))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(time.Second)
	for hub.Count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Broadcast(map[string]string{"status": "ok"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var got map[string]string
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got["status"] != "ok" {
		t.Errorf("payload = %v", got)
	}
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub(logger.Nop())
	server := httptest.NewServer(http.HandlerFunc(hub.Handle))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("closed client never dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Broadcasting into an empty hub is a no-op.
	hub.Broadcast(map[string]string{"status": "ok"})
}

func TestRefreshBroadcastsToHub(t *testing.T) {
	hub := NewHub(logger.Nop())
	server := httptest.NewServer(http.HandlerFunc(hub.Handle))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(time.Second)
	for hub.Count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	h := newTestHandler(&marketStub{}, hub)
	h.Refresh(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/report/refresh", nil))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var pushed contracts.Report
	if err := conn.ReadJSON(&pushed); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(pushed.Records) != 51 {
		t.Errorf("pushed records = %d, want 51", len(pushed.Records))
	}
}

func TestDashboardHome(t *testing.T) {
	h := NewDashboardHandler(testInstrument, logger.Nop())

	rec := httptest.NewRecorder()
	h.Home(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "159941") || !strings.Contains(body, "纳指ETF") {
		t.Error("page must name the instrument")
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestJobsHandler(t *testing.T) {
	s := scheduler.New(logger.Nop())
	h := NewJobsHandler(s, logger.Nop())

	rec := httptest.NewRecorder()
	h.GetStats(rec, httptest.NewRequest("GET", "/api/jobs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := mux.SetURLVars(httptest.NewRequest("POST", "/api/jobs/missing/run", nil),
		map[string]string{"name": "missing"})
	h.Run(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown job status = %d, want 404", rec.Code)
	}
}
