package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func TestGetNavByDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/f10/lsjz" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Referer") == "" {
			t.Error("NAV requests must carry a Referer")
		}
		if got := r.URL.Query().Get("fundCode"); got != "159941" {
			t.Errorf("fundCode = %q", got)
		}
		w.Write([]byte(`{"Data":{"LSJZList":[
			{"FSRQ":"2024-02-22","DWJZ":"1.6800","JZZZL":"0.71"},
			{"FSRQ":"2024-02-21","DWJZ":"1.6680","JZZZL":"-0.30"},
			{"FSRQ":"2024-02-20","DWJZ":"1.6730","JZZZL":"0.12"}
		]},"ErrCode":0,"ErrMsg":null,"TotalCount":3}`))
	}))
	t.Cleanup(server.Close)

	nav, err := newTestClient(server.URL).GetNavByDate(context.Background())
	if err != nil {
		t.Fatalf("GetNavByDate failed: %v", err)
	}

	if len(nav) != 3 {
		t.Fatalf("nav entries = %d, want 3", len(nav))
	}
	got, ok := nav.Lookup("2024-02-21")
	if !ok || got != 1.668 {
		t.Errorf("nav[2024-02-21] = %v (%v), want 1.668", got, ok)
	}
}

func TestGetNavByDate_Paginates(t *testing.T) {
	const total = 60
	base := time.Date(2024, 2, 22, 0, 0, 0, 0, time.UTC)

	var pagesServed []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("pageIndex"))
		pagesServed = append(pagesServed, page)

		start := (page - 1) * navPageSize
		end := start + navPageSize
		if end > total {
			end = total
		}

		rows := make([]map[string]string, 0, end-start)
		for i := start; i < end; i++ {
			rows = append(rows, map[string]string{
				"FSRQ": base.AddDate(0, 0, -i).Format("2006-01-02"),
				"DWJZ": fmt.Sprintf("%.4f", 1.5+float64(i)*0.001),
			})
		}

		resp := map[string]interface{}{
			"Data":       map[string]interface{}{"LSJZList": rows},
			"ErrCode":    0,
			"TotalCount": total,
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	nav, err := newTestClient(server.URL).GetNavByDate(context.Background())
	if err != nil {
		t.Fatalf("GetNavByDate failed: %v", err)
	}

	if len(nav) != total {
		t.Errorf("nav entries = %d, want %d", len(nav), total)
	}
	if len(pagesServed) != 2 || pagesServed[0] != 1 || pagesServed[1] != 2 {
		t.Errorf("pages served = %v, want [1 2]", pagesServed)
	}
}

func TestGetNavByDate_SkipsPlaceholderRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Data":{"LSJZList":[
			{"FSRQ":"2024-02-22","DWJZ":"1.6800"},
			{"FSRQ":"2024-02-21","DWJZ":"--"},
			{"FSRQ":"","DWJZ":"1.6000"}
		]},"ErrCode":0,"TotalCount":3}`))
	}))
	t.Cleanup(server.Close)

	nav, err := newTestClient(server.URL).GetNavByDate(context.Background())
	if err != nil {
		t.Fatalf("GetNavByDate failed: %v", err)
	}
	if len(nav) != 1 {
		t.Errorf("nav entries = %d, want only the well-formed row", len(nav))
	}
}

func TestGetNavByDate_EndpointError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Data":null,"ErrCode":403,"ErrMsg":"Referer check failed","TotalCount":0}`))
	}))
	t.Cleanup(server.Close)

	if _, err := newTestClient(server.URL).GetNavByDate(context.Background()); err == nil {
		t.Error("an ErrCode reply must be an error")
	}
}

func TestGetNavByDate_EmptyHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Data":{"LSJZList":[]},"ErrCode":0,"TotalCount":0}`))
	}))
	t.Cleanup(server.Close)

	if _, err := newTestClient(server.URL).GetNavByDate(context.Background()); err == nil {
		t.Error("an empty history must be an error")
	}
}
