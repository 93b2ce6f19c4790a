package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, 5*time.Second), srv
}

func TestClient_FetchPortfolio_Success(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/data/portfolio" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("limit") != "50" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"data": {
				"hierarchy": [{"CHILD_ID": "PF1", "COE_ROADMAP_TYPE": "Portfolio"}],
				"investment": [],
				"pagination": {"page": 2, "limit": 50, "has_more": true}
			},
			"mode": "warehouse"
		}`))
	})
	defer srv.Close()

	ds, p, err := client.FetchPortfolio(context.Background(), 2, 50)
	if err != nil {
		t.Fatalf("FetchPortfolio() error = %v", err)
	}
	if len(ds.Hierarchy) != 1 || ds.Hierarchy[0].ChildID != "PF1" {
		t.Fatalf("hierarchy = %+v", ds.Hierarchy)
	}
	if len(ds.Investment) != 0 {
		t.Fatalf("investment = %+v, want empty list", ds.Investment)
	}
	if p == nil || !p.HasMore || p.Page != 2 {
		t.Fatalf("pagination = %+v", p)
	}
}

// TestClient_EnvelopeError 验证可解析但 status != success 的响应映射为 EnvelopeError。
func TestClient_EnvelopeError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "message": "query timed out"}`))
	})
	defer srv.Close()

	_, err := client.FetchData(context.Background())
	var envErr *EnvelopeError
	if !errors.As(err, &envErr) {
		t.Fatalf("error = %T(%v), want *EnvelopeError", err, err)
	}
	if envErr.Message != "query timed out" {
		t.Fatalf("message = %q", envErr.Message)
	}
}

// TestClient_ShapeError 验证缺失必要字段的响应映射为 ShapeError：
// 区分 "空列表"（合法）和 "字段缺失"（形状错误）。
func TestClient_ShapeError(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing data", `{"status": "success"}`},
		{"missing hierarchy", `{"status": "success", "data": {"investment": []}}`},
		{"missing investment", `{"status": "success", "data": {"hierarchy": []}}`},
		{"malformed json", `{not json`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(c.body))
			})
			defer srv.Close()

			_, err := client.FetchData(context.Background())
			var shapeErr *ShapeError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("error = %T(%v), want *ShapeError", err, err)
			}
		})
	}
}

// TestClient_TransportError 验证非 2xx 响应映射为 TransportError，并带出上游消息。
func TestClient_TransportError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"status": "error", "message": "warehouse unreachable"}`))
	})
	defer srv.Close()

	_, err := client.FetchData(context.Background())
	var trErr *TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("error = %T(%v), want *TransportError", err, err)
	}
	if trErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", trErr.StatusCode)
	}
	if trErr.Err == nil || trErr.Err.Error() != "warehouse unreachable" {
		t.Fatalf("wrapped message = %v", trErr.Err)
	}
}

func TestClient_TransportError_NetworkFailure(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond)

	_, err := client.FetchData(context.Background())
	var trErr *TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("error = %T(%v), want *TransportError", err, err)
	}
}

func TestClient_FetchRegionFilters(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/data/region/filters" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status": "success", "data": {"regions": ["Europe"], "markets": ["UK"], "functions": [], "tiers": ["1"]}}`))
	})
	defer srv.Close()

	opts, err := client.FetchRegionFilters(context.Background())
	if err != nil {
		t.Fatalf("FetchRegionFilters() error = %v", err)
	}
	if len(opts.Regions) != 1 || opts.Regions[0] != "Europe" {
		t.Fatalf("options = %+v", opts)
	}
}

func TestClient_Health(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status": "healthy"}`))
	})
	defer srv.Close()

	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
}
