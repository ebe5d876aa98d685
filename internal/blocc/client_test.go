package blocc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestClientMissingAPIRoot(t *testing.T) {
	c := NewClient(ClientOptions{}, noopLogger())
	if _, err := c.ForkStatus(context.Background(), ForkQuery{ContainerNum: 1}); err == nil {
		t.Fatal("未配置 API 根地址时应返回错误")
	}
}

func TestClientForkStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/forkStatus" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("containerNum") != "4" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("missing request id header")
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "FORKED"})
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{APIRoot: srv.URL + "/api/v1/", Timeout: time.Second}, noopLogger())
	got, err := c.ForkStatus(context.Background(), ForkQuery{ContainerNum: 4})
	if err != nil {
		t.Fatalf("成功响应不应报错: %v", err)
	}
	if got != StatusForked {
		t.Fatalf("expected FORKED, got %s", got)
	}
}

func TestClientHTTPErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "x"})
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{APIRoot: srv.URL}, noopLogger())
	_, err := c.Transactions(context.Background(), TransactionFilter{})

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("HTTP 400 应返回 HTTPError, 实际 %v", err)
	}
	if httpErr.StatusCode != http.StatusBadRequest || err.Error() != "x" {
		t.Fatalf("unexpected error %d %q", httpErr.StatusCode, err.Error())
	}
}

func TestClientHTTPErrorWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{APIRoot: srv.URL}, noopLogger())
	_, err := c.ForkStatus(context.Background(), ForkQuery{ContainerNum: 1})
	if err == nil || err.Error() != "backend responded with status 502" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestClientDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{APIRoot: srv.URL}, noopLogger())
	_, err := c.ApprovedReadings(context.Background(), SeriesQuery{ContainerNum: 5, Window: time.Minute})
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestClientNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(ClientOptions{APIRoot: url, Timeout: time.Second}, noopLogger())
	_, err := c.ForkStatus(context.Background(), ForkQuery{ContainerNum: 1})
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestClientApprovedReadings(t *testing.T) {
	now := time.Unix(1_700_000_600, 0)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/approvedTempReadings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("sinceTimestamp"); got != "1700000000" {
			t.Errorf("unexpected sinceTimestamp %s", got)
		}
		_, _ = w.Write([]byte(`[{"txId":"a","temperature":3.5,"approvals":6,"timestamp":1700000100}]`))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{APIRoot: srv.URL, Now: func() time.Time { return now }}, noopLogger())
	got, err := c.ApprovedReadings(context.Background(), SeriesQuery{ContainerNum: 5, Window: 10 * time.Minute})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].TxID != "a" || got[0].Approvals != 6 || got[0].Temperature.String() != "3.5" {
		t.Fatalf("unexpected readings %+v", got)
	}
}
