// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package collector

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/veilio/veilcount/internal/config"
	"github.com/veilio/veilcount/internal/privacy"
)

func testCollectorConfig(url string) *config.CollectorConfig {
	return &config.CollectorConfig{
		Addresses:      []string{url},
		Index:          "logstash-*",
		Port:           22,
		ExcludePattern: "10\\..*",
		MaxResults:     10000,
		Timeout:        5 * time.Second,
	}
}

// newFakeES starts an httptest server that satisfies the client's
// product check and delegates search handling to fn.
func newFakeES(t *testing.T, fn http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		fn(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestESCollectorFetchDay(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	srv := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode search body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"aggregations": {
				"attacking_ips": {
					"buckets": [
						{"key": "203.0.113.7", "doc_count": 341},
						{"key": "198.51.100.2", "doc_count": 12}
					]
				}
			}
		}`))
	})

	c, err := NewESCollector(testCollectorConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewESCollector: %v", err)
	}

	day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	records, err := c.FetchDay(context.Background(), day)
	if err != nil {
		t.Fatalf("FetchDay: %v", err)
	}

	want := []privacy.Record{
		{Identifier: "203.0.113.7", Count: 341},
		{Identifier: "198.51.100.2", Count: 12},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i := range want {
		if records[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, records[i], want[i])
		}
	}

	if !strings.Contains(gotPath, "logstash-*") {
		t.Errorf("search path = %q, want index logstash-*", gotPath)
	}

	// Inspect the assembled query
	if size, ok := gotBody["size"].(float64); !ok || size != 0 {
		t.Errorf("size = %v, want 0", gotBody["size"])
	}

	raw, err := json.Marshal(gotBody)
	if err != nil {
		t.Fatalf("re-marshal body: %v", err)
	}
	body := string(raw)

	for _, fragment := range []string{
		`"dest_port":22`,
		`"gte":"2026-01-15T00:00:00"`,
		`"lt":"2026-01-16T00:00:00"`,
		`"src_ip.keyword"`,
		`"10\\..*"`,
		`"attacking_ips"`,
	} {
		if !strings.Contains(body, fragment) {
			t.Errorf("search body missing %q:\n%s", fragment, body)
		}
	}
}

func TestESCollectorFetchDayTruncatesToUTCDay(t *testing.T) {
	var gotBody string

	srv := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read search body: %v", err)
		}
		gotBody = string(raw)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"aggregations":{"attacking_ips":{"buckets":[]}}}`))
	})

	c, err := NewESCollector(testCollectorConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewESCollector: %v", err)
	}

	// Mid-day instant still queries the whole containing UTC day
	day := time.Date(2026, 3, 2, 17, 45, 3, 0, time.UTC)
	if _, err := c.FetchDay(context.Background(), day); err != nil {
		t.Fatalf("FetchDay: %v", err)
	}

	if !strings.Contains(gotBody, `"gte":"2026-03-02T00:00:00"`) ||
		!strings.Contains(gotBody, `"lt":"2026-03-03T00:00:00"`) {
		t.Errorf("day range not truncated to UTC day:\n%s", gotBody)
	}
}

func TestESCollectorFetchDayEmptyDay(t *testing.T) {
	srv := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"aggregations":{"attacking_ips":{"buckets":[]}}}`))
	})

	c, err := NewESCollector(testCollectorConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewESCollector: %v", err)
	}

	records, err := c.FetchDay(context.Background(), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FetchDay on empty day: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestESCollectorFetchDayBackendError(t *testing.T) {
	srv := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"reason":"shard failure"}}`))
	})

	c, err := NewESCollector(testCollectorConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewESCollector: %v", err)
	}

	_, err = c.FetchDay(context.Background(), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("error = %v, want ErrBackendUnavailable", err)
	}
}

func TestESCollectorFetchDayMalformedResponse(t *testing.T) {
	srv := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"aggregations": not json`))
	})

	c, err := NewESCollector(testCollectorConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewESCollector: %v", err)
	}

	_, err = c.FetchDay(context.Background(), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("error = %v, want ErrMalformedResponse", err)
	}
}

func TestESCollectorPing(t *testing.T) {
	srv := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	c, err := NewESCollector(testCollectorConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewESCollector: %v", err)
	}

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

// stubCollector lets breaker tests script backend behavior.
type stubCollector struct {
	records []privacy.Record
	err     error
	calls   int
}

func (s *stubCollector) FetchDay(ctx context.Context, day time.Time) ([]privacy.Record, error) {
	s.calls++
	return s.records, s.err
}

func (s *stubCollector) Ping(ctx context.Context) error {
	return s.err
}

func TestBreakerCollectorPassthrough(t *testing.T) {
	stub := &stubCollector{
		records: []privacy.Record{{Identifier: "203.0.113.7", Count: 9}},
	}
	b := NewBreakerCollector(stub)

	records, err := b.FetchDay(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("FetchDay: %v", err)
	}
	if len(records) != 1 || records[0].Identifier != "203.0.113.7" {
		t.Errorf("records = %+v", records)
	}
}

func TestBreakerCollectorOpensAfterFailures(t *testing.T) {
	stub := &stubCollector{err: errors.New("connection refused")}
	b := NewBreakerCollector(stub)

	// Drive enough failures to trip the breaker
	for i := 0; i < 15; i++ {
		_, _ = b.FetchDay(context.Background(), time.Now())
	}

	callsBefore := stub.calls
	_, err := b.FetchDay(context.Background(), time.Now())
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("error after trip = %v, want ErrBackendUnavailable", err)
	}
	if stub.calls != callsBefore {
		t.Errorf("open breaker still reached the backend (%d calls)", stub.calls-callsBefore)
	}
}
