package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	r.ObserveSearch("exact")
	r.ObserveIssue("ok")
	r.ObserveReload(time.Now(), 3, nil)
	r.ObserveImage("drive")
	r.ObserveHTTP("/api/search", "200")
}

func TestHandlerExposesCounters(t *testing.T) {
	r := NewRegistry()
	r.ObserveSearch("index")
	r.ObserveReload(time.Now(), 12, nil)
	r.ObserveReload(time.Now(), 0, errors.New("boom"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{`parts_search_total{tier="index"} 1`, "parts_catalog_records 12", "parts_catalog_reload_errors_total 1"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("missing %q", want)
		}
	}
}
