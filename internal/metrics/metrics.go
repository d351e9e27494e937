package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the service metrics. A nil *Registry is valid and records
// nothing, so packages can take one optionally.
type Registry struct {
	reg *prometheus.Registry

	Searches      *prometheus.CounterVec
	Issues        *prometheus.CounterVec
	CatalogSize   prometheus.Gauge
	ReloadSec     prometheus.Histogram
	ReloadErrors  prometheus.Counter
	ImageResolves *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	searches := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "parts_search_total", Help: "Searches by outcome tier."}, []string{"tier"})
	issues := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "parts_issue_total", Help: "Issue requests by result."}, []string{"result"})
	size := prometheus.NewGauge(prometheus.GaugeOpts{Name: "parts_catalog_records", Help: "Records in the current snapshot."})
	reload := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "parts_catalog_reload_seconds",
		Help:    "Time spent loading the inventory source.",
		Buckets: prometheus.DefBuckets,
	})
	reloadErrors := prometheus.NewCounter(prometheus.CounterOpts{Name: "parts_catalog_reload_errors_total", Help: "Failed inventory loads."})
	images := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "parts_image_resolve_total", Help: "Image URL resolutions by kind."}, []string{"kind"})
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "parts_http_requests_total", Help: "HTTP requests by route and status."}, []string{"route", "status"})

	r.MustRegister(searches, issues, size, reload, reloadErrors, images, httpRequests)
	return &Registry{
		reg:           r,
		Searches:      searches,
		Issues:        issues,
		CatalogSize:   size,
		ReloadSec:     reload,
		ReloadErrors:  reloadErrors,
		ImageResolves: images,
		HTTPRequests:  httpRequests,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

func (r *Registry) ObserveSearch(tier string) {
	if r == nil {
		return
	}
	r.Searches.WithLabelValues(tier).Inc()
}

func (r *Registry) ObserveIssue(result string) {
	if r == nil {
		return
	}
	r.Issues.WithLabelValues(result).Inc()
}

func (r *Registry) ObserveReload(started time.Time, records int, err error) {
	if r == nil {
		return
	}
	r.ReloadSec.Observe(time.Since(started).Seconds())
	if err != nil {
		r.ReloadErrors.Inc()
		return
	}
	r.CatalogSize.Set(float64(records))
}

func (r *Registry) ObserveImage(kind string) {
	if r == nil {
		return
	}
	r.ImageResolves.WithLabelValues(kind).Inc()
}

func (r *Registry) ObserveHTTP(route, status string) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(route, status).Inc()
}
