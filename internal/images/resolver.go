package images

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"partsbot/internal/metrics"
)

var (
	reDrive     = regexp.MustCompile(`drive\.google\.com/(?:file/d/([-\w]{20,})|open\?id=([-\w]{20,}))`)
	reIBBDirect = regexp.MustCompile(`(?i)^https?://i\.ibb\.co/`)
	reIBBPage   = regexp.MustCompile(`(?i)^https?://ibb\.co/`)
)

// NormalizeDriveURL rewrites a Google Drive share link to its direct download
// form. Other URLs are returned unchanged.
func NormalizeDriveURL(url string) string {
	m := reDrive.FindStringSubmatch(url)
	if m == nil {
		return url
	}
	id := m[1]
	if id == "" {
		id = m[2]
	}
	return "https://drive.google.com/uc?export=download&id=" + id
}

// Resolver turns stored image links into URLs a client can load directly.
// ibb.co share pages are fetched to read their og:image; results are cached.
type Resolver struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metrics.Registry

	mu    sync.Mutex
	cache map[string]string
}

func NewResolver(timeout time.Duration, rps float64, m *metrics.Registry) *Resolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Resolver{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		metrics:    m,
		cache:      map[string]string{},
	}
}

// Resolve never fails: on any problem the input URL is returned.
func (r *Resolver) Resolve(ctx context.Context, raw string) string {
	url := strings.TrimSpace(raw)
	if url == "" {
		return ""
	}

	if direct := NormalizeDriveURL(url); direct != url {
		r.metrics.ObserveImage("drive")
		return direct
	}
	if reIBBDirect.MatchString(url) || !reIBBPage.MatchString(url) {
		r.metrics.ObserveImage("direct")
		return url
	}

	r.mu.Lock()
	cached, ok := r.cache[url]
	r.mu.Unlock()
	if ok {
		r.metrics.ObserveImage("cached")
		return cached
	}

	resolved, err := r.ogImage(ctx, url)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("resolve ibb image")
		r.metrics.ObserveImage("failed")
		return url
	}
	r.metrics.ObserveImage("ibb")

	r.mu.Lock()
	r.cache[url] = resolved
	r.mu.Unlock()
	return resolved
}

func (r *Resolver) ogImage(ctx context.Context, url string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "partsbot/1.0")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}
	content, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	content = strings.TrimSpace(content)
	if !ok || content == "" {
		return "", fmt.Errorf("og:image missing")
	}
	return content, nil
}
