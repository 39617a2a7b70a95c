package fetcher

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPOptions configures the HTTP transport.
type HTTPOptions struct {
	UserAgent   string
	Timeout     time.Duration
	RateLimits  map[string]rate.Limit // host -> requests per second
	DefaultRate rate.Limit
	Base        http.RoundTripper
}

// AdaptiveLimiter wraps a rate.Limiter with adaptive rate adjustment.
// On success it increases the rate by 20%, never above the configured rate.
// On 429 it halves the rate (down to initial/4 minimum).
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	initialRate rate.Limit
	maxRate     rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates an adaptive rate limiter that auto-tunes.
func NewAdaptiveLimiter(initialRate rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(initialRate, burst),
		initialRate: initialRate,
		maxRate:     initialRate,
		minRate:     initialRate / 4,
		currentRate: initialRate,
	}
}

// Wait blocks until the limiter allows an event.
func (a *AdaptiveLimiter) Wait(req *http.Request) error {
	return a.limiter.Wait(req.Context())
}

// OnSuccess increases the rate by 20%, capped at the configured rate.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.currentRate == rate.Inf {
		return
	}
	newRate := a.currentRate * 1.2
	if newRate > a.maxRate {
		newRate = a.maxRate
	}
	a.currentRate = newRate
	a.limiter.SetLimit(newRate)
}

// OnRateLimit halves the rate on 429 responses.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.currentRate == rate.Inf {
		return
	}
	newRate := a.currentRate * 0.5
	if newRate < a.minRate {
		newRate = a.minRate
	}
	a.currentRate = newRate
	a.limiter.SetLimit(newRate)
	zap.L().Warn("adaptive rate limit: reducing rate after 429",
		zap.Float64("new_rate", float64(newRate)),
	)
}

// Limit returns the current rate limit.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// Transport is an http.RoundTripper that waits on a per-host adaptive
// limiter and stamps the User-Agent. Failed requests are returned as-is.
type Transport struct {
	base        http.RoundTripper
	userAgent   string
	defaultRate rate.Limit

	mu       sync.Mutex
	limiters map[string]*AdaptiveLimiter
}

// NewTransport creates a Transport with the given options.
func NewTransport(opts HTTPOptions) *Transport {
	if opts.UserAgent == "" {
		opts.UserAgent = "Norgesglass/1.0"
	}
	if opts.DefaultRate == 0 {
		opts.DefaultRate = 20
	}
	base := opts.Base
	if base == nil {
		base = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     20,
			IdleConnTimeout:     90 * time.Second,
		}
	}
	limiters := make(map[string]*AdaptiveLimiter, len(opts.RateLimits))
	for host, rps := range opts.RateLimits {
		limiters[host] = NewAdaptiveLimiter(rps, burstFor(rps))
	}
	return &Transport{
		base:        base,
		userAgent:   opts.UserAgent,
		defaultRate: opts.DefaultRate,
		limiters:    limiters,
	}
}

func burstFor(rps rate.Limit) int {
	if rps == rate.Inf || rps < 1 {
		return 1
	}
	return int(rps)
}

// limiterFor returns the limiter for host, creating one at the default rate
// the first time an unconfigured host is seen.
func (t *Transport) limiterFor(host string) *AdaptiveLimiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	if lim, ok := t.limiters[host]; ok {
		return lim
	}
	lim := NewAdaptiveLimiter(t.defaultRate, burstFor(t.defaultRate))
	t.limiters[host] = lim
	return lim
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	lim := t.limiterFor(req.URL.Host)
	if err := lim.Wait(req); err != nil {
		return nil, eris.Wrap(err, "rate limiter wait")
	}

	cloned := req.Clone(req.Context())
	if cloned.Header.Get("User-Agent") == "" {
		cloned.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.base.RoundTrip(cloned)
	if err != nil {
		zap.L().Debug("http request failed",
			zap.String("url", req.URL.Redacted()),
			zap.Error(err),
		)
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		lim.OnRateLimit()
	case resp.StatusCode < 400:
		lim.OnSuccess()
	}
	return resp, nil
}

// NewHTTPClient returns an *http.Client backed by a Transport.
func NewHTTPClient(opts HTTPOptions) *http.Client {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: NewTransport(opts),
	}
}

// ErrBodyTooLarge is returned by ReadAllLimited when the body exceeds the cap.
var ErrBodyTooLarge = eris.New("response body exceeded size limit")

// ReadAllLimited reads at most max bytes from r. A body longer than max is
// an error rather than a silent truncation.
func ReadAllLimited(r io.Reader, max int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, eris.Wrap(err, "read body")
	}
	if int64(len(body)) > max {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}
