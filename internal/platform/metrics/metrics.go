package metrics

import (
	"net/http"
	"sync/atomic"
	"time"
)

// Collector keeps process-wide request counters for /metrics.
type Collector struct {
	totalRequests   atomic.Uint64
	errorRequests   atomic.Uint64
	rateLimited     atomic.Uint64
	unauthenticated atomic.Uint64
	forbidden       atomic.Uint64
	pageRedirects   atomic.Uint64
	logins          atomic.Uint64
	loginFailures   atomic.Uint64
	sessionsPurged  atomic.Uint64
	totalDurationMs atomic.Uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.totalRequests.Add(1)
	switch {
	case status >= 500:
		c.errorRequests.Add(1)
	case status == http.StatusTooManyRequests:
		c.rateLimited.Add(1)
	case status == http.StatusUnauthorized:
		c.unauthenticated.Add(1)
	case status == http.StatusForbidden:
		c.forbidden.Add(1)
	case status == http.StatusSeeOther:
		c.pageRedirects.Add(1)
	}
	c.totalDurationMs.Add(uint64(duration.Milliseconds()))
}

func (c *Collector) RecordLogin(ok bool) {
	if c == nil {
		return
	}
	if ok {
		c.logins.Add(1)
		return
	}
	c.loginFailures.Add(1)
}

func (c *Collector) RecordPurge(n int64) {
	if c == nil || n <= 0 {
		return
	}
	c.sessionsPurged.Add(uint64(n))
}

func (c *Collector) Snapshot() map[string]any {
	total := c.totalRequests.Load()
	totalMs := c.totalDurationMs.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":        total,
		"errorsTotal":          c.errorRequests.Load(),
		"rateLimitedTotal":     c.rateLimited.Load(),
		"unauthenticatedTotal": c.unauthenticated.Load(),
		"forbiddenTotal":       c.forbidden.Load(),
		"pageRedirectsTotal":   c.pageRedirects.Load(),
		"loginsTotal":          c.logins.Load(),
		"loginFailuresTotal":   c.loginFailures.Load(),
		"sessionsPurgedTotal":  c.sessionsPurged.Load(),
		"avgDurationMs":        avg,
		"totalDurationMs":      totalMs,
	}
}
