package fetch

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateSettings allows Requests requests per Window for each host.
type RateSettings struct {
	Requests int
	Window   time.Duration
}

// HostLimiter enforces per-host politeness. A nil *HostLimiter never waits.
//
// Design decision: two independent limits are kept per host. The fixed
// delay spaces consecutive requests the way a polite crawler does, and
// the token bucket caps bursts over a longer window. Hosts are keyed
// lower-case so "Example.com" and "example.com" share one budget.
type HostLimiter struct {
	// delay is the minimum gap between two requests to one host.
	delay       time.Duration
	rate        RateSettings
	rateEnabled bool

	// mu guards last and limiters.
	mu sync.Mutex
	// last holds the time each host's most recent request was allowed.
	last map[string]time.Time
	// limiters holds one token bucket per host, created on first use.
	limiters map[string]*rate.Limiter
}

// NewHostLimiter returns a limiter that waits at least delay between two
// requests to one host and, when rateCfg is set, also rate-limits each host.
func NewHostLimiter(delay time.Duration, rateCfg RateSettings) *HostLimiter {
	l := &HostLimiter{delay: delay, last: make(map[string]time.Time)}
	if rateCfg.Requests > 0 && rateCfg.Window > 0 {
		l.rateEnabled = true
		l.rate = rateCfg
		l.limiters = make(map[string]*rate.Limiter)
	}
	return l
}

// Wait blocks until a request to host is allowed or ctx is done.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	if l == nil || host == "" {
		return nil
	}
	// Nothing configured.
	if l.delay <= 0 && !l.rateEnabled {
		return nil
	}
	host = strings.ToLower(host)

	var (
		sleep   time.Duration
		limiter *rate.Limiter
	)
	now := time.Now()

	l.mu.Lock()
	if l.delay > 0 {
		if last, ok := l.last[host]; ok {
			if rest := last.Add(l.delay).Sub(now); rest > 0 {
				sleep = rest
			}
		}
		// Reserve the slot now so concurrent callers queue behind us.
		l.last[host] = now.Add(sleep)
	}
	if l.rateEnabled {
		limiter = l.limiterLocked(host)
	}
	l.mu.Unlock()

	// Sleep outside the lock so other hosts are not held up.
	if sleep > 0 {
		timer := time.NewTimer(sleep)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if limiter != nil {
		return limiter.Wait(ctx)
	}
	return nil
}

// limiterLocked returns host's token bucket. The bucket refills one token
// per Window/Requests and holds at most Requests tokens. Callers hold l.mu.
func (l *HostLimiter) limiterLocked(host string) *rate.Limiter {
	if limiter, ok := l.limiters[host]; ok {
		return limiter
	}
	interval := l.rate.Window / time.Duration(l.rate.Requests)
	if interval <= 0 {
		interval = time.Millisecond
	}
	limiter := rate.NewLimiter(rate.Every(interval), l.rate.Requests)
	l.limiters[host] = limiter
	return limiter
}
