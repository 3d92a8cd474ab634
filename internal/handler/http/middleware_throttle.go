// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/MKhiriev/dealer-auth/internal/utils"
	"golang.org/x/time/rate"
)

const msgTooManyRequests = "Too many requests, try again later"

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientThrottle keeps one token bucket per client IP.
type clientThrottle struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter

	limit rate.Limit
	burst int
	now   func() time.Time
}

func newClientThrottle(perSecond float64, burst int, now func() time.Time) *clientThrottle {
	if burst < 1 {
		burst = 1
	}
	return &clientThrottle{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		now:     now,
	}
}

func (t *clientThrottle) allow(ip string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	client, ok := t.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.clients[ip] = client
	}
	client.lastSeen = now

	return client.limiter.AllowN(now, 1)
}

// retryAfter is the number of whole seconds until one token is refilled.
func (t *clientThrottle) retryAfter() int {
	seconds := int(math.Ceil(1.0 / float64(t.limit)))
	return max(seconds, 1)
}

func (t *clientThrottle) purge(idle time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	removed := 0
	for ip, client := range t.clients {
		if now.Sub(client.lastSeen) > idle {
			delete(t.clients, ip)
			removed++
		}
	}
	return removed
}

func (t *clientThrottle) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clients)
}

// withThrottle rejects requests of clients that exhausted their bucket with
// 429 and a Retry-After header.
func (h *Handler) withThrottle(next http.Handler) http.Handler {
	if h.throttle == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := utils.ClientIP(r)
		if !h.throttle.allow(ip) {
			logger.FromRequest(r).Warn().Str("ip", ip).Msg("api rate limit exceeded")
			h.metrics.RecordRateLimited("api")

			w.Header().Set("Retry-After", strconv.Itoa(h.throttle.retryAfter()))
			h.writeStatus(w, r, http.StatusTooManyRequests, msgTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
