// Package rate throttles repeated attempts from a single client, keyed by an
// arbitrary identifier such as an email address. The login endpoint uses it
// to slow down credential guessing.
package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter struct {
	expiry   time.Duration
	burst    int
	limitRPS float64

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLimiter allows burst attempts immediately and limitRPS per second after
// that, per client. Clients idle for expiryMinutes are forgotten.
func NewLimiter(burst int, expiryMinutes int, limitRPS float64) *Limiter {
	lm := &Limiter{
		expiry:   time.Duration(expiryMinutes) * time.Minute,
		burst:    burst,
		limitRPS: limitRPS,
		clients:  make(map[string]*clientLimiter),
	}
	go lm.refresh()
	return lm
}

// Check reports whether the client identified by id may proceed.
func (l *Limiter) Check(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cl, ok := l.clients[id]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(l.limitRPS), l.burst),
		}
		l.clients[id] = cl
	}

	cl.lastAccess = time.Now()
	return cl.limiter.Allow()
}

func (l *Limiter) refresh() {
	t := time.NewTicker(time.Minute)
	defer t.Stop()

	for range t.C {
		l.mu.Lock()
		for id, v := range l.clients {
			if time.Since(v.lastAccess) > l.expiry {
				delete(l.clients, id)
			}
		}
		l.mu.Unlock()
	}
}

// Every converts a minimum interval between events to its rate-per-second.
func Every(interval time.Duration) float64 {
	return float64(rate.Every(interval))
}
