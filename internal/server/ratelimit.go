package server

import (
	"encoding/hex"
	"net"
	"sync"
	"time"

	"github.com/zeebo/blake3"
	"golang.org/x/time/rate"
)

// clientLimiter enforces a per-client request budget. Client identity is a
// blake3 hash of the remote IP so raw addresses never sit in memory longer
// than the request.
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientEntry
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	now     func() time.Time
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(requests int, window time.Duration) *clientLimiter {
	return &clientLimiter{
		clients: map[string]*clientEntry{},
		limit:   rate.Limit(float64(requests) / window.Seconds()),
		burst:   requests,
		ttl:     2 * window,
		now:     time.Now,
	}
}

// Allow reports whether the client may proceed, consuming one token.
func (l *clientLimiter) Allow(remoteAddr string) bool {
	id := clientIdentity(remoteAddr)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.clients[id]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[id] = entry
		l.evictStaleLocked(now)
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}

// evictStaleLocked drops clients idle past the TTL. Called while the lock
// is held, and only on the new-client path so steady traffic pays nothing.
func (l *clientLimiter) evictStaleLocked(now time.Time) {
	for id, entry := range l.clients {
		if now.Sub(entry.lastSeen) > l.ttl {
			delete(l.clients, id)
		}
	}
}

func clientIdentity(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	sum := blake3.Sum256([]byte(host))
	return hex.EncodeToString(sum[:8])
}
