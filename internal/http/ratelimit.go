package http

import (
	"net"
	"sync"
	"time"
)

// idleBucketTTL is how long a bucket may sit unused before it is forgotten. Console client
// ids are minted per browser context, so buckets must not accumulate forever.
const idleBucketTTL = 10 * time.Minute

type rateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*tokenBucket
	rate      float64
	capacity  float64
	lastSweep time.Time
}

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
}

func newRateLimiter(rate float64) *rateLimiter {
	if rate <= 0 {
		return nil
	}
	capacity := max(rate*2, 5)
	return &rateLimiter{
		buckets:  make(map[string]*tokenBucket),
		rate:     rate,
		capacity: capacity,
	}
}

// Allow takes one token from key's bucket, reporting false when it is empty.
func (l *rateLimiter) Allow(key string, now time.Time) bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	bucket, ok := l.buckets[key]
	if !ok {
		l.buckets[key] = &tokenBucket{tokens: l.capacity - 1, lastRefill: now}
		return true
	}

	if elapsed := now.Sub(bucket.lastRefill).Seconds(); elapsed > 0 {
		bucket.tokens = min(bucket.tokens+elapsed*l.rate, l.capacity)
		bucket.lastRefill = now
	}

	if bucket.tokens < 1 {
		return false
	}
	bucket.tokens--
	return true
}

func (l *rateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < idleBucketTTL {
		return
	}
	l.lastSweep = now
	for key, bucket := range l.buckets {
		if now.Sub(bucket.lastRefill) > idleBucketTTL {
			delete(l.buckets, key)
		}
	}
}

func (l *rateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func clientIPAddress(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
