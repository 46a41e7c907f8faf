package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	capacity   int64
	tokens     int64
	refillRate int64 // tokens per second
	lastRefill time.Time
	mutex      sync.Mutex
}

// NewTokenBucket creates a new token bucket with the specified capacity and refill rate
func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity, // Start with full bucket
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a token is available and consumes it if so
func (tb *TokenBucket) Allow() bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// refill adds tokens based on time elapsed since last refill
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()

	tokensToAdd := int64(elapsed * float64(tb.refillRate))
	if tokensToAdd > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+tokensToAdd)
		tb.lastRefill = now
	}
}

// giveBack returns one token, compensating for a consumed-but-unused token
func (tb *TokenBucket) giveBack() {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	if tb.tokens < tb.capacity {
		tb.tokens++
	}
}

// TwoTierLimiter enforces a global limit and a per-client limit
type TwoTierLimiter struct {
	globalBucket      *TokenBucket
	clientBuckets     sync.Map // map[string]*TokenBucket
	perClientCapacity int64
	perClientRate     int64
}

// NewTwoTierLimiter creates a new two-tier rate limiter
func NewTwoTierLimiter(globalCapacity, globalRate, perClientCapacity, perClientRate int64) *TwoTierLimiter {
	limiter := &TwoTierLimiter{
		globalBucket:      NewTokenBucket(globalCapacity, globalRate),
		perClientCapacity: perClientCapacity,
		perClientRate:     perClientRate,
	}

	// Drop idle client buckets periodically so the map doesn't grow unbounded
	go limiter.cleanupClientBuckets()

	return limiter
}

// Allow checks both the global and the per-client limit
func (l *TwoTierLimiter) Allow(clientID string) bool {
	if !l.globalBucket.Allow() {
		return false
	}

	clientBucket := l.getOrCreateClientBucket(clientID)
	if !clientBucket.Allow() {
		// The global token was consumed but the request won't proceed
		l.globalBucket.giveBack()
		return false
	}

	return true
}

// Wait blocks until a token becomes available for the given client
func (l *TwoTierLimiter) Wait(ctx context.Context, clientID string) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.Allow(clientID) {
				return nil
			}
		}
	}
}

// getOrCreateClientBucket gets or creates a token bucket for the given client
func (l *TwoTierLimiter) getOrCreateClientBucket(clientID string) *TokenBucket {
	if bucket, ok := l.clientBuckets.Load(clientID); ok {
		return bucket.(*TokenBucket)
	}

	newBucket := NewTokenBucket(l.perClientCapacity, l.perClientRate)
	actual, _ := l.clientBuckets.LoadOrStore(clientID, newBucket)

	return actual.(*TokenBucket)
}

// cleanupClientBuckets removes client buckets idle for more than 30 minutes
func (l *TwoTierLimiter) cleanupClientBuckets() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-30 * time.Minute)

		l.clientBuckets.Range(func(key, value interface{}) bool {
			bucket := value.(*TokenBucket)
			bucket.mutex.Lock()
			lastActivity := bucket.lastRefill
			bucket.mutex.Unlock()

			if lastActivity.Before(cutoff) {
				l.clientBuckets.Delete(key)
			}
			return true
		})
	}
}

func min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
