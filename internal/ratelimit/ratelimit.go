// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package ratelimit provides fixed-window request counters keyed by an
// arbitrary string, usually the client IP.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether another request for key fits into the current
// window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type entry struct {
	count    int
	windowAt time.Time
}

// MemoryLimiter counts requests in process memory. Counters are not shared
// between instances.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewMemoryLimiter allows limit requests per key and window.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]*entry),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow implements Limiter. It never fails.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || !now.Before(e.windowAt) {
		l.entries[key] = &entry{count: 1, windowAt: now.Add(l.window)}
		return l.limit > 0, nil
	}
	e.count++
	return e.count <= l.limit, nil
}

// Cleanup removes expired entries.
func (l *MemoryLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, e := range l.entries {
		if !now.Before(e.windowAt) {
			delete(l.entries, key)
		}
	}
}

// RunCleanup calls Cleanup every window until ctx is done.
func (l *MemoryLimiter) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

func (l *MemoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
