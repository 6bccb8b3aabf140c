package otp

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Status tags stored for a verified phone number.
type Status string

const (
	StatusVerified        Status = "verified"
	StatusAlreadyVerified Status = "already_verified"
)

// VerifiedTTL is how long a successful verification short-circuits repeat requests.
const VerifiedTTL = 2 * time.Minute

type verifiedEntry struct {
	status Status
	at     time.Time
}

// Gate remembers recently verified phone numbers so repeated verify taps
// do not reach the OTP vendor again. Entries older than the TTL are ignored
// and the table is capped at a fixed number of phones (least recently
// recorded evicted first).
type Gate struct {
	entries *lru.Cache[string, verifiedEntry]
	ttl     time.Duration
	now     func() time.Time
}

// NewGate creates a gate holding at most size phone numbers.
// A nil now uses time.Now.
func NewGate(size int, ttl time.Duration, now func() time.Time) (*Gate, error) {
	entries, err := lru.New[string, verifiedEntry](size)
	if err != nil {
		return nil, fmt.Errorf("otp: gate: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	return &Gate{entries: entries, ttl: ttl, now: now}, nil
}

// CheckRecent returns the cached status of phone when it was recorded less than the TTL ago.
// It does not change the entry or its recency.
func (g *Gate) CheckRecent(phone string) (Status, bool) {
	entry, ok := g.entries.Peek(phone)
	if !ok {
		return "", false
	}
	if g.now().Sub(entry.at) >= g.ttl {
		return "", false
	}
	return entry.status, true
}

// RecordVerified overwrites the entry for phone with status at the current time.
func (g *Gate) RecordVerified(phone string, status Status) {
	g.entries.Add(phone, verifiedEntry{status: status, at: g.now()})
}

// Sweep removes expired entries and reports how many were dropped.
func (g *Gate) Sweep() int {
	now := g.now()
	removed := 0
	for _, phone := range g.entries.Keys() {
		entry, ok := g.entries.Peek(phone)
		if ok && now.Sub(entry.at) >= g.ttl {
			g.entries.Remove(phone)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, expired ones included.
func (g *Gate) Len() int {
	return g.entries.Len()
}

// RunSweeper calls Sweep once per TTL until ctx is done.
func (g *Gate) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(g.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Sweep()
		}
	}
}
