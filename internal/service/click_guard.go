package service

import (
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/campusswap/backend/internal/model"
)

// DefaultDebounceWindow is how long a (seller, listing) click stays locked.
const DefaultDebounceWindow = 5 * time.Second

// clickKeyPrefix contains the "initiated" reset marker.
const clickKeyPrefix = "contact_initiated|"

// scheduleFunc runs f once after d. Scheduled callbacks are never cancelled.
type scheduleFunc func(d time.Duration, f func())

// ClickGuard suppresses repeated contact clicks on the same (seller, listing)
// pair within a debounce window. State is process-local.
type ClickGuard struct {
	window   time.Duration
	now      func() time.Time
	schedule scheduleFunc

	mu      sync.Mutex
	seq     uint64
	entries map[string]clickEntry
}

type clickEntry struct {
	attempt model.ContactAttempt
	seq     uint64
}

// NewClickGuard creates a ClickGuard. A non-positive window falls back to
// DefaultDebounceWindow.
func NewClickGuard(window time.Duration) *ClickGuard {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &ClickGuard{
		window: window,
		now:    time.Now,
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		entries: make(map[string]clickEntry),
	}
}

// Window returns the debounce window.
func (g *ClickGuard) Window() time.Duration { return g.window }

// TryAcquire reports whether a click on (sellerID, listingID) may proceed.
// scope separates callers (buyer id or client address) and may be empty.
// On success the key is held until the window elapses.
func (g *ClickGuard) TryAcquire(scope, sellerID, listingID string) bool {
	key := clickKey(scope, sellerID, listingID)
	now := g.now()

	g.mu.Lock()
	if e, ok := g.entries[key]; ok && now.Sub(e.attempt.Timestamp) < g.window {
		g.mu.Unlock()
		slog.Debug("contact click debounced",
			"seller_id", sellerID,
			"listing_id", listingID,
			"held_for_ms", now.Sub(e.attempt.Timestamp).Milliseconds(),
		)
		return false
	}
	g.seq++
	seq := g.seq
	g.entries[key] = clickEntry{
		attempt: model.ContactAttempt{SellerID: sellerID, ListingID: listingID, Timestamp: now},
		seq:     seq,
	}
	g.mu.Unlock()

	g.schedule(g.window, func() { g.release(key, seq) })
	return true
}

// release drops key only if it still belongs to the acquire that scheduled it.
// A reset or a newer acquire makes this a no-op.
func (g *ClickGuard) release(key string, seq uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if e, ok := g.entries[key]; ok && e.seq == seq {
		delete(g.entries, key)
	}
}

// Reset clears every held key and returns how many were cleared.
func (g *ClickGuard) Reset() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := len(g.entries)
	g.entries = make(map[string]clickEntry)
	return n
}

// Len returns the number of held keys.
func (g *ClickGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

func clickKey(scope, sellerID, listingID string) string {
	return clickKeyPrefix + url.QueryEscape(scope) + "|" + url.QueryEscape(sellerID) + "|" + url.QueryEscape(listingID)
}
