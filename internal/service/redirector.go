package service

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/campusswap/backend/internal/model"
)

// LocationObserver is notified synchronously whenever the Redirector navigates.
type LocationObserver interface {
	LocationChanged(ctx context.Context, location string, intent model.NavigationIntent)
}

// LocationObserverFunc adapts a function to LocationObserver.
type LocationObserverFunc func(ctx context.Context, location string, intent model.NavigationIntent)

func (f LocationObserverFunc) LocationChanged(ctx context.Context, location string, intent model.NavigationIntent) {
	f(ctx, location, intent)
}

// Redirector turns a NavigationIntent into a conversation URL the front end
// pushes into its history.
type Redirector struct {
	mu        sync.RWMutex
	observers []LocationObserver
}

// NewRedirector creates a Redirector with the given observers.
func NewRedirector(observers ...LocationObserver) *Redirector {
	return &Redirector{observers: observers}
}

// Subscribe adds an observer.
func (r *Redirector) Subscribe(o LocationObserver) {
	r.mu.Lock()
	r.observers = append(r.observers, o)
	r.mu.Unlock()
}

// Redirect builds the conversation URL for intent, notifies observers and
// returns the URL.
func (r *Redirector) Redirect(ctx context.Context, intent model.NavigationIntent) string {
	location := ConversationURL(intent)

	r.mu.RLock()
	observers := make([]LocationObserver, len(r.observers))
	copy(observers, r.observers)
	r.mu.RUnlock()

	for _, o := range observers {
		o.LocationChanged(ctx, location, intent)
	}
	return location
}

// ConversationURL returns
// /message/{seller}?productId={listing}&productName={name}[&scrollY={offset}].
func ConversationURL(intent model.NavigationIntent) string {
	var b strings.Builder
	b.WriteString("/message/")
	b.WriteString(url.PathEscape(intent.TargetUserID))
	b.WriteString("?productId=")
	b.WriteString(encodeURIComponent(intent.ListingID))
	b.WriteString("&productName=")
	b.WriteString(encodeURIComponent(intent.ListingName))
	if intent.ScrollY != nil {
		b.WriteString("&scrollY=")
		b.WriteString(strconv.Itoa(*intent.ScrollY))
	}
	return b.String()
}

// uriComponentUnescaper undoes the QueryEscape output that encodeURIComponent
// leaves literal: space as %20, and !'()* unescaped.
var uriComponentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeURIComponent escapes s exactly like the browser function of the same name.
func encodeURIComponent(s string) string {
	return uriComponentUnescaper.Replace(url.QueryEscape(s))
}

// LogLocationObserver logs every navigation at INFO level.
func LogLocationObserver() LocationObserver {
	return LocationObserverFunc(func(ctx context.Context, location string, intent model.NavigationIntent) {
		slog.Info("contact redirect",
			"location", location,
			"seller_id", intent.TargetUserID,
			"listing_id", intent.ListingID,
			"restores_scroll", intent.ScrollY != nil,
		)
	})
}
