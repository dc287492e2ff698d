package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/campusswap/backend/internal/model"
	"github.com/campusswap/backend/internal/repository"
)

// SentKeyPrefix は送信済みレコードのキー接頭辞（"message" マーカーを含む）
const SentKeyPrefix = "message_sent|"

// ResetMarkers are the substrings the reset utility uses to find contact-dedup keys.
var ResetMarkers = []string{"message", "conversation", "prevented", "initiated"}

// MessageGuard は初回コンタクトメッセージの送信済み状態を管理するインターフェース
type MessageGuard interface {
	// HasSent reports whether a first-contact message exists for the triple.
	// Storage failures are logged and reported as false.
	HasSent(ctx context.Context, buyerID, sellerID, listingID string) bool

	// MarkSent records the triple and reports whether this call created the
	// record. false with a nil error means another caller recorded it first.
	MarkSent(ctx context.Context, buyerID, sellerID, listingID string) (bool, error)

	// Reset removes every stored contact-dedup record.
	Reset(ctx context.Context) (int, error)
}

// kvMessageGuard は MessageGuard の KVStore 実装
type kvMessageGuard struct {
	store repository.KVStore
	ttl   time.Duration
	now   func() time.Time
}

// NewMessageGuard は MessageGuard を生成する（DI: KVStore を注入）。
// ttl が 0 以下の場合、送信済みレコードは失効しない。
func NewMessageGuard(store repository.KVStore, ttl time.Duration) MessageGuard {
	return &kvMessageGuard{store: store, ttl: ttl, now: time.Now}
}

// SentMessageKey returns the storage key for a (buyer, seller, listing) triple.
// Components are query-escaped so the separator never appears inside one.
func SentMessageKey(buyerID, sellerID, listingID string) string {
	return SentKeyPrefix + url.QueryEscape(buyerID) + "|" + url.QueryEscape(sellerID) + "|" + url.QueryEscape(listingID)
}

func (g *kvMessageGuard) HasSent(ctx context.Context, buyerID, sellerID, listingID string) bool {
	key := SentMessageKey(buyerID, sellerID, listingID)
	raw, err := g.store.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return false
	}
	if err != nil {
		slog.Warn("sent-message lookup failed, assuming not contacted",
			"error", err, "buyer_id", buyerID, "seller_id", sellerID, "listing_id", listingID)
		return false
	}
	rec, ok := decodeSentRecord(raw)
	if !ok {
		// 旧形式の値（例: "true"）は送信済みとして扱う
		return true
	}
	return !g.expired(rec)
}

func (g *kvMessageGuard) MarkSent(ctx context.Context, buyerID, sellerID, listingID string) (bool, error) {
	key := SentMessageKey(buyerID, sellerID, listingID)
	rec := model.SentMessageRecord{
		BuyerID:   buyerID,
		SellerID:  sellerID,
		ListingID: listingID,
		SentAt:    g.now().UTC(),
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("encode sent record: %w", err)
	}

	wrote, err := g.store.SetIfAbsent(ctx, key, string(b))
	if err != nil {
		return false, fmt.Errorf("mark sent: %w", err)
	}
	if wrote || g.ttl <= 0 {
		return wrote, nil
	}

	// 失効済みレコードのみ上書きする
	raw, err := g.store.Get(ctx, key)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("mark sent: %w", err)
	}
	if err == nil {
		old, ok := decodeSentRecord(raw)
		if !ok || !g.expired(old) {
			return false, nil
		}
	}
	if err := g.store.Set(ctx, key, string(b)); err != nil {
		return false, fmt.Errorf("mark sent: %w", err)
	}
	return true, nil
}

func (g *kvMessageGuard) Reset(ctx context.Context) (int, error) {
	return g.store.DeleteMatching(ctx, ResetMarkers)
}

func (g *kvMessageGuard) expired(rec model.SentMessageRecord) bool {
	return g.ttl > 0 && g.now().Sub(rec.SentAt) >= g.ttl
}

func decodeSentRecord(raw string) (model.SentMessageRecord, bool) {
	var rec model.SentMessageRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.SentAt.IsZero() {
		return model.SentMessageRecord{}, false
	}
	return rec, true
}
