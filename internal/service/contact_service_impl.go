package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campusswap/backend/internal/model"
)

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	clicks     *ClickGuard
	identity   IdentityResolver
	messages   MessageGuard
	redirector *Redirector
}

// NewContactService creates a ContactService from its collaborators.
func NewContactService(clicks *ClickGuard, identity IdentityResolver, messages MessageGuard, redirector *Redirector) ContactService {
	return &contactServiceImpl{
		clicks:     clicks,
		identity:   identity,
		messages:   messages,
		redirector: redirector,
	}
}

// Initiate checks, in order: click guard, login, self-contact, sent record.
// Rejections never touch storage or navigate.
func (s *contactServiceImpl) Initiate(ctx context.Context, req model.ContactRequest) (*model.ContactResult, error) {
	if req.SellerID == "" || req.ListingID == "" {
		return nil, ErrInvalidContactRequest
	}

	buyerID, loggedIn := s.identity.ResolveCurrentUser(ctx)
	scope := req.ClientKey
	if loggedIn {
		scope = buyerID
	}

	if !s.clicks.TryAcquire(scope, req.SellerID, req.ListingID) {
		return &model.ContactResult{State: model.ContactStateDebounced}, nil
	}

	if !loggedIn {
		return &model.ContactResult{
			State:  model.ContactStateUnauthenticated,
			Notice: NoticeLoginRequired,
		}, nil
	}

	if buyerID == req.SellerID {
		return &model.ContactResult{
			State:  model.ContactStateSelfContact,
			Notice: NoticeSelfContact,
		}, nil
	}

	intent := model.NavigationIntent{
		TargetUserID: req.SellerID,
		ListingID:    req.ListingID,
		ListingName:  req.ListingName,
	}

	if s.messages.HasSent(ctx, buyerID, req.SellerID, req.ListingID) {
		slog.Info("contact already initiated, redirecting",
			"buyer_id", buyerID, "seller_id", req.SellerID, "listing_id", req.ListingID)
		return &model.ContactResult{
			State:       model.ContactStateAlreadyContacted,
			RedirectURL: s.redirector.Redirect(ctx, intent),
			Intent:      &intent,
		}, nil
	}

	recorded, err := s.messages.MarkSent(ctx, buyerID, req.SellerID, req.ListingID)
	if err != nil {
		slog.Warn("could not record first contact, continuing",
			"error", err, "buyer_id", buyerID, "seller_id", req.SellerID, "listing_id", req.ListingID)
	} else if !recorded {
		// 別インスタンスが先に記録した
		slog.Info("contact recorded concurrently, redirecting",
			"buyer_id", buyerID, "seller_id", req.SellerID, "listing_id", req.ListingID)
		return &model.ContactResult{
			State:       model.ContactStateAlreadyContacted,
			RedirectURL: s.redirector.Redirect(ctx, intent),
			Intent:      &intent,
		}, nil
	}

	scrollY := req.ScrollY
	intent.ScrollY = &scrollY
	return &model.ContactResult{
		State:       model.ContactStateNewContact,
		RedirectURL: s.redirector.Redirect(ctx, intent),
		Intent:      &intent,
	}, nil
}

func (s *contactServiceImpl) HasContacted(ctx context.Context, buyerID, sellerID, listingID string) bool {
	return s.messages.HasSent(ctx, buyerID, sellerID, listingID)
}

func (s *contactServiceImpl) Reset(ctx context.Context) (*model.ResetReport, error) {
	report := &model.ResetReport{ClickGuardEntries: s.clicks.Reset()}
	n, err := s.messages.Reset(ctx)
	if err != nil {
		return report, fmt.Errorf("reset contact records: %w", err)
	}
	report.StoredRecords = n
	slog.Info("contact dedup state reset",
		"click_guard_entries", report.ClickGuardEntries, "stored_records", report.StoredRecords)
	return report, nil
}
