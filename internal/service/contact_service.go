package service

import (
	"context"
	"errors"

	"github.com/campusswap/backend/internal/model"
)

// ErrInvalidContactRequest is returned when seller or listing id is missing.
var ErrInvalidContactRequest = errors.New("seller_id and listing_id are required")

// User-facing notices for rejected contact attempts.
const (
	NoticeLoginRequired = "Please log in to contact the seller."
	NoticeSelfContact   = "You cannot message yourself."
)

// ContactService defines the business logic behind the "Contact Seller" action.
type ContactService interface {
	// Initiate runs one contact attempt to its terminal state.
	Initiate(ctx context.Context, req model.ContactRequest) (*model.ContactResult, error)

	// HasContacted reports whether buyerID already sent a first-contact message
	// to sellerID about listingID.
	HasContacted(ctx context.Context, buyerID, sellerID, listingID string) bool

	// Reset clears every click-guard entry and stored contact record.
	Reset(ctx context.Context) (*model.ResetReport, error)
}
