package model

import "time"

// ContactAttempt identifies a single debounce window for a (seller, listing) pair.
// Lives only in process memory.
type ContactAttempt struct {
	SellerID  string    `json:"seller_id"`
	ListingID string    `json:"listing_id"`
	Timestamp time.Time `json:"timestamp"`
}

// SentMessageRecord records that a first-contact message exists for a
// (buyer, seller, listing) triple.
type SentMessageRecord struct {
	BuyerID   string    `json:"buyer_id"`
	SellerID  string    `json:"seller_id"`
	ListingID string    `json:"listing_id"`
	SentAt    time.Time `json:"sent_at"`
}

// NavigationIntent describes where the front end should navigate after a contact
// attempt and which UI state it should restore there.
// ScrollY is nil on the redirect-only path.
type NavigationIntent struct {
	TargetUserID string `json:"target_user_id"`
	ListingID    string `json:"listing_id"`
	ListingName  string `json:"listing_name"`
	ScrollY      *int   `json:"scroll_y,omitempty"`
}

// ContactRequest is the input to a single contact attempt.
type ContactRequest struct {
	SellerID    string
	ListingID   string
	ListingName string
	ScrollY     int
	// ClientKey scopes the click guard when no identity resolves (e.g. remote address).
	ClientKey string
}

// ContactState is the terminal state reached by a contact attempt.
type ContactState string

const (
	ContactStateDebounced        ContactState = "debounced"
	ContactStateUnauthenticated  ContactState = "unauthenticated"
	ContactStateSelfContact      ContactState = "self_contact"
	ContactStateAlreadyContacted ContactState = "already_contacted"
	ContactStateNewContact       ContactState = "new_contact"
)

// Redirects reports whether the state carries a navigation.
func (s ContactState) Redirects() bool {
	return s == ContactStateAlreadyContacted || s == ContactStateNewContact
}

// ContactResult is the outcome of a contact attempt.
type ContactResult struct {
	State       ContactState      `json:"state"`
	RedirectURL string            `json:"redirect_url,omitempty"`
	Intent      *NavigationIntent `json:"intent,omitempty"`
	// Notice is the user-facing message for rejected attempts.
	Notice string `json:"message,omitempty"`
}

// ResetReport summarises a full wipe of contact-dedup state.
type ResetReport struct {
	ClickGuardEntries int `json:"click_guard_entries"`
	StoredRecords     int `json:"stored_records"`
}
