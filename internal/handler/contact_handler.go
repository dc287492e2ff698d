package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/campusswap/backend/internal/model"
	"github.com/campusswap/backend/internal/service"
	"github.com/campusswap/backend/pkg/auth"
)

const maxListingNameLength = 200

// ContactHandler handles the "Contact Seller" flow and its admin reset.
type ContactHandler struct {
	contactService service.ContactService
	debounceWindow time.Duration
}

// NewContactHandler creates a ContactHandler. debounceWindow is reported to
// clients in Retry-After when a click is debounced.
func NewContactHandler(contactService service.ContactService, debounceWindow time.Duration) *ContactHandler {
	return &ContactHandler{contactService: contactService, debounceWindow: debounceWindow}
}

// initiateRequest is the expected JSON body for POST /api/contact/initiate.
type initiateRequest struct {
	SellerID    string `json:"seller_id"`
	ListingID   string `json:"listing_id"`
	ListingName string `json:"listing_name"`
	// ScrollY is window.scrollY, which browsers report fractionally on zoomed pages.
	ScrollY float64 `json:"scroll_y"`
}

type initiateResponse struct {
	State       model.ContactState      `json:"state"`
	RedirectURL string                  `json:"redirect_url,omitempty"`
	Intent      *model.NavigationIntent `json:"intent,omitempty"`
	Error       string                  `json:"error,omitempty"`
	Message     string                  `json:"message,omitempty"`
}

// Initiate handles POST /api/contact/initiate (optional auth).
func (h *ContactHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return
	}
	if len([]rune(req.ListingName)) > maxListingNameLength {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "listing_name_too_long"})
		return
	}
	scrollY := 0
	if req.ScrollY > 0 && !math.IsInf(req.ScrollY, 1) {
		scrollY = int(math.Min(math.Round(req.ScrollY), math.MaxInt32))
	}

	res, err := h.contactService.Initiate(r.Context(), model.ContactRequest{
		SellerID:    req.SellerID,
		ListingID:   req.ListingID,
		ListingName: req.ListingName,
		ScrollY:     scrollY,
		ClientKey:   clientIP(r, 1),
	})
	if errors.Is(err, service.ErrInvalidContactRequest) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seller_and_listing_required"})
		return
	}
	if err != nil {
		slog.Error("contact initiate failed", "error", err, "seller_id", req.SellerID, "listing_id", req.ListingID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
		return
	}

	resp := initiateResponse{
		State:       res.State,
		RedirectURL: res.RedirectURL,
		Intent:      res.Intent,
		Message:     res.Notice,
	}
	switch res.State {
	case model.ContactStateDebounced:
		resp.Error = "debounced"
		w.Header().Set("Retry-After", retryAfterSeconds(h.debounceWindow))
		writeJSON(w, http.StatusTooManyRequests, resp)
	case model.ContactStateUnauthenticated:
		resp.Error = "login_required"
		writeJSON(w, http.StatusUnauthorized, resp)
	case model.ContactStateSelfContact:
		resp.Error = "self_contact"
		writeJSON(w, http.StatusForbidden, resp)
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

// Status handles GET /api/contact/status?seller_id=&listing_id= (auth required).
func (h *ContactHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	sellerID := r.URL.Query().Get("seller_id")
	listingID := r.URL.Query().Get("listing_id")
	if sellerID == "" || listingID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seller_and_listing_required"})
		return
	}

	contacted := h.contactService.HasContacted(r.Context(), userID, sellerID, listingID)
	writeJSON(w, http.StatusOK, map[string]bool{"contacted": contacted})
}

// AdminReset handles POST /api/admin/contact/reset (host only).
func (h *ContactHandler) AdminReset(w http.ResponseWriter, r *http.Request) {
	if !auth.IsHostFromContext(r.Context()) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
		return
	}

	report, err := h.contactService.Reset(r.Context())
	if err != nil {
		slog.Error("contact reset failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "reset_failed"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}
