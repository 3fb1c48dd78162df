package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saasfoundry/billingd/internal/auth"
	"github.com/saasfoundry/billingd/internal/billing"
	"github.com/saasfoundry/billingd/internal/logger"
)

// Landing paths of the surrounding web app. The checkout flow only ever
// redirects into these.
const (
	registerPath = "/register"
	pricingPath  = "/pricing"
)

// startCheckout handles GET /checkout/{priceID}. It gates on an
// authenticated session, then hands off to the billing service and
// redirects the browser to the hosted checkout page.
func (h *Handler) startCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, user, err := h.sessions.Resolve(ctx, h.sessionToken(r))
	if err != nil {
		// A broken session backend is indistinguishable from "not
		// signed in" for the browser; send it through registration.
		logger.WithContext(ctx).Error("Session resolution failed", "error", err)
	}
	if sess == nil || user == nil {
		query := r.URL.Query()
		query.Set("next", r.URL.Path)
		http.Redirect(w, r, registerPath+"?"+query.Encode(), http.StatusSeeOther)
		return
	}
	ctx = auth.WithUser(ctx, user)

	priceID := chi.URLParam(r, "priceID")
	customAmount, hasCustomAmount := "", false
	if vals, ok := r.URL.Query()["customAmount"]; ok && len(vals) > 0 {
		customAmount, hasCustomAmount = vals[0], true
	}

	checkoutURL, err := h.billing.StartCheckout(ctx, billing.CheckoutRequest{
		User:            *user,
		PriceID:         priceID,
		CustomAmount:    customAmount,
		HasCustomAmount: hasCustomAmount,
		Origin:          requestOrigin(r),
	})
	if err != nil {
		if errors.Is(err, billing.ErrCustomerPersist) || errors.Is(err, billing.ErrCheckoutCreate) {
			h.writeErrorResponse(w, r, http.StatusInternalServerError, billing.UserErrorMessage)
			return
		}
		logger.WithContext(ctx).Error("Checkout initiation failed", "error", err, "price_id", priceID)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	if checkoutURL == "" {
		http.Redirect(w, r, pricingPath, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, checkoutURL, http.StatusSeeOther)
}

// sessionToken extracts the opaque session token from the request cookie
func (h *Handler) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(h.cookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// requestOrigin reconstructs the scheme://host origin of a request,
// honoring the proxy protocol header when present.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
