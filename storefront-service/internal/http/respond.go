package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fjod/go_storefront/pkg/circuitbreaker"
	"github.com/fjod/go_storefront/storefront-service/internal/cart"
	"github.com/fjod/go_storefront/storefront-service/internal/checkout"
	"github.com/fjod/go_storefront/storefront-service/internal/payment"
	"github.com/fjod/go_storefront/storefront-service/internal/remote"
	"github.com/fjod/go_storefront/storefront-service/internal/service"
)

type ErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Details  string `json:"details,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Error("failed to encode response", slog.Any("error", err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError maps domain and transport errors to HTTP statuses.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *remote.APIError

	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, cart.ErrMissingProductID):
		respondError(w, http.StatusBadRequest, "invalid_product_id", err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrReferenceReused):
		respondError(w, http.StatusConflict, "payment_reference_used", err.Error())
	case errors.Is(err, payment.ErrCancelled):
		respondError(w, http.StatusPaymentRequired, "payment_cancelled", err.Error())
	case errors.Is(err, payment.ErrDeclined):
		respondError(w, http.StatusPaymentRequired, "payment_declined", err.Error())
	case errors.Is(err, payment.ErrAmountMismatch):
		respondError(w, http.StatusPaymentRequired, "payment_mismatch", err.Error())
	case errors.Is(err, errNotLoggedIn):
		respondError(w, http.StatusUnauthorized, "unauthorized", "log in first")
	case errors.Is(err, remote.ErrUnauthorized):
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:    "session expired, please log in again",
			Code:     "session_expired",
			Redirect: "/",
		})
	case errors.Is(err, service.ErrCartUnavailable):
		respondError(w, http.StatusServiceUnavailable, "cart_unavailable", "cart is temporarily unavailable, please retry")
	case errors.Is(err, circuitbreaker.ErrOpen):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "upstream timed out")
	case errors.As(err, &apiErr):
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   "upstream request failed",
			Code:    "upstream_error",
			Details: apiErr.Error(),
		})
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}
