package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fjod/go_storefront/pkg/circuitbreaker"
	"github.com/fjod/go_storefront/storefront-service/internal/checkout"
	"github.com/fjod/go_storefront/storefront-service/internal/payment"
	"github.com/fjod/go_storefront/storefront-service/internal/remote"
	"github.com/fjod/go_storefront/storefront-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"payment declined", fmt.Errorf("confirm payment: %w", payment.ErrDeclined), http.StatusPaymentRequired, "payment_declined"},
		{"payment mismatch", payment.ErrAmountMismatch, http.StatusPaymentRequired, "payment_mismatch"},
		{"cancelled through checkout", fmt.Errorf("%w: %w", checkout.ErrPaymentCancelled, payment.ErrCancelled), http.StatusPaymentRequired, "payment_cancelled"},
		{"breaker open", fmt.Errorf("get products: %w", circuitbreaker.ErrOpen), http.StatusServiceUnavailable, "service_unavailable"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{"upstream", &remote.APIError{Endpoint: "/orders", Status: 500, Body: "boom"}, http.StatusBadGateway, "upstream_error"},
		{"cart storage down", fmt.Errorf("%w: i/o timeout", service.ErrCartUnavailable), http.StatusServiceUnavailable, "cart_unavailable"},
		{"reference reused", checkout.ErrReferenceReused, http.StatusConflict, "payment_reference_used"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)

			handleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantCode, resp.Code)
		})
	}
}

func TestHandleError_UnknownErrorIsNotLeaked(t *testing.T) {
	w := httptest.NewRecorder()
	handleError(w, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("password=hunter2"))
	assert.NotContains(t, w.Body.String(), "hunter2")
}
