package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_storefront/storefront-service/domain"
	"github.com/fjod/go_storefront/storefront-service/internal/checkout"
)

type Checkouter interface {
	Checkout(ctx context.Context, c checkout.Cart, req checkout.Request) (*checkout.Result, error)
}

type CheckoutHandler struct {
	carts    CartRegistry
	checkout Checkouter
	timeout  time.Duration
	log      *slog.Logger
}

func NewCheckoutHandler(carts CartRegistry, co Checkouter, timeout time.Duration, log *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		carts:    carts,
		checkout: co,
		timeout:  timeout,
		log:      log,
	}
}

type CheckoutRequestDTO struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Note       string `json:"note"`
	PaymentRef string `json:"paymentRef"`
}

type CheckoutResponse struct {
	Success bool             `json:"success"`
	Result  *checkout.Result `json:"result"`
}

type CheckoutFailureResponse struct {
	ErrorResponse
	Result *checkout.Result `json:"result"`
}

func (req CheckoutRequestDTO) validate() string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", req.Name},
		{"email", req.Email},
		{"phone", req.Phone},
		{"address", req.Address},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return "missing required fields: " + strings.Join(missing, ", ")
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess, err := h.carts.Session(ctx, getSessionID(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}

	result, err := h.checkout.Checkout(ctx, sess, checkout.Request{
		Customer: domain.Customer{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
			Note:    req.Note,
		},
		PaymentRef: req.PaymentRef,
	})

	var subErr *checkout.SubmissionError
	switch {
	case errors.As(err, &subErr):
		respondJSON(w, http.StatusBadGateway, CheckoutFailureResponse{
			ErrorResponse: ErrorResponse{
				Error:   "order submission failed; your payment is recorded, please contact support",
				Code:    "order_submission_failed",
				Details: subErr.Error(),
			},
			Result: result,
		})
	case err != nil:
		handleError(w, r, err)
	default:
		respondJSON(w, http.StatusCreated, CheckoutResponse{Success: true, Result: result})
	}
}
