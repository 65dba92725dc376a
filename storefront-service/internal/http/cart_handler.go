package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/storefront-service/domain"
	"github.com/fjod/go_storefront/storefront-service/internal/cart"
	"github.com/fjod/go_storefront/storefront-service/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// CartRegistry resolves the cart of a session.
type CartRegistry interface {
	Session(ctx context.Context, sessionID string) (*service.Session, error)
}

type CartHandler struct {
	carts   CartRegistry
	timeout time.Duration
	log     *slog.Logger
}

func NewCartHandler(carts CartRegistry, timeout time.Duration, log *slog.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
		log:     log,
	}
}

type AddItemRequestDTO struct {
	Product domain.Product `json:"product"`
	Qty     int            `json:"qty"`
}

type UpdateQuantityRequestDTO struct {
	Qty int `json:"qty"`
}

type CartResponse struct {
	Items     []domain.LineItem `json:"items"`
	ItemCount int               `json:"itemCount"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
}

func newCartResponse(items []domain.LineItem) CartResponse {
	if items == nil {
		items = []domain.LineItem{}
	}
	return CartResponse{
		Items:     items,
		ItemCount: cart.ItemCount(items),
		Subtotal:  cart.Subtotal(items),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, newCartResponse(sess.Items()))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	h.dispatch(w, r, cart.AddItem(req.Product, req.Qty), http.StatusCreated)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	h.dispatch(w, r, cart.UpdateQty(chi.URLParam(r, "product_id"), req.Qty), http.StatusOK)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, cart.RemoveItem(chi.URLParam(r, "product_id")), http.StatusOK)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, cart.ClearCart(), http.StatusOK)
}

// Dispatch accepts a raw {type, payload} action.
func (h *CartHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "could not read body")
		return
	}
	action, err := cart.DecodeAction(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	h.dispatch(w, r, action, http.StatusOK)
}

func (h *CartHandler) dispatch(w http.ResponseWriter, r *http.Request, a cart.Action, status int) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := sess.Dispatch(ctx, a); err != nil {
		handleError(w, r, err)
		return
	}
	h.log.DebugContext(ctx, "cart updated",
		"session_id", sess.ID(), "action", string(a.Type), "request_id", getRequestID(r.Context()))
	respondJSON(w, status, newCartResponse(sess.Items()))
}

func (h *CartHandler) session(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess, err := h.carts.Session(ctx, sessionID)
	if err != nil {
		handleError(w, r, err)
		return nil, false
	}
	return sess, true
}
