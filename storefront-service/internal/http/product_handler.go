package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/storefront-service/internal/remote"
)

// ProductLister is the public catalog.
type ProductLister interface {
	GetProducts(ctx context.Context, vendorEmail string) (*remote.ProductsResponse, error)
}

type ProductHandler struct {
	products ProductLister
	timeout  time.Duration
}

func NewProductHandler(products ProductLister, timeout time.Duration) *ProductHandler {
	return &ProductHandler{products: products, timeout: timeout}
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp, err := h.products.GetProducts(ctx, r.URL.Query().Get("vendorEmail"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
