package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/storefront-service/domain"
	"github.com/fjod/go_storefront/storefront-service/internal/remote"
	"github.com/go-chi/chi/v5"
)

// RemoteClients hands out remote clients bound to a session.
type RemoteClients interface {
	Vendor(sessionID string) remote.Store
	Admin(sessionID string) remote.AdminStore
}

type VendorHandler struct {
	clients RemoteClients
	timeout time.Duration
}

func NewVendorHandler(clients RemoteClients, timeout time.Duration) *VendorHandler {
	return &VendorHandler{clients: clients, timeout: timeout}
}

func (h *VendorHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.VendorRegistration
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	h.call(w, r, func(ctx context.Context, store remote.Store) (interface{}, error) {
		return store.RegisterVendor(ctx, req)
	})
}

func (h *VendorHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.Credentials
	if !decodeJSON(w, r, &req) {
		return
	}

	h.call(w, r, func(ctx context.Context, store remote.Store) (interface{}, error) {
		resp, err := store.LoginVendor(ctx, req)
		if err != nil {
			return nil, err
		}
		// the token stays server side
		return remote.LoginResponse{Response: resp.Response, Vendor: resp.Vendor}, nil
	})
}

func (h *VendorHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.call(w, r, func(ctx context.Context, store remote.Store) (interface{}, error) {
		if err := store.LogoutVendor(ctx); err != nil {
			return nil, err
		}
		return remote.Response{Success: true}, nil
	})
}

func (h *VendorHandler) Me(w http.ResponseWriter, r *http.Request) {
	h.authenticated(w, r, func(_ context.Context, _ remote.Store, v *domain.Vendor) (interface{}, error) {
		return v, nil
	})
}

func (h *VendorHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.authenticated(w, r, func(ctx context.Context, store remote.Store, v *domain.Vendor) (interface{}, error) {
		return store.GetProducts(ctx, v.Email)
	})
}

func (h *VendorHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if !decodeJSON(w, r, &p) {
		return
	}
	h.authenticated(w, r, func(ctx context.Context, store remote.Store, v *domain.Vendor) (interface{}, error) {
		return store.AddProduct(ctx, attribute(p, v))
	})
}

func (h *VendorHandler) EditProduct(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if !decodeJSON(w, r, &p) {
		return
	}
	p.ID = domain.ProductID(chi.URLParam(r, "id"))
	h.authenticated(w, r, func(ctx context.Context, store remote.Store, v *domain.Vendor) (interface{}, error) {
		return store.EditProduct(ctx, attribute(p, v))
	})
}

func (h *VendorHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.authenticated(w, r, func(ctx context.Context, store remote.Store, _ *domain.Vendor) (interface{}, error) {
		return store.DeleteProduct(ctx, id)
	})
}

// attribute stamps the logged-in vendor onto a product.
func attribute(p domain.Product, v *domain.Vendor) domain.Product {
	p.VendorEmail = v.Email
	p.VendorName = v.Name
	p.VendorPhone = v.Phone
	p.VendorLogo = v.Logo
	return p
}

func (h *VendorHandler) call(w http.ResponseWriter, r *http.Request, fn func(context.Context, remote.Store) (interface{}, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp, err := fn(ctx, h.clients.Vendor(getSessionID(r.Context())))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *VendorHandler) authenticated(w http.ResponseWriter, r *http.Request, fn func(context.Context, remote.Store, *domain.Vendor) (interface{}, error)) {
	h.call(w, r, func(ctx context.Context, store remote.Store) (interface{}, error) {
		v, err := store.CurrentVendor(ctx)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, errNotLoggedIn
		}
		return fn(ctx, store, v)
	})
}
