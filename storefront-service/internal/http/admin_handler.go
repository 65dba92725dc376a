package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/storefront-service/domain"
	"github.com/fjod/go_storefront/storefront-service/internal/remote"
	"github.com/go-chi/chi/v5"
)

var errNotLoggedIn = errors.New("not logged in")

type AdminHandler struct {
	clients RemoteClients
	timeout time.Duration
}

func NewAdminHandler(clients RemoteClients, timeout time.Duration) *AdminHandler {
	return &AdminHandler{clients: clients, timeout: timeout}
}

type UpdateVendorStatusDTO struct {
	Status domain.VendorStatus `json:"status"`
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.Credentials
	if !decodeJSON(w, r, &req) {
		return
	}
	h.call(w, r, false, func(ctx context.Context, admin remote.AdminStore) (interface{}, error) {
		resp, err := admin.LoginAdmin(ctx, req)
		if err != nil {
			return nil, err
		}
		ok := resp.Success || resp.Token != ""
		return remote.Response{Success: ok, Message: resp.Message}, nil
	})
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.call(w, r, false, func(ctx context.Context, admin remote.AdminStore) (interface{}, error) {
		if err := admin.LogoutAdmin(ctx); err != nil {
			return nil, err
		}
		return remote.Response{Success: true}, nil
	})
}

func (h *AdminHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	h.call(w, r, true, func(ctx context.Context, admin remote.AdminStore) (interface{}, error) {
		return admin.FetchAllVendors(ctx)
	})
}

func (h *AdminHandler) UpdateVendorStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateVendorStatusDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	switch req.Status {
	case domain.VendorStatusPending, domain.VendorStatusApproved, domain.VendorStatusBlocked:
	default:
		respondError(w, http.StatusBadRequest, "invalid_status", "status must be pending, approved or blocked")
		return
	}

	id := chi.URLParam(r, "id")
	h.call(w, r, true, func(ctx context.Context, admin remote.AdminStore) (interface{}, error) {
		return admin.UpdateVendorStatus(ctx, id, req.Status)
	})
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.call(w, r, true, func(ctx context.Context, admin remote.AdminStore) (interface{}, error) {
		return admin.FetchAllProducts(ctx)
	})
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.call(w, r, true, func(ctx context.Context, admin remote.AdminStore) (interface{}, error) {
		return admin.DeleteProduct(ctx, id)
	})
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	h.call(w, r, true, func(ctx context.Context, admin remote.AdminStore) (interface{}, error) {
		return admin.FetchAllOrders(ctx)
	})
}

func (h *AdminHandler) call(w http.ResponseWriter, r *http.Request, requireLogin bool, fn func(context.Context, remote.AdminStore) (interface{}, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	admin := h.clients.Admin(getSessionID(r.Context()))
	if requireLogin {
		loggedIn, err := admin.Authenticated(ctx)
		if err != nil {
			handleError(w, r, err)
			return
		}
		if !loggedIn {
			handleError(w, r, errNotLoggedIn)
			return
		}
	}

	resp, err := fn(ctx, admin)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
