// Package remote talks to the storefront backend. The backend is opaque; this
// package only knows the request and response shapes. Two transports reach
// it: an action envelope posted through the relay, and plain REST.
package remote

import (
	"context"

	"github.com/fjod/go_storefront/storefront-service/domain"
)

// Response is the envelope every backend call answers with. Success false is
// a normal outcome (wrong password, unknown product) and is not an error.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type LoginResponse struct {
	Response
	Vendor *domain.Vendor `json:"vendor,omitempty"`
	Token  string         `json:"token,omitempty"`
}

type AdminLoginResponse struct {
	Response
	Token string `json:"token,omitempty"`
}

type ProductsResponse struct {
	Response
	Products []domain.Product `json:"products"`
}

type VendorsResponse struct {
	Response
	Vendors []domain.Vendor `json:"vendors"`
}

type OrdersResponse struct {
	Response
	Orders []domain.OrderRecord `json:"orders"`
}

// Store is the vendor and shopper facing capability.
type Store interface {
	RegisterVendor(ctx context.Context, v domain.VendorRegistration) (*Response, error)
	LoginVendor(ctx context.Context, c domain.Credentials) (*LoginResponse, error)
	LogoutVendor(ctx context.Context) error
	CurrentVendor(ctx context.Context) (*domain.Vendor, error)
	GetProducts(ctx context.Context, vendorEmail string) (*ProductsResponse, error)
	AddProduct(ctx context.Context, p domain.Product) (*Response, error)
	EditProduct(ctx context.Context, p domain.Product) (*Response, error)
	DeleteProduct(ctx context.Context, id string) (*Response, error)
	PlaceOrder(ctx context.Context, o domain.OrderRecord) (*Response, error)
}

// AdminStore is the moderation capability. Every call except LoginAdmin is
// bearer-authenticated with the admin token.
type AdminStore interface {
	LoginAdmin(ctx context.Context, c domain.Credentials) (*AdminLoginResponse, error)
	LogoutAdmin(ctx context.Context) error
	Authenticated(ctx context.Context) (bool, error)
	FetchAllVendors(ctx context.Context) (*VendorsResponse, error)
	FetchAllProducts(ctx context.Context) (*ProductsResponse, error)
	UpdateVendorStatus(ctx context.Context, vendorID string, status domain.VendorStatus) (*Response, error)
	DeleteProduct(ctx context.Context, id string) (*Response, error)
	FetchAllOrders(ctx context.Context) (*OrdersResponse, error)
}
