package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fjod/go_storefront/storefront-service/domain"
)

// AdminClient implements AdminStore over any Transport.
type AdminClient struct {
	transport Transport
	token     Slot
}

func NewAdminClient(transport Transport, token Slot) *AdminClient {
	if token == nil {
		token = NewMemorySlot()
	}
	return &AdminClient{transport: transport, token: token}
}

func (c *AdminClient) LoginAdmin(ctx context.Context, cred domain.Credentials) (*AdminLoginResponse, error) {
	var resp AdminLoginResponse
	err := c.transport.Do(ctx, Call{Action: "loginAdmin", Method: http.MethodPost, Path: "/admin/login", Body: cred}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Token != "" {
		if err := c.token.Save(ctx, resp.Token); err != nil {
			return nil, fmt.Errorf("store admin token: %w", err)
		}
	}
	return &resp, nil
}

func (c *AdminClient) LogoutAdmin(ctx context.Context) error {
	return c.token.Clear(ctx)
}

// Authenticated reports whether an admin token is stored.
func (c *AdminClient) Authenticated(ctx context.Context) (bool, error) {
	token, ok, err := c.token.Load(ctx)
	return ok && token != "", err
}

func (c *AdminClient) FetchAllVendors(ctx context.Context) (*VendorsResponse, error) {
	var resp VendorsResponse
	err := c.do(ctx, Call{Action: "fetchAllVendors", Method: http.MethodGet, Path: "/admin/vendors"}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *AdminClient) FetchAllProducts(ctx context.Context) (*ProductsResponse, error) {
	var resp ProductsResponse
	err := c.do(ctx, Call{Action: "fetchAllProducts", Method: http.MethodGet, Path: "/admin/products"}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *AdminClient) UpdateVendorStatus(ctx context.Context, vendorID string, status domain.VendorStatus) (*Response, error) {
	call := Call{
		Action: "updateVendorStatus",
		Method: http.MethodPatch,
		Path:   "/admin/vendors/" + url.PathEscape(vendorID),
		Body:   map[string]any{"status": status},
		Params: map[string]any{"vendorId": vendorID},
	}

	var resp Response
	if err := c.do(ctx, call, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *AdminClient) DeleteProduct(ctx context.Context, id string) (*Response, error) {
	call := Call{
		Action: "adminDeleteProduct",
		Method: http.MethodDelete,
		Path:   "/admin/products/" + url.PathEscape(id),
		Params: map[string]any{"id": id},
	}

	var resp Response
	if err := c.do(ctx, call, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *AdminClient) FetchAllOrders(ctx context.Context) (*OrdersResponse, error) {
	var resp OrdersResponse
	err := c.do(ctx, Call{Action: "fetchAllOrders", Method: http.MethodGet, Path: "/admin/orders"}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *AdminClient) do(ctx context.Context, call Call, out any) error {
	token, _, err := c.token.Load(ctx)
	if err != nil {
		return fmt.Errorf("load admin token: %w", err)
	}
	call.Token = token

	err = c.transport.Do(ctx, call, out)
	if isUnauthorized(err) {
		_ = c.token.Clear(ctx)
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return err
}
