package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fjod/go_storefront/storefront-service/domain"
)

// Client implements Store over any Transport.
type Client struct {
	transport Transport
	token     Slot
	vendor    Slot
}

func NewClient(transport Transport, token, vendor Slot) *Client {
	if token == nil {
		token = NewMemorySlot()
	}
	if vendor == nil {
		vendor = NewMemorySlot()
	}
	return &Client{transport: transport, token: token, vendor: vendor}
}

func (c *Client) RegisterVendor(ctx context.Context, v domain.VendorRegistration) (*Response, error) {
	var resp Response
	err := c.do(ctx, Call{Action: "registerVendor", Method: http.MethodPost, Path: "/auth/register", Body: v}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// LoginVendor stores the token and vendor profile on success.
func (c *Client) LoginVendor(ctx context.Context, cred domain.Credentials) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, Call{Action: "loginVendor", Method: http.MethodPost, Path: "/auth/login", Body: cred}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Success && resp.Token != "" {
		if err := c.token.Save(ctx, resp.Token); err != nil {
			return nil, fmt.Errorf("store vendor token: %w", err)
		}
	}
	if resp.Success && resp.Vendor != nil {
		profile, err := json.Marshal(resp.Vendor)
		if err != nil {
			return nil, fmt.Errorf("marshal vendor profile: %w", err)
		}
		if err := c.vendor.Save(ctx, string(profile)); err != nil {
			return nil, fmt.Errorf("store vendor profile: %w", err)
		}
	}
	return &resp, nil
}

func (c *Client) LogoutVendor(ctx context.Context) error {
	if err := c.token.Clear(ctx); err != nil {
		return err
	}
	return c.vendor.Clear(ctx)
}

// CurrentVendor returns the stored profile, or nil when logged out. A
// corrupt profile is discarded and treated as logged out.
func (c *Client) CurrentVendor(ctx context.Context) (*domain.Vendor, error) {
	raw, ok, err := c.vendor.Load(ctx)
	if err != nil || !ok {
		return nil, err
	}

	var v domain.Vendor
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, c.vendor.Clear(ctx)
	}
	return &v, nil
}

func (c *Client) GetProducts(ctx context.Context, vendorEmail string) (*ProductsResponse, error) {
	call := Call{Action: "getProducts", Method: http.MethodGet, Path: "/products"}
	if vendorEmail != "" {
		call.Query = url.Values{"vendorEmail": {vendorEmail}}
		call.Params = map[string]any{"vendorEmail": vendorEmail}
	}

	var resp ProductsResponse
	if err := c.do(ctx, call, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AddProduct(ctx context.Context, p domain.Product) (*Response, error) {
	var resp Response
	err := c.do(ctx, Call{Action: "addProduct", Method: http.MethodPost, Path: "/products", Body: p}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) EditProduct(ctx context.Context, p domain.Product) (*Response, error) {
	call := Call{
		Action: "editProduct",
		Method: http.MethodPut,
		Path:   "/products/" + url.PathEscape(p.Identity()),
		Body:   p,
	}

	var resp Response
	if err := c.do(ctx, call, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) (*Response, error) {
	call := Call{
		Action: "deleteProduct",
		Method: http.MethodDelete,
		Path:   "/products/" + url.PathEscape(id),
		Params: map[string]any{"id": id},
	}

	var resp Response
	if err := c.do(ctx, call, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) PlaceOrder(ctx context.Context, o domain.OrderRecord) (*Response, error) {
	var resp Response
	err := c.do(ctx, Call{Action: "placeOrder", Method: http.MethodPost, Path: "/orders", Body: o}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, call Call, out any) error {
	token, _, err := c.token.Load(ctx)
	if err != nil {
		return fmt.Errorf("load vendor token: %w", err)
	}
	call.Token = token

	err = c.transport.Do(ctx, call, out)
	if isUnauthorized(err) {
		_ = c.LogoutVendor(ctx)
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return err
}
