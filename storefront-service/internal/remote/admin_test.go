package remote

import (
	"context"
	"net/http"
	"testing"

	"github.com/fjod/go_storefront/storefront-service/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminLogin_StoresTokenAndAuthenticatesLaterCalls(t *testing.T) {
	backend, srv := newServer(t, `{"success":true,"token":"admin-tok"}`)
	slot := NewMemorySlot()
	admin := NewAdminClient(NewRESTTransport(srv.URL, srv.Client()), slot)
	ctx := context.Background()

	resp, err := admin.LoginAdmin(ctx, domain.Credentials{Email: "root@shop.test", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "admin-tok", resp.Token)
	assert.Equal(t, "/admin/login", backend.last(t).Path)
	assert.Empty(t, backend.last(t).Auth)

	ok, err := admin.Authenticated(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = admin.FetchAllVendors(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer admin-tok", backend.last(t).Auth)
	assert.Equal(t, "/admin/vendors", backend.last(t).Path)
}

func TestAdminREST_Routes(t *testing.T) {
	backend, srv := newServer(t, `{"success":true}`)
	admin := NewAdminClient(NewRESTTransport(srv.URL, srv.Client()), nil)
	ctx := context.Background()

	_, err := admin.UpdateVendorStatus(ctx, "v-1", domain.VendorStatusApproved)
	require.NoError(t, err)
	req := backend.last(t)
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/admin/vendors/v-1", req.Path)
	assert.Equal(t, map[string]any{"status": "approved"}, req.Body)

	_, err = admin.DeleteProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, backend.last(t).Method)
	assert.Equal(t, "/admin/products/p-1", backend.last(t).Path)

	_, err = admin.FetchAllProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/admin/products", backend.last(t).Path)

	_, err = admin.FetchAllOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/admin/orders", backend.last(t).Path)
}

func TestAdminAction_UpdateVendorStatusEnvelope(t *testing.T) {
	backend, srv := newServer(t, `{"success":true}`)
	admin := NewAdminClient(NewActionTransport(srv.URL, srv.Client()), nil)

	_, err := admin.UpdateVendorStatus(context.Background(), "v-1", domain.VendorStatusBlocked)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"action":   "updateVendorStatus",
		"vendorId": "v-1",
		"status":   "blocked",
	}, backend.last(t).Body)
}

func TestAdminFetchAllOrders_DecodesOrders(t *testing.T) {
	_, srv := newServer(t, `{"success":true,"orders":[{"name":"Ada","email":"ada@mail.test","total":2500,"paymentRef":"ref-1","vendorEmails":["a@shop.test"],"items":[]}]}`)
	admin := NewAdminClient(NewActionTransport(srv.URL, srv.Client()), nil)

	resp, err := admin.FetchAllOrders(context.Background())
	require.NoError(t, err)

	require.Len(t, resp.Orders, 1)
	assert.Equal(t, "Ada", resp.Orders[0].Name)
	assert.Equal(t, "ref-1", resp.Orders[0].PaymentRef)
	assert.Equal(t, []string{"a@shop.test"}, resp.Orders[0].VendorEmails)
}

func TestAdminUnauthorizedForcesLogout(t *testing.T) {
	backend, srv := newServer(t, `unauthorized`)
	backend.status = http.StatusUnauthorized
	slot := NewMemorySlot()
	ctx := context.Background()
	require.NoError(t, slot.Save(ctx, "expired"))
	admin := NewAdminClient(NewRESTTransport(srv.URL, srv.Client()), slot)

	_, err := admin.FetchAllOrders(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)

	ok, err := admin.Authenticated(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdminLogout(t *testing.T) {
	slot := NewMemorySlot()
	ctx := context.Background()
	require.NoError(t, slot.Save(ctx, "tok"))
	admin := NewAdminClient(NewActionTransport("http://unused.test", http.DefaultClient), slot)

	require.NoError(t, admin.LogoutAdmin(ctx))
	ok, _ := admin.Authenticated(ctx)
	assert.False(t, ok)
}

func TestAdminAction_EnvelopeCarriesToken(t *testing.T) {
	backend, srv := newServer(t, `{"success":true,"vendors":[]}`)
	slot := NewMemorySlot()
	ctx := context.Background()
	require.NoError(t, slot.Save(ctx, "admin-token"))
	admin := NewAdminClient(NewActionTransport(srv.URL, srv.Client()), slot)

	_, err := admin.FetchAllVendors(ctx)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"action": "fetchAllVendors",
		"token":  "admin-token",
	}, backend.last(t).Body)
}
