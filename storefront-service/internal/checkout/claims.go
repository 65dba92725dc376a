package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/fjod/go_storefront/storefront-service/domain"
	"github.com/fjod/go_storefront/storefront-service/internal/cart"
)

// Fingerprint identifies cart contents regardless of item order.
func Fingerprint(items []domain.LineItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s|%d|%s", it.Product.Identity(), it.Qty, it.Product.Price.String()))
	}
	slices.Sort(lines)

	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

type claim struct {
	fingerprint string
	completed   bool
}

// claimSet binds payment references to carts when no ledger is configured.
// Without a ledger a retry resubmits every order, so a completed reference is
// never accepted again.
type claimSet struct {
	mu    sync.Mutex
	byRef map[string]claim
}

func newClaimSet() *claimSet {
	return &claimSet{byRef: make(map[string]claim)}
}

func (c *claimSet) claim(ref, fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cl, ok := c.byRef[ref]; ok {
		if cl.completed || cl.fingerprint != fingerprint {
			return ErrReferenceReused
		}
		return nil
	}
	c.byRef[ref] = claim{fingerprint: fingerprint}
	return nil
}

func (c *claimSet) complete(ref string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cl := c.byRef[ref]
	cl.completed = true
	c.byRef[ref] = cl
}

// clearCheckedOut takes the ordered quantities out of the cart. Items added,
// or quantities raised, while the checkout ran stay in the cart.
func clearCheckedOut(ctx context.Context, c Cart, ordered []domain.LineItem) error {
	bought := make(map[string]int, len(ordered))
	for _, it := range ordered {
		bought[it.Product.Identity()] += it.Qty
	}

	var actions []cart.Action
	leftover := false
	for _, it := range c.Items() {
		id := it.Product.Identity()
		qty, ok := bought[id]
		switch {
		case !ok:
			leftover = true
		case it.Qty > qty:
			leftover = true
			actions = append(actions, cart.UpdateQty(id, it.Qty-qty))
		default:
			actions = append(actions, cart.RemoveItem(id))
		}
	}

	if !leftover {
		return c.Dispatch(ctx, cart.ClearCart())
	}
	for _, a := range actions {
		if err := c.Dispatch(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
