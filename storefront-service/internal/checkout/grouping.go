package checkout

import (
	"github.com/fjod/go_storefront/storefront-service/domain"
	"github.com/fjod/go_storefront/storefront-service/internal/cart"
	"github.com/shopspring/decimal"
)

// VendorGroup is the slice of the cart one vendor fulfils.
type VendorGroup struct {
	VendorEmail string
	Items       []domain.LineItem
}

func (g VendorGroup) Total() decimal.Decimal {
	return cart.Subtotal(g.Items)
}

// GroupByVendor partitions items by vendor email. Groups are ordered by the
// first appearance of their vendor and keep the cart order inside. Items
// without a vendor belong to no group.
func GroupByVendor(items []domain.LineItem) []VendorGroup {
	var groups []VendorGroup
	index := make(map[string]int)

	for _, item := range items {
		vendor := item.Product.VendorEmail
		if vendor == "" {
			continue
		}
		i, ok := index[vendor]
		if !ok {
			i = len(groups)
			index[vendor] = i
			groups = append(groups, VendorGroup{VendorEmail: vendor})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// VendorEmails lists the distinct vendors in first-appearance order.
func VendorEmails(groups []VendorGroup) []string {
	emails := make([]string, 0, len(groups))
	for _, g := range groups {
		emails = append(emails, g.VendorEmail)
	}
	return emails
}
