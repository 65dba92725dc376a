package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// The remote backend stores prices as plain numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductID accepts both JSON strings and JSON numbers, since backend
// revisions disagree on the identifier type.
type ProductID string

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or a number: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

// Product is the catalog entry as the remote backend returns it. The cart
// keeps a copy, never a live reference.
type Product struct {
	ID          ProductID       `json:"id,omitempty"`
	LegacyID    ProductID       `json:"_id,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Images      []string        `json:"images,omitempty"`
	Category    string          `json:"category,omitempty"`
	VendorEmail string          `json:"vendorEmail,omitempty"`
	VendorName  string          `json:"vendorName,omitempty"`
	VendorPhone string          `json:"vendorPhone,omitempty"`
	VendorLogo  string          `json:"vendorLogo,omitempty"`
}

// Identity resolves the product identity: id, falling back to _id.
// Every component comparing products must go through this method.
func (p Product) Identity() string {
	if p.ID != "" {
		return string(p.ID)
	}
	return string(p.LegacyID)
}

// LineItem is a product snapshot paired with a quantity.
type LineItem struct {
	Product Product `json:"product"`
	Qty     int     `json:"qty"`
}

// Subtotal is price × qty. It is recomputed on every call.
func (i LineItem) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}
