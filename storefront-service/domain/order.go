package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer holds the checkout form fields.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Note    string `json:"note,omitempty"`
}

// OrderRecord is the outbound order. One aggregate record covers the whole
// cart, then one record is sent per vendor with only that vendor's items.
type OrderRecord struct {
	Customer
	Items        []LineItem      `json:"items"`
	Total        decimal.Decimal `json:"total"`
	PaymentRef   string          `json:"paymentRef"`
	Date         time.Time       `json:"date"`
	VendorEmails []string        `json:"vendorEmails"`
}
