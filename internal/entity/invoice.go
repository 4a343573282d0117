package entity

import (
	"fmt"
	"time"
)

// CanonicalInvoice is the normalized, validated invoice record, independent
// of which supplier template produced it. Instances are only ever created by
// the invoice builder; a constructed value always has every required field
// present and parsed.
type CanonicalInvoice struct {
	SellerID      string     `json:"seller_id"`
	InvoiceNumber string     `json:"invoice_number"`
	InvoiceDate   time.Time  `json:"invoice_date"`
	TotalCents    int64      `json:"total_cents"` // minor units, non-negative
	CurrencyCode  string     `json:"currency_code"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	Reference     string     `json:"reference,omitempty"`
	Lines         []LineItem `json:"lines,omitempty"`
}

// LineItem is a single invoice row. Empty Lines is valid; row extraction is
// template-dependent and most supplier layouts only expose totals.
type LineItem struct {
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
}

// TotalString renders the total in canonical form: dot decimal point,
// exactly two decimals, no thousands separators.
func (i *CanonicalInvoice) TotalString() string {
	return FormatCents(i.TotalCents)
}

// FormatCents renders minor units as a canonical 2-decimal string.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
