package services

import (
	"encoding/json"
	"strconv"

	"github.com/invoicelink/invoicelink/internal/models"
)

// LineAmount computes quantity x unit price for one item. Fractional
// quantities are permitted.
func LineAmount(quantity, price float64) float64 {
	return quantity * price
}

// Totals computes subtotal, tax amount, and grand total from line items and
// rates. Pure: re-evaluated at save time and at presentation time. The total
// is deliberately not clamped; a discount larger than subtotal+tax yields a
// negative amount.
func Totals(items []models.InvoiceItem, taxRate, discount float64) (subtotal, taxAmount, total float64) {
	for _, item := range items {
		subtotal += LineAmount(item.Quantity, item.Price)
	}
	if taxRate > 0 {
		taxAmount = subtotal * (taxRate / 100)
	}
	total = subtotal + taxAmount - discount
	return
}

// ParseAmount coerces an untrusted numeric value (form field or JSON, which
// may arrive as a number, a string, or garbage) to a float64. Parse failures
// default to 0; this function never fails.
func ParseAmount(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
