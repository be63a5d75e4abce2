// Package whatsapp builds the notification message and wa.me deep link for
// an invoice. It performs no network I/O: actual delivery happens in the
// external chat application once the caller opens the link.
package whatsapp

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/invoicelink/invoicelink/internal/models"
)

// ErrMissingPhone is returned when the client's stored phone number contains
// no digits at all.
var ErrMissingPhone = errors.New("client phone number not available")

// tenDigits is the length at which a number is assumed to lack a country
// calling code and gets the default prepended.
const tenDigits = 10

// NormalizePhone strips every non-digit character from raw. An empty result
// fails with ErrMissingPhone. Exactly ten remaining digits get defaultCC
// prepended; anything longer passes through unchanged.
func NormalizePhone(raw, defaultCC string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return "", ErrMissingPhone
	}
	if len(digits) == tenDigits {
		digits = defaultCC + digits
	}
	return digits, nil
}

// BuildLink returns the deep link that opens a pre-filled chat message.
func BuildLink(phone, message string) string {
	return "https://wa.me/" + phone + "?text=" + url.QueryEscape(message)
}

// FormatMessage renders the plain-text notification for an invoice. The
// subtotal, tax, and total arguments are the server-recomputed amounts;
// tax and discount lines appear only when their source values are non-zero,
// and the payment block only when the profile carries bank details.
func FormatMessage(inv *models.Invoice, client *models.Client, profile *models.Profile, pdfURL string, subtotal, taxAmount, total float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hello %s,\n\n", client.Name)
	fmt.Fprintf(&b, "Here's your invoice #%s from %s.\n\n", inv.InvoiceNumber, profile.BusinessName)
	fmt.Fprintf(&b, "*Amount Due: $%.2f*\n", total)
	fmt.Fprintf(&b, "Due Date: %s\n\n", inv.DueDate.Format("1/2/2006"))
	fmt.Fprintf(&b, "You can download your invoice PDF using this link:\n%s\n\n", pdfURL)

	if len(inv.Items) > 0 {
		b.WriteString("Items:\n")
		for _, item := range inv.Items {
			fmt.Fprintf(&b, "- %s: $%.2f x %s = $%.2f\n", item.Description, item.Price, trimQuantity(item.Quantity), item.Quantity*item.Price)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Subtotal: $%.2f\n", subtotal)
	if inv.TaxRate > 0 {
		fmt.Fprintf(&b, "Tax (%.1f%%): $%.2f\n", inv.TaxRate, taxAmount)
	}
	if inv.Discount > 0 {
		fmt.Fprintf(&b, "Discount: $%.2f\n", inv.Discount)
	}
	fmt.Fprintf(&b, "Total: $%.2f\n", total)

	if profile.HasPaymentDetails() {
		b.WriteString("\nPayment Details:\n")
		if profile.BankName != "" {
			fmt.Fprintf(&b, "Bank: %s\n", profile.BankName)
		}
		if profile.AccountNumber != "" {
			fmt.Fprintf(&b, "Account Number: %s\n", profile.AccountNumber)
		}
		if profile.RoutingNumber != "" {
			fmt.Fprintf(&b, "Routing Number: %s\n", profile.RoutingNumber)
		}
	}

	fmt.Fprintf(&b, "\nIf you have any questions, please don't hesitate to contact us.\n\nThank you for your business!\n%s", profile.BusinessName)
	return b.String()
}

// trimQuantity renders fractional quantities without trailing zeros (2, 1.5).
func trimQuantity(q float64) string {
	s := fmt.Sprintf("%.3f", q)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
