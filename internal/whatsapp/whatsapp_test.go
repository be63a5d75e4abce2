package whatsapp

import (
	"strings"
	"testing"
	"time"

	"github.com/invoicelink/invoicelink/internal/models"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		cc      string
		want    string
		wantErr bool
	}{
		{name: "formatted ten digits", raw: "(555) 123-4567", cc: "1", want: "15551234567"},
		{name: "already has country code", raw: "+1 555 123 4567", cc: "1", want: "15551234567"},
		{name: "international number untouched", raw: "+44 20 7946 0958", cc: "1", want: "442079460958"},
		{name: "custom default code", raw: "5551234567", cc: "33", want: "335551234567"},
		{name: "empty", raw: "", cc: "1", wantErr: true},
		{name: "no digits at all", raw: "n/a", cc: "1", wantErr: true},
		{name: "short number passes through", raw: "12345", cc: "1", want: "12345"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizePhone(tc.raw, tc.cc)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestBuildLink(t *testing.T) {
	link := BuildLink("15551234567", "Hello & welcome")
	if !strings.HasPrefix(link, "https://wa.me/15551234567?text=") {
		t.Fatalf("unexpected link prefix: %s", link)
	}
	if strings.Contains(link, " ") || strings.Contains(link, "&w") {
		t.Fatalf("message not escaped: %s", link)
	}
}

func TestFormatMessage(t *testing.T) {
	due := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	inv := &models.Invoice{
		InvoiceNumber: "INV-2026-0007",
		DueDate:       due,
		TaxRate:       10,
		Discount:      5,
		Items: []models.InvoiceItem{
			{Description: "Design", Quantity: 2, Price: 50},
		},
	}
	client := &models.Client{Name: "Acme"}
	profile := &models.Profile{BusinessName: "Studio", BankName: "First Bank", AccountNumber: "12345"}

	msg := FormatMessage(inv, client, profile, "http://localhost:8080/invoices/7/pdf", 100, 10, 105)

	for _, want := range []string{
		"Hello Acme,",
		"invoice #INV-2026-0007 from Studio",
		"*Amount Due: $105.00*",
		"Due Date: 3/5/2026",
		"http://localhost:8080/invoices/7/pdf",
		"- Design: $50.00 x 2 = $100.00",
		"Subtotal: $100.00",
		"Tax (10.0%): $10.00",
		"Discount: $5.00",
		"Total: $105.00",
		"Bank: First Bank",
		"Account Number: 12345",
		"Thank you for your business!",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "Routing Number:") {
		t.Errorf("routing line present without a routing number\n%s", msg)
	}
}

func TestFormatMessageOmitsOptionalBlocks(t *testing.T) {
	inv := &models.Invoice{InvoiceNumber: "INV-2026-0001", DueDate: time.Now()}
	msg := FormatMessage(inv, &models.Client{Name: "C"}, &models.Profile{BusinessName: "B"}, "url", 0, 0, 0)
	if strings.Contains(msg, "Tax (") {
		t.Errorf("tax line present for zero rate")
	}
	if strings.Contains(msg, "Discount:") {
		t.Errorf("discount line present for zero discount")
	}
	if strings.Contains(msg, "Payment Details:") {
		t.Errorf("payment block present without bank details")
	}
	if strings.Contains(msg, "Items:") {
		t.Errorf("items block present for empty invoice")
	}
}
