package pdf

import (
	"context"
	"strings"
	"testing"
	"time"
)

func sampleData() InvoiceData {
	return InvoiceData{
		InvoiceNumber: "INV-2026-0001",
		IssueDate:     "2/1/2026",
		DueDate:       "3/1/2026",
		From:          Party{Name: "Studio", Email: "studio@test", Address: "1 Main St"},
		BillTo:        Party{Name: "Acme", Address: "2 Oak Ave"},
		Items: []Item{
			{Description: "Design work", Quantity: 2, Price: 50, Amount: 100},
			{Description: "Hosting", Quantity: 1.5, Price: 20, Amount: 30},
		},
		Subtotal:  130,
		TaxRate:   10,
		TaxAmount: 13,
		Discount:  5,
		Total:     138,
		Notes:     "Thanks for your business",
		Payment:   PaymentDetails{BankName: "First Bank", AccountNumber: "12345"},
	}
}

func TestRenderProducesPDF(t *testing.T) {
	out, err := Render(context.Background(), sampleData())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(string(out), "%PDF") {
		t.Fatalf("output does not start with PDF magic: %q", out[:8])
	}
}

func TestRenderMinimalInvoice(t *testing.T) {
	data := InvoiceData{
		InvoiceNumber: "INV-2026-0002",
		IssueDate:     "2/1/2026",
		DueDate:       "3/1/2026",
		From:          Party{Name: "Studio"},
		BillTo:        Party{Name: "Acme"},
	}
	out, err := Render(context.Background(), data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("empty output")
	}
}

func TestRenderHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Render(ctx, sampleData()); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestRenderTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)
	if _, err := Render(ctx, sampleData()); err == nil {
		t.Fatal("expected deadline error")
	}
}
