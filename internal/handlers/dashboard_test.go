package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/invoicelink/invoicelink/internal/models"
	"github.com/invoicelink/invoicelink/internal/services"
)

func TestDashboardSummary(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "dash@test")
	other := seedUser(t, db, "dashother@test")
	client := seedClient(t, db, user.ID, "")
	otherClient := seedClient(t, db, other.ID, "")

	now := time.Now()
	mk := func(userID, clientID uint, number string, status models.InvoiceStatus, due time.Time, total float64) {
		inv := models.Invoice{
			UserID: userID, ClientID: clientID, InvoiceNumber: number,
			IssueDate: now.AddDate(0, -1, 0), DueDate: due, Status: status,
		}
		if err := db.Create(&inv).Error; err != nil {
			t.Fatalf("invoice %s: %v", number, err)
		}
		if total > 0 {
			item := models.InvoiceItem{InvoiceID: inv.ID, Description: "work", Quantity: 1, Price: total, Amount: total}
			if err := db.Create(&item).Error; err != nil {
				t.Fatalf("item: %v", err)
			}
		}
	}
	mk(user.ID, client.ID, "INV-2026-0001", models.InvoiceStatusDraft, now.AddDate(0, 1, 0), 0)
	mk(user.ID, client.ID, "INV-2026-0002", models.InvoiceStatusSent, now.AddDate(0, 1, 0), 0)
	mk(user.ID, client.ID, "INV-2026-0003", models.InvoiceStatusSent, now.AddDate(0, 0, -5), 0) // overdue
	mk(user.ID, client.ID, "INV-2026-0004", models.InvoiceStatusPaid, now, 300)
	mk(other.ID, otherClient.ID, "INV-2026-0001", models.InvoiceStatusPaid, now, 999)

	h := NewDashboardHandler(db, services.NewInvoiceService(db, "1", "http://localhost:8080"))
	w := httptest.NewRecorder()
	h.Summary(w, authedRequest(t, http.MethodGet, "/dashboard", "", user.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("summary: %d body=%s", w.Code, w.Body.String())
	}

	var stats struct {
		ClientCount  int64         `json:"client_count"`
		InvoiceCount int64         `json:"invoice_count"`
		DraftCount   int64         `json:"draft_count"`
		SentCount    int64         `json:"sent_count"`
		PaidCount    int64         `json:"paid_count"`
		OverdueCount int64         `json:"overdue_count"`
		Revenue      float64       `json:"revenue"`
		Recent       []invoiceView `json:"recent_invoices"`
	}
	decodeData(t, w, &stats)

	if stats.ClientCount != 1 || stats.InvoiceCount != 4 {
		t.Fatalf("counts = %d clients, %d invoices", stats.ClientCount, stats.InvoiceCount)
	}
	if stats.DraftCount != 1 || stats.SentCount != 1 || stats.PaidCount != 1 || stats.OverdueCount != 1 {
		t.Fatalf("status counts = %d %d %d %d", stats.DraftCount, stats.SentCount, stats.PaidCount, stats.OverdueCount)
	}
	if stats.Revenue != 300 {
		t.Fatalf("revenue = %v, foreign invoices must not count", stats.Revenue)
	}
	if len(stats.Recent) != 4 {
		t.Fatalf("recent = %d", len(stats.Recent))
	}
}
