package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/invoicelink/invoicelink/internal/models"
	"github.com/invoicelink/invoicelink/internal/whatsapp"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUserAndClient(t *testing.T, db *gorm.DB, email string) (models.User, models.Client) {
	t.Helper()
	user := models.User{Email: email, Name: "Owner", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	client := models.Client{UserID: user.ID, Name: "Acme", WhatsAppNumber: "(555) 123-4567"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	return user, client
}

func testInput(clientID uint, items ...ItemInput) InvoiceInput {
	return InvoiceInput{
		ClientID:  clientID,
		IssueDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Items:     items,
	}
}

func TestNextInvoiceNumberSequence(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db, "num@test")
	svc := NewInvoiceService(db, "1", "http://localhost:8080")

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	first, err := NextInvoiceNumber(db, user.ID, now)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if first != "INV-2026-0001" {
		t.Fatalf("first number = %s", first)
	}

	if _, err := svc.Create(user.ID, testInput(client.ID)); err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := NextInvoiceNumber(db, user.ID, now)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if second != "INV-2026-0002" {
		t.Fatalf("second number = %s", second)
	}
}

func TestNextInvoiceNumberContinuesAcrossYears(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db, "year@test")

	inv := models.Invoice{
		UserID: user.ID, ClientID: client.ID, InvoiceNumber: "INV-2025-0007",
		IssueDate: time.Now(), DueDate: time.Now(), Status: models.InvoiceStatusDraft,
	}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}

	// The trailing counter continues; only the embedded year changes.
	got, err := NextInvoiceNumber(db, user.ID, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != "INV-2026-0008" {
		t.Fatalf("got %s, want INV-2026-0008", got)
	}
}

func TestNextInvoiceNumberPerUser(t *testing.T) {
	db := setupTestDB(t)
	userA, clientA := seedUserAndClient(t, db, "a@test")
	userB, _ := seedUserAndClient(t, db, "b@test")
	svc := NewInvoiceService(db, "1", "http://localhost:8080")

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(userA.ID, testInput(clientA.ID)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	got, err := svc.NextNumber(userB.ID)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if !strings.HasSuffix(got, "-0001") {
		t.Fatalf("user B sequence leaked: %s", got)
	}
}

func TestCreateRecomputesTotals(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db, "create@test")
	svc := NewInvoiceService(db, "1", "http://localhost:8080")

	in := testInput(client.ID,
		ItemInput{Description: "Design", Quantity: 2, Price: 50},
	)
	in.TaxRate = 10
	in.Discount = 5

	inv, err := svc.Create(user.ID, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inv.Status != models.InvoiceStatusDraft {
		t.Fatalf("status = %s", inv.Status)
	}
	if inv.Subtotal != 100 || inv.TaxAmount != 10 || inv.Total != 105 {
		t.Fatalf("totals = %v %v %v", inv.Subtotal, inv.TaxAmount, inv.Total)
	}
	if len(inv.Items) != 1 || inv.Items[0].Amount != 100 {
		t.Fatalf("items = %#v", inv.Items)
	}

	var count int64
	db.Model(&models.InvoiceItem{}).Where("invoice_id = ?", inv.ID).Count(&count)
	if count != 1 {
		t.Fatalf("persisted items = %d", count)
	}
}

func TestCreateRejectsForeignClient(t *testing.T) {
	db := setupTestDB(t)
	user, _ := seedUserAndClient(t, db, "owner@test")
	_, otherClient := seedUserAndClient(t, db, "other@test")
	svc := NewInvoiceService(db, "1", "http://localhost:8080")

	_, err := svc.Create(user.ID, testInput(otherClient.ID))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateReplacesItemsWholesale(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db, "update@test")
	svc := NewInvoiceService(db, "1", "http://localhost:8080")

	inv, err := svc.Create(user.ID, testInput(client.ID,
		ItemInput{Description: "Old A", Quantity: 1, Price: 10},
		ItemInput{Description: "Old B", Quantity: 1, Price: 20},
	))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	in := testInput(client.ID, ItemInput{Description: "New", Quantity: 3, Price: 5})
	updated, err := svc.Update(user.ID, inv.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Subtotal != 15 || updated.Total != 15 {
		t.Fatalf("totals = %v %v", updated.Subtotal, updated.Total)
	}

	var items []models.InvoiceItem
	db.Where("invoice_id = ?", inv.ID).Find(&items)
	if len(items) != 1 || items[0].Description != "New" {
		t.Fatalf("items after update = %#v", items)
	}
}

func TestUpdateForeignInvoice(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db, "u1@test")
	intruder, _ := seedUserAndClient(t, db, "u2@test")
	svc := NewInvoiceService(db, "1", "http://localhost:8080")

	inv, err := svc.Create(user.ID, testInput(client.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Update(intruder.ID, inv.ID, testInput(client.ID)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteCascadesItems(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db, "delete@test")
	svc := NewInvoiceService(db, "1", "http://localhost:8080")

	inv, err := svc.Create(user.ID, testInput(client.ID,
		ItemInput{Description: "X", Quantity: 1, Price: 1},
	))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(user.ID, inv.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var count int64
	db.Model(&models.InvoiceItem{}).Where("invoice_id = ?", inv.ID).Count(&count)
	if count != 0 {
		t.Fatalf("orphaned items = %d", count)
	}
	if err := svc.Delete(user.ID, inv.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}

func TestCreateAfterDeleteReusesNumber(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db, "reuse@test")
	svc := NewInvoiceService(db, "1", "http://localhost:8080")

	first, err := svc.Create(user.ID, testInput(client.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(user.ID, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// The deleted invoice releases its number; re-creating must not collide
	// with the (user_id, invoice_number) unique index.
	second, err := svc.Create(user.ID, testInput(client.ID))
	if err != nil {
		t.Fatalf("create after delete: %v", err)
	}
	if second.InvoiceNumber != first.InvoiceNumber {
		t.Fatalf("number = %s, want %s reissued", second.InvoiceNumber, first.InvoiceNumber)
	}

	var count int64
	db.Model(&models.Invoice{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Fatalf("invoices = %d", count)
	}
}

func TestDeleteRemovesCommunicationLogs(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db, "dellogs@test")
	profile := models.Profile{UserID: user.ID, BusinessName: "Studio"}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("profile: %v", err)
	}
	svc := NewInvoiceService(db, "1", "http://localhost:8080")

	inv, err := svc.Create(user.ID, testInput(client.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Send(user.ID, inv.ID); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := svc.Delete(user.ID, inv.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var logCount int64
	db.Model(&models.CommunicationLog{}).Where("invoice_id = ?", inv.ID).Count(&logCount)
	if logCount != 0 {
		t.Fatalf("orphaned communication logs = %d", logCount)
	}
}

func TestUpdateRejectsForeignClient(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db, "mine@test")
	_, victimClient := seedUserAndClient(t, db, "victim@test")
	svc := NewInvoiceService(db, "1", "http://localhost:8080")

	inv, err := svc.Create(user.ID, testInput(client.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Repointing an owned invoice at another user's client must fail the
	// same way create does.
	if _, err := svc.Update(user.ID, inv.ID, testInput(victimClient.ID)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	var after models.Invoice
	db.First(&after, inv.ID)
	if after.ClientID != client.ID {
		t.Fatalf("client id changed to %d", after.ClientID)
	}
}

func TestSendTransitionsAndLogs(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db, "send@test")
	profile := models.Profile{UserID: user.ID, BusinessName: "Studio"}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("profile: %v", err)
	}
	svc := NewInvoiceService(db, "1", "http://localhost:8080")

	inv, err := svc.Create(user.ID, testInput(client.ID,
		ItemInput{Description: "Design", Quantity: 2, Price: 50},
	))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	link, err := svc.Send(user.ID, inv.ID)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.HasPrefix(link, "https://wa.me/15551234567?text=") {
		t.Fatalf("link = %s", link)
	}

	var after models.Invoice
	if err := db.First(&after, inv.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.Status != models.InvoiceStatusSent {
		t.Fatalf("status = %s", after.Status)
	}

	var logCount int64
	db.Model(&models.CommunicationLog{}).Where("invoice_id = ?", inv.ID).Count(&logCount)
	if logCount != 1 {
		t.Fatalf("communication logs = %d", logCount)
	}
}

func TestSendWithoutProfile(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db, "noprofile@test")
	svc := NewInvoiceService(db, "1", "http://localhost:8080")

	inv, err := svc.Create(user.ID, testInput(client.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Send(user.ID, inv.ID); !errors.Is(err, ErrProfileMissing) {
		t.Fatalf("err = %v, want ErrProfileMissing", err)
	}
}

func TestSendWithoutPhoneLeavesDraft(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db, "nophone@test")
	if err := db.Model(&client).Update("whats_app_number", "").Error; err != nil {
		t.Fatalf("clear phone: %v", err)
	}
	profile := models.Profile{UserID: user.ID, BusinessName: "Studio"}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("profile: %v", err)
	}
	svc := NewInvoiceService(db, "1", "http://localhost:8080")

	inv, err := svc.Create(user.ID, testInput(client.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Send(user.ID, inv.ID); !errors.Is(err, whatsapp.ErrMissingPhone) {
		t.Fatalf("err = %v, want ErrMissingPhone", err)
	}

	var after models.Invoice
	db.First(&after, inv.ID)
	if after.Status != models.InvoiceStatusDraft {
		t.Fatalf("status changed to %s on failed send", after.Status)
	}
}

func TestMarkPaidAndUnpaid(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db, "paid@test")
	svc := NewInvoiceService(db, "1", "http://localhost:8080")

	inv, err := svc.Create(user.ID, testInput(client.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.MarkPaid(user.ID, inv.ID); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	var after models.Invoice
	db.First(&after, inv.ID)
	if after.Status != models.InvoiceStatusPaid {
		t.Fatalf("status = %s", after.Status)
	}

	if err := svc.MarkUnpaid(user.ID, inv.ID); err != nil {
		t.Fatalf("mark unpaid: %v", err)
	}
	db.First(&after, inv.ID)
	if after.Status != models.InvoiceStatusSent {
		t.Fatalf("status = %s", after.Status)
	}

	if err := svc.MarkPaid(user.ID, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRevenueCountsPaidOnly(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db, "rev@test")
	svc := NewInvoiceService(db, "1", "http://localhost:8080")

	paid, err := svc.Create(user.ID, testInput(client.ID,
		ItemInput{Description: "A", Quantity: 1, Price: 200},
	))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.MarkPaid(user.ID, paid.ID); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if _, err := svc.Create(user.ID, testInput(client.ID,
		ItemInput{Description: "B", Quantity: 1, Price: 999},
	)); err != nil {
		t.Fatalf("create draft: %v", err)
	}

	revenue, err := svc.Revenue(user.ID)
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if revenue != 200 {
		t.Fatalf("revenue = %v", revenue)
	}
}

func TestEffectiveStatusOverdue(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	inv := models.Invoice{Status: models.InvoiceStatusSent, DueDate: now.AddDate(0, 0, -1)}
	if got := inv.EffectiveStatus(now); got != models.InvoiceStatusOverdue {
		t.Fatalf("got %s", got)
	}
	inv.DueDate = now.AddDate(0, 0, 1)
	if got := inv.EffectiveStatus(now); got != models.InvoiceStatusSent {
		t.Fatalf("got %s", got)
	}
	// Drafts and paid invoices never read as overdue.
	inv = models.Invoice{Status: models.InvoiceStatusPaid, DueDate: now.AddDate(0, 0, -30)}
	if got := inv.EffectiveStatus(now); got != models.InvoiceStatusPaid {
		t.Fatalf("got %s", got)
	}
}
