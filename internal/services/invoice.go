package services

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/invoicelink/invoicelink/internal/models"
	"github.com/invoicelink/invoicelink/internal/whatsapp"
)

// ErrNotFound deliberately collapses "record absent" and "owned by another
// user" into one error so the API never discloses existence of foreign records.
var ErrNotFound = errors.New("not found or unauthorized")

// ErrProfileMissing is returned when an operation needs the owner's business
// profile and none has been saved yet.
var ErrProfileMissing = errors.New("business profile not found")

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// ItemInput is one submitted line item. Quantity and Price are already
// coerced through ParseAmount by the caller.
type ItemInput struct {
	Description string
	Quantity    float64
	Price       float64
}

// InvoiceInput carries the writable invoice fields. Monetary aggregates are
// absent on purpose: subtotal, tax amount, and total are recomputed from
// Items on every write and any client-submitted values are discarded.
type InvoiceInput struct {
	ClientID  uint
	IssueDate time.Time
	DueDate   time.Time
	Notes     string
	TaxRate   float64
	Discount  float64
	Items     []ItemInput
}

// InvoiceService implements invoice numbering, the financial computation, and
// the lifecycle transitions. All multi-statement writes run inside a single
// transaction.
type InvoiceService struct {
	db *gorm.DB
	// defaultCC is the country calling code assumed for 10-digit phone numbers.
	defaultCC string
	siteURL   string
}

func NewInvoiceService(db *gorm.DB, defaultCC, siteURL string) *InvoiceService {
	return &InvoiceService{db: db, defaultCC: defaultCC, siteURL: siteURL}
}

// NextInvoiceNumber derives the next sequential number for a user:
// the trailing digit run of the most recently created invoice's number,
// incremented, zero-padded to four digits. The embedded year is always the
// current one; the sequence does not reset at year boundaries.
func NextInvoiceNumber(tx *gorm.DB, userID uint, now time.Time) (string, error) {
	var last models.Invoice
	next := 1
	err := tx.Where("user_id = ?", userID).
		Order("created_at DESC").
		Select("invoice_number").
		First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	if err == nil {
		if m := trailingDigits.FindString(last.InvoiceNumber); m != "" {
			var n int
			if _, scanErr := fmt.Sscanf(m, "%d", &n); scanErr == nil {
				next = n + 1
			}
		}
	}
	return fmt.Sprintf("INV-%d-%04d", now.Year(), next), nil
}

// NextNumber previews the number the next created invoice would get.
func (s *InvoiceService) NextNumber(userID uint) (string, error) {
	return NextInvoiceNumber(s.db, userID, time.Now())
}

func buildItems(inputs []ItemInput) []models.InvoiceItem {
	items := make([]models.InvoiceItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, models.InvoiceItem{
			Description: in.Description,
			Quantity:    in.Quantity,
			Price:       in.Price,
			Amount:      LineAmount(in.Quantity, in.Price),
		})
	}
	return items
}

// Create assigns an invoice number, recomputes the monetary fields from the
// submitted items, and persists the invoice with its items in one transaction.
// The number assignment read happens inside the same transaction as the
// insert to narrow the duplicate-number window under concurrent creates.
func (s *InvoiceService) Create(userID uint, in InvoiceInput) (*models.Invoice, error) {
	// Client must exist and belong to the same user.
	var client models.Client
	if err := s.db.Where("id = ? AND user_id = ?", in.ClientID, userID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	items := buildItems(in.Items)
	subtotal, taxAmount, total := Totals(items, in.TaxRate, in.Discount)

	inv := models.Invoice{
		UserID:    userID,
		ClientID:  in.ClientID,
		IssueDate: in.IssueDate,
		DueDate:   in.DueDate,
		Status:    models.InvoiceStatusDraft,
		Notes:     in.Notes,
		TaxRate:   in.TaxRate,
		Discount:  in.Discount,
		Subtotal:  subtotal,
		TaxAmount: taxAmount,
		Total:     total,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		number, numErr := NextInvoiceNumber(tx, userID, time.Now())
		if numErr != nil {
			return numErr
		}
		inv.InvoiceNumber = number
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			for i := range items {
				items[i].InvoiceID = inv.ID
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return &inv, nil
}

// Update recomputes the monetary fields and replaces the item collection
// wholesale: existing rows are deleted and the submitted ones inserted, all
// inside one transaction so readers never observe a half-replaced invoice.
func (s *InvoiceService) Update(userID, id uint, in InvoiceInput) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// The submitted client must belong to the same user, exactly as on create.
	var client models.Client
	if err := s.db.Where("id = ? AND user_id = ?", in.ClientID, userID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	items := buildItems(in.Items)
	subtotal, taxAmount, total := Totals(items, in.TaxRate, in.Discount)

	inv.ClientID = in.ClientID
	inv.IssueDate = in.IssueDate
	inv.DueDate = in.DueDate
	inv.Notes = in.Notes
	inv.TaxRate = in.TaxRate
	inv.Discount = in.Discount
	inv.Subtotal = subtotal
	inv.TaxAmount = taxAmount
	inv.Total = total

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&inv).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			for i := range items {
				items[i].InvoiceID = inv.ID
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return &inv, nil
}

// Delete removes the invoice with its items and communication logs, children
// first, in one transaction. The removal is permanent so the invoice number
// becomes available to the sequence again. There is no status guard: any
// owned invoice can be deleted.
func (s *InvoiceService) Delete(userID, id uint) error {
	var inv models.Invoice
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.CommunicationLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&inv).Error
	})
}

// Send builds the notification message and deep link for an invoice and, on
// success, transitions it to SENT and records a communication log entry.
// The transition is a side effect of link construction, not of delivery:
// the system cannot observe whether the chat message is actually sent.
func (s *InvoiceService) Send(userID, id uint) (string, error) {
	var inv models.Invoice
	err := s.db.Where("id = ? AND user_id = ?", id, userID).
		Preload("Client").
		Preload("Items").
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}

	var profile models.Profile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrProfileMissing
		}
		return "", err
	}

	phone, err := whatsapp.NormalizePhone(inv.Client.WhatsAppNumber, s.defaultCC)
	if err != nil {
		return "", err
	}

	// Amounts in the message are recomputed from the stored items, never
	// read back from the persisted aggregates.
	subtotal, taxAmount, total := Totals(inv.Items, inv.TaxRate, inv.Discount)
	pdfURL := fmt.Sprintf("%s/invoices/%d/pdf", s.siteURL, inv.ID)
	message := whatsapp.FormatMessage(&inv, inv.Client, &profile, pdfURL, subtotal, taxAmount, total)
	link := whatsapp.BuildLink(phone, message)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&inv).Updates(map[string]any{
			"status":     models.InvoiceStatusSent,
			"updated_at": time.Now(),
		}).Error; err != nil {
			return err
		}
		logEntry := models.CommunicationLog{
			InvoiceID: inv.ID,
			Type:      "whatsapp",
			Status:    "link_generated",
			Message:   fmt.Sprintf("invoice %s to %s", inv.InvoiceNumber, phone),
		}
		return tx.Create(&logEntry).Error
	})
	if err != nil {
		return "", err
	}
	return link, nil
}

// MarkPaid sets the status to PAID. No precondition beyond ownership.
func (s *InvoiceService) MarkPaid(userID, id uint) error {
	return s.setStatus(userID, id, models.InvoiceStatusPaid)
}

// MarkUnpaid reverts a paid invoice to SENT.
func (s *InvoiceService) MarkUnpaid(userID, id uint) error {
	return s.setStatus(userID, id, models.InvoiceStatusSent)
}

func (s *InvoiceService) setStatus(userID, id uint, status models.InvoiceStatus) error {
	res := s.db.Model(&models.Invoice{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Revenue sums the totals of paid invoices for a user.
func (s *InvoiceService) Revenue(userID uint) (float64, error) {
	var invoices []models.Invoice
	err := s.db.Where("user_id = ? AND status = ?", userID, models.InvoiceStatusPaid).
		Preload("Items").
		Find(&invoices).Error
	if err != nil {
		return 0, err
	}
	var revenue float64
	for _, inv := range invoices {
		_, _, total := Totals(inv.Items, inv.TaxRate, inv.Discount)
		revenue += total
	}
	return revenue, nil
}
