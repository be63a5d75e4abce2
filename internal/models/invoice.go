package models

import "time"

// InvoiceStatus represents the status of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	InvoiceStatusSent  InvoiceStatus = "SENT"
	InvoiceStatusPaid  InvoiceStatus = "PAID"
	// InvoiceStatusOverdue is display-only: nothing ever persists it.
	// See EffectiveStatus.
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
)

// Invoice represents a billing document. Deletion is hard: a removed
// invoice releases its number so the next create can reuse it without
// tripping the (user_id, invoice_number) unique index.
// Implements the Ownable interface for ownership-based authorization.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// UserID is the owner of this invoice (for multi-tenant isolation).
	// The composite (UserID, InvoiceNumber) unique index makes numbers
	// unique per user, not globally.
	UserID uint `gorm:"not null;index:idx_user_number,unique,priority:1" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	// Format INV-{year}-{0-padded sequence}
	InvoiceNumber string `gorm:"size:50;not null;index:idx_user_number,unique,priority:2" json:"invoice_number"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	IssueDate time.Time `gorm:"not null" json:"issue_date"`
	DueDate   time.Time `gorm:"not null" json:"due_date"`

	Status InvoiceStatus `gorm:"size:20;default:'DRAFT'" json:"status"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	// TaxRate is a percentage (0-100); Discount is an absolute amount.
	TaxRate  float64 `gorm:"type:decimal(5,2);default:0" json:"tax_rate"`
	Discount float64 `gorm:"type:decimal(10,2);default:0" json:"discount"`

	// Monetary fields are always recomputed server-side from the items
	// before persisting; client-submitted aggregates are discarded.
	Subtotal  float64 `gorm:"type:decimal(10,2);default:0" json:"subtotal"`
	TaxAmount float64 `gorm:"type:decimal(10,2);default:0" json:"tax_amount"`
	Total     float64 `gorm:"type:decimal(10,2);default:0" json:"total"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// GetUserID implements the Ownable interface for authorization.
func (i *Invoice) GetUserID() uint {
	return i.UserID
}

// IsDraft returns true if the invoice has not been sent yet.
func (i *Invoice) IsDraft() bool {
	return i.Status == InvoiceStatusDraft
}

// EffectiveStatus derives the display status at read time: a SENT invoice
// past its due date reads as OVERDUE. The stored status is never mutated.
func (i *Invoice) EffectiveStatus(now time.Time) InvoiceStatus {
	if i.Status == InvoiceStatusSent && i.DueDate.Before(now) {
		return InvoiceStatusOverdue
	}
	return i.Status
}

// InvoiceItem represents one billable line on an invoice. Items are replaced
// wholesale (delete-all-then-recreate) on every invoice update.
type InvoiceItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	InvoiceID uint     `gorm:"index;not null" json:"invoice_id"`
	Invoice   *Invoice `gorm:"foreignKey:InvoiceID" json:"-"`

	Description string  `gorm:"size:500;not null" json:"description"`
	Quantity    float64 `gorm:"type:decimal(10,3);not null;default:0" json:"quantity"`
	Price       float64 `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	// Amount = Quantity * Price, persisted redundantly for display.
	Amount float64 `gorm:"type:decimal(10,2);not null;default:0" json:"amount"`
}

// CommunicationLog records each notification link generated for an invoice.
// The system cannot know whether the external chat message was delivered,
// only that a link was produced.
type CommunicationLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	InvoiceID uint     `gorm:"index" json:"invoice_id,omitempty"`
	Invoice   *Invoice `gorm:"foreignKey:InvoiceID" json:"-"`

	Type    string `gorm:"size:50;not null" json:"type"`   // e.g. "whatsapp"
	Status  string `gorm:"size:50;not null" json:"status"` // e.g. "link_generated"
	Message string `gorm:"type:text" json:"message,omitempty"`
}
