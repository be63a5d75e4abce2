package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile holds the business identity of a user: the details printed on
// invoices and included in notification messages. One-to-one with User,
// created lazily on first save (upsert keyed on user_id).
type Profile struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	BusinessName string `gorm:"size:255;not null" json:"business_name"`
	LogoURL      string `gorm:"size:500" json:"logo_url,omitempty"`

	// Contact info
	Email   string `gorm:"size:255" json:"email,omitempty"`
	Phone   string `gorm:"size:50" json:"phone,omitempty"`
	Address string `gorm:"size:500" json:"address,omitempty"`

	// Payment details
	BankName      string `gorm:"size:255" json:"bank_name,omitempty"`
	AccountNumber string `gorm:"size:100" json:"account_number,omitempty"`
	RoutingNumber string `gorm:"size:100" json:"routing_number,omitempty"`
}

// GetUserID implements the Ownable interface for authorization.
func (p *Profile) GetUserID() uint {
	return p.UserID
}

// HasPaymentDetails reports whether any bank detail is set; the notification
// message and the PDF only include the payment block when this is true.
func (p *Profile) HasPaymentDetails() bool {
	return p.BankName != "" || p.AccountNumber != "" || p.RoutingNumber != ""
}
