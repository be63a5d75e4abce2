package models

import (
	"time"

	"gorm.io/gorm"
)

// Client represents a billing counterparty owned by exactly one user.
// Implements the Ownable interface for ownership-based authorization.
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// UserID is the owner of this client (for multi-tenant isolation)
	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Name           string `gorm:"size:255;not null" json:"name"`
	Email          string `gorm:"size:255" json:"email,omitempty"`
	WhatsAppNumber string `gorm:"size:50" json:"whatsapp_number,omitempty"`
	Address        string `gorm:"size:500" json:"address,omitempty"`
	Notes          string `gorm:"type:text" json:"notes,omitempty"`

	// Relations
	Invoices []Invoice `gorm:"foreignKey:ClientID" json:"invoices,omitempty"`
}

// GetUserID implements the Ownable interface for authorization.
func (c *Client) GetUserID() uint {
	return c.UserID
}
