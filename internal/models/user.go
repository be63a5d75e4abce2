package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an authenticated user in the system.
// A user owns at most one Profile and any number of Clients and Invoices.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name     string `gorm:"size:255" json:"name,omitempty"`
	Password string `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON

	// Relations
	Profile  *Profile  `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	Clients  []Client  `gorm:"foreignKey:UserID" json:"clients,omitempty"`
	Invoices []Invoice `gorm:"foreignKey:UserID" json:"invoices,omitempty"`
}
