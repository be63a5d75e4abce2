// Package models defines the shared entity vocabulary of the application.
// Every Client and Invoice belongs to exactly one User; all read/write
// operations must filter by the owning user id.
package models

// Ownable is implemented by records that belong to a single user.
// Handlers use it to enforce the owner filter uniformly.
type Ownable interface {
	GetUserID() uint
}

// All returns the full model list in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Profile{},
		&Client{},
		&Invoice{},
		&InvoiceItem{},
		&CommunicationLog{},
	}
}
