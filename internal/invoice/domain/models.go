// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "draft"
	InvoiceStatusIssued InvoiceStatus = "issued"
	InvoiceStatusPaid   InvoiceStatus = "paid"
	InvoiceStatusVoid   InvoiceStatus = "void"
)

// Invoice is a tenant-scoped invoice covering one or more services
// (transfers, tours, hotel stays) sold to a customer.
type Invoice struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	TenantID       snowflake.ID      `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	Number         string            `gorm:"type:text;index" json:"number,omitempty"`
	Sequence       int64             `gorm:"not null;default:0" json:"-"`
	IdempotencyKey string            `gorm:"column:idempotency_key;type:text;not null;uniqueIndex:ux_invoices_tenant_idem,priority:2" json:"-"`
	BillToName     string            `gorm:"column:bill_to_name;type:text;not null" json:"bill_to_name"`
	BillToEmail    string            `gorm:"column:bill_to_email;type:text" json:"bill_to_email,omitempty"`
	BillToAddress  string            `gorm:"column:bill_to_address;type:text" json:"bill_to_address,omitempty"`
	CurrencyCode   string            `gorm:"column:currency_code;type:text;not null" json:"currency_code"`
	Subtotal       float64           `gorm:"not null;default:0" json:"subtotal"`
	Total          float64           `gorm:"not null;default:0" json:"total"`
	Status         InvoiceStatus     `gorm:"type:text;not null;default:'draft';index" json:"status"`
	Notes          string            `gorm:"type:text" json:"notes,omitempty"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	IssuedAt       *time.Time        `gorm:"column:issued_at" json:"issued_at,omitempty"`
	DueAt          *time.Time        `gorm:"column:due_at" json:"due_at,omitempty"`
	PaidAt         *time.Time        `gorm:"column:paid_at" json:"paid_at,omitempty"`
	VoidedAt       *time.Time        `gorm:"column:voided_at" json:"voided_at,omitempty"`
	CreatedBy      snowflake.ID      `gorm:"column:created_by;not null" json:"created_by"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Items []InvoiceItem `gorm:"-" json:"items,omitempty"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem represents a line on an invoice.
type InvoiceItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID    snowflake.ID `gorm:"column:tenant_id;not null;index" json:"tenant_id"`
	InvoiceID   snowflake.ID `gorm:"column:invoice_id;not null;index" json:"invoice_id"`
	Description string       `gorm:"type:text;not null" json:"description"`
	ServiceDate *time.Time   `gorm:"column:service_date" json:"service_date,omitempty"`
	Quantity    int          `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   float64      `gorm:"column:unit_price;not null" json:"unit_price"`
	Amount      float64      `gorm:"not null" json:"amount"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }
