package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/pkg/db/pagination"
	"gorm.io/gorm"
)

type CreateInvoiceItemRequest struct {
	Description string     `json:"description"`
	ServiceDate *time.Time `json:"service_date"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
}

type CreateInvoiceRequest struct {
	BillToName     string                     `json:"bill_to_name"`
	BillToEmail    string                     `json:"bill_to_email"`
	BillToAddress  string                     `json:"bill_to_address"`
	Notes          string                     `json:"notes"`
	DueAt          *time.Time                 `json:"due_at"`
	IdempotencyKey string                     `json:"idempotency_key"`
	Items          []CreateInvoiceItemRequest `json:"items"`
}

type GetInvoiceRequest struct {
	ID string
}

type ListInvoiceRequest struct {
	PageToken string
	PageSize  int32
	Status    string
}

type ListInvoiceFilter struct {
	Status string
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice, items []InvoiceItem) error
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Invoice, error)
	FindByIdempotencyKey(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, key string) (*Invoice, error)
	ListItems(ctx context.Context, db *gorm.DB, tenantID, invoiceID snowflake.ID) ([]InvoiceItem, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)
	// NextSequence reserves the next invoice number sequence for the tenant.
	NextSequence(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (int64, error)
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (Invoice, error)
	GetByID(context.Context, GetInvoiceRequest) (Invoice, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	Issue(ctx context.Context, id string) (Invoice, error)
	MarkPaid(ctx context.Context, id string) (Invoice, error)
	Void(ctx context.Context, id string) (Invoice, error)
	RenderPDF(ctx context.Context, id string) ([]byte, error)
}

var (
	ErrInvalidTenant     = errors.New("invalid_tenant")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidBillTo     = errors.New("invalid_bill_to")
	ErrInvalidItems      = errors.New("invalid_items")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrNotFound          = errors.New("not_found")
)
