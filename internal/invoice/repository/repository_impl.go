package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/internal/invoice/domain"
	"github.com/routewise/routewise/pkg/db/option"
	"github.com/routewise/routewise/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice, items []domain.InvoiceItem) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(
			`INSERT INTO invoices (
				id, tenant_id, number, sequence, idempotency_key, bill_to_name,
				bill_to_email, bill_to_address, currency_code, subtotal, total,
				status, notes, issued_at, due_at, paid_at, voided_at, created_by,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			invoice.ID,
			invoice.TenantID,
			invoice.Number,
			invoice.Sequence,
			invoice.IdempotencyKey,
			invoice.BillToName,
			invoice.BillToEmail,
			invoice.BillToAddress,
			invoice.CurrencyCode,
			invoice.Subtotal,
			invoice.Total,
			invoice.Status,
			invoice.Notes,
			invoice.IssuedAt,
			invoice.DueAt,
			invoice.PaidAt,
			invoice.VoidedAt,
			invoice.CreatedBy,
			invoice.CreatedAt,
			invoice.UpdatedAt,
		).Error
		if err != nil {
			return err
		}
		for _, item := range items {
			err = tx.Exec(
				`INSERT INTO invoice_items (
					id, tenant_id, invoice_id, description, service_date, quantity,
					unit_price, amount, created_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				item.ID,
				item.TenantID,
				item.InvoiceID,
				item.Description,
				item.ServiceDate,
				item.Quantity,
				item.UnitPrice,
				item.Amount,
				item.CreatedAt,
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Exec(
		`UPDATE invoices SET number = ?, sequence = ?, bill_to_name = ?, bill_to_email = ?,
			bill_to_address = ?, subtotal = ?, total = ?, status = ?, notes = ?,
			issued_at = ?, due_at = ?, paid_at = ?, voided_at = ?, updated_at = ?
		 WHERE tenant_id = ? AND id = ?`,
		invoice.Number,
		invoice.Sequence,
		invoice.BillToName,
		invoice.BillToEmail,
		invoice.BillToAddress,
		invoice.Subtotal,
		invoice.Total,
		invoice.Status,
		invoice.Notes,
		invoice.IssuedAt,
		invoice.DueAt,
		invoice.PaidAt,
		invoice.VoidedAt,
		invoice.UpdatedAt,
		invoice.TenantID,
		invoice.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, number, sequence, idempotency_key, bill_to_name,
			bill_to_email, bill_to_address, currency_code, subtotal, total, status,
			notes, issued_at, due_at, paid_at, voided_at, created_by, created_at, updated_at
		 FROM invoices WHERE tenant_id = ? AND id = ?`,
		tenantID,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) FindByIdempotencyKey(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, key string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, number, sequence, idempotency_key, bill_to_name,
			bill_to_email, bill_to_address, currency_code, subtotal, total, status,
			notes, issued_at, due_at, paid_at, voided_at, created_by, created_at, updated_at
		 FROM invoices WHERE tenant_id = ? AND idempotency_key = ?`,
		tenantID,
		key,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, tenantID, invoiceID snowflake.ID) ([]domain.InvoiceItem, error) {
	var items []domain.InvoiceItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, tenant_id, invoice_id, description, service_date, quantity,
			unit_price, amount, created_at
		 FROM invoice_items WHERE tenant_id = ? AND invoice_id = ?
		 ORDER BY created_at ASC, id ASC`,
		tenantID,
		invoiceID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("tenant_id = ?", tenantID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) NextSequence(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (int64, error) {
	var seq int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(sequence), 0) + 1 FROM invoices WHERE tenant_id = ?`,
		tenantID,
	).Scan(&seq).Error
	if err != nil {
		return 0, err
	}
	return seq, nil
}
