package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/routewise/routewise/internal/config"
	"github.com/routewise/routewise/internal/invoice/domain"
	"github.com/routewise/routewise/internal/invoice/repository"
	"github.com/routewise/routewise/internal/providers/email"
	"github.com/routewise/routewise/internal/providers/pdf"
	"github.com/routewise/routewise/internal/tenantctx"
	tenantrepository "github.com/routewise/routewise/internal/tenant/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubPDFProvider struct {
	lastInvoice pdf.InvoiceData
}

func (p *stubPDFProvider) GenerateInvoice(ctx context.Context, data pdf.InvoiceData) (io.Reader, error) {
	p.lastInvoice = data
	return bytes.NewReader([]byte("%PDF-1.4 stub")), nil
}

func (p *stubPDFProvider) GenerateVoucher(ctx context.Context, data pdf.VoucherData) (io.Reader, error) {
	return bytes.NewReader([]byte("%PDF-1.4 stub")), nil
}

type stubEmailProvider struct {
	templates []string
	to        []string
}

func (p *stubEmailProvider) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	return nil
}

func (p *stubEmailProvider) SendTemplate(ctx context.Context, to []string, templateName string, data map[string]interface{}) error {
	p.templates = append(p.templates, templateName)
	p.to = append(p.to, to...)
	return nil
}

var _ email.Provider = (*stubEmailProvider)(nil)

func setupInvoiceService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node, *stubPDFProvider, *stubEmailProvider) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.Exec(`CREATE TABLE invoices (
		id BIGINT PRIMARY KEY,
		tenant_id BIGINT NOT NULL,
		number TEXT,
		sequence BIGINT NOT NULL DEFAULT 0,
		idempotency_key TEXT NOT NULL,
		bill_to_name TEXT NOT NULL,
		bill_to_email TEXT,
		bill_to_address TEXT,
		currency_code TEXT NOT NULL,
		subtotal DOUBLE PRECISION NOT NULL DEFAULT 0,
		total DOUBLE PRECISION NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		notes TEXT,
		issued_at DATETIME,
		due_at DATETIME,
		paid_at DATETIME,
		voided_at DATETIME,
		created_by BIGINT NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (tenant_id, idempotency_key)
	)`).Error; err != nil {
		t.Fatalf("create invoices: %v", err)
	}
	if err := db.Exec(`CREATE TABLE invoice_items (
		id BIGINT PRIMARY KEY,
		tenant_id BIGINT NOT NULL,
		invoice_id BIGINT NOT NULL,
		description TEXT NOT NULL,
		service_date DATETIME,
		quantity INTEGER NOT NULL DEFAULT 1,
		unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create invoice_items: %v", err)
	}
	if err := db.Exec(`CREATE TABLE tenants (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		locale TEXT,
		branding TEXT NOT NULL DEFAULT '{}',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error; err != nil {
		t.Fatalf("create tenants: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	pricing, err := config.NewPricingConfigHolder()
	if err != nil {
		t.Fatalf("pricing holder: %v", err)
	}

	pdfStub := &stubPDFProvider{}
	emailStub := &stubEmailProvider{}
	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Repo:       repository.Provide(),
		TenantRepo: tenantrepository.Provide(),
		Pricing:    pricing,
		PDF:        pdfStub,
		Email:      emailStub,
	})
	return svc, db, node, pdfStub, emailStub
}

func seedTenantRow(t *testing.T, db *gorm.DB, tenantID snowflake.ID, name string) {
	t.Helper()
	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO tenants (id, name, slug, locale, branding, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, 'en', '{"email":"billing@agency.test"}', TRUE, ?, ?)`,
		tenantID, name, fmt.Sprintf("slug-%d", tenantID), now, now,
	).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
}

func draftInvoice(t *testing.T, svc domain.Service, ctx context.Context, key string) domain.Invoice {
	t.Helper()
	invoice, err := svc.Create(ctx, domain.CreateInvoiceRequest{
		BillToName:     "Acme Tours SL",
		BillToEmail:    "finance@acme.test",
		IdempotencyKey: key,
		Items: []domain.CreateInvoiceItemRequest{
			{Description: "Airport transfer", Quantity: 2, UnitPrice: 45},
			{Description: "City tour", Quantity: 1, UnitPrice: 120},
		},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	return invoice
}

func TestCreateInvoiceTotals(t *testing.T) {
	svc, _, node, _, _ := setupInvoiceService(t)
	ctx := tenantctx.WithTenantID(context.Background(), int64(node.Generate()))

	invoice := draftInvoice(t, svc, ctx, "")
	if invoice.Status != domain.InvoiceStatusDraft {
		t.Fatalf("expected draft, got %s", invoice.Status)
	}
	if invoice.Subtotal != 210 || invoice.Total != 210 {
		t.Fatalf("expected subtotal/total 210, got %v/%v", invoice.Subtotal, invoice.Total)
	}
	if invoice.Number != "" {
		t.Fatalf("draft must not carry a number, got %q", invoice.Number)
	}
	if len(invoice.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(invoice.Items))
	}
	// A missing key is generated, so a retry without one is a new invoice.
	if invoice.IdempotencyKey == "" {
		t.Fatal("expected generated idempotency key")
	}
}

func TestCreateInvoiceValidation(t *testing.T) {
	svc, _, node, _, _ := setupInvoiceService(t)
	ctx := tenantctx.WithTenantID(context.Background(), int64(node.Generate()))

	if _, err := svc.Create(ctx, domain.CreateInvoiceRequest{
		Items: []domain.CreateInvoiceItemRequest{{Description: "x", UnitPrice: 1}},
	}); err != domain.ErrInvalidBillTo {
		t.Fatalf("expected ErrInvalidBillTo, got %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateInvoiceRequest{BillToName: "Acme"}); err != domain.ErrInvalidItems {
		t.Fatalf("expected ErrInvalidItems for empty items, got %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateInvoiceRequest{
		BillToName: "Acme",
		Items:      []domain.CreateInvoiceItemRequest{{Description: "x", UnitPrice: -5}},
	}); err != domain.ErrInvalidItems {
		t.Fatalf("expected ErrInvalidItems for negative price, got %v", err)
	}
	if _, err := svc.Create(context.Background(), domain.CreateInvoiceRequest{
		BillToName: "Acme",
		Items:      []domain.CreateInvoiceItemRequest{{Description: "x", UnitPrice: 1}},
	}); err != domain.ErrInvalidTenant {
		t.Fatalf("expected ErrInvalidTenant, got %v", err)
	}
}

func TestCreateInvoiceIdempotency(t *testing.T) {
	svc, _, node, _, _ := setupInvoiceService(t)
	ctx := tenantctx.WithTenantID(context.Background(), int64(node.Generate()))

	first := draftInvoice(t, svc, ctx, "booking-42")
	second := draftInvoice(t, svc, ctx, "booking-42")

	if first.ID != second.ID {
		t.Fatalf("expected same invoice, got %s and %s", first.ID, second.ID)
	}
	if len(second.Items) != len(first.Items) {
		t.Fatalf("replay lost items: %d vs %d", len(second.Items), len(first.Items))
	}

	// The key is tenant scoped, another tenant starts fresh.
	otherCtx := tenantctx.WithTenantID(context.Background(), int64(node.Generate()))
	third := draftInvoice(t, svc, otherCtx, "booking-42")
	if third.ID == first.ID {
		t.Fatal("idempotency key leaked across tenants")
	}
}

func TestIssueAssignsSequentialNumbers(t *testing.T) {
	svc, db, node, _, emailStub := setupInvoiceService(t)
	tenantID := node.Generate()
	seedTenantRow(t, db, tenantID, "Routewise Demo")
	ctx := tenantctx.WithTenantID(context.Background(), int64(tenantID))

	first := draftInvoice(t, svc, ctx, "")
	second := draftInvoice(t, svc, ctx, "")

	issuedFirst, err := svc.Issue(ctx, first.ID.String())
	if err != nil {
		t.Fatalf("issue first: %v", err)
	}
	issuedSecond, err := svc.Issue(ctx, second.ID.String())
	if err != nil {
		t.Fatalf("issue second: %v", err)
	}

	if issuedFirst.Status != domain.InvoiceStatusIssued || issuedFirst.IssuedAt == nil {
		t.Fatalf("expected issued invoice, got %s issued_at=%v", issuedFirst.Status, issuedFirst.IssuedAt)
	}
	if issuedFirst.Sequence != 1 || issuedSecond.Sequence != 2 {
		t.Fatalf("expected sequences 1 and 2, got %d and %d", issuedFirst.Sequence, issuedSecond.Sequence)
	}

	now := time.Now().UTC()
	wantFirst := fmt.Sprintf("INV-%04d%02d-00001", now.Year(), int(now.Month()))
	if issuedFirst.Number != wantFirst {
		t.Fatalf("expected number %s, got %s", wantFirst, issuedFirst.Number)
	}

	if len(emailStub.templates) != 2 || emailStub.templates[0] != "invoice_issued" {
		t.Fatalf("expected invoice_issued notifications, got %v", emailStub.templates)
	}

	// Issuing twice is not allowed.
	if _, err := svc.Issue(ctx, first.ID.String()); err != domain.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestInvoiceStatusTransitions(t *testing.T) {
	svc, _, node, _, _ := setupInvoiceService(t)
	ctx := tenantctx.WithTenantID(context.Background(), int64(node.Generate()))

	invoice := draftInvoice(t, svc, ctx, "")

	// Draft cannot be paid before it is issued.
	if _, err := svc.MarkPaid(ctx, invoice.ID.String()); err != domain.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition paying draft, got %v", err)
	}

	issued, err := svc.Issue(ctx, invoice.ID.String())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	paid, err := svc.MarkPaid(ctx, issued.ID.String())
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.Status != domain.InvoiceStatusPaid || paid.PaidAt == nil {
		t.Fatalf("expected paid invoice, got %s", paid.Status)
	}

	// Paid is terminal.
	if _, err := svc.Void(ctx, paid.ID.String()); err != domain.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition voiding paid, got %v", err)
	}
}

func TestVoidInvoice(t *testing.T) {
	svc, _, node, _, _ := setupInvoiceService(t)
	ctx := tenantctx.WithTenantID(context.Background(), int64(node.Generate()))

	draft := draftInvoice(t, svc, ctx, "")
	voided, err := svc.Void(ctx, draft.ID.String())
	if err != nil {
		t.Fatalf("void draft: %v", err)
	}
	if voided.Status != domain.InvoiceStatusVoid || voided.VoidedAt == nil {
		t.Fatalf("expected void invoice, got %s", voided.Status)
	}

	issued := draftInvoice(t, svc, ctx, "")
	if _, err := svc.Issue(ctx, issued.ID.String()); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Void(ctx, issued.ID.String()); err != nil {
		t.Fatalf("void issued: %v", err)
	}
}

func TestRenderPDF(t *testing.T) {
	svc, db, node, pdfStub, _ := setupInvoiceService(t)
	tenantID := node.Generate()
	seedTenantRow(t, db, tenantID, "Coastal Transfers")
	ctx := tenantctx.WithTenantID(context.Background(), int64(tenantID))

	invoice := draftInvoice(t, svc, ctx, "")
	if _, err := svc.Issue(ctx, invoice.ID.String()); err != nil {
		t.Fatalf("issue: %v", err)
	}

	raw, err := svc.RenderPDF(ctx, invoice.ID.String())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("expected pdf bytes")
	}
	if pdfStub.lastInvoice.AgencyName != "Coastal Transfers" {
		t.Fatalf("expected tenant branding on document, got %q", pdfStub.lastInvoice.AgencyName)
	}
	if pdfStub.lastInvoice.AgencyEmail != "billing@agency.test" {
		t.Fatalf("expected branding email, got %q", pdfStub.lastInvoice.AgencyEmail)
	}
	if pdfStub.lastInvoice.Total != "210.00" {
		t.Fatalf("expected total 210.00, got %q", pdfStub.lastInvoice.Total)
	}
	if len(pdfStub.lastInvoice.Items) != 2 {
		t.Fatalf("expected 2 items on document, got %d", len(pdfStub.lastInvoice.Items))
	}
}

func TestGetInvoiceCrossTenant(t *testing.T) {
	svc, _, node, _, _ := setupInvoiceService(t)
	ctx := tenantctx.WithTenantID(context.Background(), int64(node.Generate()))

	invoice := draftInvoice(t, svc, ctx, "")

	otherCtx := tenantctx.WithTenantID(context.Background(), int64(node.Generate()))
	if _, err := svc.GetByID(otherCtx, domain.GetInvoiceRequest{ID: invoice.ID.String()}); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
