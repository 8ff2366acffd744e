package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/routewise/routewise/internal/config"
	"github.com/routewise/routewise/internal/invoice/domain"
	"github.com/routewise/routewise/internal/invoice/format"
	"github.com/routewise/routewise/internal/observability/metrics"
	"github.com/routewise/routewise/internal/observability/obscontext"
	"github.com/routewise/routewise/internal/providers/email"
	"github.com/routewise/routewise/internal/providers/pdf"
	"github.com/routewise/routewise/internal/tenantctx"
	tenantdomain "github.com/routewise/routewise/internal/tenant/domain"
	"github.com/routewise/routewise/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	TenantRepo tenantdomain.Repository
	Pricing    *config.PricingConfigHolder
	PDF        pdf.Provider
	Email      email.Provider
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	tenantRepo tenantdomain.Repository
	pricing    *config.PricingConfigHolder
	pdf        pdf.Provider
	email      email.Provider
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("invoice.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		tenantRepo: p.TenantRepo,
		pricing:    p.Pricing,
		pdf:        p.PDF,
		email:      p.Email,
		metrics:    p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Invoice{}, domain.ErrInvalidTenant
	}

	billToName := strings.TrimSpace(req.BillToName)
	if billToName == "" {
		return domain.Invoice{}, domain.ErrInvalidBillTo
	}
	if len(req.Items) == 0 {
		return domain.Invoice{}, domain.ErrInvalidItems
	}

	idempotencyKey := strings.TrimSpace(req.IdempotencyKey)
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	} else {
		existing, err := s.repo.FindByIdempotencyKey(ctx, s.db, tenantID, idempotencyKey)
		if err != nil {
			return domain.Invoice{}, err
		}
		if existing != nil {
			items, err := s.repo.ListItems(ctx, s.db, tenantID, existing.ID)
			if err != nil {
				return domain.Invoice{}, err
			}
			existing.Items = items
			return *existing, nil
		}
	}

	pricing := s.pricing.Current()
	now := time.Now().UTC()

	invoice := domain.Invoice{
		ID:             s.genID.Generate(),
		TenantID:       tenantID,
		IdempotencyKey: idempotencyKey,
		BillToName:     billToName,
		BillToEmail:    strings.TrimSpace(req.BillToEmail),
		BillToAddress:  strings.TrimSpace(req.BillToAddress),
		CurrencyCode:   pricing.CurrencyCode,
		Status:         domain.InvoiceStatusDraft,
		Notes:          strings.TrimSpace(req.Notes),
		DueAt:          req.DueAt,
		CreatedBy:      creatorFromContext(ctx),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	items := make([]domain.InvoiceItem, 0, len(req.Items))
	for _, line := range req.Items {
		description := strings.TrimSpace(line.Description)
		if description == "" {
			return domain.Invoice{}, domain.ErrInvalidItems
		}
		qty := line.Quantity
		if qty <= 0 {
			qty = 1
		}
		if line.UnitPrice < 0 {
			return domain.Invoice{}, domain.ErrInvalidItems
		}
		amount := line.UnitPrice * float64(qty)
		items = append(items, domain.InvoiceItem{
			ID:          s.genID.Generate(),
			TenantID:    tenantID,
			InvoiceID:   invoice.ID,
			Description: description,
			ServiceDate: line.ServiceDate,
			Quantity:    qty,
			UnitPrice:   line.UnitPrice,
			Amount:      amount,
			CreatedAt:   now,
		})
		invoice.Subtotal += amount
	}
	invoice.Total = invoice.Subtotal

	if err := s.repo.Insert(ctx, s.db, &invoice, items); err != nil {
		return domain.Invoice{}, err
	}

	invoice.Items = items
	return invoice, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetInvoiceRequest) (domain.Invoice, error) {
	tenantID, invoice, err := s.find(ctx, req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}

	items, err := s.repo.ListItems(ctx, s.db, tenantID, invoice.ID)
	if err != nil {
		return domain.Invoice{}, err
	}
	invoice.Items = items
	return *invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ListInvoiceResponse{}, domain.ErrInvalidTenant
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, tenantID, domain.ListInvoiceFilter{
		Status: strings.ToLower(strings.TrimSpace(req.Status)),
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int(pageSize), func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.ID.String(),
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

// Issue assigns the invoice its number and moves it out of draft.
func (s *Service) Issue(ctx context.Context, id string) (domain.Invoice, error) {
	tenantID, invoice, err := s.find(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice.Status != domain.InvoiceStatusDraft {
		return domain.Invoice{}, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := s.repo.NextSequence(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		number, err := format.FormatInvoiceNumber(format.DefaultInvoiceNumberTemplate, now, seq)
		if err != nil {
			return err
		}
		invoice.Sequence = seq
		invoice.Number = number
		invoice.Status = domain.InvoiceStatusIssued
		invoice.IssuedAt = &now
		invoice.UpdatedAt = now
		return s.repo.Update(ctx, tx, invoice)
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.notifyIssued(ctx, invoice)
	return *invoice, nil
}

func (s *Service) MarkPaid(ctx context.Context, id string) (domain.Invoice, error) {
	_, invoice, err := s.find(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice.Status != domain.InvoiceStatusIssued {
		return domain.Invoice{}, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	invoice.Status = domain.InvoiceStatusPaid
	invoice.PaidAt = &now
	invoice.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) Void(ctx context.Context, id string) (domain.Invoice, error) {
	_, invoice, err := s.find(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice.Status != domain.InvoiceStatusDraft && invoice.Status != domain.InvoiceStatusIssued {
		return domain.Invoice{}, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	invoice.Status = domain.InvoiceStatusVoid
	invoice.VoidedAt = &now
	invoice.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) RenderPDF(ctx context.Context, id string) ([]byte, error) {
	tenantID, invoice, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListItems(ctx, s.db, tenantID, invoice.ID)
	if err != nil {
		return nil, err
	}

	agencyName := ""
	agencyEmail := ""
	agencyAddress := ""
	tenant, err := s.tenantRepo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant != nil {
		agencyName = tenant.Name
		if v, ok := tenant.Branding["email"].(string); ok {
			agencyEmail = v
		}
		if v, ok := tenant.Branding["address"].(string); ok {
			agencyAddress = v
		}
	}

	data := pdf.InvoiceData{
		AgencyName:    agencyName,
		AgencyAddress: agencyAddress,
		AgencyEmail:   agencyEmail,
		InvoiceNumber: invoice.Number,
		IssueDate:     formatDate(invoice.IssuedAt),
		DueDate:       formatDate(invoice.DueAt),
		BillToName:    invoice.BillToName,
		BillToAddress: invoice.BillToAddress,
		BillToEmail:   invoice.BillToEmail,
		CurrencyCode:  invoice.CurrencyCode,
		Notes:         invoice.Notes,
		Subtotal:      formatAmount(invoice.Subtotal),
		Total:         formatAmount(invoice.Total),
		AmountDue:     formatAmount(amountDue(invoice)),
	}
	for _, item := range items {
		data.Items = append(data.Items, pdf.InvoiceItem{
			Description: item.Description,
			ServiceDate: formatDate(item.ServiceDate),
			Qty:         item.Quantity,
			UnitPrice:   formatAmount(item.UnitPrice),
			Amount:      formatAmount(item.Amount),
		})
	}

	reader, err := s.pdf.GenerateInvoice(ctx, data)
	if err != nil {
		return nil, err
	}
	if reader == nil {
		return nil, fmt.Errorf("pdf provider returned no document")
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordInvoiceRendered(ctx, tenantID.String())
	return raw, nil
}

// notifyIssued emails the customer when the invoice leaves draft. Failure
// to send never fails the issue itself.
func (s *Service) notifyIssued(ctx context.Context, invoice *domain.Invoice) {
	if s.email == nil || invoice.BillToEmail == "" {
		return
	}

	agencyName := ""
	tenant, err := s.tenantRepo.FindByID(ctx, s.db, invoice.TenantID)
	if err == nil && tenant != nil {
		agencyName = tenant.Name
	}

	err = s.email.SendTemplate(ctx, []string{invoice.BillToEmail}, "invoice_issued", map[string]interface{}{
		"invoice_number": invoice.Number,
		"bill_to_name":   invoice.BillToName,
		"agency_name":    agencyName,
		"currency":       invoice.CurrencyCode,
		"amount_due":     formatAmount(amountDue(invoice)),
		"due_date":       formatDate(invoice.DueAt),
	})
	if err != nil {
		s.log.Warn("failed to send invoice notification",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) find(ctx context.Context, rawID string) (snowflake.ID, *domain.Invoice, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return 0, nil, domain.ErrInvalidTenant
	}
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil {
		return 0, nil, domain.ErrInvalidID
	}

	invoice, err := s.repo.FindByID(ctx, s.db, tenantID, id)
	if err != nil {
		return 0, nil, err
	}
	if invoice == nil {
		return 0, nil, domain.ErrNotFound
	}
	return tenantID, invoice, nil
}

func amountDue(invoice *domain.Invoice) float64 {
	if invoice.Status == domain.InvoiceStatusPaid || invoice.Status == domain.InvoiceStatusVoid {
		return 0
	}
	return invoice.Total
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func creatorFromContext(ctx context.Context) snowflake.ID {
	_, actorID := obscontext.ActorFromContext(ctx)
	if actorID == "" {
		return 0
	}
	id, err := snowflake.ParseString(actorID)
	if err != nil {
		return 0
	}
	return id
}
