package pdf

import (
	"context"
	"io"
)

// Provider renders printable documents for a tenant.
type Provider interface {
	GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error)
	GenerateVoucher(ctx context.Context, data VoucherData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error) {
	return nil, nil
}

func (p *NoOpProvider) GenerateVoucher(ctx context.Context, data VoucherData) (io.Reader, error) {
	return nil, nil
}
