package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type InvoiceData struct {
	AgencyName    string
	AgencyAddress string
	AgencyEmail   string

	InvoiceNumber string
	IssueDate     string
	DueDate       string

	BillToName    string
	BillToAddress string
	BillToEmail   string

	CurrencyCode string
	Notes        string

	Items []InvoiceItem

	Subtotal  string
	Total     string
	AmountDue string
}

type InvoiceItem struct {
	Description string
	ServiceDate string
	Qty         int
	UnitPrice   string
	Amount      string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	// Invoice Meta
	m.AddRow(18,
		col.New(6).Add(
			text.New("Invoice number: "+data.InvoiceNumber, props.Text{Top: 0}),
			text.New("Date of issue: "+data.IssueDate, props.Text{Top: 4}),
			text.New("Date due: "+data.DueDate, props.Text{Top: 8}),
		),
		col.New(6),
	)

	// Addresses
	m.AddRow(36,
		col.New(6).Add(
			text.New(data.AgencyName, props.Text{Style: fontstyle.Bold}),
			text.New(data.AgencyAddress, props.Text{Top: 5}),
			text.New(data.AgencyEmail, props.Text{Top: 18}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(data.BillToName, props.Text{Top: 5}),
			text.New(data.BillToAddress, props.Text{Top: 9}),
			text.New(data.BillToEmail, props.Text{Top: 22}),
		),
	)

	// Summary Title
	m.AddRow(10,
		text.NewCol(12, fmt.Sprintf("%s %s due %s", data.CurrencyCode, data.AmountDue, data.DueDate), props.Text{
			Size:  12,
			Style: fontstyle.Bold,
		}),
	)

	// Items Header
	m.AddRow(8,
		text.NewCol(5, "Description", props.Text{Style: fontstyle.Bold}),
		text.NewCol(2, "Date", props.Text{Style: fontstyle.Bold}),
		text.NewCol(1, "Qty", props.Text{Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Align: align.Right}),
	)

	for _, item := range data.Items {
		m.AddRow(7,
			text.NewCol(5, item.Description),
			text.NewCol(2, item.ServiceDate),
			text.NewCol(1, fmt.Sprintf("%d", item.Qty), props.Text{Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Align: align.Right}),
		)
	}

	// Totals
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Subtotal", props.Text{Align: align.Right}),
		text.NewCol(2, data.Subtotal, props.Text{Align: align.Right}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Align: align.Right, Style: fontstyle.Bold}),
		text.NewCol(2, data.Total, props.Text{Align: align.Right, Style: fontstyle.Bold}),
	)
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Amount due", props.Text{Align: align.Right, Style: fontstyle.Bold}),
		text.NewCol(2, data.AmountDue, props.Text{Align: align.Right, Style: fontstyle.Bold}),
	)

	if data.Notes != "" {
		m.AddRow(12,
			text.NewCol(12, data.Notes, props.Text{Top: 4, Size: 8}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice PDF: %w", err)
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
