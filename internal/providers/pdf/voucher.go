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

// VoucherData carries everything printed on a transfer voucher handed
// to the passenger or the driver.
type VoucherData struct {
	AgencyName  string
	AgencyEmail string

	ReservationCode string
	PassengerName   string
	PassengerPhone  string
	Pax             int

	PickupLocation  string
	DropoffLocation string
	ScheduledAt     string
	FlightNumber    string

	DriverName    string
	DriverPhone   string
	VehicleModel  string
	VehiclePlate  string

	Notes string
}

func (p *PDFProvider) GenerateVoucher(ctx context.Context, data VoucherData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(8, "Transfer voucher", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, data.ReservationCode, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	m.AddRow(16,
		col.New(12).Add(
			text.New(data.AgencyName, props.Text{Style: fontstyle.Bold}),
			text.New(data.AgencyEmail, props.Text{Top: 5}),
		),
	)

	m.AddRow(30,
		col.New(6).Add(
			text.New("Passenger", props.Text{Style: fontstyle.Bold}),
			text.New(data.PassengerName, props.Text{Top: 5}),
			text.New(data.PassengerPhone, props.Text{Top: 9}),
			text.New(fmt.Sprintf("Pax: %d", data.Pax), props.Text{Top: 13}),
		),
		col.New(6).Add(
			text.New("Trip", props.Text{Style: fontstyle.Bold}),
			text.New("Pickup: "+data.PickupLocation, props.Text{Top: 5}),
			text.New("Dropoff: "+data.DropoffLocation, props.Text{Top: 9}),
			text.New("Date: "+data.ScheduledAt, props.Text{Top: 13}),
		),
	)

	if data.FlightNumber != "" {
		m.AddRow(8,
			text.NewCol(12, "Flight: "+data.FlightNumber, props.Text{Style: fontstyle.Bold}),
		)
	}

	if data.DriverName != "" {
		m.AddRow(24,
			col.New(12).Add(
				text.New("Driver", props.Text{Style: fontstyle.Bold}),
				text.New(data.DriverName+"  "+data.DriverPhone, props.Text{Top: 5}),
				text.New(data.VehicleModel+"  "+data.VehiclePlate, props.Text{Top: 9}),
			),
		)
	}

	if data.Notes != "" {
		m.AddRow(12,
			text.NewCol(12, data.Notes, props.Text{Top: 4, Size: 8}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate voucher PDF: %w", err)
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
