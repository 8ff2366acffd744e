package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	driverdomain "github.com/routewise/routewise/internal/driver/domain"
	"github.com/routewise/routewise/internal/providers/flight"
	"github.com/routewise/routewise/internal/providers/pdf"
	reservationdomain "github.com/routewise/routewise/internal/reservation/domain"
	tenantdomain "github.com/routewise/routewise/internal/tenant/domain"
	"github.com/routewise/routewise/internal/tenantctx"
)

func (s *Server) CreateReservation(c *gin.Context) {
	var req reservationdomain.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.PassengerName = strings.TrimSpace(req.PassengerName)
	req.PickupLocation = strings.TrimSpace(req.PickupLocation)
	req.DropoffLocation = strings.TrimSpace(req.DropoffLocation)
	req.FlightNumber = strings.ToUpper(strings.TrimSpace(req.FlightNumber))

	resp, err := s.reservationSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateReservation(c *gin.Context) {
	var req reservationdomain.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.reservationSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetReservationByID(c *gin.Context) {
	resp, err := s.reservationSvc.GetByID(c.Request.Context(), reservationdomain.GetReservationRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListReservations(c *gin.Context) {
	var query struct {
		PageToken     string `form:"page_token"`
		PageSize      string `form:"page_size"`
		Status        string `form:"status"`
		DriverID      string `form:"driver_id"`
		ScheduledFrom string `form:"scheduled_from"`
		ScheduledTo   string `form:"scheduled_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	pageSize, err := parseOptionalInt32(query.PageSize, 0)
	if err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_page_size", "invalid page size"))
		return
	}

	scheduledFrom, err := parseOptionalTime(query.ScheduledFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("scheduled_from", "invalid_scheduled_from", "invalid scheduled_from"))
		return
	}

	scheduledTo, err := parseOptionalTime(query.ScheduledTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("scheduled_to", "invalid_scheduled_to", "invalid scheduled_to"))
		return
	}

	resp, err := s.reservationSvc.List(c.Request.Context(), reservationdomain.ListReservationRequest{
		PageToken:     query.PageToken,
		PageSize:      pageSize,
		Status:        strings.TrimSpace(query.Status),
		DriverID:      strings.TrimSpace(query.DriverID),
		ScheduledFrom: scheduledFrom,
		ScheduledTo:   scheduledTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AssignReservationDriver(c *gin.Context) {
	var req reservationdomain.AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.ID = strings.TrimSpace(c.Param("id"))
	req.DriverID = strings.TrimSpace(req.DriverID)

	resp, err := s.reservationSvc.AssignDriver(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) TransitionReservation(c *gin.Context) {
	var req reservationdomain.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.ID = strings.TrimSpace(c.Param("id"))
	req.Status = strings.TrimSpace(req.Status)

	resp, err := s.reservationSvc.Transition(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// RenderReservationVoucher produces the printable voucher handed to the
// passenger or driver.
func (s *Server) RenderReservationVoucher(c *gin.Context) {
	ctx := c.Request.Context()

	reservation, err := s.reservationSvc.GetByID(ctx, reservationdomain.GetReservationRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data := pdf.VoucherData{
		ReservationCode: reservation.ID.String(),
		PassengerName:   reservation.PassengerName,
		PassengerPhone:  reservation.PassengerPhone,
		Pax:             reservation.Pax,
		PickupLocation:  reservation.PickupLocation,
		DropoffLocation: reservation.DropoffLocation,
		ScheduledAt:     reservation.ScheduledAt.Format(time.RFC1123),
		FlightNumber:    reservation.FlightNumber,
		Notes:           reservation.Notes,
	}

	if tenantID, ok := tenantctx.TenantIDFromContext(ctx); ok {
		tenant, err := s.tenantSvc.GetByID(ctx, tenantdomain.GetTenantRequest{ID: tenantID.String()})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		data.AgencyName = tenant.Name
		if email, ok := tenant.Branding["email"].(string); ok {
			data.AgencyEmail = email
		}
	}

	if reservation.DriverID != nil {
		driver, err := s.driverSvc.GetByID(ctx, driverdomain.GetDriverRequest{ID: reservation.DriverID.String()})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		data.DriverName = driver.Name
		data.DriverPhone = driver.Phone
		data.VehicleModel = driver.VehicleModel
		data.VehiclePlate = driver.VehiclePlate
	}

	doc, err := s.pdfProvider.GenerateVoucher(ctx, data)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	body, err := io.ReadAll(doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="voucher-`+reservation.ID.String()+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", body)
}

// GetFlightStatus proxies the live flight lookup so dispatchers can check
// arrivals without leaving the back office.
func (s *Server) GetFlightStatus(c *gin.Context) {
	number := strings.ToUpper(strings.TrimSpace(c.Param("number")))

	status, err := s.flightProvider.Lookup(c.Request.Context(), number)
	if err != nil {
		switch {
		case errors.Is(err, flight.ErrInvalidFlight):
			AbortWithError(c, newValidationError("flight_number", "invalid_flight_number", "invalid flight number"))
		case errors.Is(err, flight.ErrNotFound), errors.Is(err, flight.ErrNotConfigured):
			AbortWithError(c, ErrNotFound)
		default:
			AbortWithError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": status})
}
