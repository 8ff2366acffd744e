package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tourbookingdomain "github.com/routewise/routewise/internal/tourbooking/domain"
)

func (s *Server) CreateTourBooking(c *gin.Context) {
	var req tourbookingdomain.CreateTourBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.TourName = strings.TrimSpace(req.TourName)
	req.GuestName = strings.TrimSpace(req.GuestName)

	resp, err := s.tourBookingSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTourBooking(c *gin.Context) {
	var req tourbookingdomain.UpdateTourBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.tourBookingSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTourBookingByID(c *gin.Context) {
	resp, err := s.tourBookingSvc.GetByID(c.Request.Context(), tourbookingdomain.GetTourBookingRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTourBookings(c *gin.Context) {
	var query struct {
		PageToken string `form:"page_token"`
		PageSize  string `form:"page_size"`
		Status    string `form:"status"`
		DateFrom  string `form:"date_from"`
		DateTo    string `form:"date_to"`
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

	dateFrom, err := parseOptionalTime(query.DateFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("date_from", "invalid_date_from", "invalid date_from"))
		return
	}

	dateTo, err := parseOptionalTime(query.DateTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("date_to", "invalid_date_to", "invalid date_to"))
		return
	}

	resp, err := s.tourBookingSvc.List(c.Request.Context(), tourbookingdomain.ListTourBookingRequest{
		PageToken: query.PageToken,
		PageSize:  pageSize,
		Status:    strings.TrimSpace(query.Status),
		DateFrom:  dateFrom,
		DateTo:    dateTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
