package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	hotelbookingdomain "github.com/routewise/routewise/internal/hotelbooking/domain"
)

func (s *Server) CreateHotelBooking(c *gin.Context) {
	var req hotelbookingdomain.CreateHotelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.HotelName = strings.TrimSpace(req.HotelName)
	req.GuestName = strings.TrimSpace(req.GuestName)

	resp, err := s.hotelBookingSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateHotelBooking(c *gin.Context) {
	var req hotelbookingdomain.UpdateHotelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.hotelBookingSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetHotelBookingByID(c *gin.Context) {
	resp, err := s.hotelBookingSvc.GetByID(c.Request.Context(), hotelbookingdomain.GetHotelBookingRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListHotelBookings(c *gin.Context) {
	var query struct {
		PageToken   string `form:"page_token"`
		PageSize    string `form:"page_size"`
		Status      string `form:"status"`
		CheckInFrom string `form:"check_in_from"`
		CheckInTo   string `form:"check_in_to"`
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

	checkInFrom, err := parseOptionalTime(query.CheckInFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("check_in_from", "invalid_check_in_from", "invalid check_in_from"))
		return
	}

	checkInTo, err := parseOptionalTime(query.CheckInTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("check_in_to", "invalid_check_in_to", "invalid check_in_to"))
		return
	}

	resp, err := s.hotelBookingSvc.List(c.Request.Context(), hotelbookingdomain.ListHotelBookingRequest{
		PageToken:   query.PageToken,
		PageSize:    pageSize,
		Status:      strings.TrimSpace(query.Status),
		CheckInFrom: checkInFrom,
		CheckInTo:   checkInTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
