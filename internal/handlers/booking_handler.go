package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jayanth-org1/Green-Bus-Server/internal/middleware"
	"github.com/jayanth-org1/Green-Bus-Server/internal/models"
	"github.com/jayanth-org1/Green-Bus-Server/internal/services"
	"github.com/jayanth-org1/Green-Bus-Server/internal/utils"
)

// BookingHandler handles booking lifecycle endpoints
type BookingHandler struct {
	bookingService *services.BookingService
	receiptService *services.ReceiptService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *services.BookingService, receiptService *services.ReceiptService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		receiptService: receiptService,
	}
}

// CreateBooking reserves a seat and charges the customer
// POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	// Customers can only book for themselves
	if req.UserID != userCtx.UserID.String() {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "cannot book for another user"})
		return
	}

	booking, pmt, err := h.bookingService.CreateBookingWithPayment(c.Request.Context(), &req, deviceInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking": booking,
		"payment": pmt,
	})
}

// CancelBooking cancels a confirmed booking and refunds per the schedule
// POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "booking id must be a valid UUID"})
		return
	}

	if !h.authorizeBookingAccess(c, userCtx, bookingID) {
		return
	}

	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	resp, err := h.bookingService.CancelBookingWithRefund(c.Request.Context(), bookingID, &req, deviceInfo(c))
	if err != nil {
		// The cancellation took effect but the refund did not. Return
		// the cancelled booking so the client knows both facts.
		var refundErr *models.RefundFailedError
		if errors.As(err, &refundErr) && resp != nil {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   "refund_failed",
				"message": refundErr.Error(),
				"result":  resp,
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetBooking returns a booking with its payment history
// GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "booking id must be a valid UUID"})
		return
	}

	booking, payments, err := h.bookingService.GetBooking(bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	if booking.UserID != userCtx.UserID && !hasRole(userCtx, "admin") {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking":  booking,
		"payments": payments,
	})
}

// GetMyBookings returns all bookings belonging to the caller
// GET /api/v1/bookings
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookings, err := h.bookingService.GetUserBookings(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// GetSeatAvailability reports seat occupancy for a route on a date
// GET /api/v1/routes/:id/availability?travel_date=2026-09-15
func (h *BookingHandler) GetSeatAvailability(c *gin.Context) {
	routeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "route id must be a valid UUID"})
		return
	}

	travelDate, err := time.Parse("2006-01-02", c.Query("travel_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "travel_date must be YYYY-MM-DD"})
		return
	}

	availability, err := h.bookingService.GetSeatAvailability(routeID, travelDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, availability)
}

// GetReceipt streams the PDF receipt for a booking
// GET /api/v1/bookings/:id/receipt
func (h *BookingHandler) GetReceipt(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "booking id must be a valid UUID"})
		return
	}

	if !h.authorizeBookingAccess(c, userCtx, bookingID) {
		return
	}

	pdfBytes, filename, err := h.receiptService.GenerateReceipt(bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// authorizeBookingAccess verifies the caller owns the booking or is an
// admin. Writes the response itself when access is denied.
func (h *BookingHandler) authorizeBookingAccess(c *gin.Context, userCtx middleware.UserContext, bookingID uuid.UUID) bool {
	booking, _, err := h.bookingService.GetBooking(bookingID)
	if err != nil {
		respondError(c, err)
		return false
	}

	if booking.UserID != userCtx.UserID && !hasRole(userCtx, "admin") {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return false
	}

	return true
}

// hasRole checks the user context for a role
func hasRole(userCtx middleware.UserContext, role string) bool {
	for _, r := range userCtx.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// deviceInfo summarizes the caller's User-Agent for notification logs
func deviceInfo(c *gin.Context) *string {
	userAgent := c.GetHeader("User-Agent")
	if userAgent == "" {
		return nil
	}

	summary := utils.ParseUserAgent(userAgent).Summary()
	return &summary
}
