package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jayanth-org1/Green-Bus-Server/internal/services"
)

// ReportHandler handles operator reporting endpoints
type ReportHandler struct {
	reportingService *services.ReportingService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportingService *services.ReportingService) *ReportHandler {
	return &ReportHandler{reportingService: reportingService}
}

// GetBookingStats returns booking counts by lifecycle status
// GET /api/v1/reports/bookings
func (h *ReportHandler) GetBookingStats(c *gin.Context) {
	stats, err := h.reportingService.GetBookingStats()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetRevenue returns gross, fee, refund and net revenue figures
// GET /api/v1/reports/revenue
func (h *ReportHandler) GetRevenue(c *gin.Context) {
	summary, err := h.reportingService.GetRevenueReport()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"gross_charged":  summary.GrossCharged,
		"fees_collected": summary.FeesCollected,
		"total_refunded": summary.TotalRefunded,
		"net_revenue":    summary.NetRevenue,
		"charge_count":   summary.ChargeCount,
		"refund_count":   summary.RefundCount,
	})
}

// GetRouteOccupancy returns occupancy for a route on a travel date
// GET /api/v1/reports/routes/:id/occupancy?travel_date=2026-09-15
func (h *ReportHandler) GetRouteOccupancy(c *gin.Context) {
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

	occupancy, err := h.reportingService.GetRouteOccupancy(routeID, travelDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, occupancy)
}

// ListRouteBookings returns the active bookings for a route on a date
// GET /api/v1/reports/routes/:id/bookings?travel_date=2026-09-15
func (h *ReportHandler) ListRouteBookings(c *gin.Context) {
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

	bookings, err := h.reportingService.GetRouteBookings(routeID, travelDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// ListRoutes returns all routes open for booking
// GET /api/v1/routes
func (h *ReportHandler) ListRoutes(c *gin.Context) {
	routes, err := h.reportingService.ListActiveRoutes()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"routes": routes,
		"count":  len(routes),
	})
}
