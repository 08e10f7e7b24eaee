package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jayanth-org1/Green-Bus-Server/internal/database"
	"github.com/jayanth-org1/Green-Bus-Server/internal/models"
)

// BookingReportStore is the booking aggregation contract for reporting
type BookingReportStore interface {
	CountByStatus() (map[models.BookingStatus]int, error)
	GetByRouteAndDate(routeID uuid.UUID, travelDate time.Time) ([]models.Booking, error)
}

// RevenueStore is the payment aggregation contract for reporting
type RevenueStore interface {
	GetRevenueSummary() (*database.RevenueSummary, error)
}

// RouteListStore lists routes for occupancy reports
type RouteListStore interface {
	GetByID(routeID uuid.UUID) (*models.Route, error)
	ListActive() ([]models.Route, error)
}

// ReportingService produces operator-facing aggregates over bookings and
// payments. All reads, no writes.
type ReportingService struct {
	bookings BookingReportStore
	payments RevenueStore
	routes   RouteListStore
	logger   *logrus.Logger
}

// NewReportingService creates a new ReportingService
func NewReportingService(bookings BookingReportStore, payments RevenueStore, routes RouteListStore, logger *logrus.Logger) *ReportingService {
	return &ReportingService{
		bookings: bookings,
		payments: payments,
		routes:   routes,
		logger:   logger,
	}
}

// BookingStats summarizes bookings by lifecycle status
type BookingStats struct {
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

// GetBookingStats returns booking counts by status
func (s *ReportingService) GetBookingStats() (*BookingStats, error) {
	counts, err := s.bookings.CountByStatus()
	if err != nil {
		return nil, err
	}

	stats := &BookingStats{
		Pending:   counts[models.BookingStatusPending],
		Confirmed: counts[models.BookingStatusConfirmed],
		Cancelled: counts[models.BookingStatusCancelled],
		Failed:    counts[models.BookingStatusFailed],
	}
	stats.Total = stats.Pending + stats.Confirmed + stats.Cancelled + stats.Failed

	return stats, nil
}

// GetRevenueReport returns gross, fee, refund and net figures over the
// payment ledger
func (s *ReportingService) GetRevenueReport() (*database.RevenueSummary, error) {
	return s.payments.GetRevenueSummary()
}

// RouteOccupancy reports how full one route is on one travel date
type RouteOccupancy struct {
	Route            *models.Route `json:"route"`
	TravelDate       time.Time     `json:"travel_date"`
	SeatsTaken       int           `json:"seats_taken"`
	SeatCapacity     int           `json:"seat_capacity"`
	OccupancyPercent float64       `json:"occupancy_percent"`
}

// GetRouteOccupancy computes occupancy for a route on a travel date
func (s *ReportingService) GetRouteOccupancy(routeID uuid.UUID, travelDate time.Time) (*RouteOccupancy, error) {
	travelDate = truncateToDay(travelDate)

	route, err := s.routes.GetByID(routeID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.GetByRouteAndDate(routeID, travelDate)
	if err != nil {
		return nil, err
	}

	occupancy := &RouteOccupancy{
		Route:        route,
		TravelDate:   travelDate,
		SeatsTaken:   len(bookings),
		SeatCapacity: route.SeatCapacity,
	}
	if route.SeatCapacity > 0 {
		occupancy.OccupancyPercent = float64(len(bookings)) / float64(route.SeatCapacity) * 100
	}

	return occupancy, nil
}

// GetRouteBookings lists the active bookings for a route on a travel
// date, ordered by seat number
func (s *ReportingService) GetRouteBookings(routeID uuid.UUID, travelDate time.Time) ([]models.Booking, error) {
	if _, err := s.routes.GetByID(routeID); err != nil {
		return nil, err
	}

	return s.bookings.GetByRouteAndDate(routeID, truncateToDay(travelDate))
}

// ListActiveRoutes returns all routes currently open for booking
func (s *ReportingService) ListActiveRoutes() ([]models.Route, error) {
	return s.routes.ListActive()
}
