package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"

	"github.com/jayanth-org1/Green-Bus-Server/internal/models"
)

// ReceiptService renders PDF receipts for confirmed bookings
type ReceiptService struct {
	bookings BookingStore
	payments PaymentStore
	routes   RouteStore
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(bookings BookingStore, payments PaymentStore, routes RouteStore) *ReceiptService {
	return &ReceiptService{
		bookings: bookings,
		payments: payments,
		routes:   routes,
	}
}

// GenerateReceipt builds a PDF receipt for a booking. Only confirmed and
// cancelled bookings have a settled payment to print.
func (s *ReceiptService) GenerateReceipt(bookingID uuid.UUID) ([]byte, string, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, "", err
	}

	if booking.Status != models.BookingStatusConfirmed && booking.Status != models.BookingStatusCancelled {
		return nil, "", &models.InvalidStateError{Action: "print a receipt for", Current: booking.Status}
	}

	pmt, err := s.payments.GetCompletedByBooking(bookingID)
	if err != nil {
		return nil, "", err
	}

	route, err := s.routes.GetByID(booking.RouteID)
	if err != nil {
		return nil, "", err
	}

	return buildReceiptPDF(booking, pmt, route)
}

// buildReceiptPDF renders the receipt document
func buildReceiptPDF(booking *models.Booking, pmt *models.Payment, route *models.Route) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Receipt No     : RCP-%s", shortID(booking.ID.String())),
		fmt.Sprintf("Issued         : %s", time.Now().Format("2006-01-02 15:04")),
		fmt.Sprintf("Booking        : %s", booking.ID),
		fmt.Sprintf("Status         : %s", booking.Status),
		fmt.Sprintf("Route          : %s -> %s", route.Origin, route.Destination),
		fmt.Sprintf("Travel Date    : %s %s", booking.TravelDate.Format("2006-01-02"), route.DepartureTime),
		fmt.Sprintf("Seat           : %d", booking.SeatNumber),
		fmt.Sprintf("Contact        : %s", booking.ContactPhone),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Payment")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 12)
	paymentLines := []string{
		fmt.Sprintf("Method         : %s", pmt.Method),
		fmt.Sprintf("Transaction    : %s", pmt.TransactionID),
		fmt.Sprintf("Fare           : %.2f", pmt.Amount),
		fmt.Sprintf("Processing Fee : %.2f", pmt.ProcessingFee),
	}
	for _, line := range paymentLines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total Paid: %.2f", pmt.TotalAmount))
	pdf.Ln(12)

	if pmt.Status == models.PaymentStatusRefunded {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "This payment has been fully or partially refunded. See the booking's payment history for details.", "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render receipt: %w", err)
	}

	filename := fmt.Sprintf("RECEIPT_%s.pdf", shortID(booking.ID.String()))
	return buf.Bytes(), filename, nil
}
