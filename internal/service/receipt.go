package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pethotel/internal/domain"
)

// InvoiceLine is one billed item.
type InvoiceLine struct {
	Description string
	Quantity    int
	Amount      domain.Money
}

// InvoiceDocument is everything printed on an invoice.
type InvoiceDocument struct {
	Number        string
	IssuedAt      time.Time
	Merchant      string
	BillTo        string
	TaxRef        string // National id or tax id
	Address       string
	ContactEmail  string
	Lines         []InvoiceLine
	Total         domain.Money
	PaymentMethod domain.PaymentMethod
	TransactionID string
}

// GenerateInvoiceNumber returns an id of the form INV-YYYYMMDD-XXXXXXXX.
func GenerateInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s", now.UTC().Format("20060102"), suffix)
}

// BuildInvoice assembles the invoice of a paid order.
func BuildInvoice(order *domain.Order, merchant string) InvoiceDocument {
	doc := InvoiceDocument{
		Number:        order.InvoiceNumber,
		IssuedAt:      order.CreatedAt,
		Merchant:      merchant,
		ContactEmail:  order.Identity.ContactEmail(),
		Total:         order.TotalPrice,
		PaymentMethod: order.PaymentMethod,
		TransactionID: order.TransactionID,
	}

	switch inv := order.Invoice.(type) {
	case domain.IndividualInvoice:
		doc.BillTo = inv.BillTo()
		doc.TaxRef = inv.NationalID
	case domain.CorporateInvoice:
		doc.BillTo = inv.BillTo()
		doc.TaxRef = inv.TaxID
		doc.Address = inv.Address
	default:
		doc.BillTo = order.Identity.ContactName()
	}

	for _, item := range order.Items {
		doc.Lines = append(doc.Lines, InvoiceLine{
			Description: DescribeItem(item),
			Quantity:    item.Quantity,
			Amount:      item.Price,
		})
	}

	return doc
}

// DescribeItem renders a one-line label for a cart item.
func DescribeItem(item domain.CartItem) string {
	switch d := item.Details.(type) {
	case domain.HotelDetails:
		label := fmt.Sprintf("Hotel room %s, %s to %s (%d nights)",
			d.RoomID, d.CheckIn.Format("2006-01-02"), d.CheckOut.Format("2006-01-02"), d.Nights)
		for _, a := range d.AddOns {
			label += ", " + a.Name
		}
		return label
	case domain.TaxiDetails:
		if d.IsShared() {
			return fmt.Sprintf("Shared pet taxi %s to %s on %s, %d seats",
				d.FromCity, d.ToCity, d.TravelDate.Format("2006-01-02"), d.SeatCount)
		}
		trip := "one way"
		if d.IsRoundTrip {
			trip = "round trip"
		}
		return fmt.Sprintf("VIP pet taxi %s to %s on %s, %s, %.0f km",
			d.FromCity, d.ToCity, d.TravelDate.Format("2006-01-02"), trip, d.DistanceKm)
	default:
		return item.ReferenceID
	}
}

// FormatInvoice formats the invoice as plain text for email and print.
func FormatInvoice(doc InvoiceDocument) string {
	var b strings.Builder

	b.WriteString("=====================================\n")
	b.WriteString("              INVOICE\n")
	b.WriteString("=====================================\n")
	fmt.Fprintf(&b, "%s\n", doc.Merchant)
	fmt.Fprintf(&b, "Invoice No: %s\n", doc.Number)
	fmt.Fprintf(&b, "Date: %s\n\n", doc.IssuedAt.Format("Jan 02, 2006 3:04 PM"))

	b.WriteString("BILL TO\n")
	b.WriteString("-------------------------------------\n")
	fmt.Fprintf(&b, "%s\n", doc.BillTo)
	if doc.TaxRef != "" {
		fmt.Fprintf(&b, "Tax ref: %s\n", doc.TaxRef)
	}
	if doc.Address != "" {
		fmt.Fprintf(&b, "%s\n", doc.Address)
	}
	if doc.ContactEmail != "" {
		fmt.Fprintf(&b, "%s\n", doc.ContactEmail)
	}

	b.WriteString("\nITEMS\n")
	b.WriteString("-------------------------------------\n")
	for _, line := range doc.Lines {
		fmt.Fprintf(&b, "%s\n  x%d %20s\n", line.Description, line.Quantity, line.Amount.String())
	}
	b.WriteString("-------------------------------------\n")
	fmt.Fprintf(&b, "TOTAL: %s\n\n", doc.Total.String())

	b.WriteString("PAYMENT\n")
	b.WriteString("-------------------------------------\n")
	fmt.Fprintf(&b, "Method: %s\n", doc.PaymentMethod)
	fmt.Fprintf(&b, "Transaction: %s\n", doc.TransactionID)
	b.WriteString("=====================================\n")

	return b.String()
}
