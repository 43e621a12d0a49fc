package invoices

import (
	"bytes"
	"fmt"

	"mjolnir/models"

	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// RenderPDF builds the invoice document for an order: store header, one
// line per item, the grand total, and a QR code carrying the order id for
// pickup verification.
func RenderPDF(order models.Order) ([]byte, error) {
	qrPNG, err := qrcode.Encode(order.OrderID, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 12, "THOR'S MIGHTY GUITAR STORE", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, fmt.Sprintf("Invoice for Order ID: %s", order.OrderID))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	for i, item := range order.Items {
		pdf.Cell(0, 8, fmt.Sprintf("%d. %s - Quantity: %d - Unit: $%.2f",
			i+1, item.Name, item.Quantity, item.UnitPrice))
		pdf.Ln(8)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, fmt.Sprintf("Total Price: $%.2f", order.TotalPrice))

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 20, 35, 35, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
