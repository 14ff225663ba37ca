package application

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

type CertificateData struct {
	ApplicationID   string
	VendorName      string
	VendorType      string
	ProviderID      *uint64
	CertificateHash string
	IssuedAt        time.Time
	ExpiresAt       time.Time
}

// RenderCertificate draws the one-page verification certificate.
func RenderCertificate(d CertificateData) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Verified Vendor Certificate", false)
	pdf.SetCreator("Jharkhand Tourism", false)
	pdf.AddPage()

	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, 277, 190, "D")
	pdf.SetLineWidth(0.3)
	pdf.Rect(14, 14, 269, 182, "D")

	pdf.SetY(30)
	pdf.SetFont("Arial", "B", 26)
	pdf.CellFormat(0, 14, "Jharkhand Tourism", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 18)
	pdf.CellFormat(0, 10, "Verified Vendor Certificate", "", 1, "C", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 13)
	pdf.CellFormat(0, 8, "This is to certify that", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 22)
	pdf.CellFormat(0, 14, d.VendorName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 13)
	pdf.CellFormat(0, 8, fmt.Sprintf("is a verified %s service provider.", categoryLabel(d.VendorType)), "", 1, "C", false, 0, "")
	pdf.Ln(12)

	rows := [][2]string{
		{"Application ID", d.ApplicationID},
		{"Issued On", d.IssuedAt.Format("02 Jan 2006")},
		{"Valid Until", d.ExpiresAt.Format("02 Jan 2006")},
	}
	if d.ProviderID != nil {
		rows = append(rows, [2]string{"Provider ID", fmt.Sprintf("%d", *d.ProviderID)})
	}
	if d.CertificateHash != "" {
		rows = append(rows, [2]string{"Ledger Certificate", d.CertificateHash})
	}

	for _, row := range rows {
		pdf.SetX(50)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(50, 7, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(147, 7, truncate(row[1], 80), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}

func categoryLabel(vendorType string) string {
	switch vendorType {
	case "GUIDE":
		return "Tour Guide"
	case "ACCOMMODATION":
		return "Accommodation"
	case "FOOD_RESTAURANT":
		return "Food & Restaurant"
	case "TRANSPORTATION":
		return "Transportation"
	case "ACTIVITY":
		return "Activity"
	}
	return vendorType
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
