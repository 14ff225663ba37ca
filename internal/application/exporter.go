package application

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const (
	FormatExcel = "excel"
	FormatCSV   = "csv"
	FormatPDF   = "pdf"
)

var exportHeaders = []string{
	"Application ID", "User ID", "Vendor Type", "Status", "Payment ID", "Amount (INR)",
	"Ledger Tx Hash", "Vendor ID", "Legacy Application ID", "Submitted At", "Reviewed At",
}

// Exporter writes application listings for the admin dashboard.
type Exporter interface {
	Export(format string, apps []Application) (data []byte, filename, contentType string, err error)
}

type exporter struct{}

func NewExporter() Exporter {
	return &exporter{}
}

func (e *exporter) Export(format string, apps []Application) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch strings.ToLower(format) {
	case FormatExcel, "xlsx":
		data, err := exportExcel(apps)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("applications_%s.xlsx", timestamp), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case FormatCSV, "":
		data, err := exportCSV(apps)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("applications_%s.csv", timestamp), "text/csv", nil
	case FormatPDF:
		data, err := exportPDF(apps)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("applications_%s.pdf", timestamp), "application/pdf", nil
	default:
		return nil, "", "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func exportRow(app Application) []string {
	reviewedAt := ""
	switch {
	case app.ApprovedAt != nil:
		reviewedAt = app.ApprovedAt.Format("2006-01-02 15:04:05")
	case app.RejectedAt != nil:
		reviewedAt = app.RejectedAt.Format("2006-01-02 15:04:05")
	}
	legacyID := ""
	if app.LegacyApplicationID != nil {
		legacyID = strconv.FormatUint(*app.LegacyApplicationID, 10)
	}

	return []string{
		app.ApplicationID,
		strconv.FormatUint(uint64(app.UserID), 10),
		app.VendorType,
		app.Status,
		app.RazorpayPaymentID,
		fmt.Sprintf("%.2f", float64(app.RazorpayAmount)/100),
		deref(app.BlockchainTxHash),
		deref(app.VendorID),
		legacyID,
		app.CreatedAt.Format("2006-01-02 15:04:05"),
		reviewedAt,
	}
}

func exportCSV(apps []Application) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeaders); err != nil {
		return nil, err
	}
	for _, app := range apps {
		if err := writer.Write(exportRow(app)); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportExcel(apps []Application) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Applications"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}
	for r, app := range apps {
		for c, value := range exportRow(app) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportPDF(apps []Application) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Vendor Applications")
	pdf.Ln(14)

	// Payment, tx hash and vendor id columns are left out to fit landscape A4.
	columns := []int{0, 2, 3, 5, 8, 9, 10}
	widths := []float64{35, 40, 25, 30, 40, 45, 45}

	pdf.SetFont("Arial", "B", 8)
	for i, col := range columns {
		pdf.CellFormat(widths[i], 7, exportHeaders[col], "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 7)
	for _, app := range apps {
		row := exportRow(app)
		for i, col := range columns {
			pdf.CellFormat(widths[i], 6, truncate(row[col], 30), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
