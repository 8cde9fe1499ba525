package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// Exporter renders report data into downloadable files.
type Exporter interface {
	RosterExcel(data *RosterData) ([]byte, string, string, error)
	RosterCSV(data *RosterData) ([]byte, string, string, error)
	ReceiptPDF(data *ReceiptData) ([]byte, string, string, error)
}

type exporter struct{}

func NewExporter() Exporter {
	return &exporter{}
}

func (e *exporter) RosterExcel(data *RosterData) ([]byte, string, string, error) {
	f := excelize.NewFile()
	sheet := "Roster"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", "", err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	f.SetCellValue(sheet, "A1", data.EventTitle)
	f.SetCellValue(sheet, "A2", fmt.Sprintf("%s, %s — %s",
		data.StartAt.Format("Monday 02 Jan 2006"),
		data.StartAt.Format("15:04"),
		data.EndAt.Format("15:04")))
	f.SetCellValue(sheet, "A3", fmt.Sprintf("Location: %s    Booked: %d / %d", data.Location, len(data.Rows), data.Capacity))

	headers := []string{"booking_id", "student_name", "birthdate", "allergies", "status", "booked_at"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 5)
		if err != nil {
			return nil, "", "", err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rIdx, r := range data.Rows {
		row := rIdx + 6
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.BookingID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.StudentName)
		if r.Birthdate != nil {
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.Birthdate.Format("2006-01-02"))
		}
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Allergies)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.Status)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.BookedAt.Format("2006-01-02 15:04:05"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", "", err
	}

	filename := fmt.Sprintf("roster_event_%d.xlsx", data.EventID)
	return buf.Bytes(), filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
}

func (e *exporter) RosterCSV(data *RosterData) ([]byte, string, string, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write([]string{"booking_id", "student_name", "birthdate", "allergies", "status", "booked_at"}); err != nil {
		return nil, "", "", err
	}
	for _, r := range data.Rows {
		birthdate := ""
		if r.Birthdate != nil {
			birthdate = r.Birthdate.Format("2006-01-02")
		}
		record := []string{
			fmt.Sprint(r.BookingID),
			r.StudentName,
			birthdate,
			r.Allergies,
			r.Status,
			r.BookedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(record); err != nil {
			return nil, "", "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", "", err
	}

	filename := fmt.Sprintf("roster_event_%d.csv", data.EventID)
	return buf.Bytes(), filename, "text/csv", nil
}

func (e *exporter) ReceiptPDF(data *ReceiptData) ([]byte, string, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, fmt.Sprintf("Receipt — Order #%d", data.OrderID))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 6, fmt.Sprintf("Customer: %s <%s>", data.CustomerName, data.CustomerEmail))
	pdf.Ln(6)
	pdf.Cell(40, 6, fmt.Sprintf("Date: %s    Status: %s", data.CreatedAt.Format("02 Jan 2006"), data.Status))
	pdf.Ln(6)
	if data.PaymentRef != "" {
		pdf.Cell(40, 6, fmt.Sprintf("Payment ref: %s", data.PaymentRef))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	headers := []string{"Student", "Product", "Date", "Price"}
	widths := []float64{55, 70, 35, 30}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, line := range data.Lines {
		pdf.CellFormat(widths[0], 6, line.StudentName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, line.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, line.BookingDate.Format("02 Jan 2006"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.2f", line.Price), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 7, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.2f", data.Total), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", "", err
	}

	filename := fmt.Sprintf("receipt_order_%d.pdf", data.OrderID)
	return buf.Bytes(), filename, "application/pdf", nil
}
