package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV   = "csv"
	FormatExcel = "xlsx"
	FormatPDF   = "pdf"
)

// BookingReportRow is one line of the provider bookings report.
type BookingReportRow struct {
	BookingID    string
	ActivityName string
	TouristName  string
	People       int
	TotalPrice   float64
	Status       string
	CreatedAt    time.Time
}

// ActivityReportRow is one line of the activities report.
type ActivityReportRow struct {
	ActivityID    string
	Name          string
	ProviderName  string
	Status        string
	TotalCapacity int
	Available     int
	StartDate     time.Time
	EndDate       time.Time
}

// Exporter renders report rows into a downloadable format.
type Exporter interface {
	ExportBookings(format string, rows []BookingReportRow) ([]byte, string, string, error)
	ExportActivities(format string, rows []ActivityReportRow) ([]byte, string, string, error)
}

type exporter struct{}

func NewExporter() Exporter {
	return &exporter{}
}

// ============================
// 📊 Bookings report

func (e *exporter) ExportBookings(format string, rows []BookingReportRow) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch format {
	case FormatExcel:
		data, err := e.exportBookingsExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("bookings_report_%s.xlsx", timestamp),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatCSV:
		data, err := e.exportBookingsCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("bookings_report_%s.csv", timestamp), "text/csv", nil

	case FormatPDF:
		data, err := e.exportBookingsPDF(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("bookings_report_%s.pdf", timestamp), "application/pdf", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported format for bookings report: %s", format)
	}
}

func (e *exporter) exportBookingsCSV(rows []BookingReportRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	headers := []string{"booking_id", "activity", "tourist", "people", "total_price", "status", "created_at"}
	if err := w.Write(headers); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{
			r.BookingID,
			r.ActivityName,
			r.TouristName,
			fmt.Sprint(r.People),
			fmt.Sprintf("%.2f", r.TotalPrice),
			r.Status,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *exporter) exportBookingsExcel(rows []BookingReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Bookings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"booking_id", "activity", "tourist", "people", "total_price", "status", "created_at"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rIdx, r := range rows {
		row := rIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.BookingID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.ActivityName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.TouristName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.People)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.TotalPrice)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.Status)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), r.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *exporter) exportBookingsPDF(rows []BookingReportRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Bookings Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 9)
	headers := []string{"Booking ID", "Activity", "Tourist", "People", "Total", "Status", "Created At"}
	widths := []float64{60, 55, 45, 18, 25, 28, 40}

	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range rows {
		pdf.CellFormat(widths[0], 6, r.BookingID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, r.ActivityName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, r.TouristName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprint(r.People), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", r.TotalPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, r.Status, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[6], 6, r.CreatedAt.Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ============================
// 📊 Activities report

func (e *exporter) ExportActivities(format string, rows []ActivityReportRow) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch format {
	case FormatExcel:
		data, err := e.exportActivitiesExcel(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("activities_report_%s.xlsx", timestamp),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatCSV:
		data, err := e.exportActivitiesCSV(rows)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("activities_report_%s.csv", timestamp), "text/csv", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported format for activities report: %s", format)
	}
}

func (e *exporter) exportActivitiesCSV(rows []ActivityReportRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	headers := []string{"activity_id", "name", "provider", "status", "total_capacity", "available_slots", "start_date", "end_date"}
	if err := w.Write(headers); err != nil {
		return nil, err
	}

	for _, r := range rows {
		record := []string{
			r.ActivityID,
			r.Name,
			r.ProviderName,
			r.Status,
			fmt.Sprint(r.TotalCapacity),
			fmt.Sprint(r.Available),
			r.StartDate.Format("2006-01-02 15:04:05"),
			r.EndDate.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *exporter) exportActivitiesExcel(rows []ActivityReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Activities"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"activity_id", "name", "provider", "status", "total_capacity", "available_slots", "start_date", "end_date"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rIdx, r := range rows {
		row := rIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.ActivityID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.ProviderName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.Status)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.TotalCapacity)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.Available)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), r.StartDate.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), r.EndDate.Format("2006-01-02 15:04:05"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
