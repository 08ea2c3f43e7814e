package documents

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"smart-clinic-server/internal/models"
)

// RevenueReport is the data behind the admin revenue export.
type RevenueReport struct {
	GeneratedAt           string
	DailyRevenue          string
	MonthlyRevenue        string
	TotalAppointments     int64
	CompletedAppointments int64
	PaidInvoices          []models.Invoice
}

const (
	summarySheet  = "Summary"
	invoicesSheet = "Paid Invoices"
)

// RenderRevenueReport writes a workbook with a summary sheet and one row per
// paid invoice of the month.
func (r *Renderer) RenderRevenueReport(rep RevenueReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	summary, err := file.NewSheet(summarySheet)
	if err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	if _, err := file.NewSheet(invoicesSheet); err != nil {
		return nil, fmt.Errorf("create invoices sheet: %w", err)
	}
	file.SetActiveSheet(summary)
	file.DeleteSheet("Sheet1")

	rows := [][]interface{}{
		{r.Clinic.Name + " revenue report"},
		{"Generated", rep.GeneratedAt},
		{"Daily revenue", rep.DailyRevenue},
		{"Monthly revenue", rep.MonthlyRevenue},
		{"Total appointments", rep.TotalAppointments},
		{"Completed appointments", rep.CompletedAppointments},
	}
	for i, row := range rows {
		if err := setRow(file, summarySheet, i+1, row); err != nil {
			return nil, err
		}
	}

	headers := []interface{}{"Invoice Number", "Date", "Patient", "Consultation Fee", "Medicine Cost", "Total", "Paid"}
	if err := setRow(file, invoicesSheet, 1, headers); err != nil {
		return nil, err
	}
	for i, inv := range rep.PaidInvoices {
		var patient *models.User
		if inv.Patient != nil {
			patient = inv.Patient.User
		}
		row := []interface{}{
			inv.InvoiceNumber,
			inv.CreatedAt.Format(dateLayout),
			fullName(patient),
			inv.ConsultationFee.InexactFloat64(),
			inv.MedicineCost.InexactFloat64(),
			inv.TotalAmount.InexactFloat64(),
			inv.PaidAmount.InexactFloat64(),
		}
		if err := setRow(file, invoicesSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(file *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
