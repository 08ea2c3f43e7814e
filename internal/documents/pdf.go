package documents

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"smart-clinic-server/internal/models"
)

const (
	lineHeight = 7.0
	pageWidth  = 160.0
)

type pdfDoc struct {
	*fpdf.Fpdf
	tr func(string) string
}

func (r *Renderer) newPDF() pdfDoc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(25, 30, 25)
	pdf.AddPage()
	return pdfDoc{Fpdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (d pdfDoc) text(style string, size float64, s string) {
	d.SetFont("Arial", style, size)
	d.CellFormat(0, lineHeight, d.tr(s), "", 1, "L", false, 0, "")
}

func (d pdfDoc) title(s string) {
	d.SetFont("Arial", "B", 20)
	d.CellFormat(0, 12, d.tr(s), "", 1, "C", false, 0, "")
	d.Ln(6)
}

// row writes one bordered table row; bold marks a header row.
func (d pdfDoc) row(widths []float64, cells []string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	d.SetFont("Arial", style, 10)
	for i, c := range cells {
		d.CellFormat(widths[i], lineHeight, d.tr(c), "1", 0, "L", false, 0, "")
	}
	d.Ln(-1)
}

func (r *Renderer) letterhead(d pdfDoc) {
	d.text("B", 12, r.Clinic.Name)
	if r.Clinic.Address != "" {
		d.text("", 11, r.Clinic.Address)
	}
	if r.Clinic.Phone != "" {
		d.text("", 11, "Phone: "+r.Clinic.Phone)
	}
	d.Ln(4)
}

func finish(d pdfDoc) ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderInvoice prints inv with its fee lines and payment totals. inv must
// have Patient.User and Appointment.Doctor.User loaded.
func (r *Renderer) RenderInvoice(inv *models.Invoice) ([]byte, error) {
	d := r.newPDF()
	d.title("INVOICE")
	r.letterhead(d)

	var patient, doctor *models.User
	if inv.Patient != nil {
		patient = inv.Patient.User
	}
	if inv.Appointment != nil && inv.Appointment.Doctor != nil {
		doctor = inv.Appointment.Doctor.User
	}

	half := []float64{pageWidth / 2, pageWidth / 2}
	d.row(half, []string{"Invoice Number:", inv.InvoiceNumber}, false)
	d.row(half, []string{"Date:", inv.CreatedAt.Format(dateLayout)}, false)
	d.row(half, []string{"Patient Name:", fullName(patient)}, false)
	d.row(half, []string{"Doctor:", "Dr. " + fullName(doctor)}, false)
	d.row(half, []string{"Status:", string(inv.Status)}, false)
	d.Ln(6)

	items := []float64{96, 32, 32}
	d.row(items, []string{"Description", "Qty", "Amount"}, true)
	d.row(items, []string{"Consultation Fee", "1", Money(inv.ConsultationFee)}, false)
	if inv.MedicineCost.IsPositive() {
		d.row(items, []string{"Medicines", "1", Money(inv.MedicineCost)}, false)
	}
	d.Ln(6)

	totals := []float64{40, 40}
	for _, line := range [][]string{
		{"Total Amount:", Money(inv.TotalAmount)},
		{"Paid Amount:", Money(inv.PaidAmount)},
		{"Balance:", Money(inv.Balance())},
	} {
		d.SetX(25 + pageWidth - 80)
		d.row(totals, line, false)
	}
	d.Ln(10)
	d.text("", 11, "Thank you for choosing "+r.Clinic.Name+"!")

	return finish(d)
}

// RenderPrescription prints p with its medicine lines and a signature block.
// p must have Doctor.User, MedicalRecord.Patient.User and Items.Medicine loaded.
func (r *Renderer) RenderPrescription(p *models.Prescription) ([]byte, error) {
	d := r.newPDF()
	d.title(r.Clinic.Name + " - Prescription")

	var patient, doctor *models.User
	diagnosis := ""
	if p.MedicalRecord != nil {
		diagnosis = p.MedicalRecord.Diagnosis
		if p.MedicalRecord.Patient != nil {
			patient = p.MedicalRecord.Patient.User
		}
	}
	if p.Doctor != nil {
		doctor = p.Doctor.User
	}

	d.text("", 11, "Patient: "+fullName(patient))
	d.text("", 11, "Doctor: Dr. "+fullName(doctor))
	d.text("", 11, "Date: "+p.CreatedAt.Format(dateLayout))
	d.text("", 11, "Diagnosis: "+orDash(diagnosis))
	d.Ln(4)

	widths := []float64{40, 25, 30, 22, 43}
	d.row(widths, []string{"Medicine", "Dosage", "Frequency", "Duration", "Instructions"}, true)
	for _, item := range p.Items {
		name := "-"
		if item.Medicine != nil {
			name = item.Medicine.Name
		}
		d.row(widths, []string{
			name,
			orDash(item.Dosage),
			orDash(item.Frequency),
			fmt.Sprintf("%d days", item.DurationDays),
			orDash(item.Instructions),
		}, false)
	}
	d.Ln(6)

	special := p.SpecialInstructions
	if special == "" {
		special = "None"
	}
	d.SetFont("Arial", "", 11)
	d.MultiCell(0, lineHeight, d.tr("Special Instructions: "+special), "", "L", false)
	d.Ln(14)
	d.text("", 11, "_______________________")
	d.text("", 11, "Doctor's Signature")

	return finish(d)
}
