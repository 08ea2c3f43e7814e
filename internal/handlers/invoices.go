package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"smart-clinic-server/internal/documents"
	"smart-clinic-server/internal/middleware"
	"smart-clinic-server/internal/models"
	"smart-clinic-server/internal/services"
	"smart-clinic-server/internal/utils"
)

// InvoiceHandler handles billing requests and invoice PDFs.
type InvoiceHandler struct {
	Invoices      *services.InvoiceService
	Appointments  *services.AppointmentService
	Records       *services.MedicalRecordService
	Prescriptions *services.PrescriptionService
	Renderer      *documents.Renderer
	Log           *logrus.Entry
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(
	invoices *services.InvoiceService,
	appointments *services.AppointmentService,
	records *services.MedicalRecordService,
	prescriptions *services.PrescriptionService,
	renderer *documents.Renderer,
	log *logrus.Entry,
) *InvoiceHandler {
	return &InvoiceHandler{
		Invoices:      invoices,
		Appointments:  appointments,
		Records:       records,
		Prescriptions: prescriptions,
		Renderer:      renderer,
		Log:           log,
	}
}

// CreateInvoiceRequest represents the request body for billing an appointment.
// consultationFee defaults to the doctor's fee and medicineCost to the price
// of the medicines prescribed during the visit.
type CreateInvoiceRequest struct {
	AppointmentID   string           `json:"appointmentId" binding:"required,uuid"`
	ConsultationFee *decimal.Decimal `json:"consultationFee"`
	MedicineCost    *decimal.Decimal `json:"medicineCost"`
}

// CreateInvoice bills one of the authenticated doctor's appointments.
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	doctor := middleware.GetDoctorFromContext(c)
	appointment, err := h.Appointments.Get(ctx, req.AppointmentID)
	if err != nil {
		respondError(c, h.Log, err, "retrieve appointment")
		return
	}
	if appointment.DoctorID != doctor.ID {
		utils.Forbidden(c, "You can only bill your own appointments")
		return
	}

	invoice := models.Invoice{
		AppointmentID:   appointment.ID,
		ConsultationFee: doctor.ConsultationFee,
	}
	if req.ConsultationFee != nil {
		invoice.ConsultationFee = *req.ConsultationFee
	}
	if req.MedicineCost != nil {
		invoice.MedicineCost = *req.MedicineCost
	} else {
		invoice.MedicineCost, err = h.medicineCost(ctx, appointment.ID)
		if err != nil {
			respondError(c, h.Log, err, "estimate medicine cost")
			return
		}
	}

	if err := h.Invoices.Create(ctx, &invoice); err != nil {
		respondError(c, h.Log, err, "create invoice")
		return
	}
	utils.Created(c, "Invoice created successfully", invoice)
}

// medicineCost prices the prescriptions of the appointment's record, or zero
// when no record has been written.
func (h *InvoiceHandler) medicineCost(ctx context.Context, appointmentID string) (decimal.Decimal, error) {
	record, err := h.Records.ForAppointment(ctx, appointmentID)
	if errors.Is(err, services.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return h.Prescriptions.EstimateMedicineCost(ctx, record.ID)
}

// InvoiceQuery optionally filters invoices by status.
type InvoiceQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=unpaid partially_paid paid"`
}

// GetInvoices lists every invoice.
func (h *InvoiceHandler) GetInvoices(c *gin.Context) {
	var q InvoiceQuery
	if !utils.BindQuery(c, &q) {
		return
	}
	invoices, err := h.Invoices.ListAll(c.Request.Context(), models.InvoiceStatus(q.Status))
	if err != nil {
		respondError(c, h.Log, err, "retrieve invoices")
		return
	}
	utils.Success(c, "Invoices retrieved successfully", invoices)
}

// GetInvoice returns one invoice.
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, ok := h.invoice(c)
	if !ok {
		return
	}
	utils.Success(c, "Invoice retrieved successfully", invoice)
}

// PaymentRequest represents the request body for recording a payment.
type PaymentRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
}

// ApplyPayment records a payment against an invoice.
func (h *InvoiceHandler) ApplyPayment(c *gin.Context) {
	id, ok := pathID(c, "id", "invoice")
	if !ok {
		return
	}
	var req PaymentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	invoice, err := h.Invoices.ApplyPayment(c.Request.Context(), id, *req.Amount)
	if err != nil {
		respondError(c, h.Log, err, "apply payment")
		return
	}
	utils.Success(c, "Payment applied successfully", invoice)
}

// DownloadInvoice streams any invoice as a PDF.
func (h *InvoiceHandler) DownloadInvoice(c *gin.Context) {
	invoice, ok := h.invoice(c)
	if !ok {
		return
	}
	h.writePDF(c, invoice)
}

// GetMyInvoices lists the authenticated patient's invoices.
func (h *InvoiceHandler) GetMyInvoices(c *gin.Context) {
	invoices, err := h.Invoices.ListForPatient(c.Request.Context(), middleware.GetPatientFromContext(c).ID)
	if err != nil {
		respondError(c, h.Log, err, "retrieve invoices")
		return
	}
	utils.Success(c, "Invoices retrieved successfully", invoices)
}

// DownloadMyInvoice streams one of the patient's invoices as a PDF.
func (h *InvoiceHandler) DownloadMyInvoice(c *gin.Context) {
	invoice, ok := h.invoice(c)
	if !ok {
		return
	}
	if invoice.PatientID != middleware.GetPatientFromContext(c).ID {
		utils.Forbidden(c, "You can only download your own invoices")
		return
	}
	h.writePDF(c, invoice)
}

func (h *InvoiceHandler) invoice(c *gin.Context) (*models.Invoice, bool) {
	id, ok := pathID(c, "id", "invoice")
	if !ok {
		return nil, false
	}
	invoice, err := h.Invoices.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err, "retrieve invoice")
		return nil, false
	}
	return invoice, true
}

func (h *InvoiceHandler) writePDF(c *gin.Context, invoice *models.Invoice) {
	pdf, err := h.Renderer.RenderInvoice(invoice)
	if err != nil {
		respondError(c, h.Log, err, "render invoice")
		return
	}
	utils.Attachment(c, invoice.InvoiceNumber+".pdf", documents.ContentTypePDF, pdf)
}
