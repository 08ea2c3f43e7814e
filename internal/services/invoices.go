package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smart-clinic-server/internal/metrics"
	"smart-clinic-server/internal/models"
)

// InvoiceService issues invoices and records payments against them.
type InvoiceService struct {
	DB  *gorm.DB
	Log *logrus.Entry

	now func() time.Time
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(db *gorm.DB, log *logrus.Entry) *InvoiceService {
	return &InvoiceService{DB: db, Log: log, now: time.Now}
}

// Create issues inv for its appointment. The invoice number, total, paid
// amount and status are always computed here.
func (s *InvoiceService) Create(ctx context.Context, inv *models.Invoice) error {
	if inv.ConsultationFee.IsNegative() || inv.MedicineCost.IsNegative() {
		return ErrInvalidAmount
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appt models.Appointment
		if err := tx.First(&appt, "id = ?", inv.AppointmentID).Error; err != nil {
			return notFoundOr(err, "load appointment")
		}

		number, err := nextInvoiceNumber(tx, s.now())
		if err != nil {
			return err
		}

		inv.InvoiceNumber = number
		inv.PatientID = appt.PatientID
		inv.TotalAmount = inv.ConsultationFee.Add(inv.MedicineCost)
		inv.PaidAmount = decimal.Zero
		inv.Status = models.InvoiceUnpaid
		inv.PaidAt = nil
		if err := tx.Omit(clause.Associations).Create(inv).Error; err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.InvoicesCreated.Inc()
	s.Log.WithField("invoice_number", inv.InvoiceNumber).WithField("total", inv.TotalAmount.StringFixed(2)).Info("invoice created")
	return nil
}

// nextInvoiceNumber reserves the next INV-yyyyMM-NNNN number for at's month.
// On MySQL the increment row-locks the counter until tx ends, so concurrent
// creators queue behind it.
func nextInvoiceNumber(tx *gorm.DB, at time.Time) (string, error) {
	period := at.Format("200601")

	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.InvoiceSequence{Period: period}).Error; err != nil {
		return "", fmt.Errorf("init invoice sequence: %w", err)
	}
	if err := tx.Model(&models.InvoiceSequence{}).Where("period = ?", period).
		UpdateColumn("last_value", gorm.Expr("last_value + ?", 1)).Error; err != nil {
		return "", fmt.Errorf("advance invoice sequence: %w", err)
	}
	var seq models.InvoiceSequence
	if err := tx.First(&seq, "period = ?", period).Error; err != nil {
		return "", fmt.Errorf("read invoice sequence: %w", err)
	}
	return fmt.Sprintf("INV-%s-%04d", period, seq.LastValue), nil
}

// ApplyPayment adds amount to the paid total. The invoice becomes paid once
// the paid total reaches the invoice total, partially paid otherwise, so a
// zero payment still marks an unpaid invoice as partially paid.
// Overpayment is accepted.
func (s *InvoiceService) ApplyPayment(ctx context.Context, id string, amount decimal.Decimal) (*models.Invoice, error) {
	if amount.IsNegative() {
		return nil, ErrInvalidPayment
	}

	var inv models.Invoice
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&inv, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "load invoice")
		}
		if err := tx.Model(&models.Invoice{}).Where("id = ?", id).
			UpdateColumn("paid_amount", gorm.Expr("paid_amount + ?", amount)).Error; err != nil {
			return fmt.Errorf("add payment: %w", err)
		}
		if err := tx.First(&inv, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "load invoice")
		}

		status := models.InvoicePartiallyPaid
		if inv.PaidAmount.GreaterThanOrEqual(inv.TotalAmount) {
			status = models.InvoicePaid
		}
		paidAt := s.now()
		if err := tx.Model(&inv).Updates(map[string]interface{}{
			"status":  status,
			"paid_at": paidAt,
		}).Error; err != nil {
			return fmt.Errorf("update invoice status: %w", err)
		}
		inv.Status = status
		inv.PaidAt = &paidAt
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PaymentsApplied.WithLabelValues(string(inv.Status)).Inc()
	s.Log.WithFields(logrus.Fields{
		"invoice_number": inv.InvoiceNumber,
		"amount":         amount.StringFixed(2),
		"status":         inv.Status,
	}).Info("payment applied")
	return &inv, nil
}

// Get loads an invoice with patient and appointment details.
func (s *InvoiceService) Get(ctx context.Context, id string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.detailed(ctx).First(&inv, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "load invoice")
	}
	return &inv, nil
}

// ListAll returns every invoice, newest first, optionally filtered by status.
func (s *InvoiceService) ListAll(ctx context.Context, status models.InvoiceStatus) ([]models.Invoice, error) {
	q := s.detailed(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Invoice
	if err := q.Order("created_at desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return out, nil
}

// ListForPatient returns the patient's invoices, newest first.
func (s *InvoiceService) ListForPatient(ctx context.Context, patientID string) ([]models.Invoice, error) {
	var out []models.Invoice
	if err := s.detailed(ctx).Where("patient_id = ?", patientID).Order("created_at desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list patient invoices: %w", err)
	}
	return out, nil
}

func (s *InvoiceService) detailed(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).Preload("Patient.User").Preload("Appointment.Doctor.User")
}
