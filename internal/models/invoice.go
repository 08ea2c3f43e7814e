package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is derived from PaidAmount against TotalAmount.
type InvoiceStatus string

const (
	InvoiceUnpaid        InvoiceStatus = "unpaid"
	InvoicePartiallyPaid InvoiceStatus = "partially_paid"
	InvoicePaid          InvoiceStatus = "paid"
)

// Invoice bills one appointment. TotalAmount is fixed when the invoice is created.
type Invoice struct {
	BaseModel
	InvoiceNumber   string          `gorm:"size:20;uniqueIndex;not null" json:"invoiceNumber"`
	AppointmentID   string          `gorm:"size:36;index;not null" json:"appointmentId"`
	PatientID       string          `gorm:"size:36;index;not null" json:"patientId"`
	ConsultationFee decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"consultationFee"`
	MedicineCost    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"medicineCost"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"paidAmount"`
	Status          InvoiceStatus   `gorm:"size:20;index;default:'unpaid'" json:"status"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`

	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	Patient     *Patient     `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

// Balance is what remains to be paid; negative when overpaid.
func (i Invoice) Balance() decimal.Decimal {
	return i.TotalAmount.Sub(i.PaidAmount)
}

// InvoiceSequence is the per-period counter behind invoice numbers.
type InvoiceSequence struct {
	Period    string `gorm:"primaryKey;size:6"`
	LastValue int    `gorm:"not null"`
}
