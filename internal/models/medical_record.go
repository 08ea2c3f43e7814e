package models

import (
	"time"
)

// MedicalRecord is written once for a completed appointment.
type MedicalRecord struct {
	BaseModel
	AppointmentID  string    `gorm:"size:36;uniqueIndex;not null" json:"appointmentId"`
	PatientID      string    `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID       string    `gorm:"size:36;index;not null" json:"doctorId"`
	VisitDate      time.Time `json:"visitDate"`
	ChiefComplaint string    `gorm:"size:255" json:"chiefComplaint"`
	Diagnosis      string    `gorm:"type:text" json:"diagnosis"`
	Vitals         string    `gorm:"type:text" json:"vitals"` // JSON document
	Notes          string    `gorm:"type:text" json:"notes"`

	// Relations
	Appointment   *Appointment   `gorm:"foreignKey:AppointmentID" json:"-"`
	Patient       *Patient       `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor        *Doctor        `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Prescriptions []Prescription `gorm:"foreignKey:MedicalRecordID" json:"prescriptions,omitempty"`
}
