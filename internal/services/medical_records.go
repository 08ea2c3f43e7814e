package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smart-clinic-server/internal/models"
)

// MedicalRecordService writes visit records. Records are never edited.
type MedicalRecordService struct {
	DB           *gorm.DB
	Appointments *AppointmentService
	Log          *logrus.Entry
}

// NewMedicalRecordService creates a new MedicalRecordService.
func NewMedicalRecordService(db *gorm.DB, appointments *AppointmentService, log *logrus.Entry) *MedicalRecordService {
	return &MedicalRecordService{DB: db, Appointments: appointments, Log: log}
}

// Create stores rec for its appointment and marks the appointment completed.
// Only the appointment's doctor may write the record, and only once.
func (s *MedicalRecordService) Create(ctx context.Context, rec *models.MedicalRecord) error {
	var appt models.Appointment
	if err := s.DB.WithContext(ctx).First(&appt, "id = ?", rec.AppointmentID).Error; err != nil {
		return notFoundOr(err, "load appointment")
	}
	if appt.DoctorID != rec.DoctorID {
		return ErrForbidden
	}

	var existing int64
	if err := s.DB.WithContext(ctx).Model(&models.MedicalRecord{}).
		Where("appointment_id = ?", appt.ID).Count(&existing).Error; err != nil {
		return fmt.Errorf("check existing record: %w", err)
	}
	if existing > 0 {
		return ErrRecordExists
	}

	rec.PatientID = appt.PatientID
	if rec.VisitDate.IsZero() {
		rec.VisitDate = appt.AppointmentDate
	}
	if err := s.DB.WithContext(ctx).Omit(clause.Associations).Create(rec).Error; err != nil {
		return fmt.Errorf("create medical record: %w", err)
	}
	s.Log.WithField("record_id", rec.ID).WithField("appointment_id", appt.ID).Info("medical record created")

	if _, err := s.Appointments.SetStatus(ctx, appt.ID, models.StatusCompleted); err != nil {
		return err
	}
	return nil
}

// Get loads a record with its prescriptions.
func (s *MedicalRecordService) Get(ctx context.Context, id string) (*models.MedicalRecord, error) {
	var rec models.MedicalRecord
	if err := s.detailed(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "load medical record")
	}
	return &rec, nil
}

// ListForPatient returns the patient's history, latest visit first.
func (s *MedicalRecordService) ListForPatient(ctx context.Context, patientID string) ([]models.MedicalRecord, error) {
	var out []models.MedicalRecord
	if err := s.detailed(ctx).Where("patient_id = ?", patientID).Order("visit_date desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list medical records: %w", err)
	}
	return out, nil
}

func (s *MedicalRecordService) detailed(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).
		Preload("Patient.User").
		Preload("Doctor.User").
		Preload("Prescriptions.Items.Medicine")
}

// ForAppointment returns the record written for an appointment.
func (s *MedicalRecordService) ForAppointment(ctx context.Context, appointmentID string) (*models.MedicalRecord, error) {
	var rec models.MedicalRecord
	if err := s.DB.WithContext(ctx).Where("appointment_id = ?", appointmentID).First(&rec).Error; err != nil {
		return nil, notFoundOr(err, "load medical record")
	}
	return &rec, nil
}
